package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/Tomlord1122/ticket-tracker/internal/config"
	"github.com/Tomlord1122/ticket-tracker/internal/database"
	"github.com/Tomlord1122/ticket-tracker/internal/logging"
	"github.com/Tomlord1122/ticket-tracker/internal/server"
	"github.com/Tomlord1122/ticket-tracker/internal/service"
	"github.com/Tomlord1122/ticket-tracker/internal/storage"
)

func gracefulShutdown(apiServer *http.Server, dbService database.Service, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The server has 5 seconds to finish in-flight requests
	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	if err := dbService.Close(); err != nil {
		logger.Error("error closing database", zap.Error(err))
	} else {
		logger.Info("database closed")
	}

	done <- true
}

func main() {
	cfg, err := config.Load(config.NewViper(), os.Getenv("TICKETS_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// 1. Open the configured backend (runs migrations when enabled)
	ticketRepo, dbService, err := storage.Open(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to open ticket store", zap.Error(err))
	}

	// 2. Services
	ticketService := service.NewTicketService(ticketRepo, logger)

	// 3. Server/Router
	apiServer := server.NewServer(cfg, ticketService, dbService, logger)

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, dbService, logger, done)

	logger.Info("starting server", zap.String("addr", apiServer.Addr), zap.String("backend", cfg.Backend))
	err = apiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("HTTP server ListenAndServe error", zap.Error(err))
	}

	<-done
	logger.Info("graceful shutdown complete")
}
