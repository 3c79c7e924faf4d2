package server

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Tomlord1122/ticket-tracker/internal/config"
	"github.com/Tomlord1122/ticket-tracker/internal/database"
	"github.com/Tomlord1122/ticket-tracker/internal/service"
)

const (
	apiName    = "Dev-Ops Ticket Management API"
	apiVersion = "1.0.0"
)

type Server struct {
	port           int
	allowedOrigins []string
	ticketService  service.TicketService
	db             database.Service
	logger         *zap.Logger
}

// NewServer builds the HTTP server for the ticket API. The handler is also
// reachable through the returned server's Handler field for tests.
func NewServer(cfg *config.Config, ticketService service.TicketService, dbService database.Service, logger *zap.Logger) *http.Server {
	appServer := &Server{
		port:           cfg.Port,
		allowedOrigins: cfg.CORS.AllowedOrigins,
		ticketService:  ticketService,
		db:             dbService,
		logger:         logger.Named("http"),
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", appServer.port),
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     zap.NewStdLog(appServer.logger),
	}
}
