// Package storage wires the configured backend into a ticket repository.
package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Tomlord1122/ticket-tracker/internal/config"
	"github.com/Tomlord1122/ticket-tracker/internal/database"
	"github.com/Tomlord1122/ticket-tracker/internal/repository"
)

// Open builds the repository for cfg.Backend along with the database
// handle the caller must Close on shutdown.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.TicketRepository, database.Service, error) {
	log = log.With(zap.String("backend", cfg.Backend))

	switch cfg.Backend {
	case config.BackendMemory:
		log.Info("using in-memory ticket store; data is lost on exit")
		return repository.NewMemoryTicketRepository(), database.NewMemory(), nil

	case config.BackendSQLite:
		svc, err := database.NewSQLite(ctx, cfg.SQLite.Path, log, repository.MigrateSQLite)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewSQLiteTicketRepository(svc.GetDB()), svc, nil

	case config.BackendPostgres:
		svc, err := database.NewPostgres(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		if cfg.DB.AutoMigrate {
			if err := svc.Migrate(ctx); err != nil {
				svc.Close()
				return nil, nil, err
			}
		}
		return repository.NewGormTicketRepository(svc.GetDB()), svc, nil
	}
	return nil, nil, fmt.Errorf("unsupported backend %q", cfg.Backend)
}
