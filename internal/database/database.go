package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"github.com/Tomlord1122/ticket-tracker/internal/config"
	"github.com/Tomlord1122/ticket-tracker/internal/domain"
)

// Service is the lifecycle handle for whatever backs the ticket store.
type Service interface {
	Health() map[string]string
	Close() error
}

// PostgresService owns the GORM connection pool.
type PostgresService struct {
	db     *gorm.DB
	name   string
	logger *zap.Logger
}

// NewPostgres opens a pooled GORM connection using the configured DSN.
func NewPostgres(cfg *config.Config, log *zap.Logger) (*PostgresService, error) {
	// Route GORM's SQL log through zap
	gormLogger := logger.New(
		zap.NewStdLog(log.Named("gorm")),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogLevel(log),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database %s: %w", cfg.RedactedDSN(), err)
	}

	// Set connection pool settings (important for production)
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &PostgresService{db: db, name: cfg.RedactedDSN(), logger: log}, nil
}

func gormLogLevel(log *zap.Logger) logger.LogLevel {
	switch {
	case log.Core().Enabled(zap.DebugLevel):
		return logger.Info
	case log.Core().Enabled(zap.WarnLevel):
		return logger.Warn
	default:
		return logger.Error
	}
}

func (s *PostgresService) GetDB() *gorm.DB {
	return s.db
}

// Migrate creates or alters the tickets table to match domain.Ticket.
func (s *PostgresService) Migrate(ctx context.Context) error {
	s.logger.Info("running database auto-migration")
	if err := s.db.WithContext(ctx).AutoMigrate(&domain.Ticket{}); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}

// Health check needs to use the underlying sql.DB from GORM
func (s *PostgresService) Health() map[string]string {
	sqlDB, err := s.db.DB()
	if err != nil {
		s.logger.Error("failed to get DB for health check", zap.Error(err))
		return map[string]string{
			"status":  "down",
			"backend": config.BackendPostgres,
			"error":   fmt.Sprintf("failed to get underlying DB for health check: %v", err),
		}
	}
	stats := sqlHealth(sqlDB, s.logger)
	stats["backend"] = config.BackendPostgres
	return stats
}

func (s *PostgresService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB for closing: %w", err)
	}
	s.logger.Info("closing connection pool", zap.String("database", s.name))
	return sqlDB.Close()
}

// SQLiteService owns a single-connection SQLite handle. SQLite serializes
// writers anyway, and one connection is required for ":memory:".
type SQLiteService struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// NewSQLite opens (creating if needed) the database at path and ensures
// the tickets schema exists.
func NewSQLite(ctx context.Context, path string, log *zap.Logger, migrate func(context.Context, *sql.DB) error) (*SQLiteService, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if migrate != nil {
		if err := migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}
	log.Debug("opened sqlite database", zap.String("path", path))
	return &SQLiteService{db: db, path: path, logger: log}, nil
}

func (s *SQLiteService) GetDB() *sql.DB {
	return s.db
}

func (s *SQLiteService) Health() map[string]string {
	stats := sqlHealth(s.db, s.logger)
	stats["backend"] = config.BackendSQLite
	stats["path"] = s.path
	return stats
}

func (s *SQLiteService) Close() error {
	s.logger.Debug("closing sqlite database", zap.String("path", s.path))
	return s.db.Close()
}

// memoryService has nothing to ping or close.
type memoryService struct{}

// NewMemory returns the Service used alongside the in-memory repository.
func NewMemory() Service {
	return memoryService{}
}

func (memoryService) Health() map[string]string {
	return map[string]string{
		"status":  "up",
		"backend": config.BackendMemory,
		"message": "It's healthy",
	}
}

func (memoryService) Close() error { return nil }

// sqlHealth pings db and reports pool statistics.
func sqlHealth(db *sql.DB, log *zap.Logger) map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)
	if err := db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		log.Warn("db down", zap.Error(err))
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := db.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()
	stats["max_idle_closed"] = strconv.FormatInt(dbStats.MaxIdleClosed, 10)
	stats["max_lifetime_closed"] = strconv.FormatInt(dbStats.MaxLifetimeClosed, 10)

	// Thresholds assume the Postgres pool size of 100
	if dbStats.OpenConnections > 80 {
		stats["message"] = "The database is experiencing heavy load."
	}
	if dbStats.WaitCount > 1000 {
		stats["message"] = "The database has a high number of wait events, indicating potential bottlenecks."
	}
	if dbStats.MaxIdleClosed > int64(dbStats.OpenConnections)/2 && dbStats.OpenConnections > dbStats.Idle {
		stats["message"] = "Many idle connections are being closed, consider revising the connection pool settings (MaxIdleConns, ConnMaxIdleTime)."
	}
	if dbStats.MaxLifetimeClosed > int64(dbStats.OpenConnections)/2 {
		stats["message"] = "Many connections are being closed due to max lifetime, consider increasing ConnMaxLifetime or revising the connection usage pattern."
	}

	return stats
}
