package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryHealth(t *testing.T) {
	svc := NewMemory()
	health := svc.Health()
	assert.Equal(t, "up", health["status"])
	assert.Equal(t, "memory", health["backend"])
	assert.NoError(t, svc.Close())
}

func TestSQLiteService(t *testing.T) {
	path := filepath.Join(t.TempDir(), "health.db")
	migrated := false
	svc, err := NewSQLite(context.Background(), path, zap.NewNop(), func(ctx context.Context, db *sql.DB) error {
		migrated = true
		_, err := db.ExecContext(ctx, "CREATE TABLE probe (id INTEGER)")
		return err
	})
	require.NoError(t, err)
	assert.True(t, migrated)

	health := svc.Health()
	assert.Equal(t, "up", health["status"])
	assert.Equal(t, "sqlite", health["backend"])
	assert.Equal(t, path, health["path"])
	assert.Equal(t, "1", health["open_connections"])

	require.NoError(t, svc.Close())
	assert.Equal(t, "down", svc.Health()["status"])
}

func TestSQLiteService_MigrationFailure(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewSQLite(context.Background(), ":memory:", zap.NewNop(), func(context.Context, *sql.DB) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}
