package repository_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/Tomlord1122/ticket-tracker/internal/domain"
	"github.com/Tomlord1122/ticket-tracker/internal/repository"
	"github.com/Tomlord1122/ticket-tracker/internal/repository/repositorytest"
)

// newTestDB opens an in-memory SQLite database. A single connection keeps
// every query on the same in-memory database.
func newTestDB(t *testing.T, dsn string) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err, "failed to open test database")
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, repository.MigrateSQLite(context.Background(), db), "failed to run migrations")
	return db
}

func TestSQLiteTicketRepository(t *testing.T) {
	repositorytest.RunContract(t, func(t *testing.T) repository.TicketRepository {
		return repository.NewSQLiteTicketRepository(newTestDB(t, ":memory:"))
	})
}

func TestSQLiteTicketRepository_MigrateIsIdempotent(t *testing.T) {
	db := newTestDB(t, ":memory:")
	require.NoError(t, repository.MigrateSQLite(context.Background(), db))
}

func TestSQLiteTicketRepository_PersistsAcrossHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickets.db")
	ctx := context.Background()

	first := repository.NewSQLiteTicketRepository(newTestDB(t, path))
	created, err := first.Create(ctx, "Survives reopen", domain.PriorityHigh, "")
	require.NoError(t, err)

	second := repository.NewSQLiteTicketRepository(newTestDB(t, path))
	got, err := second.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Survives reopen", got.Title)
	assert.Equal(t, domain.PriorityHigh, got.Priority)
}

func TestSQLiteTicketRepository_CheckConstraints(t *testing.T) {
	db := newTestDB(t, ":memory:")
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO tickets (title, priority, status, created_at, updated_at) VALUES ('x', 'URGENT', 'BACKLOG', '', '')`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHECK constraint failed")

	_, err = db.ExecContext(ctx,
		`INSERT INTO tickets (title, priority, status, created_at, updated_at) VALUES ('  ', 'LOW', 'BACKLOG', '', '')`)
	require.Error(t, err)
}
