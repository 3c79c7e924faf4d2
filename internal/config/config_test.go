package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, "tickets.db", cfg.SQLite.Path)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Environment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("TICKETS_BACKEND", "Postgres")
	t.Setenv("BLUEPRINT_DB_HOST", "db.internal")
	t.Setenv("BLUEPRINT_DB_DATABASE", "tickets")
	t.Setenv("BLUEPRINT_DB_SCHEMA", "ops")
	t.Setenv("TICKETS_DB_AUTO_MIGRATE", "false")
	t.Setenv("TICKETS_CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, BackendPostgres, cfg.Backend)
	assert.False(t, cfg.DB.AutoMigrate)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Contains(t, cfg.DSN(), "host=db.internal")
	assert.Contains(t, cfg.DSN(), "dbname=tickets")
	assert.Contains(t, cfg.DSN(), "search_path=ops")
}

func TestLoad_DatabaseURLWins(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://user:secret@db:5432/tickets")

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)
	assert.Equal(t, "postgres://user:secret@db:5432/tickets", cfg.DSN())
	assert.NotContains(t, cfg.RedactedDSN(), "secret")
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: sqlite\nsqlite:\n  path: /tmp/t.db\nlog:\n  level: debug\n"), 0o600))

	cfg, err := Load(NewViper(), path)
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, "/tmp/t.db", cfg.SQLite.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{Port: 8080, Backend: BackendMemory, Log: LogConfig{Level: "info", Format: "json"}}
	}

	cfg := valid()
	require.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Backend = "mongo"
	assert.ErrorContains(t, cfg.Validate(), "invalid backend")

	cfg = valid()
	cfg.Port = 0
	assert.ErrorContains(t, cfg.Validate(), "invalid port")

	cfg = valid()
	cfg.Log.Level = "loud"
	assert.ErrorContains(t, cfg.Validate(), "invalid log level")

	cfg = valid()
	cfg.Log.Format = "xml"
	assert.ErrorContains(t, cfg.Validate(), "invalid log format")

	cfg = valid()
	cfg.Backend = BackendSQLite
	assert.Error(t, cfg.Validate())
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir on Go >= 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
