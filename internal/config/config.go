package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Storage backends understood by the storage package.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config holds the settings shared by the API server and the CLI.
type Config struct {
	Port        int            `mapstructure:"port"`
	Backend     string         `mapstructure:"backend"`
	DatabaseURL string         `mapstructure:"database_url"`
	DB          DatabaseConfig `mapstructure:"db"`
	SQLite      SQLiteConfig   `mapstructure:"sqlite"`
	CORS        CORSConfig     `mapstructure:"cors"`
	Log         LogConfig      `mapstructure:"log"`
}

// DatabaseConfig describes the Postgres connection when DATABASE_URL is
// not set.
type DatabaseConfig struct {
	Host        string `mapstructure:"host"`
	Port        string `mapstructure:"port"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	Database    string `mapstructure:"database"`
	Schema      string `mapstructure:"schema"`
	SSLMode     string `mapstructure:"sslmode"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// envBindings maps config keys to the environment variables that set them.
// The BLUEPRINT_DB_* names are kept for existing deployments.
var envBindings = map[string]string{
	"port":                 "PORT",
	"backend":              "TICKETS_BACKEND",
	"database_url":         "DATABASE_URL",
	"db.host":              "BLUEPRINT_DB_HOST",
	"db.port":              "BLUEPRINT_DB_PORT",
	"db.username":          "BLUEPRINT_DB_USERNAME",
	"db.password":          "BLUEPRINT_DB_PASSWORD",
	"db.database":          "BLUEPRINT_DB_DATABASE",
	"db.schema":            "BLUEPRINT_DB_SCHEMA",
	"db.sslmode":           "BLUEPRINT_DB_SSLMODE",
	"db.auto_migrate":      "TICKETS_DB_AUTO_MIGRATE",
	"sqlite.path":          "TICKETS_SQLITE_PATH",
	"cors.allowed_origins": "TICKETS_CORS_ALLOWED_ORIGINS",
	"log.level":            "TICKETS_LOG_LEVEL",
	"log.format":           "TICKETS_LOG_FORMAT",
}

// NewViper returns a viper instance with defaults and environment bindings
// applied. Callers may bind flags onto it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("port", 8080)
	v.SetDefault("backend", BackendMemory)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.auto_migrate", true)
	v.SetDefault("sqlite.path", "tickets.db")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	for key, env := range envBindings {
		// BindEnv only errors when called without a key.
		_ = v.BindEnv(key, env)
	}
	return v
}

// Load reads an optional config file into v and decodes the result. An
// empty cfgFile searches for ticket-tracker.{yaml,json,toml} in the working
// directory; a missing file there is not an error.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("ticket-tracker")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings that would only fail later at startup.
func (c *Config) Validate() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case BackendMemory, BackendPostgres, BackendSQLite:
	default:
		return fmt.Errorf("invalid backend %q (expected memory, postgres or sqlite)", c.Backend)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format %q (expected json or console)", c.Log.Format)
	}
	if c.Backend == BackendSQLite && c.SQLite.Path == "" {
		return errors.New("sqlite backend requires sqlite.path")
	}
	return nil
}

// DSN returns the Postgres connection string. DATABASE_URL wins when set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	d := c.DB
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.Username, d.Password, d.Database, d.Port, d.SSLMode)
	if d.Schema != "" {
		dsn += " search_path=" + d.Schema
	}
	return dsn
}

// RedactedDSN is safe to log.
func (c *Config) RedactedDSN() string {
	if c.DatabaseURL != "" {
		u, err := url.Parse(c.DatabaseURL)
		if err != nil {
			return "<unparseable DATABASE_URL>"
		}
		return u.Redacted()
	}
	return fmt.Sprintf("host=%s dbname=%s port=%s", c.DB.Host, c.DB.Database, c.DB.Port)
}
