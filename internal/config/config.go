// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers file, dotenv and environment sources on top of New.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"time"
)

// Storage drivers understood by the repository layer.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// DBDriver selects the storage backend: sqlite, postgres or memory.
	DBDriver string `koanf:"db_driver"`

	// DBDSN is the driver-specific connection string.
	DBDSN string `koanf:"db_dsn"`

	// DBMaxOpenConns and DBMaxIdleConns size the connection pool.
	DBMaxOpenConns int `koanf:"db_max_open_conns"`
	DBMaxIdleConns int `koanf:"db_max_idle_conns"`

	// DBConnMaxLifetime recycles pooled connections, e.g. "30m".
	DBConnMaxLifetime time.Duration `koanf:"db_conn_max_lifetime"`

	// AutoMigrate creates the todos table at startup when missing.
	AutoMigrate bool `koanf:"auto_migrate"`

	// StaticDir serves a prebuilt frontend; empty uses the embedded page.
	StaticDir string `koanf:"static_dir"`

	// CORSOrigins lists origins allowed to call the API from a browser.
	CORSOrigins []string `koanf:"cors_origins"`

	// MaxBodyBytes caps request bodies on POST/PUT.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":8000",
		DBDriver:          DriverSQLite,
		DBDSN:             "file:todos.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		DBMaxOpenConns:    10,
		DBMaxIdleConns:    5,
		DBConnMaxLifetime: 30 * time.Minute,
		AutoMigrate:       true,
		CORSOrigins:       []string{"http://localhost:5173"},
		MaxBodyBytes:      1 << 20,
	}
}
