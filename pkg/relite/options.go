package relite

import (
	"log/slog"
	"time"
)

// Config holds all configuration options for the Client.
type Config struct {
	// DatabaseURL is the SQLite database to open.
	// Accepts sqlite://path, file:path or a plain path. ":memory:" opens
	// a private in-memory database.
	DatabaseURL string

	// MigrationsDir holds definition.sql and the migration-<stamp>.sql files.
	// Default: ./migrations
	MigrationsDir string

	// Schema is applied to every table that does not name its own.
	Schema string

	// LedgerTable records applied stamps.
	// Default: _relite_migration
	LedgerTable string

	// Transactional runs each migration unit in one transaction.
	// Default: true
	Transactional bool

	// Timeout is the maximum duration for database operations.
	// Default: 30s
	Timeout time.Duration

	// Logger receives operation logs. Default: slog.Default()
	Logger *slog.Logger

	// CompileOnly skips the database connection.
	CompileOnly bool
}

// Option is a functional option for configuring the Client.
type Option func(*Config)

// WithDatabaseURL sets the database location.
//
// Examples:
//   - sqlite://./app.db
//   - ./app.db
//   - :memory:
func WithDatabaseURL(url string) Option {
	return func(c *Config) {
		c.DatabaseURL = url
	}
}

// WithMigrationsDir sets the path to the migrations directory.
// Default: ./migrations
func WithMigrationsDir(dir string) Option {
	return func(c *Config) {
		c.MigrationsDir = dir
	}
}

// WithSchema sets the schema for tables that do not declare one.
func WithSchema(schema string) Option {
	return func(c *Config) {
		c.Schema = schema
	}
}

// WithLedgerTable overrides the ledger table name.
func WithLedgerTable(name string) Option {
	return func(c *Config) {
		c.LedgerTable = name
	}
}

// WithTransactional toggles one transaction per migration unit.
// With it off a failed payload leaves its stamp recorded.
func WithTransactional(on bool) Option {
	return func(c *Config) {
		c.Transactional = on
	}
}

// WithTimeout sets the timeout for database operations.
// Default: 30s
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithLogger sets the logger for the client.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithCompileOnly skips the database connection. Compiling, rendering
// migration files and fingerprinting still work; operations that need a
// database return ErrCompileOnly.
func WithCompileOnly() Option {
	return func(c *Config) {
		c.CompileOnly = true
	}
}
