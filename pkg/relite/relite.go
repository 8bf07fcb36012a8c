package relite

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hlop3z/relite/internal/ast"
	"github.com/hlop3z/relite/internal/engine"
	"github.com/hlop3z/relite/internal/engine/runner"
	"github.com/hlop3z/relite/internal/store"
)

// Client is the main entry point for relite. It compiles definitions and
// deltas, runs the migration ledger and reads and writes records.
//
// Example:
//
//	client, err := relite.New(
//	    relite.WithDatabaseURL("./app.db"),
//	    relite.WithMigrationsDir("./migrations"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	if _, err := client.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
type Client struct {
	db       *sql.DB
	config   *Config
	compiler *engine.Compiler
	runner   *runner.Runner
	writer   *runner.Writer
	store    *store.Source
}

// New opens the database and wires the client. WithDatabaseURL is required
// unless WithCompileOnly is set.
func New(opts ...Option) (*Client, error) {
	cfg := &Config{
		MigrationsDir: "./migrations",
		LedgerTable:   engine.DefaultLedgerTable,
		Transactional: true,
		Timeout:       30 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.CompileOnly {
		return newClient(nil, cfg), nil
	}
	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}

	db, err := sql.Open("sqlite", dsn(cfg.DatabaseURL))
	if err != nil {
		return nil, &ConnectionError{URL: cfg.DatabaseURL, Cause: err}
	}
	// One connection: SQLite has a single writer, and ":memory:" is per connection.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &ConnectionError{URL: cfg.DatabaseURL, Cause: err}
	}

	return newClient(db, cfg), nil
}

func newClient(db *sql.DB, cfg *Config) *Client {
	c := &Client{
		config:   cfg,
		compiler: engine.NewCompiler(engine.WithLogger(cfg.Logger)),
		writer:   runner.NewWriter(cfg.MigrationsDir),
	}
	if db == nil {
		return c
	}
	c.db = db
	c.runner = runner.NewRunner(db, cfg.MigrationsDir,
		runner.WithLedgerTable(cfg.LedgerTable),
		runner.WithTransactional(cfg.Transactional),
		runner.WithLogger(cfg.Logger))
	c.store = store.New(db, store.WithCompiler(c.compiler), store.WithLogger(cfg.Logger))
	return c
}

// Close closes the database connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// DB returns the underlying database connection.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Config returns a copy of the client configuration.
func (c *Client) Config() Config {
	return *c.config
}

// connected fails for a compile-only client.
func (c *Client) connected() error {
	if c.db == nil {
		return ErrCompileOnly
	}
	return nil
}

// context bounds ctx by the configured timeout.
func (c *Client) context(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.config.Timeout)
}

// dsn strips URL prefixes down to the path modernc.org/sqlite opens.
func dsn(url string) string {
	url = strings.TrimPrefix(url, "sqlite://")
	url = strings.TrimPrefix(url, "sqlite3://")
	if strings.HasPrefix(url, "file:") && !strings.Contains(url, "?") {
		url = strings.TrimPrefix(url, "file:")
	}
	return url
}

// scoped applies the configured schema to a table that has none.
func (c *Client) scoped(t *ast.TableDef) *ast.TableDef {
	if c.config.Schema == "" || t.Schema != "" {
		return t
	}
	scoped := t.Clone()
	scoped.Schema = c.config.Schema
	return scoped
}
