package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hlop3z/relite/internal/alerr"
	"github.com/hlop3z/relite/internal/ast"
	"github.com/hlop3z/relite/internal/cli"
	"github.com/hlop3z/relite/internal/engine"
	"github.com/hlop3z/relite/pkg/relite"
)

// Config represents relite.yaml.
type Config struct {
	DatabaseURL   string        `mapstructure:"database_url"`
	MigrationsDir string        `mapstructure:"migrations_dir"`
	Definitions   string        `mapstructure:"definitions"`
	Schema        string        `mapstructure:"schema"`
	LedgerTable   string        `mapstructure:"ledger_table"`
	Transactional bool          `mapstructure:"transactional"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Verbose       bool          `mapstructure:"verbose"`
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"database-url":   "database_url",
	"migrations-dir": "migrations_dir",
	"definitions":    "definitions",
	"schema":         "schema",
	"ledger-table":   "ledger_table",
	"transactional":  "transactional",
	"timeout":        "timeout",
	"verbose":        "verbose",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database_url", "")
	v.SetDefault("migrations_dir", "./migrations")
	v.SetDefault("definitions", "./relite.tables.yaml")
	v.SetDefault("schema", "")
	v.SetDefault("ledger_table", engine.DefaultLedgerTable)
	v.SetDefault("transactional", true)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("verbose", false)
}

// loadConfig loads configuration with precedence:
// flags > RELITE_* env vars > config file > defaults.
// A missing config file is only an error when --config was given.
func loadConfig(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RELITE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, alerr.Wrap(alerr.ErrConfig, err, "failed to bind flag").With("flag", name)
			}
		}
	}

	if f := flags.Lookup("config"); f != nil && f.Value.String() != "" {
		path := f.Value.String()
		_, statErr := os.Stat(path)
		switch {
		case statErr == nil:
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, alerr.Wrap(alerr.ErrConfig, err, "failed to read config file").With("path", path)
			}
		case !errors.Is(statErr, os.ErrNotExist) || f.Changed:
			return nil, alerr.Wrap(alerr.ErrConfig, statErr, "config file not found").With("path", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, alerr.Wrap(alerr.ErrConfig, err, "malformed configuration")
	}
	cfg.DatabaseURL = os.ExpandEnv(cfg.DatabaseURL)
	return &cfg, nil
}

// newLogger writes command logs to w; --verbose adds per-statement logs.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newClient creates a client from config. A compile-only client never
// touches the database.
func newClient(cmd *cobra.Command, cfg *Config, compileOnly bool) (*relite.Client, error) {
	opts := []relite.Option{
		relite.WithMigrationsDir(cfg.MigrationsDir),
		relite.WithSchema(cfg.Schema),
		relite.WithLedgerTable(cfg.LedgerTable),
		relite.WithTransactional(cfg.Transactional),
		relite.WithTimeout(cfg.Timeout),
		relite.WithLogger(newLogger(cmd.ErrOrStderr(), cfg.Verbose)),
	}
	if compileOnly {
		return relite.New(append(opts, relite.WithCompileOnly())...)
	}
	if cfg.DatabaseURL == "" {
		return nil, alerr.New(alerr.ErrConfig, "database URL is required").
			WithHelp("set database_url in relite.yaml, RELITE_DATABASE_URL or --database-url")
	}
	return relite.New(append(opts, relite.WithDatabaseURL(cfg.DatabaseURL))...)
}

// setup loads config and opens a client for a command.
func setup(cmd *cobra.Command, compileOnly bool) (*Config, *relite.Client, error) {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	client, err := newClient(cmd, cfg, compileOnly)
	if err != nil {
		return nil, nil, err
	}
	return cfg, client, nil
}

// documentPath returns the document named on the command line, or the
// configured one.
func documentPath(cfg *Config, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Definitions
}

// loadDocument reads and decodes a definition document.
func loadDocument(path string) (*ast.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrConfig, err, "failed to read definition document").With("path", path)
	}
	doc, err := ast.DecodeDocument(data)
	if err != nil {
		var ae *alerr.Error
		if errors.As(err, &ae) {
			ae.With("path", path)
		}
		return nil, err
	}
	return doc, nil
}

// commandContext returns the command's context, or a background one
// when run outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// printStatements writes statements in migration file form.
func printStatements(w io.Writer, stmts []ast.Statement) {
	for _, s := range stmts {
		fmt.Fprintln(w, cli.SQL(s.SQL)+";")
	}
}
