// Package main provides the relite command: it compiles SQLite schema
// definitions and migrations and runs the migration ledger.
//
// Usage:
//
//	relite define [file]          # Create the document's tables in the database
//	relite diff [file] [--write]  # Show (or write) migration SQL for the document's changes
//	relite render [file] [--watch] # Write definition.sql from the document
//	relite migrate [--dry-run]    # Apply pending migrations
//	relite status [--json]        # Show applied/pending migrations
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hlop3z/relite/internal/cli"
)

// version is set via ldflags during build: -ldflags="-X main.version=v1.0.0"
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprint(os.Stderr, cli.FormatError(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "relite",
		Short:         "SQLite schema and migration compiler",
		Long:          `relite compiles declarative table definitions and deltas into SQLite statements and applies them through a migration ledger.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
				cli.SetDefault(cli.NewConfigWithMode(cli.ModePlain))
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "relite.yaml", "Path to config file")
	flags.StringP("database-url", "d", "", "SQLite database location")
	flags.String("migrations-dir", "", "Directory holding definition.sql and migration files (default: ./migrations)")
	flags.String("definitions", "", "Definition document (default: ./relite.tables.yaml)")
	flags.String("schema", "", "Schema for tables that do not declare one")
	flags.String("ledger-table", "", "Ledger table name (default: _relite_migration)")
	flags.Bool("transactional", true, "Run each migration unit in one transaction")
	flags.Duration("timeout", 30*time.Second, "Timeout for database operations")
	flags.Bool("verbose", false, "Log every executed statement")
	flags.Bool("no-color", false, "Disable colored output")

	root.AddCommand(
		defineCmd(),
		diffCmd(),
		renderCmd(),
		migrateCmd(),
		statusCmd(),
	)
	return root
}
