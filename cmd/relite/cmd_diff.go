package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hlop3z/relite/internal/cli"
)

// diffCmd compiles the changes of a definition document.
func diffCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "diff [file]",
		Short: "Show migration SQL for the document's changes",
		Long: `Compile the changes section of a definition document into SQLite
statements. With --write the statements become a new migration file and
definition.sql is re-rendered from the changed tables.`,
		Example: `  # Show the statements
  relite diff tables.yaml

  # Write migration-<stamp>.sql and refresh definition.sql
  relite diff tables.yaml --write`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, err := setup(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			doc, err := loadDocument(documentPath(cfg, args))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			changed := doc.ChangedTables()
			if len(changed) == 0 {
				fmt.Fprintln(out, cli.Info("No changes."))
				return nil
			}

			if write {
				stamp, err := client.WriteRevision(commandContext(cmd), doc, time.Now())
				if err != nil {
					return err
				}
				fmt.Fprint(out, cli.FormatSuccess("wrote migration "+stamp))
				return nil
			}

			for _, t := range changed {
				stmts, err := client.Diff(t, doc.Delta(t))
				if err != nil {
					return err
				}
				fmt.Fprintln(out, cli.Dim("-- "+t.Table()))
				printStatements(out, stmts)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "Write a migration file and refresh definition.sql")
	return cmd
}
