package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlop3z/relite/internal/cli"
)

// defineCmd creates the tables of a definition document.
func defineCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "define [file]",
		Short: "Create the document's tables in the database",
		Long: `Create every table of a definition document, with its unique and plain
indexes, in one unit of work. Existing tables are left untouched.`,
		Example: `  # Create the tables of the configured document
  relite define -d ./app.db

  # Print the statements instead of running them
  relite define tables.yaml --dry-run`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, err := setup(cmd, dryRun)
			if err != nil {
				return err
			}
			defer client.Close()

			doc, err := loadDocument(documentPath(cfg, args))
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)
			out := cmd.OutOrStdout()
			if dryRun {
				stmts, err := client.CompileAll(ctx, doc.Tables...)
				if err != nil {
					return err
				}
				printStatements(out, stmts)
				return nil
			}

			if err := client.Define(ctx, doc.Tables...); err != nil {
				return err
			}
			fmt.Fprint(out, cli.FormatSuccess("defined "+cli.FormatCount(len(doc.Tables), "table", "tables")))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print statements without executing them")
	return cmd
}
