package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlop3z/relite/internal/cli"
)

// migrateCmd applies pending migrations.
func migrateCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations",
		Long: `Apply the migrations directory to the database.

On an empty ledger every stamp is recorded and definition.sql runs in their
place. Otherwise each unrecorded stamp is recorded and its file runs, in
stamp order, each in its own transaction unless --transactional=false.`,
		Example: `  # Apply pending migrations
  relite migrate -d ./app.db

  # Show what would run
  relite migrate --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := setup(cmd, false)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx := commandContext(cmd)
			out := cmd.OutOrStdout()

			if dryRun {
				stamps, cold, err := client.Pending(ctx)
				if err != nil {
					return err
				}
				if !cold && len(stamps) == 0 {
					fmt.Fprintln(out, cli.Info("Database is up to date."))
					return nil
				}
				fmt.Fprint(out, cli.PlanSteps(stamps, cold))
				return nil
			}

			ran, err := client.Migrate(ctx)
			if err != nil {
				return err
			}
			if !ran {
				fmt.Fprintln(out, cli.Info("Database is up to date."))
				return nil
			}
			fmt.Fprint(out, cli.FormatSuccess("migrations applied"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would run without executing")
	return cmd
}
