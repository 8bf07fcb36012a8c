package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlop3z/relite/internal/cli"
	"github.com/hlop3z/relite/internal/engine"
)

// statusCmd shows the ledger status of every migration.
func statusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show applied/pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := setup(cmd, false)
			if err != nil {
				return err
			}
			defer client.Close()

			statuses, err := client.Status(commandContext(cmd))
			if err != nil {
				return err
			}
			fingerprint, err := client.Fingerprint()
			if err != nil {
				return err
			}

			counts := make(map[engine.PlanStatus]int)
			for _, s := range statuses {
				counts[s.Status]++
			}

			out := cmd.OutOrStdout()

			// JSON output mode for CI/CD integration
			if jsonOutput {
				migrations := make([]map[string]any, len(statuses))
				for i, s := range statuses {
					migrations[i] = map[string]any{
						"stamp":  s.Stamp,
						"status": s.Status.String(),
					}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"applied":     counts[engine.StatusApplied],
					"pending":     counts[engine.StatusPending],
					"missing":     counts[engine.StatusMissing],
					"fingerprint": fingerprint,
					"migrations":  migrations,
				})
			}

			if len(statuses) == 0 {
				fmt.Fprintln(out, cli.Info("No migrations found."))
				return nil
			}

			fmt.Fprint(out, cli.StatusTable(statuses))
			fmt.Fprintln(out)
			fmt.Fprint(out, cli.StatusSummary(statuses))
			fmt.Fprintf(out, "%s %s\n", cli.Dim("fingerprint:"), fingerprint)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
