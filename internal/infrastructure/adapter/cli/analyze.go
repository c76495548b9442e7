package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAnalyzeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Compare local migrations with the applied chain",
		Long: `Analyze reconciles the local migration directory with the chain recorded
in the store. It lists pending migrations and flags applied versions that
drifted or are missing locally. The exit code is non-zero when any applied
version is invalid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := opts.buildEnvironment(ctx)
			if err != nil {
				return err
			}
			defer env.Close(ctx)

			result, err := env.migrator.Analyze(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.LatestApplied != nil {
				fmt.Fprintf(out, "Latest applied version: %s\n", result.LatestApplied)
			} else {
				fmt.Fprintln(out, "No migrations applied yet")
			}

			for _, invalid := range result.InvalidVersions {
				fmt.Fprintf(out, "invalid: %s (%s)\n", invalid.Version, invalid.Status)
			}
			for _, pending := range result.PendingMigrations {
				definition := pending.Definition()
				fmt.Fprintf(out, "pending: %s (%s)\n", definition.Version, definition.Description)
			}

			if len(result.InvalidVersions) > 0 {
				return fmt.Errorf("analysis found %d invalid applied versions", len(result.InvalidVersions))
			}
			if len(result.PendingMigrations) == 0 {
				fmt.Fprintln(out, "Everything is up to date")
			}
			return nil
		},
	}
}
