package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amirhossein-jamali/graph-migrator/internal/domain/entity"
)

func newMigrateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [version]",
		Short: "Apply pending migrations",
		Long: `Migrate applies every pending migration in ascending version order. With a
version argument it stops after that version, inclusive. Each migration runs
in its own transaction and is recorded in the chain before the next starts.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := opts.buildEnvironment(ctx)
			if err != nil {
				return err
			}
			defer env.Close(ctx)

			targetVersion := ""
			if len(args) == 1 {
				targetVersion = args[0]
			}

			out := cmd.OutOrStdout()
			applied := 0
			err = env.migrator.Migrate(ctx, targetVersion, func(m entity.Migration) error {
				definition := m.Definition()
				fmt.Fprintf(out, "Applied %s (%s)\n", definition.Version, definition.Description)
				applied++
				return nil
			})
			if err != nil {
				return err
			}

			if applied == 0 {
				fmt.Fprintln(out, "Nothing to apply")
			} else {
				fmt.Fprintf(out, "Applied %d migrations\n", applied)
			}
			return nil
		},
	}
}
