package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amirhossein-jamali/graph-migrator/internal/domain/entity"
)

func newRollbackCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rollback [version]",
		Short: "Revert applied migrations",
		Long: `Rollback reverts the most recently applied migration. With a version
argument it reverts every migration applied strictly after that version,
newest first. Only migrations with a backward body can be reverted.`,
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
			reverted := 0
			err = env.migrator.Rollback(ctx, targetVersion, func(m entity.Migration) error {
				definition := m.Definition()
				fmt.Fprintf(out, "Rolled back %s (%s)\n", definition.Version, definition.Description)
				reverted++
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Rolled back %d migrations\n", reverted)
			return nil
		},
	}
}
