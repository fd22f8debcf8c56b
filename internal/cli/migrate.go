package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long:  "Attach the store, which applies any pending migrations, and list the applied ones.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.attachStore(ctx)
			if err != nil {
				return err
			}
			defer store.Detach()

			records, err := store.AppliedMigrations(ctx)
			if err != nil {
				return sysError(fmt.Errorf("list migrations: %w", err))
			}
			out := cmd.OutOrStdout()
			for _, r := range records {
				fmt.Fprintf(out, "%s  %-20s  %s\n", r.Version, r.Name, r.AppliedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}
