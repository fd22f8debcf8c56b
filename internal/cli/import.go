package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/bakery/internal/jsonl"
)

func (a *app) newImportCmd() *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load JSON Lines files written by export",
		Long: "Add the bakeries and baked goods in an export directory to the store.\n" +
			"Imported rows get new ids; malformed or orphaned records are skipped.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.attachStore(ctx)
			if err != nil {
				return err
			}
			defer store.Detach()

			counts, err := jsonl.Import(ctx, store, from)
			if err != nil {
				return sysError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d bakeries and %d baked goods (%d skipped)\n",
				counts.Bakeries, counts.BakedGoods, counts.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "export", "directory holding the export files")
	return cmd
}
