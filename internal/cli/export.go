package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/bakery/internal/jsonl"
)

func (a *app) newExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the store to JSON Lines files",
		Long: "Write " + jsonl.BakeriesFile + " and " + jsonl.BakedGoodsFile +
			" to the output directory, replacing any previous export.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.attachStore(ctx)
			if err != nil {
				return err
			}
			defer store.Detach()

			counts, err := jsonl.Export(ctx, store, out)
			if err != nil {
				return sysError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bakeries and %d baked goods to %s\n",
				counts.Bakeries, counts.BakedGoods, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "export", "output directory")
	return cmd
}
