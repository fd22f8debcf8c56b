package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/bakery/internal/seed"
	"github.com/mesh-intelligence/bakery/pkg/types"
)

func (a *app) newSeedCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert sample bakeries and baked goods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.attachStore(ctx)
			if err != nil {
				return err
			}
			defer store.Detach()

			res, err := seed.Run(ctx, store, force)
			if errors.Is(err, types.ErrAlreadySeeded) {
				return fmt.Errorf("%w (use --force to add the samples anyway)", err)
			}
			if err != nil {
				return sysError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d bakeries and %d baked goods\n", res.Bakeries, res.BakedGoods)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "seed even if the store already has bakeries")
	return cmd
}
