// Package seed fills an empty store with sample bakeries and baked goods.
package seed

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/bakery/pkg/types"
)

// sampleBakery describes a bakery to seed and the goods it sells.
type sampleBakery struct {
	name  string
	goods []sampleGood
}

type sampleGood struct {
	name  string
	price float64
}

// samples is the data written by Run.
var samples = []sampleBakery{
	{
		name: "Delightful donuts",
		goods: []sampleGood{
			{"Chocolate dipped donut", 4},
			{"Apple-spice filled donut", 5},
			{"Glazed honey cruller", 3},
		},
	},
	{
		name: "Incredible crullers",
		goods: []sampleGood{
			{"Plain cruller", 2},
			{"Maple cruller", 3},
		},
	},
	{
		name: "Brioche & Co.",
		goods: []sampleGood{
			{"Croissant", 3},
			{"Pain au chocolat", 4},
			{"Brioche loaf", 9},
			{"Celebration cake", 45},
		},
	},
}

// Result counts the rows Run inserted.
type Result struct {
	Bakeries   int
	BakedGoods int
}

// Run inserts the sample data through store. It refuses with
// ErrAlreadySeeded when the store already holds bakeries, unless force is
// set, in which case the samples are added alongside the existing rows.
func Run(ctx context.Context, store types.Store, force bool) (Result, error) {
	var res Result

	existing, err := store.ListBakeries(ctx)
	if err != nil {
		return res, fmt.Errorf("listing bakeries: %w", err)
	}
	if len(existing) > 0 && !force {
		return res, types.ErrAlreadySeeded
	}

	for _, sb := range samples {
		bakery, err := store.CreateBakery(ctx, sb.name)
		if err != nil {
			return res, fmt.Errorf("seeding bakery %s: %w", sb.name, err)
		}
		res.Bakeries++

		for _, sg := range sb.goods {
			_, err := store.CreateBakedGood(ctx, types.BakedGood{
				Name:     sg.name,
				Price:    sg.price,
				BakeryID: bakery.ID,
			})
			if err != nil {
				return res, fmt.Errorf("seeding baked good %s for %s: %w", sg.name, sb.name, err)
			}
			res.BakedGoods++
		}
	}
	return res, nil
}
