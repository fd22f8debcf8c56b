package jsonl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/bakery/pkg/types"
)

// Export file names inside the output directory.
const (
	BakeriesFile   = "bakeries.jsonl"
	BakedGoodsFile = "baked_goods.jsonl"
)

// Counts reports how many records Export wrote or Import loaded per file.
type Counts struct {
	Bakeries   int
	BakedGoods int
	Skipped    int
}

// Export writes every bakery and baked good in store to dir, one file per
// table, creating dir if needed.
func Export(ctx context.Context, store types.Store, dir string) (Counts, error) {
	var counts Counts

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return counts, fmt.Errorf("creating export dir: %w", err)
	}

	bakeries, err := store.ListBakeries(ctx)
	if err != nil {
		return counts, fmt.Errorf("listing bakeries: %w", err)
	}

	// Bakeries are written as summaries; their goods go to a file of their own.
	rows := make([]*types.BakerySummary, 0, len(bakeries))
	var goods []*types.BakedGood
	for _, b := range bakeries {
		rows = append(rows, b.Summary())
		goods = append(goods, b.BakedGoods...)
	}

	records, err := Marshal(rows)
	if err != nil {
		return counts, fmt.Errorf("encoding bakeries: %w", err)
	}
	if err := Write(filepath.Join(dir, BakeriesFile), records); err != nil {
		return counts, fmt.Errorf("writing %s: %w", BakeriesFile, err)
	}
	counts.Bakeries = len(records)

	records, err = Marshal(goods)
	if err != nil {
		return counts, fmt.Errorf("encoding baked goods: %w", err)
	}
	if err := Write(filepath.Join(dir, BakedGoodsFile), records); err != nil {
		return counts, fmt.Errorf("writing %s: %w", BakedGoodsFile, err)
	}
	counts.BakedGoods = len(records)

	return counts, nil
}
