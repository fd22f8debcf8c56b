package jsonl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/mesh-intelligence/bakery/pkg/types"
)

// Import loads a directory written by Export into store. Bakeries receive
// fresh ids and their goods are re-pointed at them. Records that do not
// decode, have an empty name, or reference a bakery absent from the export
// are skipped and counted in Counts.Skipped. A missing baked goods file is
// treated as empty.
func Import(ctx context.Context, store types.Store, dir string) (Counts, error) {
	var counts Counts

	bakeries, err := Read(filepath.Join(dir, BakeriesFile))
	if err != nil {
		return counts, err
	}
	goods, err := Read(filepath.Join(dir, BakedGoodsFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return counts, err
	}

	ids := make(map[int64]int64, len(bakeries))
	for _, rec := range bakeries {
		var row types.BakerySummary
		if err := json.Unmarshal(rec, &row); err != nil || row.Name == "" {
			counts.Skipped++
			continue
		}
		created, err := store.CreateBakery(ctx, row.Name)
		if err != nil {
			return counts, fmt.Errorf("importing bakery %q: %w", row.Name, err)
		}
		ids[row.ID] = created.ID
		counts.Bakeries++
	}

	for _, rec := range goods {
		var row types.BakedGood
		if err := json.Unmarshal(rec, &row); err != nil || row.Name == "" {
			counts.Skipped++
			continue
		}
		bakeryID, ok := ids[row.BakeryID]
		if !ok {
			counts.Skipped++
			continue
		}
		_, err := store.CreateBakedGood(ctx, types.BakedGood{
			Name:     row.Name,
			Price:    row.Price,
			BakeryID: bakeryID,
		})
		if err != nil {
			return counts, fmt.Errorf("importing baked good %q: %w", row.Name, err)
		}
		counts.BakedGoods++
	}
	return counts, nil
}
