package types

import "time"

// Bakery is a named entity owning zero or more baked goods.
// Its JSON form embeds the goods, each without a bakery back-reference.
type Bakery struct {
	ID         int64        `json:"id"`
	Name       string       `json:"name"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  *time.Time   `json:"updated_at"`
	BakedGoods []*BakedGood `json:"baked_goods"`
}

// Summary returns the bakery without its goods, as embedded in a BakedGood.
func (b *Bakery) Summary() *BakerySummary {
	return &BakerySummary{
		ID:        b.ID,
		Name:      b.Name,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// BakerySummary is the bakery as it appears inside a serialized BakedGood.
type BakerySummary struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// BakedGood is a priced item belonging to exactly one bakery.
// Bakery is populated for top-level results and left nil when the good is
// listed inside its own bakery.
type BakedGood struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Price     float64        `json:"price"`
	BakeryID  int64          `json:"bakery_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt *time.Time     `json:"updated_at"`
	Bakery    *BakerySummary `json:"bakery,omitempty"`
}

// GroupByBakery attaches each good to its bakery's BakedGoods slice. Every
// bakery ends up with a non-nil slice so it serializes as [] rather than null.
// Goods whose bakery is not in bakeries are dropped.
func GroupByBakery(bakeries []*Bakery, goods []*BakedGood) {
	index := make(map[int64]*Bakery, len(bakeries))
	for _, b := range bakeries {
		if b.BakedGoods == nil {
			b.BakedGoods = []*BakedGood{}
		}
		index[b.ID] = b
	}
	for _, g := range goods {
		if b, ok := index[g.BakeryID]; ok {
			b.BakedGoods = append(b.BakedGoods, g)
		}
	}
}
