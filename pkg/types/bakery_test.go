package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByBakery(t *testing.T) {
	bakeries := []*Bakery{{ID: 1, Name: "Delightful donuts"}, {ID: 2, Name: "Incredible crullers"}}
	goods := []*BakedGood{
		{ID: 10, Name: "Chocolate dipped donut", BakeryID: 1},
		{ID: 11, Name: "Apple-spice filled donut", BakeryID: 1},
		{ID: 12, Name: "Orphan", BakeryID: 99},
	}

	GroupByBakery(bakeries, goods)

	require.Len(t, bakeries[0].BakedGoods, 2)
	assert.Equal(t, int64(10), bakeries[0].BakedGoods[0].ID)
	assert.Equal(t, int64(11), bakeries[0].BakedGoods[1].ID)
	assert.NotNil(t, bakeries[1].BakedGoods)
	assert.Empty(t, bakeries[1].BakedGoods)
}

func TestBakeryJSONShape(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	b := &Bakery{ID: 1, Name: "Delightful donuts", CreatedAt: created}
	GroupByBakery([]*Bakery{b}, []*BakedGood{{ID: 3, Name: "Cruller", Price: 4, BakeryID: 1, CreatedAt: created}})

	data, err := json.Marshal(b)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Delightful donuts", got["name"])
	assert.Nil(t, got["updated_at"])
	assert.Contains(t, got, "updated_at")

	goods, ok := got["baked_goods"].([]any)
	require.True(t, ok)
	require.Len(t, goods, 1)
	good := goods[0].(map[string]any)
	assert.NotContains(t, good, "bakery", "goods nested in a bakery carry no back-reference")
	assert.Equal(t, float64(1), good["bakery_id"])
}

func TestBakedGoodJSONEmbedsSummary(t *testing.T) {
	b := &Bakery{ID: 7, Name: "Incredible crullers", BakedGoods: []*BakedGood{{ID: 1}}}
	g := &BakedGood{ID: 2, Name: "Glazed cruller", Price: 3.5, BakeryID: 7, Bakery: b.Summary()}

	data, err := json.Marshal(g)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	summary, ok := got["bakery"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Incredible crullers", summary["name"])
	assert.NotContains(t, summary, "baked_goods")
	assert.Equal(t, 3.5, got["price"])
}
