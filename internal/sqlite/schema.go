package sqlite

// Schema DDL for the bakery tables.
const (
	createBakeries = `CREATE TABLE bakeries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT
);`

	createBakedGoods = `CREATE TABLE baked_goods (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    price REAL NOT NULL,
    bakery_id INTEGER NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT,
    FOREIGN KEY (bakery_id) REFERENCES bakeries(id) ON DELETE CASCADE
);`

	idxBakedGoodsBakery = `CREATE INDEX idx_baked_goods_bakery ON baked_goods(bakery_id);`
	idxBakedGoodsPrice  = `CREATE INDEX idx_baked_goods_price ON baked_goods(price);`
)

// createSchemaMigrations records which migrations have been applied.
const createSchemaMigrations = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at TEXT NOT NULL
);`

// migration is one forward-only schema change.
type migration struct {
	version    string
	name       string
	statements []string
}

// migrations lists every schema change in the order it must be applied.
// Append new entries; never edit or reorder applied ones.
var migrations = []migration{
	{
		version:    "0001",
		name:       "create_bakeries",
		statements: []string{createBakeries},
	},
	{
		version:    "0002",
		name:       "create_baked_goods",
		statements: []string{createBakedGoods, idxBakedGoodsBakery, idxBakedGoodsPrice},
	},
}
