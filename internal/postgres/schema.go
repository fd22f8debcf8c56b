package postgres

const (
	createBakeries = `CREATE TABLE bakeries (
    id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    name TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ
);`

	createBakedGoods = `CREATE TABLE baked_goods (
    id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    name TEXT NOT NULL,
    price DOUBLE PRECISION NOT NULL,
    bakery_id BIGINT NOT NULL REFERENCES bakeries(id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ
);`

	idxBakedGoodsBakery = `CREATE INDEX idx_baked_goods_bakery ON baked_goods(bakery_id);`
	idxBakedGoodsPrice  = `CREATE INDEX idx_baked_goods_price ON baked_goods(price);`
)

const createSchemaMigrations = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version VARCHAR(14) PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

// migrationLockID keys the advisory lock that serializes migration runs
// across processes sharing a database.
const migrationLockID int64 = 7_262_730_155

type migration struct {
	version    string
	name       string
	statements []string
}

// migrations mirrors the SQLite list version for version.
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
