package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/bakery/pkg/types"
)

const selectBakery = "SELECT id, name, created_at, updated_at FROM bakeries"

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func hydrateBakery(row scanner) (*types.Bakery, error) {
	var b types.Bakery
	var createdAt string
	var updatedAt sql.NullString
	if err := row.Scan(&b.ID, &b.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing bakery created_at: %w", err)
	}
	b.UpdatedAt, err = parseNullTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing bakery updated_at: %w", err)
	}
	return &b, nil
}

// selectBakeriesWithGoods lists every bakery joined to its goods, so the
// whole listing comes from one statement and one snapshot.
const selectBakeriesWithGoods = `SELECT b.id, b.name, b.created_at, b.updated_at,
       g.id, g.name, g.price, g.created_at, g.updated_at
FROM bakeries b
LEFT JOIN baked_goods g ON g.bakery_id = b.id
ORDER BY b.id ASC, g.id ASC`

// hydrateBakeryRow scans one selectBakeriesWithGoods row. The good is nil
// for a bakery without goods.
func hydrateBakeryRow(row scanner) (*types.Bakery, *types.BakedGood, error) {
	var (
		goodID                       sql.NullInt64
		goodName                     sql.NullString
		goodPrice                    sql.NullFloat64
		goodCreatedAt, goodUpdatedAt sql.NullString
	)
	bakery, err := hydrateBakery(rowWithExtra{row, []any{&goodID, &goodName, &goodPrice, &goodCreatedAt, &goodUpdatedAt}})
	if err != nil || !goodID.Valid {
		return bakery, nil, err
	}

	g := &types.BakedGood{
		ID:       goodID.Int64,
		Name:     goodName.String,
		Price:    goodPrice.Float64,
		BakeryID: bakery.ID,
	}
	g.CreatedAt, err = parseTime(goodCreatedAt.String)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing baked good created_at: %w", err)
	}
	g.UpdatedAt, err = parseNullTime(goodUpdatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing baked good updated_at: %w", err)
	}
	return bakery, g, nil
}

// rowWithExtra appends destinations to every Scan call, letting
// hydrateBakery read a row that carries more columns than a bakery.
type rowWithExtra struct {
	scanner
	extra []any
}

func (r rowWithExtra) Scan(dest ...any) error {
	return r.scanner.Scan(append(dest, r.extra...)...)
}

// ListBakeries returns every bakery ordered by id, each with its goods.
func (b *Backend) ListBakeries(ctx context.Context) ([]*types.Bakery, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}

	rows, err := b.db.QueryContext(ctx, selectBakeriesWithGoods)
	if err != nil {
		return nil, fmt.Errorf("querying bakeries: %w", err)
	}
	defer rows.Close()

	bakeries := []*types.Bakery{}
	var goods []*types.BakedGood
	for rows.Next() {
		bakery, good, err := hydrateBakeryRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning bakery: %w", err)
		}
		if n := len(bakeries); n == 0 || bakeries[n-1].ID != bakery.ID {
			bakeries = append(bakeries, bakery)
		}
		if good != nil {
			goods = append(goods, good)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	types.GroupByBakery(bakeries, goods)
	return bakeries, nil
}

// GetBakery returns the bakery with the given id and its goods.
func (b *Backend) GetBakery(ctx context.Context, id int64) (*types.Bakery, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}
	return getBakery(ctx, b.db, id)
}

func getBakery(ctx context.Context, q querier, id int64) (*types.Bakery, error) {
	bakery, err := hydrateBakery(q.QueryRowContext(ctx, selectBakery+" WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting bakery %d: %w", id, err)
	}

	goods, err := queryBakedGoods(ctx, q, selectBakedGood+" WHERE bakery_id = ? ORDER BY id ASC", id)
	if err != nil {
		return nil, err
	}
	types.GroupByBakery([]*types.Bakery{bakery}, goods)
	return bakery, nil
}

// CreateBakery inserts a bakery with no goods.
func (b *Backend) CreateBakery(ctx context.Context, name string) (*types.Bakery, error) {
	if name == "" {
		return nil, types.ErrInvalidName
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}

	now := time.Now().UTC()
	res, err := b.db.ExecContext(ctx,
		"INSERT INTO bakeries (name, created_at) VALUES (?, ?)",
		name, formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting bakery: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading bakery id: %w", err)
	}

	return &types.Bakery{
		ID:         id,
		Name:       name,
		CreatedAt:  now,
		BakedGoods: []*types.BakedGood{},
	}, nil
}

// RenameBakery updates the name and updated_at of an existing bakery and
// returns the stored record.
func (b *Backend) RenameBakery(ctx context.Context, id int64, name string) (*types.Bakery, error) {
	if name == "" {
		return nil, types.ErrInvalidName
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE bakeries SET name = ?, updated_at = ? WHERE id = ?",
		name, formatTime(time.Now()), id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating bakery %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return nil, types.ErrNotFound
	}

	bakery, err := getBakery(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing bakery update: %w", err)
	}
	return bakery, nil
}
