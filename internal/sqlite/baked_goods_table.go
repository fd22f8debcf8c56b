package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/bakery/pkg/types"
)

const selectBakedGood = "SELECT id, name, price, bakery_id, created_at, updated_at FROM baked_goods"

// selectBakedGoodWithBakery joins the owning bakery so top-level results
// carry a bakery summary.
const selectBakedGoodWithBakery = `SELECT g.id, g.name, g.price, g.bakery_id, g.created_at, g.updated_at,
       b.id, b.name, b.created_at, b.updated_at
FROM baked_goods g
JOIN bakeries b ON b.id = g.bakery_id`

const orderByPrice = " ORDER BY g.price DESC, g.id ASC"

func hydrateBakedGood(row scanner, extra ...any) (*types.BakedGood, error) {
	var g types.BakedGood
	var createdAt string
	var updatedAt sql.NullString
	dest := append([]any{&g.ID, &g.Name, &g.Price, &g.BakeryID, &createdAt, &updatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	var err error
	g.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing baked good created_at: %w", err)
	}
	g.UpdatedAt, err = parseNullTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing baked good updated_at: %w", err)
	}
	return &g, nil
}

// hydrateBakedGoodWithBakery scans a selectBakedGoodWithBakery row.
func hydrateBakedGoodWithBakery(row scanner) (*types.BakedGood, error) {
	var s types.BakerySummary
	var createdAt string
	var updatedAt sql.NullString
	g, err := hydrateBakedGood(row, &s.ID, &s.Name, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	s.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing bakery created_at: %w", err)
	}
	s.UpdatedAt, err = parseNullTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing bakery updated_at: %w", err)
	}
	g.Bakery = &s
	return g, nil
}

func queryBakedGoods(ctx context.Context, q querier, query string, args ...any) ([]*types.BakedGood, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying baked goods: %w", err)
	}
	defer rows.Close()

	goods := []*types.BakedGood{}
	for rows.Next() {
		g, err := hydrateBakedGood(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning baked good: %w", err)
		}
		goods = append(goods, g)
	}
	return goods, rows.Err()
}

// ListBakedGoodsByPrice returns every baked good, most expensive first.
func (b *Backend) ListBakedGoodsByPrice(ctx context.Context) ([]*types.BakedGood, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}

	rows, err := b.db.QueryContext(ctx, selectBakedGoodWithBakery+orderByPrice)
	if err != nil {
		return nil, fmt.Errorf("querying baked goods by price: %w", err)
	}
	defer rows.Close()

	goods := []*types.BakedGood{}
	for rows.Next() {
		g, err := hydrateBakedGoodWithBakery(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning baked good: %w", err)
		}
		goods = append(goods, g)
	}
	return goods, rows.Err()
}

// MostExpensiveBakedGood returns the first row of the by-price order.
func (b *Backend) MostExpensiveBakedGood(ctx context.Context) (*types.BakedGood, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}

	g, err := hydrateBakedGoodWithBakery(
		b.db.QueryRowContext(ctx, selectBakedGoodWithBakery+orderByPrice+" LIMIT 1"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting most expensive baked good: %w", err)
	}
	return g, nil
}

// CreateBakedGood checks the referenced bakery and inserts the good in one
// transaction. The returned good carries the bakery summary.
func (b *Backend) CreateBakedGood(ctx context.Context, good types.BakedGood) (*types.BakedGood, error) {
	if good.Name == "" {
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

	bakery, err := hydrateBakery(tx.QueryRowContext(ctx, selectBakery+" WHERE id = ?", good.BakeryID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrBakeryNotFound
		}
		return nil, fmt.Errorf("checking bakery %d: %w", good.BakeryID, err)
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		"INSERT INTO baked_goods (name, price, bakery_id, created_at) VALUES (?, ?, ?, ?)",
		good.Name, good.Price, good.BakeryID, formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting baked good: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading baked good id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing baked good: %w", err)
	}

	return &types.BakedGood{
		ID:        id,
		Name:      good.Name,
		Price:     good.Price,
		BakeryID:  good.BakeryID,
		CreatedAt: now,
		Bakery:    bakery.Summary(),
	}, nil
}

// DeleteBakedGood removes a baked good by id.
func (b *Backend) DeleteBakedGood(ctx context.Context, id int64) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.ErrDetached
	}

	res, err := b.db.ExecContext(ctx, "DELETE FROM baked_goods WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting baked good %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}
