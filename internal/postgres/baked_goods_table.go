package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mesh-intelligence/bakery/pkg/types"
)

const selectBakedGood = "SELECT id, name, price, bakery_id, created_at, updated_at FROM baked_goods"

const selectBakedGoodWithBakery = `SELECT g.id, g.name, g.price, g.bakery_id, g.created_at, g.updated_at,
       b.id, b.name, b.created_at, b.updated_at
FROM baked_goods g
JOIN bakeries b ON b.id = g.bakery_id`

const orderByPrice = " ORDER BY g.price DESC, g.id ASC"

func hydrateBakedGood(row pgx.Row) (*types.BakedGood, error) {
	var g types.BakedGood
	if err := row.Scan(&g.ID, &g.Name, &g.Price, &g.BakeryID, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}

func hydrateBakedGoodWithBakery(row pgx.Row) (*types.BakedGood, error) {
	var g types.BakedGood
	var s types.BakerySummary
	if err := row.Scan(
		&g.ID, &g.Name, &g.Price, &g.BakeryID, &g.CreatedAt, &g.UpdatedAt,
		&s.ID, &s.Name, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	g.Bakery = &s
	return &g, nil
}

func queryBakedGoods(ctx context.Context, q querier, query string, args ...any) ([]*types.BakedGood, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying baked goods: %w", err)
	}
	goods, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*types.BakedGood, error) {
		return hydrateBakedGood(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scanning baked goods: %w", err)
	}
	if goods == nil {
		goods = []*types.BakedGood{}
	}
	return goods, nil
}

// ListBakedGoodsByPrice returns every baked good, most expensive first.
func (b *Backend) ListBakedGoodsByPrice(ctx context.Context) ([]*types.BakedGood, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}

	rows, err := b.pool.Query(ctx, selectBakedGoodWithBakery+orderByPrice)
	if err != nil {
		return nil, fmt.Errorf("querying baked goods by price: %w", err)
	}
	goods, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*types.BakedGood, error) {
		return hydrateBakedGoodWithBakery(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scanning baked goods: %w", err)
	}
	if goods == nil {
		goods = []*types.BakedGood{}
	}
	return goods, nil
}

// MostExpensiveBakedGood returns the first row of the by-price order.
func (b *Backend) MostExpensiveBakedGood(ctx context.Context) (*types.BakedGood, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}

	g, err := hydrateBakedGoodWithBakery(b.pool.QueryRow(ctx, selectBakedGoodWithBakery+orderByPrice+" LIMIT 1"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting most expensive baked good: %w", err)
	}
	return g, nil
}

// CreateBakedGood checks the referenced bakery and inserts the good in one
// transaction. The bakery row is locked so a concurrent delete cannot slip
// between the check and the insert.
func (b *Backend) CreateBakedGood(ctx context.Context, good types.BakedGood) (*types.BakedGood, error) {
	if good.Name == "" {
		return nil, types.ErrInvalidName
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}

	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	bakery, err := hydrateBakery(tx.QueryRow(ctx, selectBakery+" WHERE id = $1 FOR SHARE", good.BakeryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrBakeryNotFound
		}
		return nil, fmt.Errorf("checking bakery %d: %w", good.BakeryID, err)
	}

	created, err := hydrateBakedGood(tx.QueryRow(ctx,
		`INSERT INTO baked_goods (name, price, bakery_id) VALUES ($1, $2, $3)
RETURNING id, name, price, bakery_id, created_at, updated_at`,
		good.Name, good.Price, good.BakeryID))
	if err != nil {
		return nil, fmt.Errorf("inserting baked good: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing baked good: %w", err)
	}

	created.Bakery = bakery.Summary()
	return created, nil
}

// DeleteBakedGood removes a baked good by id.
func (b *Backend) DeleteBakedGood(ctx context.Context, id int64) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.ErrDetached
	}

	tag, err := b.pool.Exec(ctx, "DELETE FROM baked_goods WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting baked good %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}
