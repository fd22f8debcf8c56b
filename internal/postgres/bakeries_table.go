package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mesh-intelligence/bakery/pkg/types"
)

const selectBakery = "SELECT id, name, created_at, updated_at FROM bakeries"

func hydrateBakery(row pgx.Row) (*types.Bakery, error) {
	var b types.Bakery
	if err := row.Scan(&b.ID, &b.Name, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBakeries returns every bakery ordered by id, each with its goods.
func (b *Backend) ListBakeries(ctx context.Context) ([]*types.Bakery, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}

	// Both reads share one snapshot so no committed good is dropped
	// between them.
	tx, err := b.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, selectBakery+" ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("querying bakeries: %w", err)
	}
	bakeries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*types.Bakery, error) {
		return hydrateBakery(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scanning bakeries: %w", err)
	}
	if bakeries == nil {
		bakeries = []*types.Bakery{}
	}

	goods, err := queryBakedGoods(ctx, tx, selectBakedGood+" ORDER BY bakery_id ASC, id ASC")
	if err != nil {
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
	return getBakery(ctx, b.pool, id)
}

func getBakery(ctx context.Context, q querier, id int64) (*types.Bakery, error) {
	bakery, err := hydrateBakery(q.QueryRow(ctx, selectBakery+" WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting bakery %d: %w", id, err)
	}

	goods, err := queryBakedGoods(ctx, q, selectBakedGood+" WHERE bakery_id = $1 ORDER BY id ASC", id)
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

	bakery, err := hydrateBakery(b.pool.QueryRow(ctx,
		"INSERT INTO bakeries (name) VALUES ($1) RETURNING id, name, created_at, updated_at", name))
	if err != nil {
		return nil, fmt.Errorf("inserting bakery: %w", err)
	}
	bakery.BakedGoods = []*types.BakedGood{}
	return bakery, nil
}

// RenameBakery updates the name and updated_at of an existing bakery.
func (b *Backend) RenameBakery(ctx context.Context, id int64, name string) (*types.Bakery, error) {
	if name == "" {
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

	tag, err := tx.Exec(ctx, "UPDATE bakeries SET name = $1, updated_at = NOW() WHERE id = $2", name, id)
	if err != nil {
		return nil, fmt.Errorf("updating bakery %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, types.ErrNotFound
	}

	bakery, err := getBakery(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing bakery update: %w", err)
	}
	return bakery, nil
}
