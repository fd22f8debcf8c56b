package bakery

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/bakery/internal/postgres"
	"github.com/mesh-intelligence/bakery/internal/sqlite"
	"github.com/mesh-intelligence/bakery/pkg/types"
)

// Open creates the backend named by cfg.Backend and attaches it, which
// applies pending migrations. The caller must Detach the returned store.
//
// Example:
//
//	store, err := bakery.Open(ctx, types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".bakery-db",
//	})
//	if err != nil {
//	    return err
//	}
//	defer store.Detach()
func Open(ctx context.Context, cfg types.Config) (types.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var store types.Store
	switch cfg.Backend {
	case types.BackendPostgres:
		store = postgres.NewBackend()
	default:
		store = sqlite.NewBackend()
	}
	if err := store.Attach(ctx, cfg); err != nil {
		return nil, fmt.Errorf("attach %s store: %w", cfg.Backend, err)
	}
	return store, nil
}
