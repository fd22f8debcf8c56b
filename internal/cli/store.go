package cli

import (
	"context"

	"github.com/mesh-intelligence/bakery/pkg/bakery"
	"github.com/mesh-intelligence/bakery/pkg/types"
)

// attachStore opens the store described by the loaded configuration. The
// caller must Detach it.
func (a *app) attachStore(ctx context.Context) (types.Store, error) {
	cfg, err := a.storeConfig()
	if err != nil {
		return nil, err
	}
	store, err := bakery.Open(ctx, cfg)
	if err != nil {
		return nil, sysError(err)
	}
	return store, nil
}
