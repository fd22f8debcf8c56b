package types

import (
	"context"
	"errors"
	"time"
)

// Store defines the interface for backend-agnostic bakery storage.
// Callers attach to a backend, run queries, and detach when done.
type Store interface {
	// Attach opens the backend described by config and applies any pending
	// migrations. Returns ErrAlreadyAttached if called while attached.
	Attach(ctx context.Context, config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, every operation returns ErrDetached.
	Detach() error

	// ListBakeries returns every bakery with its baked goods, ordered by id.
	ListBakeries(ctx context.Context) ([]*Bakery, error)

	// GetBakery returns the bakery with the given id.
	// Returns ErrNotFound if no bakery exists with that id.
	GetBakery(ctx context.Context, id int64) (*Bakery, error)

	// CreateBakery inserts a bakery and returns it with its generated id.
	CreateBakery(ctx context.Context, name string) (*Bakery, error)

	// RenameBakery sets the name of an existing bakery.
	// Returns ErrNotFound if the id is unknown, ErrInvalidName if name is empty.
	RenameBakery(ctx context.Context, id int64, name string) (*Bakery, error)

	// ListBakedGoodsByPrice returns every baked good ordered by price
	// descending, ties broken by id ascending.
	ListBakedGoodsByPrice(ctx context.Context) ([]*BakedGood, error)

	// MostExpensiveBakedGood returns the first baked good of the
	// ListBakedGoodsByPrice order. Returns ErrNotFound if there are none.
	MostExpensiveBakedGood(ctx context.Context) (*BakedGood, error)

	// CreateBakedGood inserts a baked good. The referenced bakery must exist;
	// otherwise ErrBakeryNotFound is returned and nothing is written.
	CreateBakedGood(ctx context.Context, good BakedGood) (*BakedGood, error)

	// DeleteBakedGood removes the baked good with the given id.
	// Returns ErrNotFound if no baked good exists with that id.
	DeleteBakedGood(ctx context.Context, id int64) error

	// AppliedMigrations lists the schema migrations recorded by the backend.
	AppliedMigrations(ctx context.Context) ([]MigrationRecord, error)
}

// MigrationRecord describes one applied schema migration.
type MigrationRecord struct {
	Version   string    `json:"version"`
	Name      string    `json:"name"`
	AppliedAt time.Time `json:"applied_at"`
}

// Store lifecycle errors.
var (
	ErrDetached        = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrAlreadySeeded   = errors.New("store already holds bakeries")
)

// Entity errors.
var (
	ErrNotFound       = errors.New("entity not found")
	ErrBakeryNotFound = errors.New("referenced bakery not found")
	ErrInvalidName    = errors.New("name must not be empty")
)
