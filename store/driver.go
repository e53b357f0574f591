package store

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when a requested row does not exist.
// Callers must surface it explicitly rather than swallowing it.
var ErrNotFound = errors.New("not found")

// Driver is an interface for database drivers.
type Driver interface {
	GetDB() any
	Close() error
	Migrate(ctx context.Context) error

	// Fact model related methods.
	CreateFact(ctx context.Context, create *Fact) (*Fact, error)
	ListFacts(ctx context.Context, find *FindFact) ([]*Fact, error)
	CountFacts(ctx context.Context, find *FindFact) (int, error)
	UpdateFact(ctx context.Context, update *UpdateFact) (*Fact, error)
	DeleteFact(ctx context.Context, delete *DeleteFact) error

	// SourceItem model related methods.
	UpsertSourceItem(ctx context.Context, upsert *UpsertSourceItem) (*SourceItem, error)
	ListSourceItems(ctx context.Context, find *FindSourceItem) ([]*SourceItem, error)
	SearchSourceItems(ctx context.Context, search *SearchSourceItems) ([]*SourceItem, error)
	DeleteSourceItem(ctx context.Context, id string) error
}
