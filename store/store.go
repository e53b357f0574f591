package store

import (
	"context"

	"github.com/hrygo/tutormind/internal/profile"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func (s *Store) CreateFact(ctx context.Context, create *Fact) (*Fact, error) {
	return s.driver.CreateFact(ctx, create)
}

func (s *Store) ListFacts(ctx context.Context, find *FindFact) ([]*Fact, error) {
	return s.driver.ListFacts(ctx, find)
}

func (s *Store) CountFacts(ctx context.Context, find *FindFact) (int, error) {
	return s.driver.CountFacts(ctx, find)
}

func (s *Store) UpdateFact(ctx context.Context, update *UpdateFact) (*Fact, error) {
	return s.driver.UpdateFact(ctx, update)
}

func (s *Store) DeleteFact(ctx context.Context, delete *DeleteFact) error {
	return s.driver.DeleteFact(ctx, delete)
}

func (s *Store) UpsertSourceItem(ctx context.Context, upsert *UpsertSourceItem) (*SourceItem, error) {
	return s.driver.UpsertSourceItem(ctx, upsert)
}

func (s *Store) ListSourceItems(ctx context.Context, find *FindSourceItem) ([]*SourceItem, error) {
	return s.driver.ListSourceItems(ctx, find)
}

func (s *Store) SearchSourceItems(ctx context.Context, search *SearchSourceItems) ([]*SourceItem, error) {
	return s.driver.SearchSourceItems(ctx, search)
}

func (s *Store) DeleteSourceItem(ctx context.Context, id string) error {
	return s.driver.DeleteSourceItem(ctx, id)
}
