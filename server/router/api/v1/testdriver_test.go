package v1

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/hrygo/tutormind/store"
)

// testDriver is an in-memory store.Driver for handler tests.
type testDriver struct {
	mu    sync.Mutex
	facts []*store.Fact
	items map[string]*store.SourceItem
}

func newTestDriver() *testDriver {
	return &testDriver{items: map[string]*store.SourceItem{}}
}

func (*testDriver) GetDB() any                    { return nil }
func (*testDriver) Close() error                  { return nil }
func (*testDriver) Migrate(context.Context) error { return nil }

func (d *testDriver) CreateFact(_ context.Context, create *store.Fact) (*store.Fact, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	clone := *create
	d.facts = append(d.facts, &clone)
	result := clone
	return &result, nil
}

func (d *testDriver) ListFacts(_ context.Context, find *store.FindFact) ([]*store.Fact, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := []*store.Fact{}
	for _, fact := range d.facts {
		if matches(fact, find) {
			clone := *fact
			out = append(out, &clone)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedTs < out[j].CreatedTs })
	if find.OrderDesc {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	if find.Offset != nil {
		if *find.Offset >= len(out) {
			out = []*store.Fact{}
		} else {
			out = out[*find.Offset:]
		}
	}
	if find.Limit != nil && len(out) > *find.Limit {
		out = out[:*find.Limit]
	}
	return out, nil
}

func (d *testDriver) CountFacts(ctx context.Context, find *store.FindFact) (int, error) {
	stripped := *find
	stripped.Limit = nil
	stripped.Offset = nil
	facts, err := d.ListFacts(ctx, &stripped)
	return len(facts), err
}

func (d *testDriver) UpdateFact(_ context.Context, update *store.UpdateFact) (*store.Fact, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, fact := range d.facts {
		if fact.ID != update.ID {
			continue
		}
		if update.Subject != nil {
			fact.Subject = update.Subject
		}
		if update.Details != nil {
			fact.Details = *update.Details
		}
		if update.Confidence != nil {
			fact.Confidence = update.Confidence
		}
		if update.Active != nil {
			fact.Active = *update.Active
		}
		if update.Tags != nil {
			fact.Tags = *update.Tags
		}
		if update.UpdatedTs != nil {
			fact.UpdatedTs = *update.UpdatedTs
		}
		clone := *fact
		return &clone, nil
	}
	return nil, store.ErrNotFound
}

func (d *testDriver) DeleteFact(_ context.Context, delete *store.DeleteFact) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.facts[:0]
	removed := 0
	for _, fact := range d.facts {
		if delete.ID != nil && fact.ID == *delete.ID {
			removed++
			continue
		}
		kept = append(kept, fact)
	}
	d.facts = kept
	if removed == 0 && delete.ID != nil {
		return store.ErrNotFound
	}
	return nil
}

func (d *testDriver) UpsertSourceItem(_ context.Context, upsert *store.UpsertSourceItem) (*store.SourceItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	item := &store.SourceItem{ID: upsert.ID, Content: upsert.Content}
	d.items[upsert.ID] = item
	return item, nil
}

func (d *testDriver) ListSourceItems(_ context.Context, _ *store.FindSourceItem) ([]*store.SourceItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := []*store.SourceItem{}
	for _, item := range d.items {
		out = append(out, item)
	}
	return out, nil
}

func (d *testDriver) SearchSourceItems(_ context.Context, search *store.SearchSourceItems) ([]*store.SourceItem, error) {
	return d.ListSourceItems(context.Background(), nil)
}

func (d *testDriver) DeleteSourceItem(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.items, id)
	return nil
}

func matches(fact *store.Fact, find *store.FindFact) bool {
	if find.ID != nil && fact.ID != *find.ID {
		return false
	}
	if find.UserID != nil && fact.UserID != *find.UserID {
		return false
	}
	if find.Active != nil && fact.Active != *find.Active {
		return false
	}
	if len(find.FactTypes) > 0 {
		found := false
		for _, t := range find.FactTypes {
			if t == fact.FactType {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if find.Query != nil {
		haystack := strings.ToLower(fact.Details)
		if fact.Subject != nil {
			haystack += " " + strings.ToLower(*fact.Subject)
		}
		for _, term := range strings.Fields(strings.ToLower(*find.Query)) {
			if !strings.Contains(haystack, term) {
				return false
			}
		}
	}
	return true
}
