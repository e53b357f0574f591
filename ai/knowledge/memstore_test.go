package knowledge

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/hrygo/tutormind/store"
)

// memStore is an in-memory FactStore used across the package tests.
// It mirrors the SQL drivers' filter semantics closely enough for the
// service-level behavior under test.
type memStore struct {
	mu    sync.Mutex
	facts []*store.Fact
}

func newMemStore() *memStore {
	return &memStore{}
}

func (m *memStore) CreateFact(_ context.Context, create *store.Fact) (*store.Fact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *create
	m.facts = append(m.facts, &clone)
	result := clone
	return &result, nil
}

func (m *memStore) ListFacts(_ context.Context, find *store.FindFact) ([]*store.Fact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := []*store.Fact{}
	for _, fact := range m.facts {
		if factMatches(fact, find) {
			clone := *fact
			matched = append(matched, &clone)
		}
	}

	orderBy := find.OrderBy
	if orderBy == "" {
		orderBy = "created_at"
	}
	sort.SliceStable(matched, func(i, j int) bool {
		var less bool
		switch orderBy {
		case "updated_at":
			less = matched[i].UpdatedTs < matched[j].UpdatedTs
		case "confidence":
			less = deref(matched[i].Confidence) < deref(matched[j].Confidence)
		default:
			less = matched[i].CreatedTs < matched[j].CreatedTs
		}
		if find.OrderDesc {
			return !less && !equalByKey(matched[i], matched[j], orderBy)
		}
		return less
	})

	if find.Offset != nil {
		if *find.Offset >= len(matched) {
			matched = []*store.Fact{}
		} else {
			matched = matched[*find.Offset:]
		}
	}
	if find.Limit != nil && len(matched) > *find.Limit {
		matched = matched[:*find.Limit]
	}
	return matched, nil
}

func (m *memStore) CountFacts(ctx context.Context, find *store.FindFact) (int, error) {
	stripped := *find
	stripped.Limit = nil
	stripped.Offset = nil
	facts, err := m.ListFacts(ctx, &stripped)
	if err != nil {
		return 0, err
	}
	return len(facts), nil
}

func (m *memStore) UpdateFact(_ context.Context, update *store.UpdateFact) (*store.Fact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, fact := range m.facts {
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

func (m *memStore) DeleteFact(_ context.Context, delete *store.DeleteFact) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.facts[:0]
	removed := 0
	for _, fact := range m.facts {
		drop := true
		if delete.ID != nil && fact.ID != *delete.ID {
			drop = false
		}
		if delete.UserID != nil && fact.UserID != *delete.UserID {
			drop = false
		}
		if drop {
			removed++
		} else {
			kept = append(kept, fact)
		}
	}
	m.facts = kept
	if removed == 0 && delete.ID != nil {
		return store.ErrNotFound
	}
	return nil
}

func factMatches(fact *store.Fact, find *store.FindFact) bool {
	if find.ID != nil && fact.ID != *find.ID {
		return false
	}
	if find.UserID != nil && fact.UserID != *find.UserID {
		return false
	}
	if find.ChatID != nil && (fact.ChatID == nil || *fact.ChatID != *find.ChatID) {
		return false
	}
	if len(find.FactTypes) > 0 && !containsType(find.FactTypes, fact.FactType) {
		return false
	}
	if len(find.Subjects) > 0 {
		if fact.Subject == nil || !containsString(find.Subjects, *fact.Subject) {
			return false
		}
	}
	if find.Active != nil && fact.Active != *find.Active {
		return false
	}
	if find.MinConfidence != nil && deref(fact.Confidence) < *find.MinConfidence {
		return false
	}
	if find.CreatedAfter != nil && fact.CreatedTs < *find.CreatedAfter {
		return false
	}
	if find.CreatedBefore != nil && fact.CreatedTs > *find.CreatedBefore {
		return false
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
	if len(find.Tags) > 0 {
		have := make(map[string]bool, len(fact.Tags))
		for _, tag := range fact.Tags {
			have[tag] = true
		}
		if find.MatchAllTags {
			for _, tag := range find.Tags {
				if !have[tag] {
					return false
				}
			}
		} else {
			any := false
			for _, tag := range find.Tags {
				if have[tag] {
					any = true
					break
				}
			}
			if !any {
				return false
			}
		}
	}
	return true
}

func containsType(types []store.FactType, t store.FactType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

func containsString(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func equalByKey(a, b *store.Fact, orderBy string) bool {
	switch orderBy {
	case "updated_at":
		return a.UpdatedTs == b.UpdatedTs
	case "confidence":
		return deref(a.Confidence) == deref(b.Confidence)
	default:
		return a.CreatedTs == b.CreatedTs
	}
}
