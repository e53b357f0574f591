package knowledge

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/hrygo/tutormind/store"
)

// SetTags replaces a fact's tag set. Duplicates in the input collapse;
// first occurrence wins the position.
func (s *Service) SetTags(ctx context.Context, factID string, tags []string) (*store.Fact, error) {
	if factID == "" {
		return nil, errors.New("fact id is required for tagging")
	}

	seen := make(map[string]bool, len(tags))
	deduped := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		deduped = append(deduped, tag)
	}

	now := s.now().Unix()
	return s.store.UpdateFact(ctx, &store.UpdateFact{
		ID:        factID,
		Tags:      &deduped,
		UpdatedTs: &now,
	})
}

// ListTags returns the de-duplicated union of tags across a user's
// active facts, sorted for stable output.
func (s *Service) ListTags(ctx context.Context, userID int32) ([]string, error) {
	active := true
	facts, err := s.store.ListFacts(ctx, &store.FindFact{UserID: &userID, Active: &active})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list facts for tags")
	}

	seen := make(map[string]bool)
	tags := []string{}
	for _, fact := range facts {
		for _, tag := range fact.Tags {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	sort.Strings(tags)
	return tags, nil
}

// FactsByTags returns a user's active facts carrying the given tags.
// matchAll selects AND semantics; otherwise any overlap matches.
func (s *Service) FactsByTags(ctx context.Context, userID int32, tags []string, matchAll bool) ([]*store.Fact, error) {
	if len(tags) == 0 {
		return []*store.Fact{}, nil
	}
	active := true
	return s.store.ListFacts(ctx, &store.FindFact{
		UserID:       &userID,
		Active:       &active,
		Tags:         tags,
		MatchAllTags: matchAll,
	})
}
