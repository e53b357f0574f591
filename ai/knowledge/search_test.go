package knowledge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/tutormind/store"
)

func seedSearchFacts(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()

	base := time.Unix(1700000000, 0)
	seeds := []struct {
		cand   Candidate
		offset time.Duration
	}{
		{Candidate{FactType: store.FactTypeGoal, Subject: strPtr("sat"), Details: "Wants a 1500 SAT score", Confidence: floatPtr(0.9)}, 0},
		{Candidate{FactType: store.FactTypeStruggle, Subject: strPtr("algebra"), Details: "Struggles with factoring", Confidence: floatPtr(0.6)}, time.Hour},
		{Candidate{FactType: store.FactTypePreference, Details: "Prefers short sessions", Confidence: floatPtr(0.3)}, 2 * time.Hour},
		{Candidate{FactType: store.FactTypeTopicInterest, Subject: strPtr("astronomy"), Details: "Fascinated by black holes"}, 3 * time.Hour},
	}
	for _, seed := range seeds {
		at := base.Add(seed.offset)
		svc.now = func() time.Time { return at }
		_, err := svc.CreateFact(ctx, 1, seed.cand)
		require.NoError(t, err)
	}
	svc.now = func() time.Time { return base.Add(4 * time.Hour) }
}

func TestSearchFacts(t *testing.T) {
	ctx := context.Background()

	t.Run("PaginationAndHasMore", func(t *testing.T) {
		svc := newTestService(newMemStore())
		seedSearchFacts(t, svc)

		page1, err := svc.SearchFacts(ctx, SearchRequest{UserID: 1, Limit: 3})
		require.NoError(t, err)
		assert.Len(t, page1.Facts, 3)
		assert.Equal(t, 4, page1.TotalCount)
		assert.True(t, page1.HasMore)

		page2, err := svc.SearchFacts(ctx, SearchRequest{UserID: 1, Limit: 3, Offset: 3})
		require.NoError(t, err)
		assert.Len(t, page2.Facts, 1)
		assert.Equal(t, 4, page2.TotalCount)
		assert.False(t, page2.HasMore, "offset+limit >= total")
	})

	t.Run("HasMoreWithFilters", func(t *testing.T) {
		svc := newTestService(newMemStore())
		seedSearchFacts(t, svc)

		result, err := svc.SearchFacts(ctx, SearchRequest{
			UserID:    1,
			FactTypes: []store.FactType{store.FactTypeGoal, store.FactTypeStruggle},
			Limit:     1,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, result.TotalCount, "total reflects the filtered set, not the table")
		assert.True(t, result.HasMore)
	})

	t.Run("SortByConfidenceDesc", func(t *testing.T) {
		svc := newTestService(newMemStore())
		seedSearchFacts(t, svc)

		result, err := svc.SearchFacts(ctx, SearchRequest{
			UserID:   1,
			SortBy:   "confidence",
			SortDesc: true,
		})
		require.NoError(t, err)
		require.Len(t, result.Facts, 4)
		assert.Equal(t, "Wants a 1500 SAT score", result.Facts[0].Details)
	})

	t.Run("QueryTermsMatchDetailsOrSubject", func(t *testing.T) {
		svc := newTestService(newMemStore())
		seedSearchFacts(t, svc)

		result, err := svc.SearchFacts(ctx, SearchRequest{UserID: 1, Query: "ALGEBRA"})
		require.NoError(t, err)
		require.Len(t, result.Facts, 1)
		assert.Equal(t, "Struggles with factoring", result.Facts[0].Details)
	})

	t.Run("MinConfidence", func(t *testing.T) {
		svc := newTestService(newMemStore())
		seedSearchFacts(t, svc)

		result, err := svc.SearchFacts(ctx, SearchRequest{UserID: 1, MinConfidence: floatPtr(0.5)})
		require.NoError(t, err)
		assert.Len(t, result.Facts, 2)
	})

	t.Run("InactiveExcludedUnlessAsked", func(t *testing.T) {
		svc := newTestService(newMemStore())
		seedSearchFacts(t, svc)

		all, err := svc.SearchFacts(ctx, SearchRequest{UserID: 1})
		require.NoError(t, err)
		_, err = svc.DeactivateFact(ctx, all.Facts[0].ID)
		require.NoError(t, err)

		activeOnly, err := svc.SearchFacts(ctx, SearchRequest{UserID: 1})
		require.NoError(t, err)
		assert.Equal(t, 3, activeOnly.TotalCount)

		withInactive, err := svc.SearchFacts(ctx, SearchRequest{UserID: 1, IncludeInactive: true})
		require.NoError(t, err)
		assert.Equal(t, 4, withInactive.TotalCount)
	})

	t.Run("InvalidSortKey", func(t *testing.T) {
		svc := newTestService(newMemStore())
		_, err := svc.SearchFacts(ctx, SearchRequest{UserID: 1, SortBy: "relevance"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid sort key")
	})

	t.Run("DefaultsApplied", func(t *testing.T) {
		svc := newTestService(newMemStore())
		seedSearchFacts(t, svc)

		result, err := svc.SearchFacts(ctx, SearchRequest{UserID: 1, Offset: -5})
		require.NoError(t, err)
		assert.Len(t, result.Facts, 4)
		assert.False(t, result.HasMore)
	})
}
