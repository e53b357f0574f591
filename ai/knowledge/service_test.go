package knowledge

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/tutormind/store"
)

func TestCreateAndGetFact(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemStore())

	created, err := svc.CreateFact(ctx, 7, Candidate{
		FactType:   store.FactTypePreference,
		Subject:    strPtr("pace"),
		Details:    "Likes a slower pace",
		Confidence: floatPtr(0.75),
		Tags:       []string{"pacing"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.Active)
	assert.Equal(t, created.CreatedTs, created.UpdatedTs)

	fetched, err := svc.GetFact(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "Likes a slower pace", fetched.Details)

	t.Run("UnknownID", func(t *testing.T) {
		_, err := svc.GetFact(ctx, "missing")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("EmptyID", func(t *testing.T) {
		_, err := svc.GetFact(ctx, "")
		assert.Error(t, err)
	})
}

func TestUpdateFact(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemStore())

	created, err := svc.CreateFact(ctx, 1, Candidate{
		FactType: store.FactTypeGoal, Details: "Original details",
	})
	require.NoError(t, err)

	t.Run("PartialUpdate", func(t *testing.T) {
		updated, err := svc.UpdateFact(ctx, UpdateRequest{
			ID:      created.ID,
			Details: strPtr("Revised details"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Revised details", updated.Details)
		assert.Equal(t, created.FactType, updated.FactType, "untouched fields survive")
	})

	t.Run("EmptyDetailsRejected", func(t *testing.T) {
		_, err := svc.UpdateFact(ctx, UpdateRequest{ID: created.ID, Details: strPtr("  ")})
		assert.Error(t, err)
	})

	t.Run("ConfidenceRangeEnforced", func(t *testing.T) {
		_, err := svc.UpdateFact(ctx, UpdateRequest{ID: created.ID, Confidence: floatPtr(-0.1)})
		assert.Error(t, err)
	})

	t.Run("MissingID", func(t *testing.T) {
		_, err := svc.UpdateFact(ctx, UpdateRequest{Details: strPtr("x")})
		assert.Error(t, err)
	})
}

func TestDeactivateAndHardDelete(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemStore())

	created, err := svc.CreateFact(ctx, 1, Candidate{
		FactType: store.FactTypeOther, Details: "Transient note",
	})
	require.NoError(t, err)

	deactivated, err := svc.DeactivateFact(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.Active)

	// Soft-deleted rows stay fetchable.
	fetched, err := svc.GetFact(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, fetched.Active)

	require.NoError(t, svc.HardDeleteFact(ctx, created.ID))
	_, err = svc.GetFact(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemStore())

	_, err := svc.CreateFact(ctx, 1, Candidate{
		FactType: store.FactTypeGoal, Subject: strPtr("sat"), Details: "Wants a 1500", Confidence: floatPtr(0.9),
	})
	require.NoError(t, err)
	inactive, err := svc.CreateFact(ctx, 1, Candidate{
		FactType: store.FactTypeGoal, Subject: strPtr("act"), Details: "Abandoned ACT plan",
	})
	require.NoError(t, err)
	_, err = svc.DeactivateFact(ctx, inactive.ID)
	require.NoError(t, err)

	data, err := svc.ExportFacts(ctx, 1)
	require.NoError(t, err)

	var export Export
	require.NoError(t, json.Unmarshal(data, &export))
	assert.Equal(t, 1, export.Version)
	assert.Len(t, export.Facts, 2, "export carries inactive rows too")

	// Import into a fresh service for another user.
	target := newTestService(newMemStore())
	result, err := target.ImportFacts(ctx, 2, data, StrategySkipDuplicates)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Added, "only active facts re-import")

	active := true
	facts, err := target.store.ListFacts(ctx, &store.FindFact{UserID: int32Ptr(2), Active: &active})
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, "Wants a 1500", facts[0].Details)
	assert.Equal(t, int32(2), facts[0].UserID)
}

func TestImportFactsRejectsBadPayload(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemStore())

	_, err := svc.ImportFacts(ctx, 1, []byte("not json"), StrategyPreferNew)
	assert.Error(t, err)

	_, err = svc.ImportFacts(ctx, 1, []byte(`{"version": 99, "facts": []}`), StrategyPreferNew)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported export version")
}
