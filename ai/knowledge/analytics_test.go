package knowledge

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/tutormind/store"
)

func TestDetectKnowledgeGaps(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyProfileMissesEveryType", func(t *testing.T) {
		svc := newTestService(newMemStore())
		gaps, err := svc.DetectKnowledgeGaps(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, store.FactTypes, gaps.MissingTypes)
		assert.Len(t, gaps.Questions, len(store.FactTypes))
		assert.Empty(t, gaps.LowCoverageSubjects)
	})

	t.Run("CoveredTypesDropOut", func(t *testing.T) {
		svc := newTestService(newMemStore())
		_, err := svc.CreateFact(ctx, 1, Candidate{FactType: store.FactTypeGoal, Details: "Pass finals"})
		require.NoError(t, err)

		gaps, err := svc.DetectKnowledgeGaps(ctx, 1)
		require.NoError(t, err)
		assert.NotContains(t, gaps.MissingTypes, store.FactTypeGoal)
		assert.Contains(t, gaps.MissingTypes, store.FactTypePreference)
	})

	t.Run("SingleFactSubjectsAreLowCoverage", func(t *testing.T) {
		svc := newTestService(newMemStore())
		_, err := svc.CreateFact(ctx, 1, Candidate{
			FactType: store.FactTypeStruggle, Subject: strPtr("physics"), Details: "One fact only",
		})
		require.NoError(t, err)
		_, err = svc.CreateFact(ctx, 1, Candidate{
			FactType: store.FactTypeStruggle, Subject: strPtr("algebra"), Details: "First algebra fact",
		})
		require.NoError(t, err)
		_, err = svc.CreateFact(ctx, 1, Candidate{
			FactType: store.FactTypeGoal, Subject: strPtr("algebra"), Details: "Second algebra fact",
		})
		require.NoError(t, err)

		gaps, err := svc.DetectKnowledgeGaps(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"physics"}, gaps.LowCoverageSubjects)
		assert.Contains(t, gaps.Questions, "Can you tell me more about your experience with physics?")
	})

	t.Run("InactiveFactsDoNotCount", func(t *testing.T) {
		svc := newTestService(newMemStore())
		fact, err := svc.CreateFact(ctx, 1, Candidate{FactType: store.FactTypeGoal, Details: "Pass finals"})
		require.NoError(t, err)
		_, err = svc.DeactivateFact(ctx, fact.ID)
		require.NoError(t, err)

		gaps, err := svc.DetectKnowledgeGaps(ctx, 1)
		require.NoError(t, err)
		assert.Contains(t, gaps.MissingTypes, store.FactTypeGoal)
	})
}

func TestProfileSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyProfile", func(t *testing.T) {
		svc := newTestService(newMemStore())
		summary, err := svc.ProfileSummary(ctx, 1, 0)
		require.NoError(t, err)
		assert.Empty(t, summary)
	})

	t.Run("FixedSectionOrder", func(t *testing.T) {
		svc := newTestService(newMemStore())
		for _, cand := range []Candidate{
			{FactType: store.FactTypeLearningStyle, Details: "Visual learner"},
			{FactType: store.FactTypeGoal, Details: "Pass the SAT"},
			{FactType: store.FactTypePreference, Details: "Prefers morning sessions"},
			{FactType: store.FactTypeStruggle, Details: "Weak at algebra"},
			{FactType: store.FactTypeTopicInterest, Details: "Loves astronomy"},
		} {
			_, err := svc.CreateFact(ctx, 1, cand)
			require.NoError(t, err)
		}

		summary, err := svc.ProfileSummary(ctx, 1, 3)
		require.NoError(t, err)

		idx := func(s string) int { return strings.Index(summary, s) }
		assert.Contains(t, summary, "5 recorded facts across 5 categories")
		require.Greater(t, idx("Preferences:"), -1)
		assert.Less(t, idx("Preferences:"), idx("Goals:"))
		assert.Less(t, idx("Goals:"), idx("Struggles:"))
		assert.Less(t, idx("Struggles:"), idx("Topic interests:"))
		assert.Less(t, idx("Topic interests:"), idx("Learning style:"))
	})

	t.Run("EmptyCategoriesOmitted", func(t *testing.T) {
		svc := newTestService(newMemStore())
		_, err := svc.CreateFact(ctx, 1, Candidate{FactType: store.FactTypeGoal, Details: "Pass the SAT"})
		require.NoError(t, err)

		summary, err := svc.ProfileSummary(ctx, 1, 3)
		require.NoError(t, err)
		assert.Contains(t, summary, "Goals:")
		assert.NotContains(t, summary, "Preferences:")
		assert.NotContains(t, summary, "Struggles:")
	})

	t.Run("MaxFactsPerTypeCapsExcerpts", func(t *testing.T) {
		svc := newTestService(newMemStore())
		for _, details := range []string{"Goal A", "Goal B", "Goal C"} {
			_, err := svc.CreateFact(ctx, 1, Candidate{FactType: store.FactTypeGoal, Details: details})
			require.NoError(t, err)
		}

		summary, err := svc.ProfileSummary(ctx, 1, 2)
		require.NoError(t, err)
		assert.Contains(t, summary, "Goal A")
		assert.Contains(t, summary, "Goal B")
		assert.NotContains(t, summary, "Goal C")
	})

	t.Run("RecentSubjects", func(t *testing.T) {
		svc := newTestService(newMemStore())
		base := time.Unix(1700000000, 0)

		svc.now = func() time.Time { return base.Add(-60 * 24 * time.Hour) }
		_, err := svc.CreateFact(ctx, 1, Candidate{
			FactType: store.FactTypeStruggle, Subject: strPtr("history"), Details: "Old struggle",
		})
		require.NoError(t, err)

		svc.now = func() time.Time { return base.Add(-2 * 24 * time.Hour) }
		_, err = svc.CreateFact(ctx, 1, Candidate{
			FactType: store.FactTypeStruggle, Subject: strPtr("calculus"), Details: "Fresh struggle",
		})
		require.NoError(t, err)

		svc.now = func() time.Time { return base }
		summary, err := svc.ProfileSummary(ctx, 1, 3)
		require.NoError(t, err)
		assert.Contains(t, summary, "Recently discussed subjects: calculus")
		assert.NotContains(t, summary, "history")
	})
}

func TestAnalyzePatterns(t *testing.T) {
	ctx := context.Background()

	t.Run("MarkersClassifyDetails", func(t *testing.T) {
		svc := newTestService(newMemStore())
		_, err := svc.CreateFact(ctx, 1, Candidate{
			FactType: store.FactTypeOther, Details: "Is good at mental math",
		})
		require.NoError(t, err)
		_, err = svc.CreateFact(ctx, 1, Candidate{
			FactType: store.FactTypeStruggle, Details: "Has a hard time with proofs",
		})
		require.NoError(t, err)

		analysis, err := svc.AnalyzePatterns(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"Is good at mental math"}, analysis.Strengths)
		assert.Equal(t, []string{"Has a hard time with proofs"}, analysis.Challenges)
	})

	t.Run("CountHeuristics", func(t *testing.T) {
		svc := newTestService(newMemStore())
		for i := 0; i < 3; i++ {
			_, err := svc.CreateFact(ctx, 1, Candidate{
				FactType: store.FactTypeGoal, Subject: strPtr(string(rune('a' + i))), Details: "A goal",
			})
			require.NoError(t, err)
		}
		analysis, err := svc.AnalyzePatterns(ctx, 1)
		require.NoError(t, err)
		assert.Contains(t, analysis.Patterns, "goal-oriented")
		assert.NotContains(t, analysis.Patterns, "challenge-focused")

		for i := 0; i < 4; i++ {
			_, err := svc.CreateFact(ctx, 2, Candidate{
				FactType: store.FactTypeStruggle, Subject: strPtr(string(rune('a' + i))), Details: "A struggle",
			})
			require.NoError(t, err)
		}
		analysis, err = svc.AnalyzePatterns(ctx, 2)
		require.NoError(t, err)
		assert.Contains(t, analysis.Patterns, "challenge-focused")
	})

	t.Run("EmptyProfile", func(t *testing.T) {
		svc := newTestService(newMemStore())
		analysis, err := svc.AnalyzePatterns(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, analysis.Strengths)
		assert.Empty(t, analysis.Challenges)
		assert.Empty(t, analysis.Patterns)
	})
}
