package knowledge

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/tutormind/store"
)

// BatchItemError records a skipped candidate with its reason. The
// batch as a whole still completes.
type BatchItemError struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// BatchResult reports per-outcome counts for one import batch.
type BatchResult struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Merged  int `json:"merged"`
	Ignored int `json:"ignored"`
	Skipped int `json:"skipped"`

	// Outcomes holds the per-candidate resolution in input order;
	// candidates recorded in Errors have no entry.
	Outcomes []Resolution     `json:"outcomes"`
	Errors   []BatchItemError `json:"errors,omitempty"`
}

// ImportBatch resolves candidates strictly sequentially: each decision
// sees the state produced by the candidates before it. The batch is a
// fold over an active-facts snapshot loaded once and updated as
// resolutions are applied, so intra-batch conflicts are deterministic.
//
// In addition to the single-candidate strategies, batch import accepts
// StrategySkipDuplicates: a candidate whose (type, subject) already has
// an active match is dropped without comparison.
func (s *Service) ImportBatch(ctx context.Context, userID int32, candidates []Candidate, strategy Strategy) (*BatchResult, error) {
	switch strategy {
	case StrategyPreferNew, StrategyPreferHighConfidence, StrategyMerge, StrategySkipDuplicates:
	default:
		return nil, errors.Wrapf(ErrUnknownStrategy, "%q", strategy)
	}

	// Snapshot all active facts for the user, grouped by conflict key.
	active := true
	facts, err := s.store.ListFacts(ctx, &store.FindFact{UserID: &userID, Active: &active})
	if err != nil {
		return nil, errors.Wrap(err, "failed to snapshot active facts")
	}
	snapshot := make(map[string][]*store.Fact, len(facts))
	for _, fact := range facts {
		key := factKey(fact)
		snapshot[key] = append(snapshot[key], fact)
	}

	result := &BatchResult{}
	for i, cand := range candidates {
		if strings.TrimSpace(cand.Details) == "" {
			result.Errors = append(result.Errors, BatchItemError{Index: i, Reason: "details must be non-empty"})
			continue
		}
		if err := validateCandidate(cand); err != nil {
			result.Errors = append(result.Errors, BatchItemError{Index: i, Reason: err.Error()})
			continue
		}

		key := conflictKey(userID, cand)
		matches := snapshot[key]

		if strategy == StrategySkipDuplicates {
			if len(matches) > 0 {
				result.Skipped++
				result.Outcomes = append(result.Outcomes, ResolutionSkipped)
				continue
			}
			created, err := s.store.CreateFact(ctx, s.newFactFromCandidate(userID, cand))
			if err != nil {
				return nil, errors.Wrapf(err, "failed to insert candidate %d", i)
			}
			snapshot[key] = append(snapshot[key], created)
			result.Added++
			result.Outcomes = append(result.Outcomes, ResolutionAdded)
			continue
		}

		outcome, err := s.applyResolution(ctx, userID, cand, strategy, matches)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to resolve candidate %d", i)
		}

		// Keep the snapshot in step with what was written.
		switch outcome.Resolution {
		case ResolutionAdded:
			snapshot[key] = append(snapshot[key], outcome.Fact)
			result.Added++
		case ResolutionUpdated:
			snapshot[key] = []*store.Fact{outcome.Fact}
			result.Updated++
		case ResolutionMerged:
			replaceFact(snapshot[key], outcome.Fact)
			result.Merged++
		case ResolutionIgnored:
			result.Ignored++
		}
		result.Outcomes = append(result.Outcomes, outcome.Resolution)
	}

	slog.Debug("fact batch import complete",
		"user_id", userID,
		"strategy", strategy,
		"candidates", len(candidates),
		"added", result.Added,
		"updated", result.Updated,
		"merged", result.Merged,
		"ignored", result.Ignored,
		"skipped", result.Skipped,
		"errors", len(result.Errors))

	return result, nil
}

func factKey(fact *store.Fact) string {
	cand := Candidate{FactType: fact.FactType, Subject: fact.Subject}
	return conflictKey(fact.UserID, cand)
}

func replaceFact(facts []*store.Fact, updated *store.Fact) {
	for i, fact := range facts {
		if fact.ID == updated.ID {
			facts[i] = updated
			return
		}
	}
}
