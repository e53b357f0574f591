package knowledge

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hrygo/tutormind/store"
)

// Resolve decides how a candidate interacts with the existing active
// facts on the same (user, type, subject) and applies the decision.
// Resolution is serialized per conflict key: two concurrent calls for
// the same key cannot both observe "no conflict" within this process.
func (s *Service) Resolve(ctx context.Context, userID int32, cand Candidate, strategy Strategy) (*Outcome, error) {
	switch strategy {
	case StrategyPreferNew, StrategyPreferHighConfidence, StrategyMerge:
	default:
		return nil, errors.Wrapf(ErrUnknownStrategy, "%q", strategy)
	}
	if err := validateCandidate(cand); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(conflictKey(userID, cand))
	defer unlock()

	matches, err := s.activeMatches(ctx, userID, cand)
	if err != nil {
		return nil, err
	}
	return s.applyResolution(ctx, userID, cand, strategy, matches)
}

// applyResolution is the transition function: proposed -> added |
// updated | ignored | merged. Callers have already validated the
// candidate and the strategy.
func (s *Service) applyResolution(ctx context.Context, userID int32, cand Candidate, strategy Strategy, matches []*store.Fact) (*Outcome, error) {
	if len(matches) == 0 {
		created, err := s.store.CreateFact(ctx, s.newFactFromCandidate(userID, cand))
		if err != nil {
			return nil, errors.Wrap(err, "failed to insert fact")
		}
		resolutionOutcomes.WithLabelValues(string(ResolutionAdded)).Inc()
		return &Outcome{Resolution: ResolutionAdded, Fact: created}, nil
	}

	switch strategy {
	case StrategyPreferNew:
		if err := s.deactivateAll(ctx, matches); err != nil {
			return nil, err
		}
		created, err := s.store.CreateFact(ctx, s.newFactFromCandidate(userID, cand))
		if err != nil {
			return nil, errors.Wrap(err, "failed to insert fact")
		}
		resolutionOutcomes.WithLabelValues(string(ResolutionUpdated)).Inc()
		return &Outcome{Resolution: ResolutionUpdated, Fact: created}, nil

	case StrategyPreferHighConfidence:
		existing := maxConfidence(matches)
		incoming := 0.0
		if cand.Confidence != nil {
			incoming = *cand.Confidence
		}
		if incoming <= existing {
			resolutionOutcomes.WithLabelValues(string(ResolutionIgnored)).Inc()
			return &Outcome{Resolution: ResolutionIgnored}, nil
		}
		if err := s.deactivateAll(ctx, matches); err != nil {
			return nil, err
		}
		created, err := s.store.CreateFact(ctx, s.newFactFromCandidate(userID, cand))
		if err != nil {
			return nil, errors.Wrap(err, "failed to insert fact")
		}
		resolutionOutcomes.WithLabelValues(string(ResolutionUpdated)).Inc()
		return &Outcome{Resolution: ResolutionUpdated, Fact: created}, nil

	case StrategyMerge:
		target := mostRecentlyUpdated(matches)
		details := target.Details + " (Updated: " + cand.Details + ")"
		confidence := mergedConfidence(target.Confidence, cand.Confidence)
		now := s.now().Unix()
		update := &store.UpdateFact{
			ID:        target.ID,
			Details:   &details,
			UpdatedTs: &now,
		}
		if confidence != nil {
			update.Confidence = confidence
		}
		merged, err := s.store.UpdateFact(ctx, update)
		if err != nil {
			return nil, errors.Wrap(err, "failed to merge fact")
		}
		resolutionOutcomes.WithLabelValues(string(ResolutionMerged)).Inc()
		return &Outcome{Resolution: ResolutionMerged, Fact: merged}, nil
	}

	return nil, errors.Wrapf(ErrUnknownStrategy, "%q", strategy)
}

func (s *Service) deactivateAll(ctx context.Context, facts []*store.Fact) error {
	inactive := false
	now := s.now().Unix()
	for _, fact := range facts {
		if _, err := s.store.UpdateFact(ctx, &store.UpdateFact{
			ID:        fact.ID,
			Active:    &inactive,
			UpdatedTs: &now,
		}); err != nil {
			return errors.Wrapf(err, "failed to deactivate fact %s", fact.ID)
		}
	}
	return nil
}

// maxConfidence returns the highest confidence among facts, defaulting
// to 0 when none carries one.
func maxConfidence(facts []*store.Fact) float64 {
	m := 0.0
	for _, fact := range facts {
		if fact.Confidence != nil && *fact.Confidence > m {
			m = *fact.Confidence
		}
	}
	return m
}

// mostRecentlyUpdated picks the merge target. Ties keep the earliest
// listed match (stable against input order).
func mostRecentlyUpdated(facts []*store.Fact) *store.Fact {
	target := facts[0]
	for _, fact := range facts[1:] {
		if fact.UpdatedTs > target.UpdatedTs {
			target = fact
		}
	}
	return target
}

// mergedConfidence is max(old, new); a side without confidence
// contributes nothing, and both sides absent yields absent.
func mergedConfidence(old, new *float64) *float64 {
	if old == nil {
		return new
	}
	if new == nil {
		return old
	}
	m := *old
	if *new > m {
		m = *new
	}
	return &m
}
