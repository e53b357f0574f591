package knowledge

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hrygo/tutormind/store"
)

// Scoring weights. Term-overlap heuristic, independent of the vector
// similarity index.
const (
	subjectTermWeight = 5.0
	detailsTermWeight = 2.0
	wholeQueryWeight  = 10.0
	factTypeBonus     = 2.0
	minTermRunes      = 4 // tokens shorter than this are noise
)

// Score rates a fact's relevance to free-text query. Pure function:
// tokens are lowercase whitespace fields of length > 3; each earns +5
// on a subject substring match and +2 on a details substring match;
// the whole query as a details substring earns +10 once; preference
// and topic_interest facts get a flat +2; confidence, when present,
// is added as a real-valued bonus.
func Score(fact *store.Fact, query string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	details := strings.ToLower(fact.Details)
	subject := ""
	if fact.Subject != nil {
		subject = strings.ToLower(*fact.Subject)
	}

	score := 0.0
	for _, term := range strings.Fields(q) {
		if utf8.RuneCountInString(term) < minTermRunes {
			continue
		}
		if subject != "" && strings.Contains(subject, term) {
			score += subjectTermWeight
		}
		if strings.Contains(details, term) {
			score += detailsTermWeight
		}
	}
	if q != "" && strings.Contains(details, q) {
		score += wholeQueryWeight
	}
	if fact.FactType == store.FactTypeTopicInterest || fact.FactType == store.FactTypePreference {
		score += factTypeBonus
	}
	if fact.Confidence != nil {
		score += *fact.Confidence
	}
	return score
}

// RelevanceOptions narrows the candidate set for RelevantFacts.
type RelevanceOptions struct {
	FactTypes       []store.FactType
	IncludeInactive bool
	Limit           int
}

// ScoredFact pairs a fact with its relevance score.
type ScoredFact struct {
	Fact  *store.Fact
	Score float64
}

// RelevantFacts scores a user's facts against the query and returns
// the top matches, highest first. Ties preserve store order (stable
// sort); no secondary key is defined, which is deliberate.
func (s *Service) RelevantFacts(ctx context.Context, userID int32, query string, opts RelevanceOptions) ([]ScoredFact, error) {
	find := &store.FindFact{
		UserID:    &userID,
		FactTypes: opts.FactTypes,
	}
	if !opts.IncludeInactive {
		active := true
		find.Active = &active
	}

	facts, err := s.store.ListFacts(ctx, find)
	if err != nil {
		return nil, err
	}

	scored := make([]ScoredFact, 0, len(facts))
	for _, fact := range facts {
		scored = append(scored, ScoredFact{Fact: fact, Score: Score(fact, query)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if opts.Limit > 0 && len(scored) > opts.Limit {
		scored = scored[:opts.Limit]
	}
	return scored, nil
}
