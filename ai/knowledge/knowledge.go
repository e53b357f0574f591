// Package knowledge maintains the consolidated store of atomic facts
// inferred about a user: conflict-aware upserts, batch import, tag
// management, relevance search and profile analytics.
package knowledge

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hrygo/tutormind/store"
)

// Strategy is the policy governing how a new candidate fact interacts
// with existing active facts on the same (user, type, subject).
type Strategy string

const (
	// StrategyPreferNew deactivates all matches and inserts the new fact.
	StrategyPreferNew Strategy = "prefer_new"
	// StrategyPreferHighConfidence keeps whichever side has the higher
	// confidence; ties keep the existing facts.
	StrategyPreferHighConfidence Strategy = "prefer_high_confidence"
	// StrategyMerge folds the new details into the most recently updated
	// match instead of inserting a row.
	StrategyMerge Strategy = "merge"
	// StrategySkipDuplicates drops candidates whose (type, subject)
	// already has an active match. Batch import only.
	StrategySkipDuplicates Strategy = "skip_duplicates"
)

// Resolution is the outcome of resolving one candidate.
type Resolution string

const (
	ResolutionAdded   Resolution = "added"
	ResolutionUpdated Resolution = "updated"
	ResolutionMerged  Resolution = "merged"
	ResolutionIgnored Resolution = "ignored"
	ResolutionSkipped Resolution = "skipped"
)

// ErrUnknownStrategy marks a configuration error: an unrecognized
// conflict strategy must surface to the caller, never be defaulted.
var ErrUnknownStrategy = errors.New("unknown conflict strategy")

// Candidate is a proposed fact, typically produced by the extraction
// pipeline or manual entry.
type Candidate struct {
	FactType   store.FactType `json:"factType"`
	Subject    *string        `json:"subject,omitempty"`
	Details    string         `json:"details"`
	Confidence *float64       `json:"confidence,omitempty"`
	ChatID     *string        `json:"chatId,omitempty"`
	Tags       []string       `json:"tags,omitempty"`
}

// Outcome describes what Resolve did with a candidate. Fact is the
// resulting row (the inserted fact, or the merge target); nil when the
// candidate was ignored or skipped.
type Outcome struct {
	Resolution Resolution
	Fact       *store.Fact
}

// FactStore is the minimal persistence surface the knowledge service
// needs. *store.Store satisfies it; tests use an in-memory fake.
type FactStore interface {
	CreateFact(ctx context.Context, create *store.Fact) (*store.Fact, error)
	ListFacts(ctx context.Context, find *store.FindFact) ([]*store.Fact, error)
	CountFacts(ctx context.Context, find *store.FindFact) (int, error)
	UpdateFact(ctx context.Context, update *store.UpdateFact) (*store.Fact, error)
	DeleteFact(ctx context.Context, delete *store.DeleteFact) error
}
