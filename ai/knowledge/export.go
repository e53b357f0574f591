package knowledge

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/hrygo/tutormind/store"
)

// exportVersion tags the export envelope so future format changes can
// be detected on import.
const exportVersion = 1

// Export is a portable snapshot of a user's facts, inactive ones
// included.
type Export struct {
	Version    int           `json:"version"`
	UserID     int32         `json:"userId"`
	ExportedTs int64         `json:"exportedTs"`
	Facts      []*store.Fact `json:"facts"`
}

// ExportFacts serializes every fact a user has, active or not, into a
// JSON envelope.
func (s *Service) ExportFacts(ctx context.Context, userID int32) ([]byte, error) {
	facts, err := s.store.ListFacts(ctx, &store.FindFact{UserID: &userID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list facts for export")
	}

	export := Export{
		Version:    exportVersion,
		UserID:     userID,
		ExportedTs: s.now().Unix(),
		Facts:      facts,
	}
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal export")
	}
	return data, nil
}

// ImportFacts parses a previously exported envelope and feeds its
// active facts through ImportBatch as fresh candidates under the given
// strategy. Inactive facts in the envelope are not re-imported;
// identifiers and timestamps are regenerated.
func (s *Service) ImportFacts(ctx context.Context, userID int32, data []byte, strategy Strategy) (*BatchResult, error) {
	var export Export
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, errors.Wrap(err, "failed to parse import payload")
	}
	if export.Version != exportVersion {
		return nil, errors.Errorf("unsupported export version: %d", export.Version)
	}

	candidates := make([]Candidate, 0, len(export.Facts))
	for _, fact := range export.Facts {
		if fact == nil || !fact.Active {
			continue
		}
		candidates = append(candidates, Candidate{
			FactType:   fact.FactType,
			Subject:    fact.Subject,
			Details:    fact.Details,
			Confidence: fact.Confidence,
			ChatID:     fact.ChatID,
			Tags:       fact.Tags,
		})
	}
	return s.ImportBatch(ctx, userID, candidates, strategy)
}
