package knowledge

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hrygo/tutormind/store"
)

// DefaultSearchLimit bounds unpaginated searches.
const DefaultSearchLimit = 50

// SearchRequest is a filtered, sorted, paginated fact query.
type SearchRequest struct {
	UserID          int32            `json:"userId"`
	IncludeInactive bool             `json:"includeInactive"`
	FactTypes       []store.FactType `json:"factTypes,omitempty"`
	Subjects        []string         `json:"subjects,omitempty"`
	CreatedAfter    *int64           `json:"createdAfter,omitempty"`
	CreatedBefore   *int64           `json:"createdBefore,omitempty"`
	MinConfidence   *float64         `json:"minConfidence,omitempty"`

	// Query terms must each appear, case-insensitively, in details or
	// subject.
	Query string `json:"query,omitempty"`

	// SortBy is one of "created_at", "updated_at", "confidence";
	// empty defaults to "created_at".
	SortBy   string `json:"sortBy,omitempty"`
	SortDesc bool   `json:"sortDesc"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// SearchResult is one page of matching facts.
type SearchResult struct {
	Facts      []*store.Fact `json:"facts"`
	TotalCount int           `json:"totalCount"`
	HasMore    bool          `json:"hasMore"`
}

// SearchFacts runs a paginated fact search.
// HasMore is offset+limit < totalCount, for every filter combination.
func (s *Service) SearchFacts(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	sortBy := req.SortBy
	switch sortBy {
	case "":
		sortBy = "created_at"
	case "created_at", "updated_at", "confidence":
	default:
		return nil, errors.Errorf("invalid sort key: %s", req.SortBy)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	find := &store.FindFact{
		UserID:        &req.UserID,
		FactTypes:     req.FactTypes,
		Subjects:      req.Subjects,
		CreatedAfter:  req.CreatedAfter,
		CreatedBefore: req.CreatedBefore,
		MinConfidence: req.MinConfidence,
		OrderBy:       sortBy,
		OrderDesc:     req.SortDesc,
		Limit:         &limit,
		Offset:        &offset,
	}
	if !req.IncludeInactive {
		active := true
		find.Active = &active
	}
	if req.Query != "" {
		find.Query = &req.Query
	}

	facts, err := s.store.ListFacts(ctx, find)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search facts")
	}

	countFind := *find
	countFind.Limit = nil
	countFind.Offset = nil
	total, err := s.store.CountFacts(ctx, &countFind)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count facts")
	}

	return &SearchResult{
		Facts:      facts,
		TotalCount: total,
		HasMore:    offset+limit < total,
	}, nil
}
