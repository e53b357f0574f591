package knowledge

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/hrygo/tutormind/store"
)

// Service implements fact persistence and consolidation over a
// FactStore. All handles are injected; there is no ambient client.
type Service struct {
	store FactStore
	locks keyedMutex

	// now is swappable in tests.
	now func() time.Time
}

// NewService creates a knowledge service.
func NewService(factStore FactStore) *Service {
	return &Service{
		store: factStore,
		now:   time.Now,
	}
}

// validateCandidate enforces the fact invariants: non-empty details,
// confidence in [0,1], a canonical fact type.
func validateCandidate(cand Candidate) error {
	if strings.TrimSpace(cand.Details) == "" {
		return errors.New("details must be non-empty")
	}
	if cand.Confidence != nil && (*cand.Confidence < 0 || *cand.Confidence > 1) {
		return errors.Errorf("confidence must be in [0,1], got %g", *cand.Confidence)
	}
	if !cand.FactType.IsValid() {
		return errors.Errorf("invalid fact type: %s", cand.FactType)
	}
	return nil
}

// newFactFromCandidate materializes a candidate as an active fact row.
func (s *Service) newFactFromCandidate(userID int32, cand Candidate) *store.Fact {
	now := s.now().Unix()
	tags := cand.Tags
	if tags == nil {
		tags = []string{}
	}
	return &store.Fact{
		ID:         uuid.NewString(),
		UserID:     userID,
		ChatID:     cand.ChatID,
		FactType:   cand.FactType,
		Subject:    cand.Subject,
		Details:    cand.Details,
		Confidence: cand.Confidence,
		Active:     true,
		Tags:       tags,
		CreatedTs:  now,
		UpdatedTs:  now,
	}
}

// CreateFact inserts a fact directly (manual entry), bypassing conflict
// resolution. Consolidation is opt-in, not enforced at write time.
func (s *Service) CreateFact(ctx context.Context, userID int32, cand Candidate) (*store.Fact, error) {
	if err := validateCandidate(cand); err != nil {
		return nil, err
	}
	return s.store.CreateFact(ctx, s.newFactFromCandidate(userID, cand))
}

// GetFact fetches one fact by id.
func (s *Service) GetFact(ctx context.Context, id string) (*store.Fact, error) {
	if id == "" {
		return nil, errors.New("fact id is required")
	}
	facts, err := s.store.ListFacts(ctx, &store.FindFact{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(facts) == 0 {
		return nil, store.ErrNotFound
	}
	return facts[0], nil
}

// UpdateRequest carries a partial fact update. Nil fields are left
// unchanged.
type UpdateRequest struct {
	ID         string
	Subject    *string
	Details    *string
	Confidence *float64
	Active     *bool
	Tags       *[]string
}

// UpdateFact applies a partial update. A missing id is a configuration
// error; an unknown id surfaces store.ErrNotFound.
func (s *Service) UpdateFact(ctx context.Context, req UpdateRequest) (*store.Fact, error) {
	if req.ID == "" {
		return nil, errors.New("fact id is required for update")
	}
	if req.Details != nil && strings.TrimSpace(*req.Details) == "" {
		return nil, errors.New("details must be non-empty")
	}
	if req.Confidence != nil && (*req.Confidence < 0 || *req.Confidence > 1) {
		return nil, errors.Errorf("confidence must be in [0,1], got %g", *req.Confidence)
	}

	now := s.now().Unix()
	return s.store.UpdateFact(ctx, &store.UpdateFact{
		ID:         req.ID,
		Subject:    req.Subject,
		Details:    req.Details,
		Confidence: req.Confidence,
		Active:     req.Active,
		Tags:       req.Tags,
		UpdatedTs:  &now,
	})
}

// DeactivateFact soft-deletes a fact. The row is retained for audit
// and export.
func (s *Service) DeactivateFact(ctx context.Context, id string) (*store.Fact, error) {
	if id == "" {
		return nil, errors.New("fact id is required for deactivate")
	}
	inactive := false
	now := s.now().Unix()
	return s.store.UpdateFact(ctx, &store.UpdateFact{
		ID:        id,
		Active:    &inactive,
		UpdatedTs: &now,
	})
}

// HardDeleteFact removes the row permanently. Reserved for explicit
// tooling; normal deletion is DeactivateFact.
func (s *Service) HardDeleteFact(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("fact id is required for delete")
	}
	return s.store.DeleteFact(ctx, &store.DeleteFact{ID: &id})
}

// activeMatches returns the active facts colliding with the candidate
// on (user, type, subject).
func (s *Service) activeMatches(ctx context.Context, userID int32, cand Candidate) ([]*store.Fact, error) {
	active := true
	find := &store.FindFact{
		UserID:    &userID,
		FactTypes: []store.FactType{cand.FactType},
		Active:    &active,
	}
	facts, err := s.store.ListFacts(ctx, find)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list matching facts")
	}

	// Subject comparison includes the nil case: a candidate without a
	// subject collides only with facts without a subject.
	matches := make([]*store.Fact, 0, len(facts))
	for _, fact := range facts {
		if sameSubject(fact.Subject, cand.Subject) {
			matches = append(matches, fact)
		}
	}
	return matches, nil
}

func sameSubject(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// conflictKey identifies the serialization domain for resolution.
func conflictKey(userID int32, cand Candidate) string {
	subject := ""
	if cand.Subject != nil {
		subject = *cand.Subject
	}
	return strconv.Itoa(int(userID)) + "|" + string(cand.FactType) + "|" + subject
}

// keyedMutex serializes work per string key. Entries are reference
// counted and removed when idle, so the map does not grow with the
// number of distinct keys ever seen.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// lock acquires the mutex for key and returns its release function.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*lockEntry)
	}
	entry, ok := k.locks[key]
	if !ok {
		entry = &lockEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
