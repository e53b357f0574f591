package store

// FactType classifies an atomic statement inferred about a user.
type FactType string

const (
	FactTypePreference    FactType = "preference"
	FactTypeStruggle      FactType = "struggle"
	FactTypeGoal          FactType = "goal"
	FactTypeTopicInterest FactType = "topic_interest"
	FactTypeLearningStyle FactType = "learning_style"
	FactTypeOther         FactType = "other"
)

// FactTypes lists the canonical fact types in their fixed order.
// Knowledge-gap detection iterates this slice, so order matters.
var FactTypes = []FactType{
	FactTypePreference,
	FactTypeStruggle,
	FactTypeGoal,
	FactTypeTopicInterest,
	FactTypeLearningStyle,
	FactTypeOther,
}

// IsValid reports whether t is one of the canonical fact types.
func (t FactType) IsValid() bool {
	switch t {
	case FactTypePreference, FactTypeStruggle, FactTypeGoal,
		FactTypeTopicInterest, FactTypeLearningStyle, FactTypeOther:
		return true
	}
	return false
}

// Fact represents an atomic, typed statement about a user.
// Active=false marks a soft-deleted fact: it is retained for audit and
// export but excluded from default reads. There is deliberately no
// uniqueness constraint on (user, type, subject); conflicting active
// facts may coexist until a resolver pass consolidates them.
type Fact struct {
	ID         string
	ChatID     *string
	Subject    *string
	Details    string
	Confidence *float64
	Tags       []string
	CreatedTs  int64
	UpdatedTs  int64
	UserID     int32
	FactType   FactType
	Active     bool
}

// FindFact specifies the conditions for finding facts.
type FindFact struct {
	ID            *string
	UserID        *int32
	ChatID        *string
	FactTypes     []FactType
	Subjects      []string
	Active        *bool
	MinConfidence *float64
	CreatedAfter  *int64
	CreatedBefore *int64

	// Query is free text; every whitespace-separated term must appear,
	// case-insensitively, in details or subject.
	Query *string

	// Tags filters by tag membership. MatchAllTags selects AND semantics,
	// otherwise any overlap matches.
	Tags         []string
	MatchAllTags bool

	// OrderBy is one of "created_at", "updated_at", "confidence".
	OrderBy   string
	OrderDesc bool

	Limit  *int
	Offset *int
}

// UpdateFact specifies the data for updating a fact. Nil fields are
// left unchanged.
type UpdateFact struct {
	ID         string
	Subject    *string
	Details    *string
	Confidence *float64
	Active     *bool
	Tags       *[]string
	UpdatedTs  *int64
}

// DeleteFact specifies the conditions for hard-deleting facts.
// Soft deletion goes through UpdateFact with Active=false instead.
type DeleteFact struct {
	ID     *string
	UserID *int32
}
