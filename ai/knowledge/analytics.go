package knowledge

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/tutormind/store"
)

// gapQuestions is the fixed mapping from a missing fact type to its
// canned follow-up question.
var gapQuestions = map[store.FactType]string{
	store.FactTypePreference:    "What are your learning preferences? For example, do you prefer worked examples, practice problems, or explanations first?",
	store.FactTypeStruggle:      "Which topics or skills do you find most challenging right now?",
	store.FactTypeGoal:          "What are you hoping to achieve in your studies?",
	store.FactTypeTopicInterest: "Which subjects or topics are you most curious about?",
	store.FactTypeLearningStyle: "How do you learn best: reading, listening, hands-on practice, or something else?",
	store.FactTypeOther:         "Is there anything else about you that would help personalize your sessions?",
}

const subjectQuestionFormat = "Can you tell me more about your experience with %s?"

// KnowledgeGaps reports which canonical fact types have no active
// facts and which subjects have exactly one ("low coverage").
// Questions follow insertion order: missing types first (canonical
// order), then low-coverage subjects (first-seen order). No relevance
// ranking is implied.
type KnowledgeGaps struct {
	MissingTypes        []store.FactType `json:"missingTypes"`
	LowCoverageSubjects []string         `json:"lowCoverageSubjects"`
	Questions           []string         `json:"questions"`
}

// DetectKnowledgeGaps inspects a user's active facts for coverage gaps.
func (s *Service) DetectKnowledgeGaps(ctx context.Context, userID int32) (*KnowledgeGaps, error) {
	active := true
	facts, err := s.store.ListFacts(ctx, &store.FindFact{UserID: &userID, Active: &active})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list facts for gap detection")
	}

	typeCounts := make(map[store.FactType]int)
	subjectCounts := make(map[string]int)
	subjectOrder := []string{}
	for _, fact := range facts {
		typeCounts[fact.FactType]++
		if fact.Subject != nil && *fact.Subject != "" {
			if subjectCounts[*fact.Subject] == 0 {
				subjectOrder = append(subjectOrder, *fact.Subject)
			}
			subjectCounts[*fact.Subject]++
		}
	}

	gaps := &KnowledgeGaps{
		MissingTypes:        []store.FactType{},
		LowCoverageSubjects: []string{},
		Questions:           []string{},
	}
	for _, factType := range store.FactTypes {
		if typeCounts[factType] == 0 {
			gaps.MissingTypes = append(gaps.MissingTypes, factType)
			gaps.Questions = append(gaps.Questions, gapQuestions[factType])
		}
	}
	for _, subject := range subjectOrder {
		if subjectCounts[subject] == 1 {
			gaps.LowCoverageSubjects = append(gaps.LowCoverageSubjects, subject)
			gaps.Questions = append(gaps.Questions, fmt.Sprintf(subjectQuestionFormat, subject))
		}
	}
	return gaps, nil
}

// recentSubjectWindow is the lookback for "recently touched" subjects.
const recentSubjectWindow = 30 * 24 * time.Hour

// ProfileSummary renders a fixed-order narrative of a user's active
// facts: counts, then up to maxFactsPerType excerpts each for
// preferences, goals, struggles, topic interests and learning style,
// then subjects touched in the last 30 days. Empty categories are
// omitted.
func (s *Service) ProfileSummary(ctx context.Context, userID int32, maxFactsPerType int) (string, error) {
	if maxFactsPerType <= 0 {
		maxFactsPerType = 3
	}

	active := true
	facts, err := s.store.ListFacts(ctx, &store.FindFact{UserID: &userID, Active: &active})
	if err != nil {
		return "", errors.Wrap(err, "failed to list facts for profile summary")
	}
	if len(facts) == 0 {
		return "", nil
	}

	byType := make(map[store.FactType][]*store.Fact)
	for _, fact := range facts {
		byType[fact.FactType] = append(byType[fact.FactType], fact)
	}

	lines := []string{
		"The user has " + strconv.Itoa(len(facts)) + " recorded facts across " +
			strconv.Itoa(len(byType)) + " categories.",
	}

	appendCategory := func(label string, factType store.FactType) {
		group := byType[factType]
		if len(group) == 0 {
			return
		}
		excerpts := make([]string, 0, maxFactsPerType)
		for _, fact := range group {
			if len(excerpts) == maxFactsPerType {
				break
			}
			excerpts = append(excerpts, fact.Details)
		}
		lines = append(lines, label+": "+strings.Join(excerpts, "; "))
	}

	appendCategory("Preferences", store.FactTypePreference)
	appendCategory("Goals", store.FactTypeGoal)
	appendCategory("Struggles", store.FactTypeStruggle)
	appendCategory("Topic interests", store.FactTypeTopicInterest)
	appendCategory("Learning style", store.FactTypeLearningStyle)

	cutoff := s.now().Add(-recentSubjectWindow).Unix()
	seen := make(map[string]bool)
	recent := []string{}
	for _, fact := range facts {
		if fact.UpdatedTs < cutoff || fact.Subject == nil || *fact.Subject == "" {
			continue
		}
		if !seen[*fact.Subject] {
			seen[*fact.Subject] = true
			recent = append(recent, *fact.Subject)
		}
	}
	if len(recent) > 0 {
		lines = append(lines, "Recently discussed subjects: "+strings.Join(recent, ", "))
	}

	return strings.Join(lines, "\n"), nil
}

// Pattern analysis keyword markers. Substring heuristics over details.
var (
	strengthMarkers  = []string{"good at", "strong in", "excels at", "mastered"}
	challengeMarkers = []string{"difficult", "struggle", "hard time", "confused"}
)

// maxPatternEntries caps the strengths and challenges lists.
const maxPatternEntries = 5

// PatternAnalysis is the output of keyword and count heuristics over a
// user's active facts.
type PatternAnalysis struct {
	Strengths  []string `json:"strengths"`
	Challenges []string `json:"challenges"`
	Patterns   []string `json:"patterns"`
}

// AnalyzePatterns scans all active facts' details for strength and
// challenge markers and derives coarse pattern labels from per-type
// counts.
func (s *Service) AnalyzePatterns(ctx context.Context, userID int32) (*PatternAnalysis, error) {
	active := true
	facts, err := s.store.ListFacts(ctx, &store.FindFact{UserID: &userID, Active: &active})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list facts for pattern analysis")
	}

	analysis := &PatternAnalysis{
		Strengths:  []string{},
		Challenges: []string{},
		Patterns:   []string{},
	}

	typeCounts := make(map[store.FactType]int)
	for _, fact := range facts {
		typeCounts[fact.FactType]++
		details := strings.ToLower(fact.Details)
		if len(analysis.Strengths) < maxPatternEntries && containsAny(details, strengthMarkers) {
			analysis.Strengths = append(analysis.Strengths, fact.Details)
		}
		if len(analysis.Challenges) < maxPatternEntries && containsAny(details, challengeMarkers) {
			analysis.Challenges = append(analysis.Challenges, fact.Details)
		}
	}

	goals := typeCounts[store.FactTypeGoal]
	struggles := typeCounts[store.FactTypeStruggle]
	interests := typeCounts[store.FactTypeTopicInterest]
	if goals > 2 {
		analysis.Patterns = append(analysis.Patterns, "goal-oriented")
	}
	if struggles > goals {
		analysis.Patterns = append(analysis.Patterns, "challenge-focused")
	}
	if interests > goals {
		analysis.Patterns = append(analysis.Patterns, "interest-driven")
	}

	return analysis, nil
}

func containsAny(text string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
