package extract

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/hrygo/tutormind/ai/knowledge"
	"github.com/hrygo/tutormind/store"
)

// Extractor turns a conversation transcript into fact candidates.
type Extractor interface {
	Extract(ctx context.Context, transcript string) ([]knowledge.Candidate, error)
}

// LLM parameters for fact extraction
const (
	extractTimeout     = 30 * time.Second
	extractMaxTokens   = 1024
	extractTemperature = 0.1
	transcriptMaxLen   = 8000
)

// Config holds configuration for the LLM-backed extractor.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string

	// RequestsPerSecond throttles extraction calls; zero disables the
	// limiter.
	RequestsPerSecond float64
}

// LLMExtractor extracts knowledge facts from transcripts with a chat
// completion model. Extraction is best-effort: API failures and
// malformed responses degrade to an empty candidate list so callers
// never fail a chat turn over it.
type LLMExtractor struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter
}

// NewLLMExtractor creates an extractor for any OpenAI-compatible
// provider.
func NewLLMExtractor(cfg Config) *LLMExtractor {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &LLMExtractor{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		limiter: limiter,
	}
}

// Extract asks the model for structured fact candidates. The returned
// error is reserved for context cancellation; provider errors and
// unparseable output log a warning and yield an empty list.
func (e *LLMExtractor) Extract(ctx context.Context, transcript string) ([]knowledge.Candidate, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return []knowledge.Candidate{}, nil
	}
	if len(transcript) > transcriptMaxLen {
		transcript = transcript[:transcriptMaxLen] + "..."
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       e.model,
		MaxTokens:   extractMaxTokens,
		Temperature: extractTemperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: extractSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: "Transcript:\n\n" + transcript,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "fact_extraction",
				Strict: true,
				Schema: extractJSONSchema,
			},
		},
	}

	start := time.Now()
	resp, err := e.client.CreateChatCompletion(ctx, req)
	latency := time.Since(start)

	if err != nil {
		// Caller cancellation propagates; provider failures, our own
		// timeout included, degrade to an empty list.
		if parent.Err() != nil {
			return nil, parent.Err()
		}
		slog.Warn("fact_extraction_failed",
			"model", e.model,
			"error", err,
			"latency_ms", latency.Milliseconds())
		return []knowledge.Candidate{}, nil
	}
	if len(resp.Choices) == 0 {
		slog.Warn("fact_extraction_empty_response", "model", e.model)
		return []knowledge.Candidate{}, nil
	}

	var result struct {
		Facts []extractedFact `json:"facts"`
	}
	content := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		slog.Warn("fact_extraction_parse_failed",
			"model", e.model,
			"content", content,
			"error", err)
		return []knowledge.Candidate{}, nil
	}

	candidates := make([]knowledge.Candidate, 0, len(result.Facts))
	for _, fact := range result.Facts {
		cand, ok := fact.toCandidate()
		if !ok {
			continue
		}
		candidates = append(candidates, cand)
	}

	slog.Debug("fact_extraction_success",
		"model", e.model,
		"candidates", len(candidates),
		"latency_ms", latency.Milliseconds(),
		"tokens_total", resp.Usage.TotalTokens)

	return candidates, nil
}

// extractedFact is the model-facing JSON shape. Invalid entries are
// dropped rather than failing the whole extraction.
type extractedFact struct {
	FactType   string   `json:"factType"`
	Subject    string   `json:"subject"`
	Details    string   `json:"details"`
	Confidence float64  `json:"confidence"`
	Tags       []string `json:"tags"`
}

func (f extractedFact) toCandidate() (knowledge.Candidate, bool) {
	factType := store.FactType(f.FactType)
	if !factType.IsValid() || strings.TrimSpace(f.Details) == "" {
		return knowledge.Candidate{}, false
	}
	if f.Confidence < 0 || f.Confidence > 1 {
		return knowledge.Candidate{}, false
	}

	cand := knowledge.Candidate{
		FactType: factType,
		Details:  f.Details,
		Tags:     f.Tags,
	}
	if f.Subject != "" {
		subject := f.Subject
		cand.Subject = &subject
	}
	confidence := f.Confidence
	cand.Confidence = &confidence
	return cand, true
}

// extractSystemPrompt instructs the model to emit durable learner
// facts only.
const extractSystemPrompt = `You extract durable facts about a learner from a tutoring conversation transcript.

Rules:
1. Only record facts that will still matter in future sessions: preferences, struggles, goals, topic interests, learning style. Use "other" sparingly.
2. Each fact gets a factType from: preference, struggle, goal, topic_interest, learning_style, other.
3. subject is the academic subject or skill the fact is about (e.g. "algebra", "essay writing"); leave it empty when none applies.
4. details is one self-contained sentence a tutor could read in isolation.
5. confidence is between 0 and 1: explicit statements score high, inferences score low.
6. Do not record transient state ("the student is tired today"), assistant behavior, or facts already implied by another fact you emit.
7. Return an empty facts array when the transcript contains nothing durable.`

// extractJSONSchema defines the structured output contract for fact
// extraction.
var extractJSONSchema = &jsonSchema{
	Type:                 "object",
	AdditionalProperties: false,
	Required:             []string{"facts"},
	Properties: map[string]*jsonSchema{
		"facts": {
			Type: "array",
			Items: &jsonSchema{
				Type:                 "object",
				AdditionalProperties: false,
				Required:             []string{"factType", "subject", "details", "confidence", "tags"},
				Properties: map[string]*jsonSchema{
					"factType": {
						Type: "string",
						Enum: []string{"preference", "struggle", "goal", "topic_interest", "learning_style", "other"},
					},
					"subject": {
						Type:        "string",
						Description: "Academic subject or skill; empty when not applicable",
					},
					"details": {
						Type:        "string",
						Description: "One self-contained sentence describing the fact",
					},
					"confidence": {
						Type:        "number",
						Description: "Extraction confidence between 0 and 1",
					},
					"tags": {
						Type:  "array",
						Items: &jsonSchema{Type: "string"},
					},
				},
			},
		},
	},
}

// jsonSchema implements json.Marshaler for OpenAI's JSON Schema format.
// The alias type prevents infinite recursion during marshaling.
type jsonSchema struct {
	Properties           map[string]*jsonSchema `json:"properties,omitempty"`
	Items                *jsonSchema            `json:"items,omitempty"`
	Type                 string                 `json:"type"`
	Description          string                 `json:"description,omitempty"`
	Required             []string               `json:"required,omitempty"`
	Enum                 []string               `json:"enum,omitempty"`
	AdditionalProperties bool                   `json:"additionalProperties"`
}

func (s *jsonSchema) MarshalJSON() ([]byte, error) {
	type alias jsonSchema
	return json.Marshal((*alias)(s))
}
