package assemble

import (
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pkg/errors"

	"github.com/hrygo/tutormind/ai/prompt"
	"github.com/hrygo/tutormind/ai/token"
)

// Request is the input for one full assembly pass.
type Request struct {
	Payload *ChatPayload

	// AssistantName enables the role-injection prompt block.
	AssistantName string

	// ProfileContext is the personalization text (typically a fact
	// profile summary); included only when the settings allow it.
	ProfileContext string

	// Images resolves message image paths to data.
	Images []ImageResolution

	// Now overrides the date used in the system prompt; zero means
	// time.Now().
	Now time.Time
}

// Result is the assembled, provider-ready output.
type Result struct {
	SystemPrompt string

	// Messages is the included window with sources injected.
	Messages []Message

	// UsedTokens is the system prompt cost plus the cost of included
	// messages over their original content. Injected source text is
	// added after allocation and deliberately not counted, so the
	// assembled prompt can exceed this figure.
	UsedTokens int

	Flat  []openai.ChatCompletionMessage
	Parts []PartsMessage
}

// Assembler runs the compose -> allocate -> inject -> format pipeline.
// It is stateless and safe for concurrent use.
type Assembler struct {
	counter token.Counter
}

// NewAssembler creates an assembler with the given token counter.
// A nil counter falls back to token.RuneCount.
func NewAssembler(counter token.Counter) *Assembler {
	return &Assembler{counter: counter}
}

// Assemble builds the final message list for a model call.
func (a *Assembler) Assemble(req *Request) (*Result, error) {
	if req == nil || req.Payload == nil {
		return nil, errors.New("payload required")
	}
	payload := req.Payload
	if payload.Settings.ContextLength <= 0 {
		return nil, errors.Errorf("context length must be a positive integer, got %d", payload.Settings.ContextLength)
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	systemPrompt := prompt.Compose(prompt.Input{
		AssistantName:                req.AssistantName,
		Date:                         now,
		AdminPrompt:                  payload.AdminPrompt,
		StudentPrompt:                payload.StudentSystemPrompt,
		ProfileContext:               req.ProfileContext,
		WorkspaceInstructions:        payload.WorkspaceInstructions,
		BasePrompt:                   payload.Settings.PromptTemplate,
		IncludeProfileContext:        payload.Settings.IncludeProfileContext,
		IncludeWorkspaceInstructions: payload.Settings.IncludeWorkspaceInstructions,
	})

	systemTokens := a.counter.Count(systemPrompt)
	included, usedTokens := Allocate(a.counter, systemTokens, payload.Settings.ContextLength, payload.Messages)
	injected, injectedCount := InjectSources(included, payload.MessageLevelSources, payload.ChatLevelSources)

	assembledTokens.Observe(float64(usedTokens))
	includedMessages.Observe(float64(len(injected)))
	injectedSources.Add(float64(injectedCount))

	slog.Debug("assembled prompt",
		"system_tokens", systemTokens,
		"budget", payload.Settings.ContextLength,
		"used_tokens", usedTokens,
		"included_messages", len(injected),
		"total_messages", len(payload.Messages),
		"injected_sources", injectedCount)

	return &Result{
		SystemPrompt: systemPrompt,
		Messages:     injected,
		UsedTokens:   usedTokens,
		Flat:         FlatMessages(systemPrompt, injected, req.Images),
		Parts:        PartsMessages(systemPrompt, injected),
	}, nil
}
