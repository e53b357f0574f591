// Package assemble builds the token-budgeted message list for a model
// call: compose the system prompt, select the recent-history window,
// inject retrieved sources, and render provider-ready formats.
package assemble

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one conversation turn. Immutable once created; assembly
// augments copies in memory and never persists the result back.
type Message struct {
	ID                string   `json:"id"`
	SequenceNumber    int      `json:"sequenceNumber"`
	Role              string   `json:"role"`
	Content           string   `json:"content"`
	CreatedTs         int64    `json:"createdTs"`
	ImagePaths        []string `json:"imagePaths,omitempty"`
	AttachedSourceIDs []string `json:"attachedSourceIds,omitempty"`
}

// SourceItem is a retrieved snippet eligible for injection.
type SourceItem struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// Settings carries the per-chat model settings.
// ContextLength is the total token budget for everything sent to the
// model (system prompt plus included messages) and must be positive.
type Settings struct {
	Model                        string  `json:"model"`
	PromptTemplate               string  `json:"promptTemplate"`
	Temperature                  float32 `json:"temperature"`
	ContextLength                int     `json:"contextLength"`
	IncludeProfileContext        bool    `json:"includeProfileContext"`
	IncludeWorkspaceInstructions bool    `json:"includeWorkspaceInstructions"`
}

// ChatPayload is the full input for one assembly pass.
type ChatPayload struct {
	Settings              Settings     `json:"settings"`
	WorkspaceInstructions string       `json:"workspaceInstructions,omitempty"`
	AdminPrompt           string       `json:"adminPrompt,omitempty"`
	StudentSystemPrompt   string       `json:"studentSystemPrompt,omitempty"`
	Messages              []Message    `json:"messages"`
	MessageLevelSources   []SourceItem `json:"messageLevelSources,omitempty"`
	ChatLevelSources      []SourceItem `json:"chatLevelSources,omitempty"`
}

// ImageResolution maps a storage path on a message to resolved image
// data (typically a data URI or signed URL).
type ImageResolution struct {
	MessageID string `json:"messageId"`
	Path      string `json:"path"`
	Data      string `json:"data"`
}
