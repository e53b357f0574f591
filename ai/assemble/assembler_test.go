package assemble

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/tutormind/ai/token"
)

func TestAssembleEndToEnd(t *testing.T) {
	assembler := NewAssembler(token.RuneCount)

	payload := &ChatPayload{
		Settings: Settings{
			PromptTemplate: "You are a tutor.",
			ContextLength:  1000,
		},
		Messages: []Message{
			{ID: "m1", Role: RoleUser, Content: "What is a derivative?", AttachedSourceIDs: []string{"c1"}},
		},
		MessageLevelSources: []SourceItem{{ID: "s1", Content: "calculus notes"}},
		ChatLevelSources:    []SourceItem{{ID: "c1", Content: "syllabus"}},
	}

	result, err := assembler.Assemble(&Request{
		Payload:       payload,
		AssistantName: "Ada",
		Now:           time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.SystemPrompt, "<INJECT ROLE>"))
	assert.Contains(t, result.SystemPrompt, "Today is 2026-01-02.")
	assert.Contains(t, result.SystemPrompt, "User Instructions:\nYou are a tutor.")

	require.Len(t, result.Messages, 1)
	assert.Contains(t, result.Messages[0].Content, "calculus notes",
		"message-level source lands on the last message")
	assert.NotContains(t, result.Messages[0].Content, "syllabus",
		"chat-level reference on the first window message is dropped")

	// usedTokens covers the system prompt and original message content
	// only; injected source text is added afterwards and not counted.
	expectedUsed := token.RuneCount(result.SystemPrompt) + token.RuneCount("What is a derivative?")
	assert.Equal(t, expectedUsed, result.UsedTokens)
	assert.Greater(t, token.RuneCount(result.Messages[0].Content), token.RuneCount("What is a derivative?"),
		"assembled content exceeds what usedTokens accounts for")

	require.Len(t, result.Flat, 2)
	assert.Equal(t, "system", result.Flat[0].Role)
	require.Len(t, result.Parts, 2)
	assert.Equal(t, RoleUser, result.Parts[0].Role)
}

func TestAssembleValidation(t *testing.T) {
	assembler := NewAssembler(nil)

	t.Run("NilPayload", func(t *testing.T) {
		_, err := assembler.Assemble(&Request{})
		assert.Error(t, err)
	})

	t.Run("NonPositiveContextLength", func(t *testing.T) {
		_, err := assembler.Assemble(&Request{Payload: &ChatPayload{}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "context length")
	})
}

func TestAssembleProfileContextGating(t *testing.T) {
	assembler := NewAssembler(token.RuneCount)
	base := &ChatPayload{
		Settings: Settings{
			PromptTemplate:        "Base",
			ContextLength:         500,
			IncludeProfileContext: false,
		},
	}

	off, err := assembler.Assemble(&Request{Payload: base, ProfileContext: "Knows algebra"})
	require.NoError(t, err)
	assert.NotContains(t, off.SystemPrompt, "User Info:")

	base.Settings.IncludeProfileContext = true
	on, err := assembler.Assemble(&Request{Payload: base, ProfileContext: "Knows algebra"})
	require.NoError(t, err)
	assert.Contains(t, on.SystemPrompt, "User Info:\nKnows algebra")
}

func TestAssembleTightBudgetDropsHistory(t *testing.T) {
	assembler := NewAssembler(token.RuneCount)

	payload := &ChatPayload{
		Settings: Settings{PromptTemplate: "Base", ContextLength: 25},
		Messages: []Message{
			{ID: "old", Role: RoleUser, Content: strings.Repeat("a", 500)},
			{ID: "new", Role: RoleUser, Content: "hi"},
		},
	}

	result, err := assembler.Assemble(&Request{Payload: payload})
	require.NoError(t, err)
	require.Len(t, result.Messages, 1)
	assert.Equal(t, "hi", result.Messages[0].ID)
}
