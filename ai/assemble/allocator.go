package assemble

import (
	"github.com/hrygo/tutormind/ai/token"
)

// Allocate selects a contiguous suffix of messages that fits in the
// budget after the system prompt cost. Messages are walked newest to
// oldest; the walk stops entirely at the first message that does not
// fit, even if strictly older messages are individually small. This
// models a single recent-history window, not best-fit packing.
//
// Accounting quirk, kept for compatibility: the newest message is
// checked against the remaining budget but its cost is not deducted
// from it, so the window can nominally overrun the budget by up to the
// newest message's cost. usedTokens always reports the true total:
// systemPromptTokens plus the cost of every included message, measured
// over original content. Budget exhaustion is not an error; it simply
// yields fewer messages.
func Allocate(counter token.Counter, systemPromptTokens, budget int, messages []Message) ([]Message, int) {
	used := systemPromptTokens
	remaining := budget - systemPromptTokens
	if remaining <= 0 {
		return nil, used
	}

	start := len(messages)
	for i := len(messages) - 1; i >= 0; i-- {
		cost := counter.Count(messages[i].Content)
		if cost > remaining {
			break
		}
		if i < len(messages)-1 {
			remaining -= cost
		}
		used += cost
		start = i
	}

	// Copy so that later injection never mutates the caller's slice.
	included := append([]Message(nil), messages[start:]...)
	return included, used
}
