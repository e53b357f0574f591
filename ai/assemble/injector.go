package assemble

import (
	"log/slog"
	"strings"
)

const sourcesHeader = "You may use the following sources:"

func sourceBlock(content string) string {
	return "<BEGIN SOURCE>\n" + content + "\n</END SOURCE>"
}

func appendSources(content string, blocks []string) string {
	return content + "\n\n" + sourcesHeader + "\n" + strings.Join(blocks, "\n")
}

// InjectSources rewrites message content to carry retrieved source
// blocks. Two independent rules:
//
//   - Message-level sources are appended to the last (newest) included
//     message.
//   - Chat-level sources referenced by a message's attachedSourceIds are
//     appended to the immediately preceding included message, never to
//     the referencing message itself. A reference on the first message
//     of the window has no preceding target and is dropped.
//
// Injection runs after budget allocation and is never counted against
// the token budget; the assembled prompt can therefore exceed the
// nominal budget. That ordering is part of the contract.
//
// Returns the rewritten window and the number of injected sources.
func InjectSources(included []Message, messageLevel, chatLevel []SourceItem) ([]Message, int) {
	out := append([]Message(nil), included...)
	if len(out) == 0 {
		return out, 0
	}

	injected := 0

	if len(messageLevel) > 0 {
		blocks := make([]string, 0, len(messageLevel))
		for _, src := range messageLevel {
			blocks = append(blocks, sourceBlock(src.Content))
		}
		out[len(out)-1].Content = appendSources(out[len(out)-1].Content, blocks)
		injected += len(blocks)
	}

	if len(chatLevel) > 0 {
		byID := make(map[string]SourceItem, len(chatLevel))
		for _, src := range chatLevel {
			byID[src.ID] = src
		}

		// Collect blocks per target first so that multiple referencing
		// messages accumulate on the same target in encounter order.
		pending := make(map[int][]string)
		for i, msg := range out {
			for _, id := range msg.AttachedSourceIDs {
				src, ok := byID[id]
				if !ok {
					continue
				}
				if i == 0 {
					slog.Debug("dropping chat-level source with no preceding message",
						"source_id", id, "message_id", msg.ID)
					continue
				}
				pending[i-1] = append(pending[i-1], sourceBlock(src.Content))
				injected++
			}
		}

		for i := range out {
			if blocks, ok := pending[i]; ok {
				out[i].Content = appendSources(out[i].Content, blocks)
			}
		}
	}

	return out, injected
}
