package assemble

import (
	openai "github.com/sashabaranov/go-openai"
)

// FlatMessages renders the assembled window as OpenAI-style chat
// messages: the system prompt as a leading system entry, then one entry
// per included message. Messages with images use multi-part content.
func FlatMessages(systemPrompt string, msgs []Message, images []ImageResolution) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs)+1)
	out = append(out, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})

	for _, msg := range msgs {
		text, parts := FormatContent(msg, images)
		if parts == nil {
			out = append(out, openai.ChatCompletionMessage{
				Role:    msg.Role,
				Content: text,
			})
			continue
		}

		multi := make([]openai.ChatMessagePart, 0, len(parts))
		for _, part := range parts {
			switch part.Type {
			case PartTypeText:
				multi = append(multi, openai.ChatMessagePart{
					Type: openai.ChatMessagePartTypeText,
					Text: part.Text,
				})
			case PartTypeImageURL:
				multi = append(multi, openai.ChatMessagePart{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: part.ImageURL},
				})
			}
		}
		out = append(out, openai.ChatCompletionMessage{
			Role:         msg.Role,
			MultiContent: multi,
		})
	}

	return out
}

// PartsMessage is the turn-based representation for providers that
// require role/parts entries.
type PartsMessage struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Part is a single text part.
type Part struct {
	Text string `json:"text"`
}

// PartsMessages renders the assembled window in role/parts form. The
// system prompt is carried as a role="user" entry, the convention for
// providers without a dedicated system role.
func PartsMessages(systemPrompt string, msgs []Message) []PartsMessage {
	out := make([]PartsMessage, 0, len(msgs)+1)
	out = append(out, PartsMessage{
		Role:  RoleUser,
		Parts: []Part{{Text: systemPrompt}},
	})
	for _, msg := range msgs {
		out = append(out, PartsMessage{
			Role:  msg.Role,
			Parts: []Part{{Text: msg.Content}},
		})
	}
	return out
}
