package assemble

import "strings"

// Content part types.
const (
	PartTypeText     = "text"
	PartTypeImageURL = "image_url"
)

// ContentPart is one element of a multi-part message content.
type ContentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// FormatContent converts a message into the provider-neutral content
// representation. Messages without images pass through as plain text
// (parts is nil). Messages with images become an ordered part list:
// one text part followed by one image part per entry in ImagePaths.
func FormatContent(msg Message, images []ImageResolution) (string, []ContentPart) {
	if len(msg.ImagePaths) == 0 {
		return msg.Content, nil
	}

	parts := make([]ContentPart, 0, len(msg.ImagePaths)+1)
	parts = append(parts, ContentPart{Type: PartTypeText, Text: msg.Content})
	for _, path := range msg.ImagePaths {
		parts = append(parts, ContentPart{
			Type:     PartTypeImageURL,
			ImageURL: resolveImage(msg.ID, path, images),
		})
	}
	return "", parts
}

// resolveImage resolves an image reference. Data URIs pass through
// verbatim; anything else is treated as a storage path and matched
// against the caller-supplied resolutions. Unresolvable paths map to
// an empty string rather than failing the assembly.
func resolveImage(messageID, path string, images []ImageResolution) string {
	if strings.HasPrefix(path, "data:") {
		return path
	}
	for _, img := range images {
		if img.MessageID == messageID && img.Path == path {
			return img.Data
		}
	}
	return ""
}
