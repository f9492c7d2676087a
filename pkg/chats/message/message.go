// Package message provides the structured payload sent to a model: a role and
// an ordered list of content parts.
package message

import (
	"strings"

	"github.com/germanamz/nmapsum/pkg/chats/content"
	"github.com/germanamz/nmapsum/pkg/chats/role"
)

// Message is an immutable-by-convention payload. Callers should not mutate
// Parts after handing a Message to a model client.
type Message struct {
	Role  role.Role
	Parts []content.Part
}

// New creates a Message with the given role and parts.
func New(r role.Role, parts ...content.Part) Message {
	return Message{Role: r, Parts: parts}
}

// NewText creates a Message with a single text part.
func NewText(r role.Role, text string) Message {
	return New(r, content.Text{Text: text})
}

// TextContent concatenates all text parts in order.
func (m Message) TextContent() string {
	var sb strings.Builder
	for _, p := range m.Parts {
		if t, ok := p.(content.Text); ok {
			sb.WriteString(t.Text)
		}
	}
	return sb.String()
}
