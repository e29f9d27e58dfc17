package conversation

import (
	"strconv"
	"strings"
)

// Role is the canonical author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Format identifies the product that produced an export file.
type Format string

const (
	FormatClaude Format = "Claude"
	FormatKura   Format = "Kura"
	FormatOpenAI Format = "OpenAI"
)

// Formats lists the supported source formats in display order.
var Formats = []Format{FormatClaude, FormatKura, FormatOpenAI}

// ParseFormat resolves a declared format tag. Matching is case-insensitive but the
// canonical tag is always returned.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if strings.EqualFold(string(f), strings.TrimSpace(s)) {
			return f, nil
		}
	}
	return "", &Error{Kind: KindUnsupportedFormat, Format: Format(s), Detail: "no normalizer for format " + strconv.Quote(s)}
}

// Message is a single canonical turn in a conversation.
type Message struct {
	CreatedAt string `json:"created_at"`
	Role      Role   `json:"role"`
	Content   string `json:"content"`
}

// Conversation is the canonical shape every source format is converted into.
type Conversation struct {
	ChatID    string    `json:"chat_id"`
	CreatedAt string    `json:"created_at"`
	Messages  []Message `json:"messages"`
}

// File is the result envelope of one normalization pass.
type File struct {
	Type          Format         `json:"type"`
	FileName      string         `json:"file_name"`
	Conversations []Conversation `json:"conversations"`
}

// MessageCount returns the total number of messages across all conversations.
func (f File) MessageCount() int {
	n := 0
	for _, c := range f.Conversations {
		n += len(c.Messages)
	}
	return n
}
