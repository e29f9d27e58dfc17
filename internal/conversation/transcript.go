package conversation

import "strings"

// FormatTranscript renders a conversation's messages as a Human:/Assistant: transcript.
func FormatTranscript(c Conversation) string {
	var sb strings.Builder
	for _, msg := range c.Messages {
		switch msg.Role {
		case RoleUser:
			sb.WriteString("Human: ")
		case RoleAssistant:
			sb.WriteString("Assistant: ")
		default:
			sb.WriteString(string(msg.Role) + ": ")
		}
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n")
	}
	return sb.String()
}
