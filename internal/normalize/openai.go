package normalize

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/MikeSquared-Agency/convnorm/internal/conversation"
)

// openAINormalizer handles the conversations.json file of a ChatGPT data export. Messages
// live in the mapping object, keyed by node id, each node wrapping a message.
//
// The mapping is walked in document order. It is a tree and that order is not guaranteed
// to be chronological.
type openAINormalizer struct{}

func (openAINormalizer) Format() conversation.Format { return conversation.FormatOpenAI }

func (n openAINormalizer) Normalize(root gjson.Result) (any, error) {
	convs, err := requireArray(conversation.FormatOpenAI, root, "top level")
	if err != nil {
		return nil, err
	}

	out := make([]any, 0, len(convs))
	for i, c := range convs {
		cand, err := n.conversation(fmt.Sprintf("[%d]", i), c)
		if err != nil {
			return nil, err
		}
		out = append(out, cand)
	}
	return out, nil
}

func (n openAINormalizer) conversation(path string, c gjson.Result) (map[string]any, error) {
	const f = conversation.FormatOpenAI
	if err := requireObject(f, c, "conversation "+path); err != nil {
		return nil, err
	}

	id := field(c, "conversation_id")
	if !id.Exists() {
		return nil, shapeError(f, "conversation %s: missing conversation_id", path)
	}
	createdAt, err := epochTimestamp(path+".create_time", field(c, "create_time"))
	if err != nil {
		return nil, err
	}
	mapping := field(c, "mapping")
	if err := requireObject(f, mapping, "conversation "+path+" mapping"); err != nil {
		return nil, err
	}

	msgs := make([]any, 0)
	for _, node := range members(mapping) {
		msg, ok, err := n.message(fmt.Sprintf("%s.mapping.%s", path, node.key), node.value)
		if err != nil {
			return nil, err
		}
		if ok {
			msgs = append(msgs, msg)
		}
	}

	return map[string]any{
		"chat_id":    id.Value(),
		"created_at": createdAt,
		"messages":   msgs,
	}, nil
}

// message reshapes one mapping node. ok is false when the node carries no message, is a
// system or tool turn, or has no text.
func (openAINormalizer) message(path string, node gjson.Result) (map[string]any, bool, error) {
	const f = conversation.FormatOpenAI
	if err := requireObject(f, node, "mapping node "+path); err != nil {
		return nil, false, err
	}

	m := field(node, "message")
	if !m.Exists() || m.Type == gjson.Null {
		return nil, false, nil
	}
	if err := requireObject(f, m, "mapping node "+path+" message"); err != nil {
		return nil, false, err
	}

	author := field(m, "author")
	if err := requireObject(f, author, "message "+path+" author"); err != nil {
		return nil, false, err
	}
	authorRole := field(author, "role").String()
	if authorRole == "system" || authorRole == "tool" {
		return nil, false, nil
	}

	text, err := openAIText(path, field(m, "content"))
	if err != nil {
		return nil, false, err
	}
	if text == "" {
		return nil, false, nil
	}

	createdAt, err := epochTimestamp(path+".message.create_time", field(m, "create_time"))
	if err != nil {
		return nil, false, err
	}

	role := conversation.RoleAssistant
	if authorRole == "user" {
		role = conversation.RoleUser
	}
	return map[string]any{
		"created_at": createdAt,
		"role":       string(role),
		"content":    text,
	}, true, nil
}

// openAIText returns the trimmed first part of a text message, or "" for any other
// content type.
func openAIText(path string, content gjson.Result) (string, error) {
	if !content.IsObject() || field(content, "content_type").String() != "text" {
		return "", nil
	}
	parts := field(content, "parts")
	if !parts.IsArray() {
		return "", nil
	}
	all := parts.Array()
	if len(all) == 0 {
		return "", nil
	}
	if all[0].Type != gjson.String {
		return "", shapeError(conversation.FormatOpenAI, "message %s: first text part is %s, not a string", path, kindName(all[0]))
	}
	return strings.TrimSpace(all[0].Str), nil
}

// epochTimestamp canonicalizes a Unix epoch seconds value via millisecond resolution.
func epochTimestamp(path string, v gjson.Result) (string, error) {
	const f = conversation.FormatOpenAI
	if v.Type != gjson.Number {
		return "", timestampError(f, path, fmt.Errorf("expected epoch seconds, got %s", kindName(v)))
	}
	ts, err := conversation.CanonicalFromEpochMillis(v.Float() * 1000)
	if err != nil {
		return "", timestampError(f, path, err)
	}
	return ts, nil
}
