package normalize

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/MikeSquared-Agency/convnorm/internal/conversation"
)

// claudeNormalizer handles the conversations.json file of a Claude data export: an array
// of conversations carrying uuid, ISO created_at and a chat_messages array.
type claudeNormalizer struct{}

func (claudeNormalizer) Format() conversation.Format { return conversation.FormatClaude }

func (n claudeNormalizer) Normalize(root gjson.Result) (any, error) {
	convs, err := requireArray(conversation.FormatClaude, root, "top level")
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

// claudeMessage is a reshaped message plus the keys it is ordered by.
type claudeMessage struct {
	ts    time.Time
	human bool
	value map[string]any
}

func (n claudeNormalizer) conversation(path string, c gjson.Result) (map[string]any, error) {
	const f = conversation.FormatClaude
	if err := requireObject(f, c, "conversation "+path); err != nil {
		return nil, err
	}

	uuid := field(c, "uuid")
	if !uuid.Exists() {
		return nil, shapeError(f, "conversation %s: missing uuid", path)
	}
	createdAt, _, err := claudeTimestamp(path+".created_at", field(c, "created_at"))
	if err != nil {
		return nil, err
	}
	raw, err := requireArray(f, field(c, "chat_messages"), "conversation "+path+" chat_messages")
	if err != nil {
		return nil, err
	}

	msgs := make([]claudeMessage, 0, len(raw))
	for j, m := range raw {
		msg, err := n.message(fmt.Sprintf("%s.chat_messages[%d]", path, j), m)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}

	// Ascending by source timestamp; on a tie the human turn goes first.
	sort.SliceStable(msgs, func(a, b int) bool {
		if !msgs[a].ts.Equal(msgs[b].ts) {
			return msgs[a].ts.Before(msgs[b].ts)
		}
		return msgs[a].human && !msgs[b].human
	})

	values := make([]any, len(msgs))
	for k, m := range msgs {
		values[k] = m.value
	}
	return map[string]any{
		"chat_id":    uuid.Value(),
		"created_at": createdAt,
		"messages":   values,
	}, nil
}

func (claudeNormalizer) message(path string, m gjson.Result) (claudeMessage, error) {
	const f = conversation.FormatClaude
	if err := requireObject(f, m, "message "+path); err != nil {
		return claudeMessage{}, err
	}

	createdAt, ts, err := claudeTimestamp(path+".created_at", field(m, "created_at"))
	if err != nil {
		return claudeMessage{}, err
	}

	sender := field(m, "sender")
	if !sender.Exists() {
		return claudeMessage{}, shapeError(f, "message %s: missing sender", path)
	}
	human := sender.Type == gjson.String && sender.Str == "human"
	role := conversation.RoleAssistant
	if human {
		role = conversation.RoleUser
	}

	items, err := requireArray(f, field(m, "content"), "message "+path+" content")
	if err != nil {
		return claudeMessage{}, err
	}
	var texts []string
	for k, item := range items {
		if err := requireObject(f, item, fmt.Sprintf("message %s content[%d]", path, k)); err != nil {
			return claudeMessage{}, err
		}
		if typ := field(item, "type"); typ.Type != gjson.String || typ.Str != "text" {
			continue
		}
		text := field(item, "text")
		if text.Type != gjson.String {
			return claudeMessage{}, shapeError(f, "message %s content[%d]: text block without text", path, k)
		}
		texts = append(texts, text.Str)
	}

	return claudeMessage{
		ts:    ts,
		human: human,
		value: map[string]any{
			"created_at": createdAt,
			"role":       string(role),
			"content":    strings.Join(texts, "\n"),
		},
	}, nil
}

// claudeTimestamp canonicalizes an ISO date string and also returns the parsed instant
// for ordering.
func claudeTimestamp(path string, v gjson.Result) (string, time.Time, error) {
	const f = conversation.FormatClaude
	if !v.Exists() {
		return "", time.Time{}, shapeError(f, "%s: missing", path)
	}
	if v.Type != gjson.String {
		return "", time.Time{}, timestampError(f, path, fmt.Errorf("expected an ISO date string, got %s", kindName(v)))
	}
	ts, err := conversation.ParseISO(v.Str)
	if err != nil {
		return "", time.Time{}, timestampError(f, path, err)
	}
	canonical, err := conversation.Canonical(ts)
	if err != nil {
		return "", time.Time{}, timestampError(f, path, err)
	}
	return canonical, ts, nil
}
