package normalize

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/MikeSquared-Agency/convnorm/internal/conversation"
)

const kuraDump = `[
	{"chat_id":"k1","created_at":"2024-03-01T10:00:00.123456Z","messages":[
		{"created_at":"2024-03-01T10:00:01.000000Z","role":"user","content":"What is kura?"},
		{"created_at":"2024-03-01T10:00:02.500000Z","role":"assistant","content":""}
	]},
	{"chat_id":"k2","created_at":"2024-03-02T10:00:00.000000Z","messages":[]}
]`

func TestKura_Identity(t *testing.T) {
	file, err := Normalize(conversation.FormatKura, kuraDump, "kura.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var want []conversation.Conversation
	if err := json.Unmarshal([]byte(kuraDump), &want); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	if !reflect.DeepEqual(file.Conversations, want) {
		t.Errorf("output differs from input:\n got %+v\nwant %+v", file.Conversations, want)
	}
}

func TestKura_RejectsNonCanonical(t *testing.T) {
	raw := `[{"chat_id":"k1","created_at":"2024-03-01T10:00:00Z","messages":[]}]`
	_, err := Normalize(conversation.FormatKura, raw, "kura.json")
	e := expectKind(t, err, conversation.KindSchemaValidationFailed, conversation.FormatKura)
	if e.Path != "[0].created_at" {
		t.Errorf("path = %q", e.Path)
	}
}

func TestKura_RejectsUnknownRole(t *testing.T) {
	raw := `[{"chat_id":"k1","created_at":"2024-03-01T10:00:00.000000Z","messages":[
		{"created_at":"2024-03-01T10:00:01.000000Z","role":"system","content":"x"}]}]`
	_, err := Normalize(conversation.FormatKura, raw, "kura.json")
	e := expectKind(t, err, conversation.KindSchemaValidationFailed, conversation.FormatKura)
	if e.Path != "[0].messages[0].role" {
		t.Errorf("path = %q", e.Path)
	}
}

func TestKura_WrongTypeNamesField(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		path string
	}{
		{"numeric chat_id", `[{"chat_id":42,"created_at":"2024-03-01T10:00:00.000000Z","messages":[]}]`, "[0].chat_id"},
		{"array content", `[{"chat_id":"k1","created_at":"2024-03-01T10:00:00.000000Z","messages":[
			{"created_at":"2024-03-01T10:00:01.000000Z","role":"user","content":["x"]}]}]`, "[0].messages[0].content"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(conversation.FormatKura, tt.raw, "kura.json")
			e := expectKind(t, err, conversation.KindSchemaValidationFailed, conversation.FormatKura)
			if e.Path != tt.path {
				t.Errorf("path = %q, want %q", e.Path, tt.path)
			}
		})
	}
}

func TestKura_DuplicateKeyLastWins(t *testing.T) {
	raw := `[{"chat_id":"a","chat_id":"b","created_at":"2024-03-01T10:00:00.000000Z","messages":[]}]`
	file, err := Normalize(conversation.FormatKura, raw, "kura.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := file.Conversations[0].ChatID; got != "b" {
		t.Errorf("chat_id = %q, want b", got)
	}
}
