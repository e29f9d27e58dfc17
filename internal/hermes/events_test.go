package hermes

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/convnorm/internal/conversation"
)

func TestNewFileNormalized(t *testing.T) {
	f := conversation.File{
		Type:     conversation.FormatClaude,
		FileName: "conversations.json",
		Conversations: []conversation.Conversation{
			{ChatID: "a", Messages: make([]conversation.Message, 3)},
			{ChatID: "b", Messages: make([]conversation.Message, 1)},
		},
	}

	ev := NewFileNormalized(f)

	if _, err := uuid.Parse(ev.EventID); err != nil {
		t.Errorf("event_id %q is not a uuid: %v", ev.EventID, err)
	}
	if ev.Type != "Claude" || ev.FileName != "conversations.json" {
		t.Errorf("unexpected envelope fields: %+v", ev)
	}
	if ev.Conversations != 2 || ev.Messages != 4 {
		t.Errorf("counts = %d/%d, want 2/4", ev.Conversations, ev.Messages)
	}
}

func TestFileRejectedJSON(t *testing.T) {
	ev := NewFileRejected(conversation.FormatOpenAI, "bad.json", conversation.KindUnparsableInput, errors.New("boom"))

	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw["kind"] != "unparsable_input" {
		t.Errorf("kind = %q", raw["kind"])
	}
	if raw["type"] != "OpenAI" || raw["file_name"] != "bad.json" || raw["error"] != "boom" {
		t.Errorf("unexpected payload %v", raw)
	}
}

func TestSubjects(t *testing.T) {
	if SubjectFileNormalized != "convnorm.file.normalized" {
		t.Errorf("SubjectFileNormalized = %q", SubjectFileNormalized)
	}
	if SubjectFileRejected != "convnorm.file.rejected" {
		t.Errorf("SubjectFileRejected = %q", SubjectFileRejected)
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.Publish(SubjectFileNormalized, map[string]string{"a": "b"}); err != nil {
		t.Errorf("Nop.Publish returned %v", err)
	}
}
