package conversation

import (
	"errors"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"Claude": FormatClaude,
		"kura":   FormatKura,
		"OPENAI": FormatOpenAI,
		" Kura ": FormatKura,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil {
			t.Errorf("ParseFormat(%q) error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseFormat(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseFormat_Unsupported(t *testing.T) {
	_, err := ParseFormat("Gemini")
	if KindOf(err) != KindUnsupportedFormat {
		t.Fatalf("expected unsupported_format, got %v", err)
	}
	var e *Error
	if !errors.As(err, &e) {
		t.Fatal("expected *Error")
	}
	if e.UserMessage() != "The selected conversation type is not supported yet." {
		t.Errorf("unexpected user message %q", e.UserMessage())
	}
}

func TestError_Message(t *testing.T) {
	err := &Error{Kind: KindSchemaValidationFailed, Format: FormatKura, Path: "[0].messages[1].role", Detail: "invalid value"}
	got := err.Error()
	want := "schema_validation_failed (Kura) at [0].messages[1].role: invalid value"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !strings.Contains(err.UserMessage(), "Kura") {
		t.Errorf("user message should name the format, got %q", err.UserMessage())
	}
}

func TestWithFormat(t *testing.T) {
	err := WithFormat(&Error{Kind: KindInvalidTimestamp}, FormatClaude)
	var e *Error
	if !errors.As(err, &e) || e.Format != FormatClaude {
		t.Errorf("expected format Claude, got %v", err)
	}

	err = WithFormat(&Error{Kind: KindInvalidTimestamp, Format: FormatOpenAI}, FormatClaude)
	if !errors.As(err, &e) || e.Format != FormatOpenAI {
		t.Errorf("existing format should be kept, got %q", e.Format)
	}
}

func TestKindOf_ForeignError(t *testing.T) {
	if k := KindOf(errors.New("boom")); k != "" {
		t.Errorf("KindOf(plain error) = %q, want empty", k)
	}
}

func TestFileMessageCount(t *testing.T) {
	f := File{Conversations: []Conversation{
		{Messages: make([]Message, 2)},
		{Messages: make([]Message, 3)},
		{},
	}}
	if n := f.MessageCount(); n != 5 {
		t.Errorf("MessageCount() = %d, want 5", n)
	}
}

func TestFormatTranscript(t *testing.T) {
	c := Conversation{Messages: []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	}}
	got := FormatTranscript(c)
	want := "Human: hi\n\nAssistant: hello\n\n"
	if got != want {
		t.Errorf("FormatTranscript() = %q, want %q", got, want)
	}
}
