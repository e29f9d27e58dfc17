// Package normalize converts exported chat archives into canonical conversations.
//
// Each source format has a Normalizer that only reshapes the parsed document; the
// schema.Validator then decides whether the reshaped candidate is acceptable. A file is
// accepted or rejected as a whole.
package normalize

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/MikeSquared-Agency/convnorm/internal/conversation"
	"github.com/MikeSquared-Agency/convnorm/internal/schema"
)

// Normalizer reshapes one parsed export document into an untyped canonical candidate.
type Normalizer interface {
	Format() conversation.Format
	Normalize(root gjson.Result) (any, error)
}

var registry = map[conversation.Format]Normalizer{
	conversation.FormatClaude: claudeNormalizer{},
	conversation.FormatKura:   kuraNormalizer{},
	conversation.FormatOpenAI: openAINormalizer{},
}

// Lookup returns the normalizer for format.
func Lookup(format conversation.Format) (Normalizer, error) {
	n, ok := registry[format]
	if !ok {
		return nil, &conversation.Error{
			Kind:   conversation.KindUnsupportedFormat,
			Format: format,
			Detail: fmt.Sprintf("no normalizer for format %q", format),
		}
	}
	return n, nil
}

// Formats returns the formats that have a normalizer, in display order.
func Formats() []conversation.Format {
	out := make([]conversation.Format, 0, len(registry))
	for _, f := range conversation.Formats {
		if _, ok := registry[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

var defaultValidator = schema.MustNew()

// Normalize parses rawText as a format export and returns the validated envelope.
// Every failure is a *conversation.Error tagged with format.
func Normalize(format conversation.Format, rawText, fileName string) (conversation.File, error) {
	n, err := Lookup(format)
	if err != nil {
		return conversation.File{}, err
	}

	if !gjson.Valid(rawText) {
		return conversation.File{}, &conversation.Error{
			Kind:   conversation.KindUnparsableInput,
			Format: format,
			Detail: "input is not valid JSON",
		}
	}

	candidate, err := n.Normalize(gjson.Parse(rawText))
	if err != nil {
		return conversation.File{}, conversation.WithFormat(err, format)
	}

	convs, err := defaultValidator.Validate(candidate)
	if err != nil {
		return conversation.File{}, conversation.WithFormat(err, format)
	}

	return conversation.File{
		Type:          format,
		FileName:      fileName,
		Conversations: convs,
	}, nil
}

func shapeError(format conversation.Format, msg string, args ...any) *conversation.Error {
	return &conversation.Error{
		Kind:   conversation.KindNormalizationFailed,
		Format: format,
		Detail: fmt.Sprintf(msg, args...),
	}
}

// timestampError places a canonicalizer failure at path.
func timestampError(format conversation.Format, path string, err error) error {
	e := &conversation.Error{
		Kind:   conversation.KindInvalidTimestamp,
		Format: format,
		Path:   path,
	}
	var inner *conversation.Error
	if errors.As(err, &inner) {
		e.Detail = inner.Detail
	} else {
		e.Err = err
	}
	return e
}

// requireArray returns v's elements, or a shape error naming what was expected.
func requireArray(format conversation.Format, v gjson.Result, what string) ([]gjson.Result, error) {
	if !v.IsArray() {
		return nil, shapeError(format, "%s: expected an array, got %s", what, kindName(v))
	}
	return v.Array(), nil
}

func requireObject(format conversation.Format, v gjson.Result, what string) error {
	if !v.IsObject() {
		return shapeError(format, "%s: expected an object, got %s", what, kindName(v))
	}
	return nil
}

// field returns obj's value for key. When key repeats, the last occurrence wins, as it
// does for a generic JSON decode of the same document.
func field(obj gjson.Result, key string) gjson.Result {
	var out gjson.Result
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.Str == key {
			out = v
		}
		return true
	})
	return out
}

// member is one key of an object walked by members.
type member struct {
	key   string
	value gjson.Result
}

// members returns obj's entries in document order. A repeated key keeps the position of
// its first occurrence and the value of its last.
func members(obj gjson.Result) []member {
	var out []member
	index := make(map[string]int)
	obj.ForEach(func(k, v gjson.Result) bool {
		if i, ok := index[k.Str]; ok {
			out[i].value = v
			return true
		}
		index[k.Str] = len(out)
		out = append(out, member{key: k.Str, value: v})
		return true
	})
	return out
}

func kindName(v gjson.Result) string {
	switch {
	case !v.Exists():
		return "nothing"
	case v.IsObject():
		return "object"
	case v.IsArray():
		return "array"
	}
	switch v.Type {
	case gjson.Null:
		return "null"
	case gjson.String:
		return "string"
	case gjson.Number:
		return "number"
	case gjson.True, gjson.False:
		return "boolean"
	}
	return v.Type.String()
}
