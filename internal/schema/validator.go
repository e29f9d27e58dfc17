// Package schema enforces the canonical conversation schema on untyped candidates.
package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"

	"github.com/MikeSquared-Agency/convnorm/internal/conversation"
)

type conversationCandidate struct {
	ChatID    *string `mapstructure:"chat_id" json:"chat_id" validate:"required"`
	CreatedAt *string `mapstructure:"created_at" json:"created_at" validate:"required,canonical_ts"`
	Messages  *[]any  `mapstructure:"messages" json:"messages" validate:"required"`
}

type messageCandidate struct {
	CreatedAt *string `mapstructure:"created_at" json:"created_at" validate:"required,canonical_ts"`
	Role      *string `mapstructure:"role" json:"role" validate:"required,oneof=user assistant"`
	Content   *string `mapstructure:"content" json:"content" validate:"required"`
}

// Validator checks candidates produced by the normalizers (or passed through verbatim)
// and narrows them to canonical conversations. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator with the canonical_ts rule registered.
func New() (*Validator, error) {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	err := v.RegisterValidation("canonical_ts", func(fl validator.FieldLevel) bool {
		return conversation.IsCanonical(fl.Field().String())
	})
	if err != nil {
		return nil, fmt.Errorf("register canonical_ts: %w", err)
	}
	return &Validator{validate: v}, nil
}

// MustNew is like New but panics if the validator cannot be built.
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks candidate in document order and returns the first violation as a
// *conversation.Error of kind KindSchemaValidationFailed. Unknown fields are ignored.
func (v *Validator) Validate(candidate any) ([]conversation.Conversation, error) {
	items, ok := candidate.([]any)
	if !ok {
		return nil, violation("", fmt.Sprintf("expected an array of conversations, got %s", describe(candidate)), nil)
	}

	out := make([]conversation.Conversation, 0, len(items))
	for i, item := range items {
		path := fmt.Sprintf("[%d]", i)
		c, err := v.conversation(path, item)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (v *Validator) conversation(path string, item any) (conversation.Conversation, error) {
	var cand conversationCandidate
	if err := v.decode(path, item, &cand); err != nil {
		return conversation.Conversation{}, err
	}

	raw := *cand.Messages
	c := conversation.Conversation{
		ChatID:    *cand.ChatID,
		CreatedAt: *cand.CreatedAt,
		Messages:  make([]conversation.Message, 0, len(raw)),
	}
	for j, m := range raw {
		var mc messageCandidate
		if err := v.decode(fmt.Sprintf("%s.messages[%d]", path, j), m, &mc); err != nil {
			return conversation.Conversation{}, err
		}
		c.Messages = append(c.Messages, conversation.Message{
			CreatedAt: *mc.CreatedAt,
			Role:      conversation.Role(*mc.Role),
			Content:   *mc.Content,
		})
	}
	return c, nil
}

// decode runs the type stage (per-key kind check, then strict mapstructure decode)
// followed by the value stage (struct tags) for one object.
func (v *Validator) decode(path string, item any, out any) error {
	obj, ok := item.(map[string]any)
	if !ok {
		return violation(path, fmt.Sprintf("wrong type: expected an object, got %s", describe(item)), nil)
	}
	if err := checkKinds(path, obj, out); err != nil {
		return err
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:    out,
		MatchName: func(mapKey, fieldName string) bool { return mapKey == fieldName },
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(item); err != nil {
		return violation(path, "wrong type", err)
	}

	if err := v.validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return violation(path, "invalid", err)
		}
		fe := verrs[0]
		return violation(path+"."+fe.Field(), reason(fe), nil)
	}
	return nil
}

// checkKinds compares every present, non-null key against the kind of the candidate
// field it decodes into, in field order. Null is left to the required rule.
func checkKinds(path string, obj map[string]any, out any) error {
	t := reflect.TypeOf(out).Elem()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key := f.Tag.Get("mapstructure")
		val, ok := obj[key]
		if !ok || val == nil {
			continue
		}
		want := f.Type.Elem().Kind()
		if reflect.TypeOf(val).Kind() != want {
			return violation(path+"."+key, fmt.Sprintf("wrong type: expected %s, got %s", kindName(want), describe(val)), nil)
		}
	}
	return nil
}

func kindName(k reflect.Kind) string {
	switch k {
	case reflect.Slice:
		return "array"
	case reflect.Map:
		return "object"
	default:
		return k.String()
	}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "missing"
	case "oneof":
		return fmt.Sprintf("invalid value %q: must be one of %s", valueOf(fe), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "canonical_ts":
		return fmt.Sprintf("malformed timestamp %q: want %s", valueOf(fe), conversation.CanonicalLayout)
	default:
		return "failed " + fe.Tag()
	}
}

func valueOf(fe validator.FieldError) string {
	rv := reflect.Indirect(reflect.ValueOf(fe.Value()))
	if !rv.IsValid() {
		return ""
	}
	return fmt.Sprint(rv.Interface())
}

func violation(path, detail string, err error) *conversation.Error {
	return &conversation.Error{
		Kind:   conversation.KindSchemaValidationFailed,
		Path:   path,
		Detail: detail,
		Err:    err,
	}
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
