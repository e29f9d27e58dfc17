package conversation

import (
	"errors"
	"fmt"
)

// Kind discriminates the failure modes of a normalization pass.
type Kind string

const (
	KindUnparsableInput        Kind = "unparsable_input"
	KindNormalizationFailed    Kind = "normalization_failed"
	KindInvalidTimestamp       Kind = "invalid_timestamp"
	KindSchemaValidationFailed Kind = "schema_validation_failed"
	KindUnsupportedFormat      Kind = "unsupported_format"
)

// Error is the single error type returned across the normalization boundary.
// Path is set for schema and timestamp failures, e.g. "[0].messages[2].role".
type Error struct {
	Kind   Kind
	Format Format
	Path   string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Format != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Format)
	}
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so errors.Is(err, &Error{Kind: k}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// UserMessage is the human-readable text a caller shows for this failure.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindUnsupportedFormat:
		return "The selected conversation type is not supported yet."
	case KindUnparsableInput:
		return fmt.Sprintf("Unable to parse the %s conversations file. The file is not valid JSON.", e.Format)
	default:
		return fmt.Sprintf("Unable to parse the %s conversations file. The file is not in the correct format.", e.Format)
	}
}

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// WithFormat tags err with format when it is an *Error that carries none yet.
func WithFormat(err error, format Format) error {
	var e *Error
	if errors.As(err, &e) && e.Format == "" {
		e.Format = format
	}
	return err
}
