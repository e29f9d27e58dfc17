package conversation

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// CanonicalLayout is the canonical timestamp form: UTC, six fractional digits.
const CanonicalLayout = "2006-01-02T15:04:05.000000Z"

// maxEpochMillis bounds the representable instant range of an epoch millisecond value.
const maxEpochMillis = 8.64e15

// isoLayouts are tried in order. Layouts without a zone are read as UTC.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseISO parses an ISO 8601 date or date-time string into a UTC instant.
func ParseISO(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, invalidTimestamp(fmt.Sprintf("unrecognized date string %q", s))
}

// CanonicalFromISO canonicalizes an ISO 8601 string.
func CanonicalFromISO(s string) (string, error) {
	t, err := ParseISO(s)
	if err != nil {
		return "", err
	}
	return Canonical(t)
}

// CanonicalFromEpochMillis canonicalizes a Unix epoch value in milliseconds. Fractional
// milliseconds are truncated toward zero.
func CanonicalFromEpochMillis(ms float64) (string, error) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || math.Abs(ms) > maxEpochMillis {
		return "", invalidTimestamp(fmt.Sprintf("epoch value %v out of range", ms))
	}
	return Canonical(time.UnixMilli(int64(math.Trunc(ms))))
}

// Canonical formats t in the canonical layout at millisecond precision, padded to six
// fractional digits.
func Canonical(t time.Time) (string, error) {
	t = t.UTC().Truncate(time.Millisecond)
	if y := t.Year(); y < 0 || y > 9999 {
		return "", invalidTimestamp(fmt.Sprintf("year %d not representable", y))
	}
	return t.Format(CanonicalLayout), nil
}

// IsCanonical reports whether s is a well-formed canonical timestamp.
func IsCanonical(s string) bool {
	if len(s) != len(CanonicalLayout) {
		return false
	}
	_, err := time.Parse(CanonicalLayout, s)
	return err == nil
}

func invalidTimestamp(detail string) *Error {
	return &Error{Kind: KindInvalidTimestamp, Detail: detail}
}
