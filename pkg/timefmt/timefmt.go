// Package timefmt converts between the human-entry formats used by the
// portal's forms (12-hour clock times, free date values) and the canonical
// storage forms: dates as "2006-01-02" and times as 24-hour "15:04".
package timefmt

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// To24Hour converts a 12-hour clock string such as "3:04 PM" or "11:30 am"
// to the canonical 24-hour "HH:MM" form. Input already in canonical form is
// returned unchanged.
func To24Hour(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", fmt.Errorf("parse time %q: empty", s)
	}

	if t, err := ParseCanonicalTime(trimmed); err == nil {
		return t.Format(TimeLayout), nil
	}

	upper := strings.ToUpper(trimmed)
	for _, layout := range []string{"3:04 PM", "3:04PM", "03:04 PM", "15:04:05"} {
		if t, err := time.Parse(layout, upper); err == nil {
			return t.Format(TimeLayout), nil
		}
	}

	return "", fmt.Errorf("parse time %q: unrecognized format", s)
}

// CanonicalDate formats a time value as the canonical "YYYY-MM-DD" form.
func CanonicalDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseCanonicalDate parses a canonical "YYYY-MM-DD" string. The layout is
// strict: no time component, no alternate separators.
func ParseCanonicalDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// ParseCanonicalTime parses a canonical 24-hour "HH:MM" string.
func ParseCanonicalTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}
