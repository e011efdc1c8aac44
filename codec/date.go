package codec

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// ErrInvalidDate is returned by ParseDate when no layout matches.
var ErrInvalidDate = errors.New("codec: invalid date")

// looseLayouts are accepted in addition to RFC3339 when parsing is not strict.
var looseLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	time.RFC1123,
	time.RFC1123Z,
}

// ParseDate parses a date value. Strict parsing accepts time.Time and RFC3339
// strings only; loose parsing additionally accepts common layouts and epoch
// milliseconds given as a number.
func ParseDate(v any, strict bool) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case *time.Time:
		if t == nil {
			return time.Time{}, ErrInvalidDate
		}
		return *t, nil
	case string:
		return parseDateString(t, strict)
	}
	if strict {
		return time.Time{}, ErrInvalidDate
	}
	if ms, ok := Int(v); ok {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Time{}, ErrInvalidDate
}

func parseDateString(s string, strict bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	if t, err := parseRFC3339(s); err == nil {
		return t, nil
	}
	if strict {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range looseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if ms, ok := Int(json.Number(s)); ok {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Time{}, ErrInvalidDate
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

// FormatDate renders t in canonical form (UTC, RFC3339Nano; Go trims trailing zeros).
func FormatDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
