package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidDateTime = errors.New("model: invalid datetime")

// DateTimeLayout is the layout used for editing and displaying datetimes.
const DateTimeLayout = "2006-01-02 15:04"

var dateTimeLayouts = []string{
	DateTimeLayout,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseDateTime accepts RFC 3339 or a local "YYYY-MM-DD HH:MM" value.
func ParseDateTime(raw string, loc *time.Location) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDateTime)
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q (want %s)", ErrInvalidDateTime, value, DateTimeLayout)
}

// FormatDateTime renders t in loc, or "" for nil.
func FormatDateTime(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateTimeLayout)
}
