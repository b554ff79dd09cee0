package dataprocessing

import (
	"errors"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DefaultTimestampLayout is the layout written for timestamp columns
const DefaultTimestampLayout = "2006-01-02T15:04:05Z"

var errEmptyTimestamp = errors.New("empty timestamp")

// ParseTimestamp parses a timestamp in any common format. Values without a
// zone are read as UTC; the result is converted to UTC and truncated to
// whole seconds.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errEmptyTimestamp
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC().Truncate(time.Second), nil
}

// FormatTimestamp renders t in UTC with layout, or DefaultTimestampLayout when empty
func FormatTimestamp(t time.Time, layout string) string {
	if layout == "" {
		layout = DefaultTimestampLayout
	}
	return t.UTC().Format(layout)
}
