// Package dateutil converts user-friendly date formats and parses the date
// shapes emitted by the upstream job API.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidDateFormat indicates an invalid date format string.
	ErrInvalidDateFormat = errors.New("invalid date format")

	// ErrUnparseableDate indicates a date value matched none of the known layouts.
	ErrUnparseableDate = errors.New("unparseable date")
)

// MaxDateFormatLength limits format string length.
const MaxDateFormatLength = 50

// Default display formats.
const (
	DefaultDateFormat      = "DD MMM YYYY"
	DefaultTimestampFormat = "DD MMM YYYY, HH:mm"
)

// formatTokens maps tokens to Go layout fragments, longest first so that
// "MMMM" wins over "MMM" and "MM".
var formatTokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"hh", "03"},
	{"mm", "04"},
	{"ss", "05"},
	{"A", "PM"},
	{"M", "1"},
	{"D", "2"},
}

// Presets are named shortcuts accepted wherever a format is.
var Presets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
	"short":    DefaultDateFormat,
}

// inputLayouts are tried in order when parsing upstream dates.
var inputLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// ParseDateFormat converts a user-friendly format (or preset name) to a Go
// time layout. Text inside brackets is kept literally: "[Posted] DD MMM".
func ParseDateFormat(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxDateFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}
	if preset, ok := Presets[strings.ToLower(format)]; ok {
		format = preset
	}

	var b strings.Builder
	b.Grow(len(format) + 8)

	for i := 0; i < len(format); {
		if format[i] == '[' {
			end := strings.IndexByte(format[i+1:], ']')
			if end == -1 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			b.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}

		matched := false
		for _, t := range formatTokens {
			if strings.HasPrefix(format[i:], t.token) {
				b.WriteString(t.layout)
				i += len(t.token)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(format[i])
			i++
		}
	}

	return b.String(), nil
}

// Format renders t with a user-friendly format. An invalid format falls back
// to DefaultDateFormat so rendering never fails on a bad setting.
func Format(t time.Time, format string) string {
	layout, err := ParseDateFormat(format)
	if err != nil {
		layout, _ = ParseDateFormat(DefaultDateFormat)
	}
	return t.Format(layout)
}

// Parse accepts the date shapes produced by the job API: RFC 3339
// timestamps, naive timestamps, and plain YYYY-MM-DD dates.
func Parse(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrUnparseableDate)
	}
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableDate, value)
}
