package dateutil

import (
	"errors"
	"testing"
	"time"
)

func TestParseDateFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  string
		want    string
		wantErr error
	}{
		{name: "year", format: "YYYY", want: "2006"},
		{name: "short month", format: "MMM", want: "Jan"},
		{name: "full month wins over short", format: "MMMM", want: "January"},
		{name: "default display format", format: DefaultDateFormat, want: "02 Jan 2006"},
		{name: "timestamp format", format: DefaultTimestampFormat, want: "02 Jan 2006, 15:04"},
		{name: "twelve hour clock", format: "hh:mm A", want: "03:04 PM"},
		{name: "preset iso", format: "iso", want: "2006-01-02"},
		{name: "preset is case-insensitive", format: "LONG", want: "January 2, 2006"},
		{name: "bracket literal", format: "[Due] DD/MM", want: "Due 02/01"},
		{name: "literal characters kept", format: "DD.MM.YYYY", want: "02.01.2006"},
		{name: "empty format", format: "", wantErr: ErrInvalidDateFormat},
		{name: "unclosed bracket", format: "[oops DD", wantErr: ErrInvalidDateFormat},
		{name: "too long", format: "YYYY-MM-DD YYYY-MM-DD YYYY-MM-DD YYYY-MM-DD YYYY-MM-DD", wantErr: ErrInvalidDateFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseDateFormat(tt.format)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseDateFormat(%q) error = %v, want %v", tt.format, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDateFormat(%q) unexpected error: %v", tt.format, err)
			}
			if got != tt.want {
				t.Errorf("ParseDateFormat(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, time.March, 7, 14, 5, 0, 0, time.UTC)

	tests := []struct {
		name   string
		format string
		want   string
	}{
		{name: "default", format: DefaultDateFormat, want: "07 Mar 2025"},
		{name: "timestamp", format: DefaultTimestampFormat, want: "07 Mar 2025, 14:05"},
		{name: "invalid falls back to default", format: "[broken", want: "07 Mar 2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Format(ts, tt.format); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{name: "plain date", value: "2025-06-30", want: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)},
		{name: "rfc3339", value: "2025-06-30T10:15:00Z", want: time.Date(2025, 6, 30, 10, 15, 0, 0, time.UTC)},
		{name: "rfc3339 with fraction", value: "2025-06-30T10:15:00.123456Z", want: time.Date(2025, 6, 30, 10, 15, 0, 123456000, time.UTC)},
		{name: "naive timestamp", value: "2025-06-30 10:15:00", want: time.Date(2025, 6, 30, 10, 15, 0, 0, time.UTC)},
		{name: "surrounding whitespace", value: "  2025-06-30 ", want: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)},
		{name: "empty", value: "", wantErr: true},
		{name: "garbage", value: "next tuesday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tt.value)
			if tt.wantErr {
				if !errors.Is(err, ErrUnparseableDate) {
					t.Fatalf("Parse(%q) error = %v, want ErrUnparseableDate", tt.value, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.value, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
