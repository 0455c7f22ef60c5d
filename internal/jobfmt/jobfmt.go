// Package jobfmt holds the display rules for job-description fields: money,
// experience ranges, multi-value fields, bullet lists and fixed vocabularies.
//
// Every function here is pure and total: absent input yields a placeholder,
// never an error.
package jobfmt

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Placeholder strings for absent values.
const (
	NotSpecified = "Not specified"
	NotAvailable = "Not Available"
)

// numberPrinter groups thousands with English separators ("1,200,000").
var numberPrinter = message.NewPrinter(language.English)

// Number renders v with thousands separators. Whole values print without
// decimals; fractional values keep two.
func Number(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return numberPrinter.Sprintf("%d", int64(v))
	}
	return numberPrinter.Sprintf("%.2f", v)
}

// Salary formats a salary range:
//
//	both bounds  -> "INR 500,000 - 900,000"
//	minimum only -> "INR 500,000+"
//	maximum only -> "INR Up to 900,000"
//	neither      -> "Not specified"
func Salary(min, max *float64, currency string) string {
	prefix := strings.TrimSpace(currency)
	if prefix != "" {
		prefix += " "
	}

	switch {
	case min != nil && max != nil:
		return prefix + Number(*min) + " - " + Number(*max)
	case min != nil:
		return prefix + Number(*min) + "+"
	case max != nil:
		return prefix + "Up to " + Number(*max)
	default:
		return NotSpecified
	}
}

// Experience formats an experience range in years. An explicit minimum of
// zero with a maximum reads as "Up to N years", never "0 - N years".
func Experience(min, max *float64) string {
	switch {
	case min != nil && max != nil && *min == 0:
		return "Up to " + years(*max)
	case min != nil && max != nil:
		return trimFloat(*min) + " - " + years(*max)
	case min != nil:
		return trimFloat(*min) + "+ years"
	case max != nil:
		return "Up to " + years(*max)
	default:
		return NotSpecified
	}
}

func years(v float64) string {
	return trimFloat(v) + " years"
}

// trimFloat prints 3 as "3" and 2.5 as "2.5".
func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// jobTypes is the fixed job-type vocabulary.
var jobTypes = map[string]string{
	"full_time":  "Full time",
	"part_time":  "Part Time",
	"contract":   "Contract",
	"internship": "Internship",
	"freelance":  "Freelance",
}

// JobType maps an API job type to its label. Unknown values pass through.
func JobType(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return NotSpecified
	}
	if label, ok := jobTypes[strings.ToLower(v)]; ok {
		return label
	}
	return v
}

// Values normalizes a multi-value field into its individual entries. Array
// literals that leaked into a string, such as `{"Pune","Remote"}` or
// `['B.Tech']`, lose their outer brackets and the quotes wrapping each
// entry. Brackets and quotes inside an entry are kept.
func Values(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(unwrap(item), ",") {
			if part = unquote(strings.TrimSpace(part)); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// unwrap strips matching outer [] or {} pairs.
func unwrap(s string) string {
	s = strings.TrimSpace(s)
	for len(s) >= 2 && (s[0] == '[' && s[len(s)-1] == ']' || s[0] == '{' && s[len(s)-1] == '}') {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// unquote strips one pair of matching single or double quotes.
func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// JoinValues renders a multi-value field as one human string ("Pune, Remote").
// Returns "" when nothing usable remains.
func JoinValues(items []string) string {
	return strings.Join(Values(items), ", ")
}

// ValueOr is JoinValues with a fallback for empty results.
func ValueOr(items []string, fallback string) string {
	if s := JoinValues(items); s != "" {
		return s
	}
	return fallback
}

// bulletMarkers are leading markers stripped from free-text lines so the
// rendered list does not show double bullets.
const bulletMarkers = "-*•·–—▪►✓"

// Bullets splits free text into list items: one per non-empty line, with any
// leading bullet markers removed.
func Bullets(text string) []string {
	var items []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, bulletMarkers+" \t")
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}

// SkillColumns picks the skills grid width: one column for a single skill,
// two for two, three for anything larger.
func SkillColumns(n int) int {
	switch {
	case n <= 0:
		return 0
	case n < 3:
		return n
	default:
		return 3
	}
}

// Skills trims skill names and drops empties, preserving order.
func Skills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// YesNo renders a tri-state flag.
func YesNo(v *bool) string {
	switch {
	case v == nil:
		return NotSpecified
	case *v:
		return "Yes"
	default:
		return "No"
	}
}

// Count renders an optional count.
func Count(v *int) string {
	if v == nil {
		return NotSpecified
	}
	return numberPrinter.Sprintf("%d", *v)
}

// TextOr returns the trimmed text or the fallback when blank.
func TextOr(s, fallback string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return fallback
}
