package jd2pdf

import "strings"

// filenameSuffix ends every suggested document name.
const filenameSuffix = "_job_description.pdf"

// SuggestedFilename derives the download name from a job title: lowercase,
// every rune outside [a-z0-9] replaced by one underscore, then the suffix.
// "Backend Engineer (Remote)" becomes "backend_engineer__remote__job_description.pdf".
func SuggestedFilename(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String() + filenameSuffix
}
