package entry

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	colorRe = regexp.MustCompile(`(?i)^\s*(#(?:[0-9a-f]{3}|[0-9a-f]{6})\b|rgba?\(\s*\d{1,3}\s*,\s*\d{1,3}\s*,\s*\d{1,3}(?:\s*,\s*(?:0|1|0?\.\d+))?\s*\)|hsla?\(\s*\d{1,3}(?:\.\d+)?\s*,\s*\d{1,3}%\s*,\s*\d{1,3}%(?:\s*,\s*(?:0|1|0?\.\d+))?\s*\))\s*$`)
	emailRe = regexp.MustCompile("(?i)^[a-z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-z0-9.-]+\\.[a-z]{2,}$")
	urlRe   = regexp.MustCompile(`(?i)^[a-z][a-z0-9+\-.]*://[^\s]+$`)
)

// DetectKind assigns a Kind to freshly captured text. Color, email and URL
// payloads are returned trimmed; anything else is KindText with the text
// untouched.
func DetectKind(text string) (Kind, string) {
	trimmed := strings.TrimFunc(text, func(r rune) bool {
		return unicode.IsControl(r) || unicode.IsSpace(r)
	})
	switch {
	case colorRe.MatchString(trimmed):
		return KindColor, trimmed
	case emailRe.MatchString(trimmed):
		return KindEmail, trimmed
	case urlRe.MatchString(trimmed):
		return KindURL, trimmed
	default:
		return KindText, text
	}
}
