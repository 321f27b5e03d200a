// Package classify decides how a clipboard entry is presented: plain lines,
// syntax-highlighted code, an image, a color swatch or an inline link.
//
// Classification is total. Unknown colors pass through, undetectable
// languages fall back to plain text, and nothing here returns an error.
package classify

import (
	"regexp"
	"strings"

	"go.klb.dev/clipview/internal/entry"
)

// Mode is the presentation chosen for an entry.
type Mode string

const (
	ModePlain       Mode = "plain"
	ModeHighlighted Mode = "highlighted"
	ModeImage       Mode = "image"
	ModeColor       Mode = "color"
	ModeInlineLink  Mode = "inline-link"
)

// RawText is the language label meaning "no highlighting". An override equal
// to it (case-insensitively) always renders plain.
const RawText = "raw text"

// Threshold is the detector relevance an entry must exceed to be highlighted.
const Threshold = 5

// Detection is a detector's best guess for a piece of text.
type Detection struct {
	Language  string
	Relevance int
}

// Detector guesses the programming language of text.
type Detector interface {
	Detect(text string) Detection
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(string) Detection

func (f DetectorFunc) Detect(text string) Detection { return f(text) }

// Result is the outcome of classifying one entry.
type Result struct {
	Mode Mode
	// Language is set for ModeHighlighted, and for ModePlain when an
	// override of RawText forced it.
	Language string
	// Lines holds the content split on line breaks, for ModePlain.
	Lines []string
	// Color is the normalized swatch color, for ModeColor.
	Color string
	// Detected reports whether auto-detection ran.
	Detected bool
}

var lineBreak = regexp.MustCompile(`\r?\n`)

// SplitLines splits text into literal lines on \n or \r\n.
func SplitLines(text string) []string {
	return lineBreak.Split(text, -1)
}

// IsRawText reports whether language is the plain-text sentinel.
func IsRawText(language string) bool {
	return strings.EqualFold(strings.TrimSpace(language), RawText)
}

// Classify picks the presentation for e. d may be nil, in which case text
// without an override renders plain.
func Classify(e entry.Entry, d Detector) Result {
	switch c := e.Content.(type) {
	case entry.Image:
		return Result{Mode: ModeImage}
	case entry.Color:
		return Result{Mode: ModeColor, Color: NormalizeColor(c.Literal)}
	case entry.Link:
		return Result{Mode: ModeInlineLink}
	case entry.Text:
		return classifyText(c.Body, e.LanguageOverride, d)
	default:
		return classifyText(e.Raw(), e.LanguageOverride, d)
	}
}

func classifyText(body, override string, d Detector) Result {
	if override != "" {
		if IsRawText(override) {
			return Result{Mode: ModePlain, Language: RawText, Lines: SplitLines(body)}
		}
		return Result{Mode: ModeHighlighted, Language: override}
	}
	if d == nil || strings.TrimSpace(body) == "" {
		return Result{Mode: ModePlain, Lines: SplitLines(body)}
	}

	det := d.Detect(body)
	if det.Relevance > Threshold {
		lang := det.Language
		if lang == "" {
			lang = RawText
		}
		return Result{Mode: ModeHighlighted, Language: lang, Detected: true}
	}
	return Result{Mode: ModePlain, Lines: SplitLines(body), Detected: true}
}
