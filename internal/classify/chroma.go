package classify

import (
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// DefaultCandidates are the languages the chroma detector scores, in
// tie-break order.
var DefaultCandidates = []string{
	"go", "python", "javascript", "typescript", "java", "c", "c++", "c#",
	"rust", "ruby", "php", "bash", "sql", "json", "yaml", "html", "xml",
	"css", "lua", "kotlin", "swift",
}

// ChromaDetector scores text against a set of chroma lexers. The relevance
// of a lexer is the number of keyword, builtin and tag tokens it produces,
// minus two per error token, plus the lexer's own analyser score scaled to
// ten. The best-scoring lexer wins; ties keep the earlier candidate.
type ChromaDetector struct {
	lexers []chroma.Lexer
}

// NewChromaDetector returns a detector over the named lexers, or over
// DefaultCandidates when none are given. Unknown names are skipped.
func NewChromaDetector(names ...string) *ChromaDetector {
	if len(names) == 0 {
		names = DefaultCandidates
	}
	d := &ChromaDetector{}
	for _, n := range names {
		if l := lexers.Get(n); l != nil {
			d.lexers = append(d.lexers, l)
		}
	}
	return d
}

// Detect implements Detector.
func (d *ChromaDetector) Detect(text string) Detection {
	var best Detection
	if strings.TrimSpace(text) == "" {
		return best
	}
	for _, l := range d.lexers {
		if r := relevance(l, text); r > best.Relevance {
			best = Detection{Language: LanguageName(l), Relevance: r}
		}
	}
	return best
}

func relevance(l chroma.Lexer, text string) int {
	it, err := l.Tokenise(nil, text)
	if err != nil {
		return 0
	}
	score := 0
	for tok := it(); tok != chroma.EOF; tok = it() {
		switch {
		case tok.Type == chroma.Error:
			score -= 2
		case tok.Type.InCategory(chroma.Keyword),
			tok.Type == chroma.NameBuiltin,
			tok.Type == chroma.NameTag:
			score++
		}
	}
	if a, ok := l.(chroma.Analyser); ok {
		score += int(a.AnalyseText(text) * 10)
	}
	return score
}

// LanguageName is the label used for a chroma lexer: its lower-cased name.
func LanguageName(l chroma.Lexer) string {
	return strings.ToLower(l.Config().Name)
}

// Languages lists every language a user may force, RawText first and the rest
// sorted.
func Languages() []string {
	names := lexers.Names(false)
	out := make([]string, 0, len(names)+1)
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.ToLower(n)
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return append([]string{RawText}, out...)
}

// KnownLanguage reports whether language can be used as an override.
func KnownLanguage(language string) bool {
	return IsRawText(language) || lexers.Get(language) != nil
}
