package view

import (
	"bytes"
	"encoding/base64"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"go.klb.dev/clipview/internal/classify"
	"go.klb.dev/clipview/internal/render"
	"go.klb.dev/clipview/internal/store"
)

// renderCard draws one entry in a w by h cell box, border included.
func renderCard(c render.Card, w, h int, selected bool) string {
	st := cardStyle
	if selected {
		st = selectedCardStyle
	}
	if c.Phase == store.PhaseShrinking {
		st = st.Faint(true)
	}

	inner := max(1, w-st.GetHorizontalFrameSize())
	rows := max(1, h-st.GetVerticalFrameSize()-1)

	lines := append([]string{cardHeader(c, inner)}, cardBody(c, inner, rows)...)
	return st.
		Width(w - st.GetHorizontalBorderSize()).
		Height(h - st.GetVerticalBorderSize()).
		MaxHeight(h).
		Render(strings.Join(lines, "\n"))
}

func cardHeader(c render.Card, w int) string {
	var b strings.Builder
	if c.Pinned {
		b.WriteString(pinStyle.Render("★ "))
	}
	meta := string(c.Kind())
	if c.CreatedAt != "" {
		meta += " · " + c.CreatedAt
	}
	if lang := cardLanguage(c); lang != "" {
		meta += " · " + lang
	}
	b.WriteString(headerStyle.Render(clipLine(meta, w-2)))
	return b.String()
}

func cardBody(c render.Card, w, rows int) []string {
	switch c.Mode {
	case classify.ModeHighlighted:
		return highlight(c.Raw(), c.Language, w, rows)
	case classify.ModeImage:
		n := base64.StdEncoding.DecodedLen(len(c.Raw()))
		return []string{"image, " + humanize.Bytes(uint64(n))}
	case classify.ModeColor:
		swatch := lipgloss.NewStyle().Background(lipgloss.Color(c.Color)).Width(w).Render("")
		out := []string{clipLine(c.Raw(), w)}
		for len(out) < rows {
			out = append(out, swatch)
		}
		return out
	case classify.ModeInlineLink:
		return []string{linkStyle.Render(clipLine(c.Raw(), w))}
	default:
		return clipLines(c.Lines, w, rows)
	}
}

// highlight colours the first rows lines of src. Unknown languages fall back
// to chroma's plain lexer and formatter errors to the uncoloured text.
func highlight(src, language string, w, rows int) []string {
	lines := clipLines(classify.SplitLines(src), w, rows)
	var buf bytes.Buffer
	if err := quick.Highlight(&buf, strings.Join(lines, "\n"), language, highlightFormatter, highlightStyle); err != nil {
		return lines
	}
	return strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
}

// cardLanguage is the language shown in a card header and the starting point
// of the language cycle. Only text entries have one.
func cardLanguage(c render.Card) string {
	if c.Mode == classify.ModeHighlighted || c.Language != "" {
		return c.Language
	}
	return ""
}

func clipLines(lines []string, w, rows int) []string {
	if len(lines) > rows {
		lines = lines[:rows]
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = clipLine(l, w)
	}
	return out
}

func clipLine(s string, w int) string {
	s = strings.ReplaceAll(s, "\t", "    ")
	r := []rune(s)
	if w <= 0 {
		return ""
	}
	if len(r) <= w {
		return s
	}
	if w == 1 {
		return "…"
	}
	return string(r[:w-1]) + "…"
}
