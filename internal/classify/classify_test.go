package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipview/internal/entry"
)

func fixed(lang string, relevance int) Detector {
	return DetectorFunc(func(string) Detection {
		return Detection{Language: lang, Relevance: relevance}
	})
}

func textEntry(body string) entry.Entry {
	return entry.New(1, entry.KindText, body, "")
}

func TestClassifyNonText(t *testing.T) {
	det := fixed("go", 100)
	tests := []struct {
		kind entry.Kind
		raw  string
		want Mode
	}{
		{entry.KindImage, "iVBORw0KGgo=", ModeImage},
		{entry.KindColor, "#aabbcc", ModeColor},
		{entry.KindURL, "https://example.org", ModeInlineLink},
		{entry.KindEmail, "a@b.io", ModeInlineLink},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			got := Classify(entry.New(1, tt.kind, tt.raw, ""), det)
			assert.Equal(t, tt.want, got.Mode)
			assert.Empty(t, got.Language)
			assert.False(t, got.Detected)
		})
	}
}

func TestClassifyColorNormalizes(t *testing.T) {
	got := Classify(entry.New(1, entry.KindColor, "rgba(255, 0, 0, 0.5)", ""), nil)
	assert.Equal(t, ModeColor, got.Mode)
	assert.Equal(t, "#ff0000", got.Color)
}

func TestConfidenceGate(t *testing.T) {
	tests := []struct {
		name      string
		relevance int
		lang      string
		wantMode  Mode
		wantLang  string
	}{
		{"below threshold", 3, "python", ModePlain, ""},
		{"at threshold", 5, "python", ModePlain, ""},
		{"above threshold", 6, "python", ModeHighlighted, "python"},
		{"confident but nameless", 9, "", ModeHighlighted, RawText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(textEntry("x = 1\ny = 2"), fixed(tt.lang, tt.relevance))
			assert.Equal(t, tt.wantMode, got.Mode)
			assert.Equal(t, tt.wantLang, got.Language)
			assert.True(t, got.Detected)
			if tt.wantMode == ModePlain {
				assert.Equal(t, []string{"x = 1", "y = 2"}, got.Lines)
			}
		})
	}
}

func TestOverrideWins(t *testing.T) {
	calls := 0
	det := DetectorFunc(func(string) Detection {
		calls++
		return Detection{Language: "python", Relevance: 50}
	})

	e := textEntry("package main")
	e.LanguageOverride = "rust"
	got := Classify(e, det)
	assert.Equal(t, ModeHighlighted, got.Mode)
	assert.Equal(t, "rust", got.Language)
	assert.False(t, got.Detected)
	assert.Zero(t, calls, "override must bypass detection")
}

func TestRawTextOverrideAlwaysPlain(t *testing.T) {
	for _, o := range []string{"raw text", "Raw text", " RAW TEXT "} {
		e := textEntry("a\r\nb")
		e.LanguageOverride = o
		got := Classify(e, fixed("go", 99))
		assert.Equal(t, ModePlain, got.Mode, o)
		assert.Equal(t, []string{"a", "b"}, got.Lines)
	}
}

func TestEmptyTextIsPlain(t *testing.T) {
	got := Classify(textEntry(""), fixed("go", 99))
	assert.Equal(t, ModePlain, got.Mode)
	assert.Equal(t, []string{""}, got.Lines)

	got = Classify(textEntry("hi"), nil)
	assert.Equal(t, ModePlain, got.Mode)
}

func TestNormalizeColor(t *testing.T) {
	tests := []struct{ in, want string }{
		{"rgba(255, 0, 0, 0.5)", "#ff0000"},
		{"rgb(0,128,255)", "#0080ff"},
		{"RGB( 16, 32, 48 )", "#102030"},
		{"rgb(300, 0, 0)", "#ff0000"},
		{"hsl(0, 100%, 50%)", "#ff0000"},
		{"hsla(120, 100%, 50%, 0.3)", "#00ff00"},
		{"hsl(240, 100%, 50%)", "#0000ff"},
		{"hsl(0, 0%, 100%)", "#ffffff"},
		{"#abcdef", "#abcdef"},
		{"mauve", "mauve"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeColor(tt.in))
		})
	}
}

func TestChromaDetector(t *testing.T) {
	d := NewChromaDetector()
	require.NotEmpty(t, d.lexers)

	assert.Equal(t, Detection{}, d.Detect("   \n"))

	got := Classify(textEntry("hello"), d)
	assert.Equal(t, ModePlain, got.Mode)

	code := `def main():
    import os
    for i in range(10):
        if i is not None and i > 2:
            return os.getcwd()
        else:
            continue
    while True:
        pass
`
	det := d.Detect(code)
	assert.Greater(t, det.Relevance, Threshold)
	assert.NotEmpty(t, det.Language)
}

func TestNewChromaDetectorSkipsUnknown(t *testing.T) {
	d := NewChromaDetector("go", "definitely-not-a-language")
	assert.Len(t, d.lexers, 1)
}

func TestLanguages(t *testing.T) {
	langs := Languages()
	require.NotEmpty(t, langs)
	assert.Equal(t, RawText, langs[0])
	assert.Contains(t, langs, "go")
	assert.True(t, KnownLanguage("Go"))
	assert.True(t, KnownLanguage("Raw text"))
	assert.False(t, KnownLanguage("klingon-script"))
}
