package entry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContentVariants(t *testing.T) {
	tests := []struct {
		kind Kind
		want Content
	}{
		{KindText, Text{Body: "x"}},
		{KindImage, Image{Base64: "x"}},
		{KindColor, Color{Literal: "x"}},
		{KindURL, Link{Target: "x"}},
		{KindEmail, Link{Target: "x", Email: true}},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			c := NewContent(tt.kind, "x")
			assert.Equal(t, tt.want, c)
			assert.Equal(t, tt.kind, c.Kind())
			assert.Equal(t, "x", c.Raw())
		})
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Image ")
	require.NoError(t, err)
	assert.Equal(t, KindImage, k)

	k, err = ParseKind("rich_text")
	assert.Error(t, err)
	assert.Equal(t, KindText, k)
}

func TestZeroEntry(t *testing.T) {
	var e Entry
	assert.Equal(t, KindText, e.Kind())
	assert.Equal(t, "", e.Raw())
}

func TestPreview(t *testing.T) {
	e := New(1, KindText, "hello\n   world  again", "")
	assert.Equal(t, "hello world again", e.Preview(40))
	assert.Equal(t, "hello…", e.Preview(5))

	img := New(2, KindImage, "aGVsbG8=", "")
	assert.Equal(t, "<image 8 bytes b64>", img.Preview(5))
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantKind Kind
		wantText string
	}{
		{"hex color", "  #FFAA00\n", KindColor, "#FFAA00"},
		{"short hex", "#abc", KindColor, "#abc"},
		{"rgba", "rgba(255, 0, 0, 0.5)", KindColor, "rgba(255, 0, 0, 0.5)"},
		{"hsl", "hsl(120, 50%, 50%)", KindColor, "hsl(120, 50%, 50%)"},
		{"email", "someone@example.org", KindEmail, "someone@example.org"},
		{"url", "https://example.org/a?b=c", KindURL, "https://example.org/a?b=c"},
		{"text keeps whitespace", "  plain words \n", KindText, "  plain words \n"},
		{"url with spaces is text", "https://a b", KindText, "https://a b"},
		{"named color is text", "mauve", KindText, "mauve"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, s := DetectKind(tt.in)
			assert.Equal(t, tt.wantKind, k)
			assert.Equal(t, tt.wantText, s)
		})
	}
}

func TestTruncated(t *testing.T) {
	e := New(1, KindText, "héllo world", "t")
	assert.Equal(t, "héllo...", e.Truncated(5).Raw())
	assert.Equal(t, "héllo world", e.Truncated(11).Raw())
	assert.Equal(t, "héllo world", e.Raw(), "original untouched")

	img := New(2, KindImage, "aGVsbG8gd29ybGQ=", "t")
	assert.Equal(t, img, img.Truncated(3))

	link := New(3, KindURL, "https://example.com/long", "t").Truncated(8)
	assert.Equal(t, Link{Target: "https://..."}, link.Content)
}
