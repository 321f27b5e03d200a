// Package entry defines the clipboard history record shared by every layer of
// clipview: the store, the classifier, the synchronizer and the wire protocol.
package entry

import (
	"fmt"
	"strings"
)

// Kind is the content category assigned by the backend when an entry is
// captured. It never changes for the lifetime of an entry.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindColor Kind = "color"
	KindURL   Kind = "url"
	KindEmail Kind = "email"
)

// ParseKind converts a wire string to a Kind. Unknown kinds are reported as an
// error; callers usually fall back to KindText.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindText, KindImage, KindColor, KindURL, KindEmail:
		return k, nil
	default:
		return KindText, fmt.Errorf("unknown entry kind %q", s)
	}
}

// Content is the kind-specific payload of an entry. Exactly one of the
// concrete types below implements it for each Kind.
type Content interface {
	Kind() Kind
	// Raw returns the payload exactly as the backend delivered it.
	Raw() string
}

// Text is free-form text, possibly source code.
type Text struct{ Body string }

// Image holds base64-encoded image bytes.
type Image struct{ Base64 string }

// Color holds a color literal as copied (hex, rgb[a](), hsl[a]()).
type Color struct{ Literal string }

// Link is a URL or an email address. Email reports which.
type Link struct {
	Target string
	Email  bool
}

func (Text) Kind() Kind  { return KindText }
func (Image) Kind() Kind { return KindImage }
func (Color) Kind() Kind { return KindColor }
func (l Link) Kind() Kind {
	if l.Email {
		return KindEmail
	}
	return KindURL
}

func (t Text) Raw() string  { return t.Body }
func (i Image) Raw() string { return i.Base64 }
func (c Color) Raw() string { return c.Literal }
func (l Link) Raw() string  { return l.Target }

// NewContent wraps raw in the variant for kind.
func NewContent(kind Kind, raw string) Content {
	switch kind {
	case KindImage:
		return Image{Base64: raw}
	case KindColor:
		return Color{Literal: raw}
	case KindURL:
		return Link{Target: raw}
	case KindEmail:
		return Link{Target: raw, Email: true}
	default:
		return Text{Body: raw}
	}
}

// Entry is one clipboard history record.
//
// ID, Content and CreatedAt are written only by the backend. Pinned and
// LanguageOverride are the only fields the client mutates.
type Entry struct {
	ID        int64
	Content   Content
	CreatedAt string // backend formatted, displayed as-is
	Pinned    bool
	// LanguageOverride forces the syntax language of a text entry; empty
	// means auto-detect.
	LanguageOverride string
}

// New builds an Entry from its flat representation.
func New(id int64, kind Kind, content, createdAt string) Entry {
	return Entry{
		ID:        id,
		Content:   NewContent(kind, content),
		CreatedAt: createdAt,
	}
}

// Kind returns the entry's content kind. A zero Entry reports KindText.
func (e Entry) Kind() Kind {
	if e.Content == nil {
		return KindText
	}
	return e.Content.Kind()
}

// Raw returns the raw content string.
func (e Entry) Raw() string {
	if e.Content == nil {
		return ""
	}
	return e.Content.Raw()
}

// Preview returns at most n runes of the content on a single line, for logs
// and status output.
func (e Entry) Preview(n int) string {
	if e.Kind() == KindImage {
		return fmt.Sprintf("<image %d bytes b64>", len(e.Raw()))
	}
	s := strings.Join(strings.Fields(e.Raw()), " ")
	r := []rune(s)
	if len(r) > n {
		return string(r[:n]) + "…"
	}
	return s
}

// Truncated returns a copy of e whose content is cut to n runes followed by
// "...". Images are never truncated.
func (e Entry) Truncated(n int) Entry {
	if e.Kind() == KindImage || n <= 0 {
		return e
	}
	r := []rune(e.Raw())
	if len(r) <= n {
		return e
	}
	e.Content = NewContent(e.Kind(), string(r[:n])+"...")
	return e
}
