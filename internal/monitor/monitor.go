// Package monitor captures system clipboard changes into the history and
// announces them to connected viewers.
package monitor

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"go.klb.dev/clipview/internal/clip"
	"go.klb.dev/clipview/internal/entry"
	"go.klb.dev/clipview/internal/events"
	"go.klb.dev/clipview/internal/history"
)

// History is the part of *history.DB the monitor writes to.
type History interface {
	Latest(ctx context.Context, kind entry.Kind) (entry.Entry, error)
	Insert(ctx context.Context, kind entry.Kind, content string) (entry.Entry, error)
}

// Publisher receives new-clipboard-item events. *events.Hub implements it.
type Publisher interface {
	Publish(events.Event)
}

// Monitor owns the capture side of the backend.
type Monitor struct {
	hist     History
	cb       clip.Backend
	pub      Publisher
	maxChars int

	mu        sync.Mutex
	lastText  string
	lastImage string
}

// New returns a Monitor. maxChars bounds the content of announced entries.
func New(hist History, cb clip.Backend, pub Publisher, maxChars int) *Monitor {
	return &Monitor{hist: hist, cb: cb, pub: pub, maxChars: maxChars}
}

// Run seeds the repeat filter from the history and captures every clipboard
// change until ctx is done or the backend is closed.
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.seed(ctx); err != nil {
		return err
	}
	slog.Info("clipboard monitor started", "backend", m.cb.Name())

	watch := m.cb.Watch()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-watch:
			if !ok {
				return nil
			}
			if err := m.Capture(ctx); err != nil {
				slog.Error("clipboard capture failed", "err", err)
			}
		}
	}
}

// seed remembers the newest stored text and image so that restarting the
// backend does not capture the current clipboard a second time.
func (m *Monitor) seed(ctx context.Context) error {
	text, err := m.hist.Latest(ctx, entry.KindText)
	if err != nil && !errors.Is(err, history.ErrNotFound) {
		return fmt.Errorf("seed monitor: %w", err)
	}
	img, err := m.hist.Latest(ctx, entry.KindImage)
	if err != nil && !errors.Is(err, history.ErrNotFound) {
		return fmt.Errorf("seed monitor: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastText = text.Raw()
	m.lastImage = img.Raw()
	return nil
}

// Ignore marks c as already captured, so writing it back to the clipboard
// does not create a duplicate entry.
func (m *Monitor) Ignore(c clip.Contents) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.Text != nil {
		m.lastText = string(c.Text)
	}
	if c.Image != nil {
		m.lastImage = base64.StdEncoding.EncodeToString(c.Image)
	}
}

// Forget clears the repeat filter for c, so writing it back to the clipboard
// is captured as a new entry.
func (m *Monitor) Forget(c clip.Contents) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.Text != nil && m.lastText == string(c.Text) {
		m.lastText = ""
	}
	if c.Image != nil && m.lastImage == base64.StdEncoding.EncodeToString(c.Image) {
		m.lastImage = ""
	}
}

// Capture reads the clipboard once and stores whatever differs from the last
// capture.
func (m *Monitor) Capture(ctx context.Context) error {
	c, err := m.cb.Read()
	if err != nil {
		return fmt.Errorf("read clipboard: %w", err)
	}

	if len(c.Text) > 0 {
		text := string(c.Text)
		if m.swap(&m.lastText, text) {
			kind, content := entry.DetectKind(text)
			if err := m.store(ctx, kind, content); err != nil {
				return err
			}
		}
	}
	if len(c.Image) > 0 {
		b64 := base64.StdEncoding.EncodeToString(c.Image)
		if m.swap(&m.lastImage, b64) {
			if err := m.store(ctx, entry.KindImage, b64); err != nil {
				return err
			}
		}
	}
	return nil
}

// swap stores v in *last and reports whether it changed.
func (m *Monitor) swap(last *string, v string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if *last == v {
		return false
	}
	*last = v
	return true
}

func (m *Monitor) store(ctx context.Context, kind entry.Kind, content string) error {
	e, err := m.hist.Insert(ctx, kind, content)
	if err != nil {
		return err
	}
	slog.Debug("clipboard captured", "id", e.ID, "kind", kind, "preview", e.Preview(120))
	m.pub.Publish(events.Event{Kind: events.NewItem, Entry: Announce(e, m.maxChars)})
	return nil
}

// Announce prepares e for a new-clipboard-item event: content is truncated
// to maxChars and newlines travel as literal "\n" sequences, which viewers
// expand again.
func Announce(e entry.Entry, maxChars int) entry.Entry {
	e = e.Truncated(maxChars)
	if e.Kind() == entry.KindText {
		e.Content = entry.Text{Body: strings.ReplaceAll(e.Raw(), "\n", `\n`)}
	}
	return e
}
