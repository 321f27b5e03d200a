package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.klb.dev/clipview/internal/entry"
	"go.klb.dev/clipview/internal/events"
	"go.klb.dev/clipview/internal/store"
)

var (
	// ErrUnknownEntry is returned for actions on an id the store does not hold.
	ErrUnknownEntry = errors.New("entry not found")
	// ErrBusy is returned while the entry is animating.
	ErrBusy = errors.New("entry is animating")
	// ErrPinRejected is the cause of a rollback when the backend answers
	// false.
	ErrPinRejected = errors.New("backend rejected pin change")
	// ErrNotLink is returned by Open for entries that are neither a URL nor
	// an email address.
	ErrNotLink = errors.New("entry is not a link")
)

// PinResult is the outcome of a TogglePin. Committed is false when the
// tentative change was rolled back; Err then holds the cause.
type PinResult struct {
	ID        int64
	Pinned    bool
	Committed bool
	Err       error
}

// TogglePin flips the pin flag of id in two phases. The entry starts shrinking
// at once; when the backend confirms, the flag flips after the shrink has
// played and the entry expands again. When the backend fails or refuses, the
// entry is restored, a notice is signalled and the result is rolled back.
func (s *Syncer) TogglePin(ctx context.Context, id int64) PinResult {
	it, ok := s.store.Get(id)
	if !ok {
		return PinResult{ID: id, Err: ErrUnknownEntry}
	}
	if it.Phase != store.PhaseIdle {
		return PinResult{ID: id, Pinned: it.Pinned, Err: ErrBusy}
	}

	res := PinResult{ID: id, Pinned: !it.Pinned}
	s.store.SetPhase(id, store.PhaseShrinking)

	confirmed, err := s.backend.TogglePin(ctx, id, res.Pinned)
	switch {
	case err != nil:
		res.Err = fmt.Errorf("toggle pin: %w", err)
	case !confirmed:
		res.Err = ErrPinRejected
	}

	if res.Err != nil {
		slog.Warn("pin toggle rolled back", "id", id, "err", res.Err)
		s.store.SetPhase(id, store.PhaseExpanding)
		s.after(s.opts.Expand, func() { s.finishPhase(id) })
		s.emit(Signal{Kind: SignalNotice, Notice: "Error pinning item", Err: res.Err})
		s.emit(Signal{Kind: SignalPin, Pin: res})
		return res
	}

	res.Committed = true
	gen := s.loopGen()
	s.after(s.opts.Shrink, func() {
		if gen != s.gen {
			return
		}
		s.store.SetPinned(id, res.Pinned)
		s.store.SetPhase(id, store.PhaseExpanding)
		s.settle(gen, []int64{id})
	})
	slog.Debug("pin toggled", "id", id, "pinned", res.Pinned)
	s.emit(Signal{Kind: SignalPin, Pin: res})
	return res
}

// finishPhase returns a single entry to PhaseIdle after a rollback.
func (s *Syncer) finishPhase(id int64) {
	if it, ok := s.store.Get(id); ok && it.Phase == store.PhaseExpanding {
		s.store.SetPhase(id, store.PhaseIdle)
	}
}

// loopGen reads the bootstrap generation from the loop goroutine.
func (s *Syncer) loopGen() uint64 {
	ch := make(chan uint64, 1)
	s.post(func() { ch <- s.gen })
	select {
	case g := <-ch:
		return g
	case <-s.done:
		return 0
	}
}

// Delete plays the exit animation of id, asks the backend to delete it and
// then removes it locally. The backend's own delete-item event is a no-op
// afterwards.
func (s *Syncer) Delete(ctx context.Context, id int64) error {
	it, ok := s.store.Get(id)
	if !ok {
		return ErrUnknownEntry
	}
	if it.Phase != store.PhaseIdle {
		return ErrBusy
	}
	s.store.SetPhase(id, store.PhaseShrinking)

	if err := s.sleep(ctx, s.opts.Shrink); err != nil {
		s.store.SetPhase(id, store.PhaseIdle)
		return err
	}
	if err := s.backend.DeleteItem(ctx, id); err != nil {
		s.store.SetPhase(id, store.PhaseIdle)
		return fmt.Errorf("delete entry %d: %w", id, err)
	}
	s.store.RemoveByID(id)
	slog.Debug("entry deleted", "id", id)
	return nil
}

// DeleteAll asks the backend to delete every entry. The store is cleared when
// the backend's delete-all-items event arrives.
func (s *Syncer) DeleteAll(ctx context.Context) error {
	if err := s.backend.DeleteAll(ctx); err != nil {
		return fmt.Errorf("delete all: %w", err)
	}
	return nil
}

// UnpinAll asks the backend to unpin every entry and, when it reports that
// something changed, emits unpin-all so every surface animates the change.
func (s *Syncer) UnpinAll(ctx context.Context) (bool, error) {
	ok, err := s.backend.UnpinAll(ctx)
	if err != nil {
		return false, fmt.Errorf("unpin all: %w", err)
	}
	if !ok {
		return false, nil
	}
	ev := events.Event{Kind: events.UnpinAll}
	if s.emitter != nil {
		s.emitter.Publish(ev)
	} else {
		s.post(func() { s.deliver(ev) })
	}
	return true, nil
}

// SetLanguage forces the syntax language of id. The override is recorded
// locally first and stays authoritative even if persisting it fails.
func (s *Syncer) SetLanguage(ctx context.Context, id int64, language string) error {
	language = strings.TrimSpace(language)
	if language == "" {
		return errors.New("empty language")
	}
	if _, ok := s.store.Get(id); !ok {
		return ErrUnknownEntry
	}
	s.store.SetLanguageOverride(id, language)
	if err := s.backend.ForceLanguage(ctx, id, language); err != nil {
		return fmt.Errorf("force language: %w", err)
	}
	slog.Debug("language forced", "id", id, "language", language)
	return nil
}

// Copy writes the entry back to the system clipboard.
func (s *Syncer) Copy(ctx context.Context, id int64) error {
	if err := s.backend.PushToClipboard(ctx, id); err != nil {
		return fmt.Errorf("push to clipboard: %w", err)
	}
	return nil
}

// Open opens a URL entry in the browser, or an email entry in the mail
// client.
func (s *Syncer) Open(ctx context.Context, id int64) error {
	it, ok := s.store.Get(id)
	if !ok {
		return ErrUnknownEntry
	}
	link, ok := it.Content.(entry.Link)
	if !ok {
		return ErrNotLink
	}
	target := link.Target
	if link.Email {
		target = "mailto:" + target
	}
	if err := s.backend.OpenURL(ctx, target); err != nil {
		return fmt.Errorf("open %q: %w", target, err)
	}
	return nil
}

// OpenSettings asks the backend to show the settings surface.
func (s *Syncer) OpenSettings(ctx context.Context) error {
	if err := s.backend.OpenSettings(ctx); err != nil {
		return fmt.Errorf("open settings: %w", err)
	}
	return nil
}

func (s *Syncer) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-s.opts.Clock.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
