package syncer

import (
	"log/slog"
	"strings"

	"go.klb.dev/clipview/internal/entry"
	"go.klb.dev/clipview/internal/events"
	"go.klb.dev/clipview/internal/store"
)

// progressComplete is the progress-update value the backend sends once its
// own loading has finished.
const progressComplete = 200

// deliver routes an event arriving from the source.
func (s *Syncer) deliver(ev events.Event) {
	slog.Debug("event received", "event", ev.String())
	if ev.Kind.MutatesEntries() {
		switch {
		case s.state() == StateFailed:
			slog.Debug("event dropped, bootstrap failed", "event", ev.String())
			return
		case s.state() != StateReady || s.holds > 0:
			s.pending = append(s.pending, ev)
			return
		}
	}
	s.apply(ev)
}

// replay applies queued events in delivery order for as long as the store is
// ready and not held.
func (s *Syncer) replay() {
	for len(s.pending) > 0 && s.state() == StateReady && s.holds == 0 {
		ev := s.pending[0]
		s.pending = s.pending[1:]
		s.apply(ev)
	}
	if len(s.pending) == 0 {
		s.pending = nil
	}
}

func (s *Syncer) apply(ev events.Event) {
	switch ev.Kind {
	case events.NewItem:
		s.applyNewItem(ev.Entry)
	case events.DeleteItem:
		if !s.store.RemoveByID(ev.ID) {
			slog.Debug("delete for unknown entry ignored", "id", ev.ID)
		}
	case events.DeleteAll:
		s.applyDeleteAll()
	case events.UnpinAll:
		s.applyUnpinAll()
	case events.ResetScroll:
		s.emit(Signal{Kind: SignalResetScroll, Smooth: s.settings().Scroll.Smooth})
	case events.Reload:
		s.reload()
	case events.Progress:
		s.applyProgress(ev.Progress)
	default:
		slog.Warn("unhandled event", "event", ev.String())
	}
}

func (s *Syncer) applyNewItem(e entry.Entry) {
	// The backend escapes newlines on the wire.
	if raw := e.Raw(); strings.Contains(raw, `\n`) {
		e.Content = entry.NewContent(e.Kind(), strings.ReplaceAll(raw, `\n`, "\n"))
	}
	if !s.store.Prepend(e) {
		slog.Debug("duplicate entry ignored", "id", e.ID)
		return
	}
	slog.Debug("entry added", "id", e.ID, "kind", string(e.Kind()), "preview", e.Preview(120))
}

// applyDeleteAll shrinks every entry, holds the store for the exit animation
// and clears it afterwards. Data events arriving meanwhile are queued.
func (s *Syncer) applyDeleteAll() {
	gen := s.gen
	n := len(s.store.SetPhaseAll(store.PhaseShrinking))
	s.holds++
	slog.Info("deleting all entries", "count", n)

	s.after(s.opts.DeleteAllHold, func() {
		if gen != s.gen {
			return
		}
		s.store.Clear()
		s.holds--
		s.replay()
	})
}

// applyUnpinAll shrinks every pinned entry, clears the flag once the shrink
// has played and then restores it. Entries are never removed.
func (s *Syncer) applyUnpinAll() {
	gen := s.gen
	ids := s.store.PinnedIDs()
	if len(ids) == 0 {
		return
	}
	for _, id := range ids {
		s.store.SetPhase(id, store.PhaseShrinking)
	}
	slog.Info("unpinning entries", "count", len(ids))

	s.after(s.opts.Shrink, func() {
		if gen != s.gen {
			return
		}
		for _, id := range ids {
			// Deleted meanwhile: both calls are no-ops.
			s.store.SetPinned(id, false)
			s.store.SetPhase(id, store.PhaseExpanding)
		}
		s.settle(gen, ids)
	})
}

// settle returns ids to PhaseIdle once the expand animation has played.
func (s *Syncer) settle(gen uint64, ids []int64) {
	s.after(s.opts.Expand, func() {
		if gen != s.gen {
			return
		}
		for _, id := range ids {
			if it, ok := s.store.Get(id); ok && it.Phase == store.PhaseExpanding {
				s.store.SetPhase(id, store.PhaseIdle)
			}
		}
	})
}

func (s *Syncer) applyProgress(p int) {
	complete := p == progressComplete
	if complete {
		p = 100
	}
	s.setProgress(max(0, min(100, p)))
	if complete {
		slog.Debug("backend loading complete")
		s.after(s.opts.ResizeDelay, s.resize)
	}
}
