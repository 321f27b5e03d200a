// Package store holds the ordered, in-memory collection of clipboard entries
// the viewer renders.
//
// Every mutation builds a fresh slice and swaps it in under the lock, so a
// Snapshot is an immutable view: it never shows two entries with the same id
// and never shows an entry after its removal was applied. All mutations are
// total: operations on missing ids are no-ops, never errors.
package store

import (
	"log/slog"
	"sync"

	"go.klb.dev/clipview/internal/entry"
)

// Phase is the transient animation state of a rendered entry. It is purely
// presentational and never affects ordering or membership.
type Phase int

const (
	PhaseIdle Phase = iota
	// PhaseShrinking marks an entry whose exit (or pin toggle) animation is
	// running.
	PhaseShrinking
	// PhaseExpanding marks an entry restoring after a shrink.
	PhaseExpanding
)

func (p Phase) String() string {
	switch p {
	case PhaseShrinking:
		return "shrinking"
	case PhaseExpanding:
		return "expanding"
	default:
		return "idle"
	}
}

// Item is an entry plus its animation phase.
type Item struct {
	entry.Entry
	Phase Phase
}

// Store is the ordered entry collection. Newest entries come first.
type Store struct {
	mu      sync.RWMutex
	items   []Item
	ids     map[int64]struct{}
	version uint64
	changed chan struct{}
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		ids:     make(map[int64]struct{}),
		changed: make(chan struct{}, 1),
	}
}

// Changes returns a channel that receives a signal after every mutation that
// altered the visible sequence. Signals coalesce; call Snapshot on receipt.
// The channel is never closed.
func (s *Store) Changes() <-chan struct{} { return s.changed }

// Snapshot returns the current sequence. The slice must not be modified.
func (s *Store) Snapshot() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items
}

// Version increments on every visible change.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Get returns the entry with id.
func (s *Store) Get(id int64) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// PinnedIDs returns the ids of all pinned entries in display order.
func (s *Store) PinnedIDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []int64
	for _, it := range s.items {
		if it.Pinned {
			out = append(out, it.ID)
		}
	}
	return out
}

// Load replaces the whole collection with entries in backend order. Should the
// backend repeat an id, only its first occurrence is kept.
func (s *Store) Load(entries []entry.Entry) {
	items := make([]Item, 0, len(entries))
	ids := make(map[int64]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := ids[e.ID]; dup {
			slog.Warn("store: duplicate id in snapshot", "id", e.ID)
			continue
		}
		ids[e.ID] = struct{}{}
		items = append(items, Item{Entry: e})
	}

	s.mu.Lock()
	s.items = items
	s.ids = ids
	s.commitLocked()
	s.mu.Unlock()
}

// Prepend inserts e at the front. It reports false and leaves the store
// untouched when an entry with the same id already exists.
func (s *Store) Prepend(e entry.Entry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.ids[e.ID]; dup {
		return false
	}
	items := make([]Item, 0, len(s.items)+1)
	items = append(items, Item{Entry: e})
	items = append(items, s.items...)
	s.items = items
	s.ids[e.ID] = struct{}{}
	s.commitLocked()
	return true
}

// RemoveByID removes the entry with id and reports whether one was present.
func (s *Store) RemoveByID(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; !ok {
		return false
	}
	items := make([]Item, 0, len(s.items)-1)
	for _, it := range s.items {
		if it.ID != id {
			items = append(items, it)
		}
	}
	s.items = items
	delete(s.ids, id)
	s.commitLocked()
	return true
}

// Clear removes every entry.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return
	}
	s.items = nil
	s.ids = make(map[int64]struct{})
	s.commitLocked()
}

// SetPinned sets the pin flag of id. Position is unaffected.
func (s *Store) SetPinned(id int64, pinned bool) bool {
	return s.update(id, func(it *Item) bool {
		if it.Pinned == pinned {
			return false
		}
		it.Pinned = pinned
		return true
	})
}

// SetLanguageOverride records a manual syntax language for id. Setting the
// same value again changes nothing.
func (s *Store) SetLanguageOverride(id int64, language string) bool {
	return s.update(id, func(it *Item) bool {
		if it.LanguageOverride == language {
			return false
		}
		it.LanguageOverride = language
		return true
	})
}

// SetPhase sets the animation phase of id.
func (s *Store) SetPhase(id int64, p Phase) bool {
	return s.update(id, func(it *Item) bool {
		if it.Phase == p {
			return false
		}
		it.Phase = p
		return true
	})
}

// SetPhaseAll sets the animation phase of every entry and returns their ids.
func (s *Store) SetPhaseAll(p Phase) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.items))
	items := make([]Item, len(s.items))
	for i, it := range s.items {
		it.Phase = p
		items[i] = it
		ids = append(ids, it.ID)
	}
	if len(items) > 0 {
		s.items = items
		s.commitLocked()
	}
	return ids
}

// update copies the sequence, applies fn to the entry with id and swaps the
// copy in when fn reports a change.
func (s *Store) update(id int64, fn func(*Item) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; !ok {
		return false
	}
	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		it := s.items[i]
		if !fn(&it) {
			return false
		}
		items := make([]Item, len(s.items))
		copy(items, s.items)
		items[i] = it
		s.items = items
		s.commitLocked()
		return true
	}
	return false
}

// commitLocked bumps the version and signals watchers. Must be called with
// s.mu held for writing.
func (s *Store) commitLocked() {
	s.version++
	select {
	case s.changed <- struct{}{}:
	default:
	}
}
