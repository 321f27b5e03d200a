package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipview/internal/entry"
)

func text(id int64, body string) entry.Entry {
	return entry.New(id, entry.KindText, body, "2024-01-01 10:00:00")
}

func ids(items []Item) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestLoadThenPrependOrdering(t *testing.T) {
	s := New()
	s.Load([]entry.Entry{text(1, "a"), text(2, "b"), text(3, "c")})
	require.True(t, s.Prepend(text(4, "d")))

	assert.Equal(t, []int64{4, 1, 2, 3}, ids(s.Snapshot()))
}

func TestPrependDuplicateIsNoop(t *testing.T) {
	s := New()
	s.Load([]entry.Entry{text(1, "original")})
	v := s.Version()

	assert.False(t, s.Prepend(text(1, "impostor")))
	assert.Equal(t, v, s.Version())

	it, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, "original", it.Raw())
	assert.Equal(t, 1, s.Len())
}

func TestLoadDropsRepeatedIDs(t *testing.T) {
	s := New()
	s.Load([]entry.Entry{text(1, "a"), text(2, "b"), text(1, "again")})
	assert.Equal(t, []int64{1, 2}, ids(s.Snapshot()))
	it, _ := s.Get(1)
	assert.Equal(t, "a", it.Raw())
}

func TestUniquenessAcrossSequences(t *testing.T) {
	s := New()
	s.Load([]entry.Entry{text(1, "a"), text(2, "b")})
	for _, id := range []int64{2, 3, 3, 1, 4, 4} {
		s.Prepend(text(id, "x"))
	}
	seen := map[int64]bool{}
	for _, it := range s.Snapshot() {
		require.False(t, seen[it.ID], "duplicate id %d", it.ID)
		seen[it.ID] = true
	}
	assert.Equal(t, []int64{4, 3, 1, 2}, ids(s.Snapshot()))
}

func TestRemoveByIDIdempotent(t *testing.T) {
	s := New()
	s.Load([]entry.Entry{text(1, "a"), text(2, "b")})

	assert.True(t, s.RemoveByID(1))
	v := s.Version()
	before := s.Snapshot()

	assert.False(t, s.RemoveByID(1))
	assert.False(t, s.RemoveByID(99))
	assert.Equal(t, v, s.Version())
	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, []int64{2}, ids(s.Snapshot()))
}

func TestClear(t *testing.T) {
	s := New()
	s.Load([]entry.Entry{text(1, "a"), text(2, "b")})
	s.Clear()
	assert.Equal(t, 0, s.Len())
	// the id can come back after a clear
	assert.True(t, s.Prepend(text(1, "a")))
}

func TestSetPinnedKeepsOrder(t *testing.T) {
	s := New()
	s.Load([]entry.Entry{text(1, "a"), text(2, "b"), text(3, "c")})

	assert.True(t, s.SetPinned(3, true))
	assert.False(t, s.SetPinned(3, true))
	assert.False(t, s.SetPinned(42, true))

	assert.Equal(t, []int64{1, 2, 3}, ids(s.Snapshot()))
	assert.Equal(t, []int64{3}, s.PinnedIDs())
}

func TestSetLanguageOverrideIdempotent(t *testing.T) {
	s := New()
	s.Load([]entry.Entry{text(1, "a")})

	assert.True(t, s.SetLanguageOverride(1, "go"))
	v := s.Version()
	assert.False(t, s.SetLanguageOverride(1, "go"))
	assert.Equal(t, v, s.Version())

	it, _ := s.Get(1)
	assert.Equal(t, "go", it.LanguageOverride)
}

func TestSnapshotIsImmutable(t *testing.T) {
	s := New()
	s.Load([]entry.Entry{text(1, "a"), text(2, "b")})
	snap := s.Snapshot()

	s.SetPinned(1, true)
	s.SetPhase(2, PhaseShrinking)
	s.RemoveByID(2)

	assert.False(t, snap[0].Pinned)
	assert.Equal(t, PhaseIdle, snap[1].Phase)
	assert.Len(t, snap, 2)
}

func TestSetPhaseAll(t *testing.T) {
	s := New()
	s.Load([]entry.Entry{text(1, "a"), text(2, "b")})
	got := s.SetPhaseAll(PhaseShrinking)
	assert.Equal(t, []int64{1, 2}, got)
	for _, it := range s.Snapshot() {
		assert.Equal(t, PhaseShrinking, it.Phase)
	}
	assert.Empty(t, New().SetPhaseAll(PhaseShrinking))
}

func TestChangesSignal(t *testing.T) {
	s := New()
	s.Prepend(text(1, "a"))
	s.Prepend(text(2, "b"))
	select {
	case <-s.Changes():
	default:
		t.Fatal("expected a change signal")
	}
	// coalesced: one pending signal at most
	select {
	case <-s.Changes():
		t.Fatal("signals should coalesce")
	default:
	}
}
