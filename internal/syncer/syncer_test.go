package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipview/internal/entry"
	"go.klb.dev/clipview/internal/events"
	"go.klb.dev/clipview/internal/gesture"
	"go.klb.dev/clipview/internal/store"
)

const (
	waitFor = 2 * time.Second
	poll    = 2 * time.Millisecond
)

var errBoom = errors.New("boom")

// ── fakes ──────────────────────────────────────────────────────────────────

type fakeBackend struct {
	mu        sync.Mutex
	ids       []int64
	entries   map[int64]entry.Entry
	config    map[string]string
	configErr error
	entryErr  error
	gate      chan struct{}

	idCalls    int
	entryCalls int
	resized    int
	pinOK      bool
	pinErr     error
	unpinOK    bool
	deleted    []int64
	deleteAll  int
	pushed     []int64
	forced     map[int64]string
	opened     []string
	settings   int
}

func newFakeBackend(es ...entry.Entry) *fakeBackend {
	b := &fakeBackend{
		entries: make(map[int64]entry.Entry),
		config:  make(map[string]string),
		forced:  make(map[int64]string),
		pinOK:   true,
		unpinOK: true,
	}
	for _, e := range es {
		b.ids = append(b.ids, e.ID)
		b.entries[e.ID] = e
	}
	return b
}

func (b *fakeBackend) EntryIDs(context.Context) ([]int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.idCalls++
	return append([]int64(nil), b.ids...), nil
}

func (b *fakeBackend) Entry(ctx context.Context, id int64) (entry.Entry, error) {
	b.mu.Lock()
	b.entryCalls++
	gate := b.gate
	b.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return entry.Entry{}, ctx.Err()
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.entryErr != nil {
		return entry.Entry{}, b.entryErr
	}
	e, ok := b.entries[id]
	if !ok {
		return entry.Entry{}, errors.New("not found")
	}
	return e, nil
}

func (b *fakeBackend) ConfigValue(_ context.Context, property string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.configErr != nil {
		return "", b.configErr
	}
	return b.config[property], nil
}

func (b *fakeBackend) ResizeWindow(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resized++
	return nil
}

func (b *fakeBackend) PushToClipboard(_ context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pushed = append(b.pushed, id)
	return nil
}

func (b *fakeBackend) DeleteItem(_ context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, id)
	return nil
}

func (b *fakeBackend) DeleteAll(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleteAll++
	return nil
}

func (b *fakeBackend) TogglePin(context.Context, int64, bool) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pinOK, b.pinErr
}

func (b *fakeBackend) ForceLanguage(_ context.Context, id int64, language string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.forced[id] = language
	return nil
}

func (b *fakeBackend) UnpinAll(context.Context) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.unpinOK, nil
}

func (b *fakeBackend) OpenSettings(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.settings++
	return nil
}

func (b *fakeBackend) OpenURL(_ context.Context, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opened = append(b.opened, url)
	return nil
}

func (b *fakeBackend) with(fn func(b *fakeBackend)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b)
}

// fakeClock fires After channels only when advanced.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Duration
	waiters []fakeWaiter
}

type fakeWaiter struct {
	at time.Duration
	ch chan time.Time
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan time.Time, 1)
	c.waiters = append(c.waiters, fakeWaiter{at: c.now + d, ch: ch})
	return ch
}

func (c *fakeClock) Waiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
	keep := c.waiters[:0]
	for _, w := range c.waiters {
		if w.at <= c.now {
			w.ch <- time.Unix(0, int64(c.now))
		} else {
			keep = append(keep, w)
		}
	}
	c.waiters = keep
}

// ── harness ────────────────────────────────────────────────────────────────

type harness struct {
	t   *testing.T
	st  *store.Store
	b   *fakeBackend
	hub *events.Hub
	clk *fakeClock
	s   *Syncer
}

func start(t *testing.T, b *fakeBackend) *harness {
	t.Helper()
	h := &harness{
		t:   t,
		st:  store.New(),
		b:   b,
		hub: events.NewHub(),
		clk: &fakeClock{},
	}
	h.s = New(h.st, b, h.hub, h.hub, Options{Clock: h.clk})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- h.s.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.ErrorIs(t, <-errc, context.Canceled)
	})

	require.Eventually(t, func() bool { return h.hub.Len() == 1 }, waitFor, poll)
	return h
}

// tick advances the clock by d once something is waiting on it.
func (h *harness) tick(d time.Duration) {
	h.t.Helper()
	require.Eventually(h.t, func() bool { return h.clk.Waiters() > 0 }, waitFor, poll)
	h.clk.Advance(d)
}

func (h *harness) waitState(want State) {
	h.t.Helper()
	require.Eventually(h.t, func() bool { return h.s.Status().State == want }, waitFor, poll,
		"want state %s, have %s", want, h.s.Status().State)
}

func (h *harness) ready() {
	h.t.Helper()
	h.waitState(StateSettling)
	h.tick(time.Second)
	h.waitState(StateReady)
}

func (h *harness) publish(ev events.Event) { h.hub.Publish(ev) }

func (h *harness) ids() []int64 {
	var out []int64
	for _, it := range h.st.Snapshot() {
		out = append(out, it.ID)
	}
	return out
}

func (h *harness) eventuallyIDs(want ...int64) {
	h.t.Helper()
	require.Eventually(h.t, func() bool { return assert.ObjectsAreEqual(want, h.ids()) }, waitFor, poll,
		"want %v, have %v", want, h.ids())
}

// item returns the entry with id, or a zero Item when it is absent. It is
// safe to call from Eventually conditions.
func (h *harness) item(id int64) store.Item {
	it, _ := h.st.Get(id)
	return it
}

func (h *harness) eventually(cond func() bool, msg string) {
	h.t.Helper()
	require.Eventually(h.t, cond, waitFor, poll, msg)
}

// collect reads signals until stop returns true.
func (h *harness) collect(stop func(Signal) bool) []Signal {
	h.t.Helper()
	var out []Signal
	timeout := time.After(waitFor)
	for {
		select {
		case sig := <-h.s.Signals():
			out = append(out, sig)
			if stop(sig) {
				return out
			}
		case <-timeout:
			h.t.Fatalf("timed out collecting signals, have %d", len(out))
			return out
		}
	}
}

func text(id int64, body string) entry.Entry {
	return entry.New(id, entry.KindText, body, "2024-01-01 12:00:00")
}

func pinned(e entry.Entry) entry.Entry {
	e.Pinned = true
	return e
}

// ── pure helpers ───────────────────────────────────────────────────────────

func TestProgress(t *testing.T) {
	assert.Equal(t, 100, Progress(0, 0))
	assert.Equal(t, 33, Progress(1, 3))
	assert.Equal(t, 66, Progress(2, 3))
	assert.Equal(t, 100, Progress(3, 3))
	assert.Equal(t, 100, Progress(9, 3))
}

func TestParseSensitivity(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"2.5", 2.5},
		{" 0.5 ", 0.5},
		{"0", 1.0},
		{"-3", 1.0},
		{"fast", 1.0},
		{"", 1.0},
		{"NaN", 1.0},
		{"Inf", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSensitivity(tt.in))
		})
	}
}

func TestRunWithoutSource(t *testing.T) {
	s := New(store.New(), newFakeBackend(), nil, nil, Options{})
	assert.ErrorIs(t, s.Run(context.Background()), ErrNoSource)
}

// ── bootstrap ──────────────────────────────────────────────────────────────

func TestBootstrap(t *testing.T) {
	b := newFakeBackend(text(5, "e"), text(4, "d"), text(3, "c"), text(2, "b"), text(1, "a"))
	b.config[KeyScrollFactor] = "2.5"
	b.config[KeySmoothScroll] = "true"
	b.config[KeyWindowPosition] = "left"
	b.config[KeyAutoHideOnCopy] = "true"
	h := start(t, b)

	sigs := h.collect(func(s Signal) bool { return s.Kind == SignalState && s.State == StateSettling })
	var progress []int
	var settings *Settings
	for _, sig := range sigs {
		switch sig.Kind {
		case SignalProgress:
			progress = append(progress, sig.Progress)
		case SignalSettings:
			settings = &sig.Settings
		}
	}
	assert.Equal(t, []int{0, 20, 40, 60, 80, 100}, progress)

	// The store is loaded but the viewer is still settling.
	assert.Equal(t, []int64{5, 4, 3, 2, 1}, h.ids())
	assert.Equal(t, StateSettling, h.s.Status().State)

	h.tick(time.Second)
	h.waitState(StateReady)
	h.eventually(func() bool {
		var n int
		b.with(func(b *fakeBackend) { n = b.resized })
		return n == 1
	}, "resize_window after ready")

	if settings == nil {
		h.eventually(func() bool { return h.s.Status().Settings.Position == gesture.PositionLeft }, "settings")
	}
	set := h.s.Status().Settings
	assert.Equal(t, 2.5, set.Scroll.Sensitivity)
	assert.True(t, set.Scroll.Smooth)
	assert.Equal(t, gesture.PositionLeft, set.Position)
	assert.Equal(t, gesture.Vertical, set.Orientation)
	assert.True(t, set.AutoHide)
}

func TestBootstrapEmptyHistory(t *testing.T) {
	h := start(t, newFakeBackend())
	h.ready()
	assert.Equal(t, 100, h.s.Status().Progress)
	assert.Zero(t, h.st.Len())
}

func TestLargeBootstrapKeepsLifecycleSignals(t *testing.T) {
	var es []entry.Entry
	for id := int64(200); id > 0; id-- {
		es = append(es, text(id, "x"))
	}
	b := newFakeBackend(es...)
	b.config[KeyWindowPosition] = "left"
	h := start(t, b)

	// Nobody reads Signals until the store is ready.
	h.ready()

	sigs := h.collect(func(s Signal) bool { return s.Kind == SignalState && s.State == StateReady })
	var states []State
	var settings []Settings
	var progress []int
	for _, sig := range sigs {
		switch sig.Kind {
		case SignalState:
			states = append(states, sig.State)
		case SignalSettings:
			settings = append(settings, sig.Settings)
		case SignalProgress:
			progress = append(progress, sig.Progress)
		}
	}
	assert.Equal(t, []State{StateLoading, StateSettling, StateReady}, states)
	require.Len(t, settings, 1)
	assert.Equal(t, gesture.Vertical, settings[0].Orientation)
	require.NotEmpty(t, progress)
	assert.Equal(t, 100, progress[len(progress)-1])
	assert.IsNonDecreasing(t, progress)
	assert.LessOrEqual(t, len(progress), 101, "unchanged percentages are not repeated")
}

func TestConfigDefaults(t *testing.T) {
	b := newFakeBackend(text(1, "a"))
	b.configErr = errBoom
	h := start(t, b)
	h.ready()

	set := h.s.Status().Settings
	assert.Equal(t, DefaultSettings(), set)
	assert.Equal(t, gesture.Horizontal, set.Orientation)
}

func TestConfigSmoothNeedsExactTrue(t *testing.T) {
	b := newFakeBackend()
	b.config[KeySmoothScroll] = "True"
	b.config[KeyScrollFactor] = "nope"
	b.config[KeyWindowPosition] = "top"
	h := start(t, b)
	h.ready()

	set := h.s.Status().Settings
	assert.False(t, set.Scroll.Smooth)
	assert.Equal(t, 1.0, set.Scroll.Sensitivity)
	assert.Equal(t, gesture.Horizontal, set.Orientation)
}

func TestBootstrapFailure(t *testing.T) {
	b := newFakeBackend(text(1, "a"), text(2, "b"))
	b.entryErr = errBoom
	h := start(t, b)

	h.waitState(StateFailed)
	assert.ErrorIs(t, h.s.Status().Err, errBoom)
	assert.Zero(t, h.st.Len(), "no partial state after a failed bootstrap")

	// Data events are not applied to a failed store.
	h.publish(events.Event{Kind: events.NewItem, Entry: text(9, "x")})
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, h.st.Len())
}

// ── live events ────────────────────────────────────────────────────────────

func TestEventsQueuedUntilReady(t *testing.T) {
	b := newFakeBackend(text(3, "c"), text(2, "b"), text(1, "a"))
	b.gate = make(chan struct{})
	h := start(t, b)
	h.waitState(StateLoading)

	h.publish(events.Event{Kind: events.NewItem, Entry: text(9, "new")})
	h.publish(events.Event{Kind: events.DeleteItem, ID: 1})
	h.publish(events.Event{Kind: events.NewItem, Entry: text(2, "dup")})
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, h.st.Len(), "nothing is visible while loading")

	close(b.gate)
	h.waitState(StateSettling)
	assert.Equal(t, []int64{3, 2, 1}, h.ids())

	h.tick(time.Second)
	h.waitState(StateReady)
	h.eventuallyIDs(9, 3, 2)
	assert.Equal(t, "b", h.item(2).Raw(), "duplicate delivery leaves the prior entry untouched")
}

func TestNewItemUnescapesNewlines(t *testing.T) {
	h := start(t, newFakeBackend())
	h.ready()

	h.publish(events.Event{Kind: events.NewItem, Entry: text(1, `line one\nline two`)})
	h.eventuallyIDs(1)
	assert.Equal(t, "line one\nline two", h.item(1).Raw())
}

func TestOrderingAfterPrepend(t *testing.T) {
	h := start(t, newFakeBackend(text(1, "e1"), text(2, "e2"), text(3, "e3")))
	h.ready()

	h.publish(events.Event{Kind: events.NewItem, Entry: text(4, "e4")})
	h.eventuallyIDs(4, 1, 2, 3)
}

func TestDeleteItemIdempotent(t *testing.T) {
	h := start(t, newFakeBackend(text(1, "a"), text(2, "b")))
	h.ready()

	h.publish(events.Event{Kind: events.DeleteItem, ID: 1})
	h.publish(events.Event{Kind: events.DeleteItem, ID: 1})
	h.publish(events.Event{Kind: events.DeleteItem, ID: 42})
	h.eventuallyIDs(2)
}

func TestDeleteAllHoldsAndReplays(t *testing.T) {
	h := start(t, newFakeBackend(text(1, "a"), text(2, "b")))
	h.ready()

	h.publish(events.Event{Kind: events.DeleteAll})
	h.eventually(func() bool {
		return h.item(1).Phase == store.PhaseShrinking && h.item(2).Phase == store.PhaseShrinking
	}, "entries shrink before they are cleared")

	h.publish(events.Event{Kind: events.NewItem, Entry: text(5, "after")})
	h.publish(events.Event{Kind: events.DeleteItem, ID: 1})
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, []int64{1, 2}, h.ids(), "store is held during the exit animation")

	h.tick(400 * time.Millisecond)
	h.eventuallyIDs(5)
}

func TestUnpinAllEvent(t *testing.T) {
	h := start(t, newFakeBackend(pinned(text(1, "A")), text(2, "B"), pinned(text(3, "C"))))
	h.ready()

	h.publish(events.Event{Kind: events.UnpinAll})
	h.eventually(func() bool {
		return h.item(1).Phase == store.PhaseShrinking && h.item(3).Phase == store.PhaseShrinking
	}, "pinned entries shrink")
	assert.True(t, h.item(1).Pinned, "flag survives until the shrink completes")
	assert.True(t, h.item(3).Pinned)
	assert.Equal(t, store.PhaseIdle, h.item(2).Phase)

	h.tick(350 * time.Millisecond)
	h.eventually(func() bool {
		return h.item(1).Phase == store.PhaseExpanding && h.item(3).Phase == store.PhaseExpanding
	}, "entries expand")
	assert.False(t, h.item(1).Pinned)
	assert.False(t, h.item(3).Pinned)
	assert.False(t, h.item(2).Pinned)
	assert.Equal(t, []int64{1, 2, 3}, h.ids(), "unpin-all never removes entries")

	h.tick(350 * time.Millisecond)
	h.eventually(func() bool {
		return h.item(1).Phase == store.PhaseIdle && h.item(3).Phase == store.PhaseIdle
	}, "entries settle")
}

func TestDeleteDuringUnpinAll(t *testing.T) {
	h := start(t, newFakeBackend(pinned(text(1, "A")), pinned(text(2, "B"))))
	h.ready()

	h.publish(events.Event{Kind: events.UnpinAll})
	h.eventually(func() bool { return h.item(1).Phase == store.PhaseShrinking }, "shrinking")

	h.publish(events.Event{Kind: events.DeleteItem, ID: 1})
	h.eventuallyIDs(2)

	h.tick(350 * time.Millisecond)
	h.eventually(func() bool { return !h.item(2).Pinned }, "remaining entry unpinned")
	h.eventuallyIDs(2)
}

func TestReloadDiscardsStaleBootstrap(t *testing.T) {
	b := newFakeBackend(text(1, "old"))
	b.gate = make(chan struct{})
	h := start(t, b)
	h.eventually(func() bool {
		var n int
		b.with(func(b *fakeBackend) { n = b.entryCalls })
		return n == 1
	}, "first bootstrap in flight")

	b.with(func(b *fakeBackend) {
		b.ids = []int64{7}
		b.entries[7] = text(7, "new")
	})
	h.publish(events.Event{Kind: events.Reload})
	h.eventually(func() bool {
		var n int
		b.with(func(b *fakeBackend) { n = b.idCalls })
		return n == 2
	}, "bootstrap restarted")

	close(b.gate)
	h.ready()
	assert.Equal(t, []int64{7}, h.ids())
	assert.NoError(t, h.s.Status().Err)
}

func TestReloadAfterReady(t *testing.T) {
	b := newFakeBackend(text(1, "a"))
	h := start(t, b)
	h.ready()

	b.with(func(b *fakeBackend) {
		b.ids = []int64{2, 1}
		b.entries[2] = text(2, "b")
	})
	h.s.Reload()
	h.ready()
	assert.Equal(t, []int64{2, 1}, h.ids())
}

func TestProgressUpdateEvent(t *testing.T) {
	b := newFakeBackend()
	h := start(t, b)
	h.ready()
	h.eventually(func() bool {
		var n int
		b.with(func(b *fakeBackend) { n = b.resized })
		return n == 1
	}, "initial resize")

	h.publish(events.Event{Kind: events.Progress, Progress: 40})
	h.eventually(func() bool { return h.s.Status().Progress == 40 }, "progress 40")

	h.publish(events.Event{Kind: events.Progress, Progress: 200})
	h.eventually(func() bool { return h.s.Status().Progress == 100 }, "200 maps to 100")

	h.tick(500 * time.Millisecond)
	h.eventually(func() bool {
		var n int
		b.with(func(b *fakeBackend) { n = b.resized })
		return n == 2
	}, "resize after completion")
}

func TestResetScroll(t *testing.T) {
	b := newFakeBackend()
	b.config[KeySmoothScroll] = "true"
	h := start(t, b)
	h.ready()
	h.eventually(func() bool { return h.s.Status().Settings.Scroll.Smooth }, "settings applied")

	h.publish(events.Event{Kind: events.ResetScroll})
	sigs := h.collect(func(s Signal) bool { return s.Kind == SignalResetScroll })
	assert.True(t, sigs[len(sigs)-1].Smooth)
}

// ── user actions ───────────────────────────────────────────────────────────

func TestTogglePinCommit(t *testing.T) {
	h := start(t, newFakeBackend(text(1, "a")))
	h.ready()

	res := h.s.TogglePin(context.Background(), 1)
	require.NoError(t, res.Err)
	assert.True(t, res.Committed)
	assert.True(t, res.Pinned)

	it := h.item(1)
	assert.False(t, it.Pinned, "flag flips only after the shrink")
	assert.Equal(t, store.PhaseShrinking, it.Phase)

	h.tick(350 * time.Millisecond)
	h.eventually(func() bool { return h.item(1).Phase == store.PhaseExpanding }, "expanding after shrink")
	assert.True(t, h.item(1).Pinned)

	h.tick(350 * time.Millisecond)
	h.eventually(func() bool { return h.item(1).Phase == store.PhaseIdle }, "idle")
}

func TestTogglePinRollback(t *testing.T) {
	tests := []struct {
		name    string
		ok      bool
		err     error
		wantErr error
	}{
		{"rejected", false, nil, ErrPinRejected},
		{"transport error", false, errBoom, errBoom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend(text(1, "a"))
			b.pinOK, b.pinErr = tt.ok, tt.err
			h := start(t, b)
			h.ready()

			res := h.s.TogglePin(context.Background(), 1)
			assert.False(t, res.Committed)
			assert.ErrorIs(t, res.Err, tt.wantErr)
			assert.False(t, h.item(1).Pinned)
			assert.Equal(t, store.PhaseExpanding, h.item(1).Phase)

			sigs := h.collect(func(s Signal) bool { return s.Kind == SignalNotice })
			assert.NotEmpty(t, sigs[len(sigs)-1].Notice)

			h.tick(350 * time.Millisecond)
			h.eventually(func() bool { return h.item(1).Phase == store.PhaseIdle }, "restored")
		})
	}
}

func TestTogglePinUnknown(t *testing.T) {
	h := start(t, newFakeBackend())
	h.ready()
	res := h.s.TogglePin(context.Background(), 3)
	assert.ErrorIs(t, res.Err, ErrUnknownEntry)
}

func TestDeleteAction(t *testing.T) {
	b := newFakeBackend(text(1, "a"), text(2, "b"))
	h := start(t, b)
	h.ready()

	errc := make(chan error, 1)
	go func() { errc <- h.s.Delete(context.Background(), 1) }()
	h.eventually(func() bool { return h.item(1).Phase == store.PhaseShrinking }, "shrinking")
	h.tick(350 * time.Millisecond)
	require.NoError(t, <-errc)

	assert.Equal(t, []int64{2}, h.ids())
	b.with(func(b *fakeBackend) { assert.Equal(t, []int64{1}, b.deleted) })

	// The backend's own event is then a no-op.
	h.publish(events.Event{Kind: events.DeleteItem, ID: 1})
	h.eventuallyIDs(2)
}

func TestUnpinAllAction(t *testing.T) {
	b := newFakeBackend(pinned(text(1, "a")), text(2, "b"))
	h := start(t, b)
	h.ready()

	ok, err := h.s.UnpinAll(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	h.eventually(func() bool { return h.item(1).Phase == store.PhaseShrinking }, "emitted unpin-all applied")
	h.tick(350 * time.Millisecond)
	h.eventually(func() bool { return !h.item(1).Pinned }, "unpinned")

	b.with(func(b *fakeBackend) { b.unpinOK = false })
	ok, err = h.s.UnpinAll(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetLanguage(t *testing.T) {
	b := newFakeBackend(text(1, "fn main() {}"))
	h := start(t, b)
	h.ready()

	require.NoError(t, h.s.SetLanguage(context.Background(), 1, " rust "))
	assert.Equal(t, "rust", h.item(1).LanguageOverride)
	b.with(func(b *fakeBackend) { assert.Equal(t, "rust", b.forced[1]) })

	assert.ErrorIs(t, h.s.SetLanguage(context.Background(), 9, "go"), ErrUnknownEntry)
	assert.Error(t, h.s.SetLanguage(context.Background(), 1, "  "))
}

func TestOpenAndCopy(t *testing.T) {
	b := newFakeBackend(
		entry.New(1, entry.KindURL, "https://example.org", ""),
		entry.New(2, entry.KindEmail, "someone@example.org", ""),
		text(3, "plain"),
	)
	h := start(t, b)
	h.ready()
	ctx := context.Background()

	require.NoError(t, h.s.Open(ctx, 1))
	require.NoError(t, h.s.Open(ctx, 2))
	assert.ErrorIs(t, h.s.Open(ctx, 3), ErrNotLink)
	b.with(func(b *fakeBackend) {
		assert.Equal(t, []string{"https://example.org", "mailto:someone@example.org"}, b.opened)
	})

	require.NoError(t, h.s.Copy(ctx, 3))
	require.NoError(t, h.s.OpenSettings(ctx))
	require.NoError(t, h.s.DeleteAll(ctx))
	b.with(func(b *fakeBackend) {
		assert.Equal(t, []int64{3}, b.pushed)
		assert.Equal(t, 1, b.settings)
		assert.Equal(t, 1, b.deleteAll)
	})
}
