// Package syncer keeps the entry store consistent with the backend.
//
// A Syncer runs one loop goroutine that owns the lifecycle state machine
// (Idle → Loading → Settling → Ready), applies pushed events to the store in
// delivery order and runs every animation-delayed step. Events that mutate
// entries are queued while the store is loading or held by a delete-all
// animation, and replayed in order once it is released.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"go.klb.dev/clipview/internal/entry"
	"go.klb.dev/clipview/internal/events"
	"go.klb.dev/clipview/internal/gesture"
	"go.klb.dev/clipview/internal/store"
)

// ErrNoSource is returned by Run when the Syncer has no event source.
var ErrNoSource = errors.New("syncer: no event source")

// Configuration properties read during bootstrap.
const (
	KeyScrollFactor   = "scroll_factor"
	KeySmoothScroll   = "smooth_scroll"
	KeyWindowPosition = "window_position"
	KeyAutoHideOnCopy = "auto_hide_on_copy"
)

// Backend is the request/response surface of the clipboard backend.
type Backend interface {
	EntryIDs(ctx context.Context) ([]int64, error)
	Entry(ctx context.Context, id int64) (entry.Entry, error)
	// ConfigValue returns one configuration property, or the whole
	// configuration as JSON when property is empty.
	ConfigValue(ctx context.Context, property string) (string, error)
	ResizeWindow(ctx context.Context) error
	PushToClipboard(ctx context.Context, id int64) error
	DeleteItem(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	TogglePin(ctx context.Context, id int64, pinned bool) (bool, error)
	ForceLanguage(ctx context.Context, id int64, language string) error
	UnpinAll(ctx context.Context) (bool, error)
	OpenSettings(ctx context.Context) error
	OpenURL(ctx context.Context, url string) error
}

// EventSource delivers pushed events. The channel is closed when ctx is done.
// *events.Hub implements it.
type EventSource interface {
	Subscribe(ctx context.Context, buf int) <-chan events.Event
}

// Emitter publishes events the viewer originates. *events.Hub implements it.
type Emitter interface {
	Publish(events.Event)
}

// Clock schedules the animation and settling delays.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// State is the lifecycle state of a Syncer.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateSettling
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSettling:
		return "settling"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Settings is the layout and scrolling configuration fetched at bootstrap.
type Settings struct {
	Scroll      gesture.Settings
	Position    gesture.Position
	Orientation gesture.Orientation
	// AutoHide closes the viewer after a successful copy.
	AutoHide bool
}

// DefaultSettings are used until, or instead of, the fetched configuration.
func DefaultSettings() Settings {
	return Settings{
		Scroll:      gesture.Settings{Sensitivity: 1.0},
		Position:    gesture.PositionBottom,
		Orientation: gesture.PositionBottom.Orientation(),
	}
}

// ParseSensitivity reads a scroll factor. Anything that is not a finite
// positive number yields 1.0.
func ParseSensitivity(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !(f > 0) || math.IsInf(f, 0) {
		return 1.0
	}
	return f
}

// Progress returns the integer percentage after done of total entries.
// The last entry always yields exactly 100 and an empty history counts as
// complete.
func Progress(done, total int) int {
	if total <= 0 {
		return 100
	}
	p := done * 100 / total
	return max(0, min(100, p))
}

// Options tunes a Syncer. Zero durations take the defaults.
type Options struct {
	Clock Clock
	// Settle is how long Loading lingers at 100% before Ready.
	Settle time.Duration
	// DeleteAllHold is the exit animation before the store is cleared.
	DeleteAllHold time.Duration
	// Shrink and Expand are the two halves of a pin animation.
	Shrink time.Duration
	Expand time.Duration
	// ResizeDelay follows a completed progress-update before resize_window.
	ResizeDelay time.Duration
	// SignalBuffer is the capacity of the Signals channel.
	SignalBuffer int
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = realClock{}
	}
	if o.Settle == 0 {
		o.Settle = time.Second
	}
	if o.DeleteAllHold == 0 {
		o.DeleteAllHold = 400 * time.Millisecond
	}
	if o.Shrink == 0 {
		o.Shrink = 350 * time.Millisecond
	}
	if o.Expand == 0 {
		o.Expand = 350 * time.Millisecond
	}
	if o.ResizeDelay == 0 {
		o.ResizeDelay = 500 * time.Millisecond
	}
	if o.SignalBuffer <= 0 {
		o.SignalBuffer = 64
	}
	return o
}

// Status is a point-in-time view of the lifecycle.
type Status struct {
	State    State
	Progress int
	Settings Settings
	Err      error
}

const eventBuffer = 256

// Syncer reconciles the store with the backend.
type Syncer struct {
	store   *store.Store
	backend Backend
	source  EventSource
	emitter Emitter
	opts    Options

	signals chan Signal
	inbox   chan func()
	done    chan struct{}
	runCtx  context.Context

	mu     sync.RWMutex
	status Status

	sigMu    sync.Mutex
	overflow []Signal
	flushing bool

	// Owned by the loop goroutine.
	gen        uint64
	cancelBoot context.CancelFunc
	pending    []events.Event
	holds      int
}

// New returns a Syncer over st. emitter may be nil, in which case events the
// viewer originates are applied locally only.
func New(st *store.Store, b Backend, src EventSource, emitter Emitter, opts Options) *Syncer {
	opts = opts.withDefaults()
	return &Syncer{
		store:   st,
		backend: b,
		source:  src,
		emitter: emitter,
		opts:    opts,
		signals: make(chan Signal, opts.SignalBuffer),
		inbox:   make(chan func(), 64),
		done:    make(chan struct{}),
		runCtx:  context.Background(),
		status:  Status{Settings: DefaultSettings()},
	}
}

// Store returns the store the Syncer maintains.
func (s *Syncer) Store() *store.Store { return s.store }

// Signals returns the channel of lifecycle and action notifications. No
// signal is dropped when the host falls behind; only intermediate progress
// values are collapsed.
func (s *Syncer) Signals() <-chan Signal { return s.signals }

// Status returns the current lifecycle status.
func (s *Syncer) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Run subscribes to the event source, bootstraps the store and then applies
// events until ctx is done. It must be called once.
func (s *Syncer) Run(ctx context.Context) error {
	if s.source == nil {
		return ErrNoSource
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer close(s.done)
	s.runCtx = ctx

	// Subscribe first so nothing pushed during the bootstrap is lost.
	evs := s.source.Subscribe(ctx, eventBuffer)
	s.bootstrap(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-evs:
			if !ok {
				slog.Warn("event source closed")
				evs = nil
				continue
			}
			s.deliver(ev)
		case fn := <-s.inbox:
			fn()
		}
	}
}

// Reload restarts the bootstrap from scratch.
func (s *Syncer) Reload() {
	s.post(s.reload)
}

// post runs fn on the loop goroutine. It is dropped once Run has returned.
func (s *Syncer) post(fn func()) {
	select {
	case s.inbox <- fn:
	case <-s.done:
	}
}

// after runs fn on the loop goroutine once d has elapsed.
func (s *Syncer) after(d time.Duration, fn func()) {
	ch := s.opts.Clock.After(d)
	go func() {
		select {
		case <-ch:
			s.post(fn)
		case <-s.done:
		}
	}()
}

// emit delivers sig in order without blocking the caller. Signals that do not
// fit the channel wait in an overflow queue drained by a flusher goroutine;
// consecutive queued progress signals collapse into the latest one.
func (s *Syncer) emit(sig Signal) {
	s.sigMu.Lock()
	defer s.sigMu.Unlock()

	if !s.flushing {
		select {
		case s.signals <- sig:
			return
		default:
		}
		s.flushing = true
		go s.flush()
	}
	if n := len(s.overflow); n > 0 && sig.Kind == SignalProgress && s.overflow[n-1].Kind == SignalProgress {
		s.overflow[n-1] = sig
		return
	}
	s.overflow = append(s.overflow, sig)
}

func (s *Syncer) flush() {
	for {
		s.sigMu.Lock()
		if len(s.overflow) == 0 {
			s.flushing = false
			s.sigMu.Unlock()
			return
		}
		sig := s.overflow[0]
		s.overflow = s.overflow[1:]
		s.sigMu.Unlock()

		select {
		case s.signals <- sig:
		case <-s.done:
			s.sigMu.Lock()
			s.overflow = nil
			s.flushing = false
			s.sigMu.Unlock()
			return
		}
	}
}

func (s *Syncer) setState(st State, err error) {
	s.mu.Lock()
	s.status.State = st
	s.status.Err = err
	s.mu.Unlock()
	slog.Debug("sync state", "state", st.String())
	s.emit(Signal{Kind: SignalState, State: st, Err: err})
}

func (s *Syncer) setProgress(p int) {
	s.mu.Lock()
	s.status.Progress = p
	s.mu.Unlock()
	s.emit(Signal{Kind: SignalProgress, Progress: p})
}

func (s *Syncer) setSettings(set Settings) {
	s.mu.Lock()
	s.status.Settings = set
	s.mu.Unlock()
	s.emit(Signal{Kind: SignalSettings, Settings: set})
}

func (s *Syncer) settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status.Settings
}

func (s *Syncer) state() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status.State
}

// ── bootstrap ──────────────────────────────────────────────────────────────

func (s *Syncer) bootstrap(ctx context.Context) {
	if s.cancelBoot != nil {
		s.cancelBoot()
	}
	s.gen++
	gen := s.gen
	bctx, cancel := context.WithCancel(ctx)
	s.cancelBoot = cancel

	s.setProgress(0)
	s.setState(StateLoading, nil)
	go s.load(bctx, gen)
}

func (s *Syncer) reload() {
	slog.Info("reloading")
	if s.cancelBoot != nil {
		s.cancelBoot()
		s.cancelBoot = nil
	}
	// A new generation invalidates pending timers and in-flight results.
	s.gen++
	s.pending = nil
	s.holds = 0
	s.store.Clear()
	s.setState(StateIdle, nil)
	s.bootstrap(s.runCtx)
}

// load runs off the loop goroutine: the entry fetch and the configuration
// fetch proceed concurrently and report back through post.
func (s *Syncer) load(ctx context.Context, gen uint64) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		set := s.fetchSettings(gctx)
		s.post(func() {
			if gen == s.gen {
				s.setSettings(set)
			}
		})
		return nil
	})

	var loaded []entry.Entry
	g.Go(func() error {
		var err error
		loaded, err = s.fetchEntries(gctx, gen)
		return err
	})

	err := g.Wait()
	s.post(func() { s.finishLoad(gen, loaded, err) })
}

func (s *Syncer) fetchEntries(ctx context.Context, gen uint64) ([]entry.Entry, error) {
	ids, err := s.backend.EntryIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch entry ids: %w", err)
	}
	slog.Info("loading entries", "count", len(ids))

	out := make([]entry.Entry, 0, len(ids))
	last := 0
	for i, id := range ids {
		e, err := s.backend.Entry(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetch entry %d: %w", id, err)
		}
		out = append(out, e)
		p := Progress(i+1, len(ids))
		if p == last {
			continue
		}
		last = p
		s.post(func() {
			if gen == s.gen {
				s.setProgress(p)
			}
		})
	}
	if len(ids) == 0 {
		s.post(func() {
			if gen == s.gen {
				s.setProgress(100)
			}
		})
	}
	return out, nil
}

func (s *Syncer) fetchSettings(ctx context.Context) Settings {
	set := DefaultSettings()

	if v, err := s.backend.ConfigValue(ctx, KeyScrollFactor); err != nil {
		slog.Warn("config fetch failed, using default", "property", KeyScrollFactor, "err", err)
	} else {
		set.Scroll.Sensitivity = ParseSensitivity(v)
	}

	if v, err := s.backend.ConfigValue(ctx, KeySmoothScroll); err != nil {
		slog.Warn("config fetch failed, using default", "property", KeySmoothScroll, "err", err)
	} else {
		set.Scroll.Smooth = v == "true"
	}

	if v, err := s.backend.ConfigValue(ctx, KeyAutoHideOnCopy); err != nil {
		slog.Warn("config fetch failed, using default", "property", KeyAutoHideOnCopy, "err", err)
	} else {
		set.AutoHide = v == "true"
	}

	if v, err := s.backend.ConfigValue(ctx, KeyWindowPosition); err != nil {
		slog.Warn("config fetch failed, using default", "property", KeyWindowPosition, "err", err)
	} else {
		set.Position = gesture.ParsePosition(v)
		set.Orientation = set.Position.Orientation()
	}

	slog.Debug("layout configured",
		"position", string(set.Position),
		"orientation", set.Orientation.String(),
		"sensitivity", set.Scroll.Sensitivity,
		"smooth", set.Scroll.Smooth,
		"auto_hide", set.AutoHide,
	)
	return set
}

func (s *Syncer) finishLoad(gen uint64, loaded []entry.Entry, err error) {
	if gen != s.gen {
		slog.Debug("discarding stale bootstrap result", "generation", gen)
		return
	}
	s.cancelBoot = nil
	if err != nil {
		slog.Error("bootstrap failed", "err", err)
		s.pending = nil
		s.setState(StateFailed, err)
		return
	}

	s.store.Load(loaded)
	slog.Info("entries loaded", "count", len(loaded))
	s.setState(StateSettling, nil)

	s.after(s.opts.Settle, func() {
		if gen != s.gen || s.state() != StateSettling {
			return
		}
		s.setState(StateReady, nil)
		s.replay()
		s.resize()
	})
}

func (s *Syncer) resize() {
	ctx := s.runCtx
	go func() {
		if err := s.backend.ResizeWindow(ctx); err != nil {
			slog.Warn("resize window failed", "err", err)
		}
	}()
}
