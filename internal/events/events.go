// Package events implements the push-event fan-out shared by the viewer and
// the reference backend. It is transport-agnostic: listeners register,
// receive events through a non-blocking Send, and anyone may publish.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"go.klb.dev/clipview/internal/entry"
)

// Kind is the wire name of a pushed event.
type Kind string

const (
	NewItem     Kind = "new-clipboard-item"
	DeleteItem  Kind = "delete-item"
	DeleteAll   Kind = "delete-all-items"
	UnpinAll    Kind = "unpin-all"
	ResetScroll Kind = "reset-scroll"
	Reload      Kind = "reload-window"
	Progress    Kind = "progress-update"
)

// ParseKind validates an event name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case NewItem, DeleteItem, DeleteAll, UnpinAll, ResetScroll, Reload, Progress:
		return k, nil
	default:
		return "", fmt.Errorf("unknown event %q", s)
	}
}

// MutatesEntries reports whether events of kind k change entry data. Only
// those are held back while the viewer is loading or clearing.
func (k Kind) MutatesEntries() bool {
	switch k {
	case NewItem, DeleteItem, DeleteAll, UnpinAll:
		return true
	default:
		return false
	}
}

// Event is one pushed notification. Entry is set for NewItem, ID for
// DeleteItem and Progress for Progress.
type Event struct {
	Kind     Kind
	Entry    entry.Entry
	ID       int64
	Progress int
}

func (e Event) String() string {
	switch e.Kind {
	case NewItem:
		return fmt.Sprintf("%s(%d)", e.Kind, e.Entry.ID)
	case DeleteItem:
		return fmt.Sprintf("%s(%d)", e.Kind, e.ID)
	case Progress:
		return fmt.Sprintf("%s(%d)", e.Kind, e.Progress)
	default:
		return string(e.Kind)
	}
}

// Listener is anything that can receive events from the hub.
type Listener interface {
	ID() string
	// Send delivers an event to the listener. Must be non-blocking.
	Send(Event)
}

// Hub routes events to every registered listener.
type Hub struct {
	mu        sync.RWMutex
	listeners map[string]Listener
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{listeners: make(map[string]Listener)}
}

// Register adds a listener.
func (h *Hub) Register(l Listener) {
	h.mu.Lock()
	h.listeners[l.ID()] = l
	total := len(h.listeners)
	h.mu.Unlock()

	slog.Debug("listener registered", "listener", l.ID(), "total", total)
}

// Unregister removes a listener.
func (h *Hub) Unregister(l Listener) {
	h.mu.Lock()
	delete(h.listeners, l.ID())
	total := len(h.listeners)
	h.mu.Unlock()

	slog.Debug("listener unregistered", "listener", l.ID(), "total", total)
}

// Len returns the number of registered listeners.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// Publish delivers ev to every listener. Listeners are called outside the
// lock, in no particular order.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	targets := make([]Listener, 0, len(h.listeners))
	for _, l := range h.listeners {
		targets = append(targets, l)
	}
	h.mu.RUnlock()

	slog.Debug("event published", "event", ev.String(), "listeners", len(targets))
	for _, l := range targets {
		l.Send(ev)
	}
}

// Subscribe registers a channel listener with room for buf pending events.
// The listener is removed and the channel closed when ctx is done. Events
// that arrive while the buffer is full are dropped with a warning.
func (h *Hub) Subscribe(ctx context.Context, buf int) <-chan Event {
	if buf <= 0 {
		buf = 16
	}
	l := &chanListener{
		id: "sub/" + uuid.NewString(),
		ch: make(chan Event, buf),
	}
	h.Register(l)
	go func() {
		<-ctx.Done()
		h.Unregister(l)
		l.close()
	}()
	return l.ch
}

// chanListener is a transient Listener backed by a buffered channel.
type chanListener struct {
	id string

	mu     sync.Mutex
	ch     chan Event
	closed bool
}

func (l *chanListener) ID() string { return l.id }

func (l *chanListener) Send(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	select {
	case l.ch <- ev:
	default:
		slog.Warn("listener channel full, dropping", "listener", l.id, "event", ev.String())
	}
}

func (l *chanListener) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.closed {
		l.closed = true
		close(l.ch)
	}
}
