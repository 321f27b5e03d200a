package clip

import (
	"bytes"
	"sync"
)

// Memory is a process-local clipboard. It is the fallback when no display
// server is available and the backend tests run against.
type Memory struct {
	mu       sync.Mutex
	contents Contents
	watchCh  chan struct{}
	closed   bool
}

// NewMemory returns an empty in-memory clipboard.
func NewMemory() *Memory {
	return &Memory{watchCh: make(chan struct{}, 1)}
}

func (m *Memory) Name() string { return "in-memory" }

func (m *Memory) Read() (Contents, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Contents{
		Text:  bytes.Clone(m.contents.Text),
		Image: bytes.Clone(m.contents.Image),
	}, nil
}

// Write replaces the parts of the clipboard c carries and signals watchers.
func (m *Memory) Write(c Contents) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	if c.Text != nil {
		m.contents.Text = bytes.Clone(c.Text)
	}
	if c.Image != nil {
		m.contents.Image = bytes.Clone(c.Image)
	}
	notify(m.watchCh)
	return nil
}

func (m *Memory) Watch() <-chan struct{} { return m.watchCh }

func (m *Memory) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.watchCh)
	}
}
