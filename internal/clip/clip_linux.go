//go:build linux

package clip

import (
	"log/slog"
	"time"

	"golang.design/x/clipboard"
)

const linuxPollInterval = 250 * time.Millisecond

type linuxBackend struct {
	watchCh chan struct{}
	done    chan struct{}
	last    Contents
}

// New returns the Linux clipboard backend, or the in-memory clipboard when
// no display is reachable (headless servers, containers). clipboard.Init is
// called here rather than in init() so that list and signal never touch the
// display.
func New() Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, using in-memory clipboard", "err", err)
		return NewMemory()
	}
	b := &linuxBackend{
		watchCh: make(chan struct{}, 1),
		done:    make(chan struct{}),
		last:    readSystem(),
	}
	go b.poll()
	return b
}

func (b *linuxBackend) Name() string { return "Linux clipboard (poll)" }

// poll compares contents since X11 and Wayland offer no portable change
// notification.
func (b *linuxBackend) poll() {
	t := time.NewTicker(linuxPollInterval)
	defer t.Stop()
	defer close(b.watchCh)
	for {
		select {
		case <-b.done:
			return
		case <-t.C:
			cur := readSystem()
			if !cur.Equal(b.last) {
				b.last = cur
				notify(b.watchCh)
			}
		}
	}
}

func (b *linuxBackend) Read() (Contents, error) { return readSystem(), nil }

func (b *linuxBackend) Write(c Contents) error {
	writeSystem(c)
	return nil
}

func (b *linuxBackend) Watch() <-chan struct{} { return b.watchCh }
func (b *linuxBackend) Close()                 { close(b.done) }
