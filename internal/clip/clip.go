// Package clip reads, writes and watches the system clipboard. Build
// constraints select the platform implementation:
//
//	clip_darwin.go   macOS, NSPasteboard changeCount polling
//	clip_windows.go  Windows, AddClipboardFormatListener
//	clip_linux.go    Linux (X11/Wayland), content polling
//	clip_other.go    everything else, in-memory only
//
// Platforms without a usable display fall back to the in-memory clipboard of
// memory.go, which is also what tests use.
package clip

import "bytes"

// Contents is a clipboard snapshot. Text is UTF-8, Image is PNG encoded.
// Either may be nil.
type Contents struct {
	Text  []byte
	Image []byte
}

// Empty reports whether c holds nothing.
func (c Contents) Empty() bool { return len(c.Text) == 0 && len(c.Image) == 0 }

// Equal reports whether c and o hold the same bytes.
func (c Contents) Equal(o Contents) bool {
	return bytes.Equal(c.Text, o.Text) && bytes.Equal(c.Image, o.Image)
}

// Backend is implemented by every clipboard implementation.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// Read returns the current clipboard contents.
	Read() (Contents, error)

	// Write replaces the clipboard with the non-nil parts of c.
	Write(c Contents) error

	// Watch returns a channel that receives a signal whenever the clipboard
	// may have changed. It is closed by Close. Receivers call Read and
	// compare for themselves.
	Watch() <-chan struct{}

	// Close stops watching and releases resources.
	Close()
}

// notify performs a non-blocking send on a change channel.
func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
