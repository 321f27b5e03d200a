//go:build !darwin && !windows && !linux

package clip

// New returns the in-memory clipboard; this platform has no system clipboard
// support.
func New() Backend {
	return NewMemory()
}
