package gesture

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

const settleEpsilon = 0.01

// Viewport is the scroll position of the rendered list along its axis. Smooth
// instructions move it toward the target on a critically damped spring, one
// Step per frame; other instructions jump immediately.
type Viewport struct {
	max      float64
	offset   float64
	target   float64
	velocity float64
	spring   harmonica.Spring
}

// NewViewport returns a viewport animating at fps frames per second.
func NewViewport(fps int) *Viewport {
	if fps <= 0 {
		fps = 60
	}
	return &Viewport{
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
}

// SetExtent sets the largest reachable offset and clamps the position.
func (v *Viewport) SetExtent(max float64) {
	v.max = math.Max(0, max)
	v.target = v.clamp(v.target)
	v.offset = v.clamp(v.offset)
}

// Extent returns the largest reachable offset.
func (v *Viewport) Extent() float64 { return v.max }

// Offset returns the current position.
func (v *Viewport) Offset() float64 { return v.offset }

// Target returns the position the viewport is heading to.
func (v *Viewport) Target() float64 { return v.target }

// Apply scrolls by in.Amount.
func (v *Viewport) Apply(in Instruction) {
	v.moveTo(v.target+in.Amount, in.Smooth)
}

// Reset returns the viewport to the origin.
func (v *Viewport) Reset(smooth bool) {
	v.moveTo(0, smooth)
}

// ScrollTo moves to an absolute position.
func (v *Viewport) ScrollTo(pos float64, smooth bool) {
	v.moveTo(pos, smooth)
}

// Animating reports whether a smooth scroll is still in progress.
func (v *Viewport) Animating() bool {
	return v.offset != v.target
}

// Step advances a smooth scroll by one frame and reports whether more frames
// are needed.
func (v *Viewport) Step() bool {
	if !v.Animating() {
		return false
	}
	v.offset, v.velocity = v.spring.Update(v.offset, v.velocity, v.target)
	if math.Abs(v.offset-v.target) < settleEpsilon && math.Abs(v.velocity) < settleEpsilon {
		v.offset = v.target
		v.velocity = 0
		return false
	}
	v.offset = v.clamp(v.offset)
	return true
}

func (v *Viewport) moveTo(pos float64, smooth bool) {
	v.target = v.clamp(pos)
	if !smooth {
		v.offset = v.target
		v.velocity = 0
	}
}

func (v *Viewport) clamp(f float64) float64 {
	return math.Max(0, math.Min(v.max, f))
}
