// Package gesture turns two-axis wheel input into single-axis list scrolling.
package gesture

import (
	"math"
	"strings"
)

// Orientation is the axis the entry list scrolls along.
type Orientation int

const (
	Vertical Orientation = iota
	Horizontal
)

func (o Orientation) String() string {
	if o == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// Position is where the host window sits on screen.
type Position string

const (
	PositionTop    Position = "top"
	PositionBottom Position = "bottom"
	PositionLeft   Position = "left"
	PositionRight  Position = "right"
)

// ParsePosition normalizes a configured position. Unknown values map to
// PositionBottom, the backend's default.
func ParsePosition(s string) Position {
	switch p := Position(strings.ToLower(strings.TrimSpace(s))); p {
	case PositionTop, PositionBottom, PositionLeft, PositionRight:
		return p
	default:
		return PositionBottom
	}
}

// Orientation derives the list orientation: docked at the top or bottom the
// list runs horizontally, otherwise vertically.
func (p Position) Orientation() Orientation {
	if p == PositionTop || p == PositionBottom {
		return Horizontal
	}
	return Vertical
}

// Axis is the scroll coordinate an instruction moves.
type Axis string

const (
	AxisLeft Axis = "left"
	AxisTop  Axis = "top"
)

// Settings are the user's scroll preferences.
type Settings struct {
	Sensitivity float64
	Smooth      bool
}

// Wheel is a raw wheel event.
type Wheel struct {
	DX, DY float64
}

// Instruction tells the list how far to scroll.
type Instruction struct {
	Axis   Axis
	Amount float64
	Smooth bool
}

// Translate maps a wheel event to a scroll instruction. The second result is
// false when the gesture has no magnitude; the caller must then leave the
// platform's default scrolling alone. When it is true the default must be
// suppressed.
//
// A horizontal list takes its direction from the X delta when it is nonzero
// and from the Y delta otherwise. A vertical list follows the Y delta only, so
// a purely sideways swipe yields a zero amount. The magnitude is the
// Euclidean norm of both deltas.
func Translate(w Wheel, o Orientation, s Settings) (Instruction, bool) {
	norm := math.Hypot(w.DX, w.DY)
	if norm == 0 {
		return Instruction{}, false
	}

	axis := AxisTop
	dir := sign(w.DY)
	if o == Horizontal {
		axis = AxisLeft
		if w.DX != 0 {
			dir = sign(w.DX)
		}
	}

	return Instruction{
		Axis:   axis,
		Amount: dir * norm * s.Sensitivity,
		Smooth: s.Smooth,
	}, true
}

func sign(f float64) float64 {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	default:
		return 0
	}
}
