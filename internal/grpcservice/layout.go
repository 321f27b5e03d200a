package grpcservice

import "go.klb.dev/clipview/internal/config"

// Size is a screen size in pixels.
type Size struct {
	Width, Height int
}

// Rect is a window geometry in pixels.
type Rect struct {
	X, Y, Width, Height int
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Layout places the viewer window on screen. Docked at the top or bottom it
// spans window_primary_factor of the width and is window_secondary_size
// tall; docked left or right the roles of the axes swap.
func Layout(cfg config.App, screen Size) Rect {
	f := cfg.WindowPrimaryFactor
	switch cfg.WindowPosition {
	case "left", "right":
		r := Rect{
			Width:  cfg.WindowSecondarySize,
			Height: int(float64(screen.Height-abs(cfg.WindowPaddingY)*2) * f),
			Y:      int(float64(screen.Height)*(1-f)/2) + cfg.WindowPaddingY,
			X:      cfg.WindowPaddingX,
		}
		if cfg.WindowPosition == "right" {
			r.X = screen.Width - cfg.WindowSecondarySize - cfg.WindowPaddingX
		}
		return r
	default:
		r := Rect{
			Width:  int(float64(screen.Width-abs(cfg.WindowPaddingX)*2) * f),
			Height: cfg.WindowSecondarySize,
			X:      int(float64(screen.Width)*(1-f)/2) + cfg.WindowPaddingX,
			Y:      cfg.WindowPaddingY,
		}
		if cfg.WindowPosition != "top" {
			r.Y = screen.Height - cfg.WindowSecondarySize - cfg.WindowPaddingY
		}
		return r
	}
}
