package classify

import (
	"math"
	"regexp"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

var (
	rgbRe = regexp.MustCompile(`(?i)rgba?\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*(?:,\s*[0-9.]+\s*)?\)`)
	hslRe = regexp.MustCompile(`(?i)hsla?\(\s*(\d+(?:\.\d+)?)\s*,\s*(\d+(?:\.\d+)?)%?\s*,\s*(\d+(?:\.\d+)?)%?\s*(?:,\s*[0-9.]+\s*)?\)`)
)

// NormalizeColor converts rgb(), rgba(), hsl() and hsla() literals to a
// #rrggbb hex string, dropping any alpha channel. Anything else, hex literals
// included, is returned unchanged.
func NormalizeColor(literal string) string {
	if m := rgbRe.FindStringSubmatch(literal); m != nil {
		c := colorful.Color{
			R: channel(m[1]) / 255,
			G: channel(m[2]) / 255,
			B: channel(m[3]) / 255,
		}
		return c.Clamped().Hex()
	}
	if m := hslRe.FindStringSubmatch(literal); m != nil {
		h := math.Mod(number(m[1]), 360)
		s := clamp01(number(m[2]) / 100)
		l := clamp01(number(m[3]) / 100)
		return colorful.Hsl(h, s, l).Clamped().Hex()
	}
	return literal
}

func channel(s string) float64 {
	return math.Min(number(s), 255)
}

func number(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}
