// Package vision implements the detection side of the perception core:
// HSV pixel primitives, region-constrained color blob search, NCC
// template matching and gradient edge localization over raw RGBA
// frames, plus the trigger orchestrator that applies them per frame.
package vision

import (
	"math"

	"github.com/Rashandd/rashplayer/shm"
)

// RGBToHSV converts one pixel to the halved-hue HSV scale (H 0-179,
// S 0-255, V 0-255) using integer arithmetic. The exact output bytes
// are a contract: detector thresholds and rule files are tuned to them.
func RGBToHSV(r, g, b uint8) (h, s, v uint8) {
	cmax := r
	if g > cmax {
		cmax = g
	}
	if b > cmax {
		cmax = b
	}
	cmin := r
	if g < cmin {
		cmin = g
	}
	if b < cmin {
		cmin = b
	}
	delta := int(cmax) - int(cmin)

	v = cmax
	if cmax != 0 {
		s = uint8(255 * delta / int(cmax))
	}
	if delta == 0 {
		return 0, s, v
	}

	var hue int
	switch cmax {
	case r:
		hue = 30 * (int(g) - int(b)) / delta
	case g:
		hue = 30*(int(b)-int(r))/delta + 60
	default:
		hue = 30*(int(r)-int(g))/delta + 120
	}
	hue = ((hue % 180) + 180) % 180
	return uint8(hue), s, v
}

// HSVToRGB is the inverse on the same halved scale. Detection never
// needs it; it exists so callers (and the round-trip tests) can map
// tuned HSV targets back to displayable colors.
func HSVToRGB(h, s, v uint8) (r, g, b uint8) {
	hf := float64(h) * 2
	sf := float64(s) / 255
	vf := float64(v) / 255

	c := vf * sf
	x := c * (1 - math.Abs(math.Mod(hf/60, 2)-1))
	m := vf - c

	var rf, gf, bf float64
	switch {
	case hf < 60:
		rf, gf, bf = c, x, 0
	case hf < 120:
		rf, gf, bf = x, c, 0
	case hf < 180:
		rf, gf, bf = 0, c, x
	case hf < 240:
		rf, gf, bf = 0, x, c
	case hf < 300:
		rf, gf, bf = x, 0, c
	default:
		rf, gf, bf = c, 0, x
	}

	r = uint8(math.Round((rf + m) * 255))
	g = uint8(math.Round((gf + m) * 255))
	b = uint8(math.Round((bf + m) * 255))
	return r, g, b
}

// HSVInRange tests the three channels independently against inclusive
// low/high bounds.
func HSVInRange(h, s, v uint8, low, high shm.HSV) bool {
	return h >= low.H && h <= high.H &&
		s >= low.S && s <= high.S &&
		v >= low.V && v <= high.V
}

// hueDist is the wrapped hue distance on the 0-179 circle.
func hueDist(a, b uint8) int {
	d := int(a) - int(b)
	if d < 0 {
		d = -d
	}
	if d > 90 {
		d = 180 - d
	}
	return d
}

// hsvClose reports whether (h,s,v) lies within tol of target on every
// channel, with the hue distance wrapped.
func hsvClose(target shm.HSV, h, s, v uint8, tol int) bool {
	if hueDist(h, target.H) > tol {
		return false
	}
	ds := int(s) - int(target.S)
	if ds < 0 {
		ds = -ds
	}
	dv := int(v) - int(target.V)
	if dv < 0 {
		dv = -dv
	}
	return ds <= tol && dv <= tol
}

// clampRect resolves a search rect against the frame: zero or negative
// width/height selects the whole frame, negative origins clamp to 0,
// and the extent is clipped to the frame edge. A degenerate result has
// w or h <= 0.
func clampRect(r shm.Rect, width, height int) (x, y, w, h int) {
	x, y = int(r.X), int(r.Y)
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	w, h = int(r.W), int(r.H)
	if w <= 0 {
		w = width
	}
	if h <= 0 {
		h = height
	}
	if x+w > width {
		w = width - x
	}
	if y+h > height {
		h = height - y
	}
	return x, y, w, h
}
