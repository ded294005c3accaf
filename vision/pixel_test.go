package vision

import (
	"testing"

	"github.com/Rashandd/rashplayer/shm"
)

func TestRGBToHSV(t *testing.T) {
	cases := []struct {
		r, g, b uint8
		h, s, v uint8
	}{
		{0, 0, 0, 0, 0, 0},
		{255, 255, 255, 0, 0, 255},
		{128, 128, 128, 0, 0, 128},
		{255, 0, 0, 0, 255, 255},
		{0, 255, 0, 60, 255, 255},
		{0, 0, 255, 120, 255, 255},
		{255, 255, 0, 30, 255, 255}, // yellow
		{0, 255, 255, 90, 255, 255}, // cyan
		{255, 0, 255, 150, 255, 255},
		{255, 128, 0, 15, 255, 255},
		{30, 60, 90, 105, 170, 90},
	}
	for i, tc := range cases {
		h, s, v := RGBToHSV(tc.r, tc.g, tc.b)
		if h != tc.h || s != tc.s || v != tc.v {
			t.Errorf("%d: rgb(%d,%d,%d): Got hsv(%d,%d,%d), want (%d,%d,%d)",
				i, tc.r, tc.g, tc.b, h, s, v, tc.h, tc.s, tc.v)
		}
	}
}

func TestRGBToHSVHueInRange(t *testing.T) {
	// Every convertible color must land on the halved 0-179 scale,
	// including near-gray pixels whose truncated hue would otherwise
	// wrap to 180.
	for r := 0; r < 256; r += 5 {
		for g := 0; g < 256; g += 5 {
			for b := 0; b < 256; b += 5 {
				h, _, _ := RGBToHSV(uint8(r), uint8(g), uint8(b))
				if h > 179 {
					t.Fatalf("rgb(%d,%d,%d): hue %d out of range", r, g, b, h)
				}
			}
		}
	}
}

func TestHSVRoundTrip(t *testing.T) {
	cases := []struct{ r, g, b uint8 }{
		{255, 0, 0},
		{0, 255, 0},
		{0, 0, 255},
		{255, 255, 0},
		{0, 255, 255},
		{255, 0, 255},
		{255, 255, 255},
		{128, 128, 128},
		{255, 128, 0},
		{0, 128, 255},
		{30, 60, 90},
		{200, 100, 50},
		{1, 0, 0},
	}
	for i, tc := range cases {
		h, s, v := RGBToHSV(tc.r, tc.g, tc.b)
		r2, g2, b2 := HSVToRGB(h, s, v)
		if absDiff(tc.r, r2) > 2 || absDiff(tc.g, g2) > 2 || absDiff(tc.b, b2) > 2 {
			t.Errorf("%d: rgb(%d,%d,%d) -> hsv(%d,%d,%d) -> rgb(%d,%d,%d): deviation > 2",
				i, tc.r, tc.g, tc.b, h, s, v, r2, g2, b2)
		}
	}
}

func TestHueDist(t *testing.T) {
	cases := []struct {
		a, b uint8
		want int
	}{
		{0, 0, 0},
		{10, 20, 10},
		{0, 179, 1}, // wraps
		{0, 90, 90},
		{170, 10, 20},
		{45, 135, 90},
	}
	for i, tc := range cases {
		if got := hueDist(tc.a, tc.b); got != tc.want {
			t.Errorf("%d: hueDist(%d,%d): Got %d, want %d", i, tc.a, tc.b, got, tc.want)
		}
		if got := hueDist(tc.b, tc.a); got != tc.want {
			t.Errorf("%d: hueDist(%d,%d): Got %d, want %d", i, tc.b, tc.a, got, tc.want)
		}
	}
}

func TestHSVInRange(t *testing.T) {
	low := shm.HSV{H: 20, S: 150, V: 150}
	high := shm.HSV{H: 40, S: 255, V: 255}
	cases := []struct {
		h, s, v uint8
		want    bool
	}{
		{30, 200, 200, true},
		{20, 150, 150, true}, // bounds inclusive
		{40, 255, 255, true},
		{19, 200, 200, false},
		{41, 200, 200, false},
		{30, 149, 200, false},
		{30, 200, 149, false},
	}
	for i, tc := range cases {
		if got := HSVInRange(tc.h, tc.s, tc.v, low, high); got != tc.want {
			t.Errorf("%d: Got %v, want %v", i, got, tc.want)
		}
	}
}

func TestClampRect(t *testing.T) {
	cases := []struct {
		in         shm.Rect
		x, y, w, h int
	}{
		{shm.Rect{}, 0, 0, 100, 50},                            // zero rect = whole frame
		{shm.Rect{X: 10, Y: 10, W: 20, H: 20}, 10, 10, 20, 20}, // inside
		{shm.Rect{X: 90, Y: 40, W: 20, H: 20}, 90, 40, 10, 10}, // clipped
		{shm.Rect{X: -5, Y: -5, W: 30, H: 30}, 0, 0, 30, 30},   // negative origin
		{shm.Rect{X: 100, Y: 0, W: 10, H: 10}, 100, 0, 0, 10},  // degenerate
	}
	for i, tc := range cases {
		x, y, w, h := clampRect(tc.in, 100, 50)
		if x != tc.x || y != tc.y || w != tc.w || h != tc.h {
			t.Errorf("%d: Got (%d,%d,%d,%d), want (%d,%d,%d,%d)",
				i, x, y, w, h, tc.x, tc.y, tc.w, tc.h)
		}
	}
}
