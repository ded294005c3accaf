package vision

import (
	"errors"
	"testing"

	"github.com/Rashandd/rashplayer/shm"
)

// newFrame builds a width*height RGBA frame with every pixel set to the
// given color.
func newFrame(width, height int, r, g, b uint8) []byte {
	frame := make([]byte, width*height*4)
	for i := 0; i < len(frame); i += 4 {
		frame[i] = r
		frame[i+1] = g
		frame[i+2] = b
		frame[i+3] = 255
	}
	return frame
}

func setPixel(frame []byte, width, x, y int, r, g, b uint8) {
	i := (y*width + x) * 4
	frame[i] = r
	frame[i+1] = g
	frame[i+2] = b
	frame[i+3] = 255
}

// Scenario: a 3x3 yellow block on black, full-frame scan.
func TestFindColorRegionCentroid(t *testing.T) {
	frame := newFrame(10, 10, 0, 0, 0)
	for y := 4; y <= 6; y++ {
		for x := 4; x <= 6; x++ {
			setPixel(frame, 10, x, y, 255, 255, 0)
		}
	}

	target := shm.HSV{H: 15, S: 255, V: 255}
	count, center, err := FindColorRegion(frame, 10, 10, shm.Rect{}, target, 15, DefaultMaxMatches)
	if err != nil {
		t.Fatalf("FindColorRegion: %v", err)
	}
	if count != 9 {
		t.Errorf("count: Got %d, want 9", count)
	}
	if center.X != 5 || center.Y != 5 {
		t.Errorf("centroid: Got (%d,%d), want (5,5)", center.X, center.Y)
	}
}

func TestFindColorRegionEarlyStop(t *testing.T) {
	frame := newFrame(10, 10, 255, 255, 0)
	target := shm.HSV{H: 30, S: 255, V: 255}

	count, _, err := FindColorRegion(frame, 10, 10, shm.Rect{}, target, 0, 7)
	if err != nil {
		t.Fatalf("FindColorRegion: %v", err)
	}
	if count != 7 {
		t.Errorf("count: Got %d, want cap 7", count)
	}
}

func TestFindColorRegionClipped(t *testing.T) {
	frame := newFrame(10, 10, 255, 255, 0)
	target := shm.HSV{H: 30, S: 255, V: 255}

	// Region extends past the frame on both axes; only the in-frame
	// 5x5 corner is scanned.
	region := shm.Rect{X: 5, Y: 5, W: 100, H: 100}
	count, center, err := FindColorRegion(frame, 10, 10, region, target, 0, DefaultMaxMatches)
	if err != nil {
		t.Fatalf("FindColorRegion: %v", err)
	}
	if count != 25 {
		t.Errorf("count: Got %d, want 25", count)
	}
	if center.X != 7 || center.Y != 7 {
		t.Errorf("centroid: Got (%d,%d), want (7,7)", center.X, center.Y)
	}
}

func TestFindColorRegionDegenerate(t *testing.T) {
	frame := newFrame(10, 10, 255, 255, 0)
	target := shm.HSV{H: 30, S: 255, V: 255}

	// Region entirely past the right edge clips to zero width.
	count, _, err := FindColorRegion(frame, 10, 10,
		shm.Rect{X: 10, Y: 0, W: 5, H: 5}, target, 0, DefaultMaxMatches)
	if err != nil {
		t.Fatalf("FindColorRegion: %v", err)
	}
	if count != 0 {
		t.Errorf("count: Got %d, want 0", count)
	}
}

func TestFindColorRegionNoMatch(t *testing.T) {
	frame := newFrame(10, 10, 0, 0, 0)
	target := shm.HSV{H: 30, S: 255, V: 255}

	count, _, err := FindColorRegion(frame, 10, 10, shm.Rect{}, target, 15, DefaultMaxMatches)
	if err != nil {
		t.Fatalf("FindColorRegion: %v", err)
	}
	if count != 0 {
		t.Errorf("count: Got %d, want 0", count)
	}
}

func TestFindColorRegionInvalidArgs(t *testing.T) {
	frame := newFrame(4, 4, 0, 0, 0)
	target := shm.HSV{}

	if _, _, err := FindColorRegion(nil, 4, 4, shm.Rect{}, target, 0, 1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("nil frame: Got %v, want ErrInvalidArgument", err)
	}
	if _, _, err := FindColorRegion(frame, 4, 4, shm.Rect{}, target, 0, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("maxMatches 0: Got %v, want ErrInvalidArgument", err)
	}
	if _, _, err := FindColorRegion(frame, 0, 4, shm.Rect{}, target, 0, 1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("zero width: Got %v, want ErrInvalidArgument", err)
	}
}
