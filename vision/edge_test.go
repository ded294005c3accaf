package vision

import (
	"testing"

	"github.com/Rashandd/rashplayer/shm"
)

// Scenario: black above y=50, white below; the horizontal edge sits on
// the boundary within the +-1 gradient window.
func TestDetectEdgeHorizontal(t *testing.T) {
	frame := make([]byte, 100*100*4)
	for y := 50; y < 100; y++ {
		for x := 0; x < 100; x++ {
			setPixel(frame, 100, x, y, 255, 255, 255)
		}
	}

	pos, ok := DetectEdge(frame, 100, 100, shm.Rect{}, true)
	if !ok {
		t.Fatal("no edge reported")
	}
	if pos < 49 || pos > 51 {
		t.Errorf("position: Got %d, want 50 +- 1", pos)
	}
}

func TestDetectEdgeVertical(t *testing.T) {
	frame := make([]byte, 100*100*4)
	for y := 0; y < 100; y++ {
		for x := 30; x < 100; x++ {
			setPixel(frame, 100, x, y, 200, 200, 200)
		}
	}

	pos, ok := DetectEdge(frame, 100, 100, shm.Rect{}, false)
	if !ok {
		t.Fatal("no edge reported")
	}
	if pos < 29 || pos > 31 {
		t.Errorf("position: Got %d, want 30 +- 1", pos)
	}
}

func TestDetectEdgeUniform(t *testing.T) {
	frame := newFrame(100, 100, 128, 128, 128)
	if pos, ok := DetectEdge(frame, 100, 100, shm.Rect{}, true); ok {
		t.Errorf("edge reported in uniform frame at %d", pos)
	}
}

// A step too faint to clear the absolute gradient floor is not an edge.
func TestDetectEdgeBelowFloor(t *testing.T) {
	frame := make([]byte, 10*10*4)
	for y := 0; y < 10; y++ {
		for x := 5; x < 10; x++ {
			setPixel(frame, 10, x, y, 1, 1, 1)
		}
	}
	// Peak gradient: 10 rows * 3 channels * 1 = 30, far below 1000.
	if _, ok := DetectEdge(frame, 10, 10, shm.Rect{}, false); ok {
		t.Error("faint step reported as edge")
	}
}

func TestDetectEdgeRegionConstrained(t *testing.T) {
	frame := make([]byte, 100*100*4)
	for y := 20; y < 100; y++ {
		for x := 0; x < 100; x++ {
			setPixel(frame, 100, x, y, 255, 255, 255)
		}
	}
	for y := 70; y < 100; y++ {
		for x := 0; x < 100; x++ {
			setPixel(frame, 100, x, y, 0, 0, 0)
		}
	}

	// Constrained to the lower half, only the second boundary is seen,
	// and the position stays in frame coordinates.
	pos, ok := DetectEdge(frame, 100, 100, shm.Rect{X: 0, Y: 50, W: 100, H: 50}, true)
	if !ok {
		t.Fatal("no edge reported")
	}
	if pos < 69 || pos > 71 {
		t.Errorf("position: Got %d, want 70 +- 1", pos)
	}
}

func TestDetectEdgeDegenerateRegion(t *testing.T) {
	frame := newFrame(10, 10, 255, 255, 255)
	if _, ok := DetectEdge(frame, 10, 10, shm.Rect{X: 10, Y: 10, W: 4, H: 4}, true); ok {
		t.Error("edge reported for degenerate region")
	}
}
