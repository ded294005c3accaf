package player

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Rashandd/rashplayer/shm"
)

// Fallback viewer size before the producer has published frame
// metadata.
const (
	VIEWER_DEFAULT_WIDTH  = 640
	VIEWER_DEFAULT_HEIGHT = 360
)

// Viewer renders the shared frame with detection overlays in an ebiten
// window. The consumer loop runs in its own goroutine; like the
// emulator it is modeled on, Update does no work and Draw just copies
// the current pixels out of the region.
type Viewer struct {
	region *shm.Region
	buf    []byte
}

// NewViewer wraps a region for display.
func NewViewer(region *shm.Region) *Viewer {
	return &Viewer{region: region}
}

// Layout reports the native frame size so ebiten scales the window.
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h, _ := v.region.Dims()
	if w <= 0 || h <= 0 {
		return VIEWER_DEFAULT_WIDTH, VIEWER_DEFAULT_HEIGHT
	}
	return w, h
}

// Update is part of the ebiten.Game interface; processing happens on
// the consumer goroutine, not the display tick.
func (v *Viewer) Update() error {
	return nil
}

// Draw copies the live frame and marks every found result over it: its
// bounding box when it has one, otherwise a cross at its location.
func (v *Viewer) Draw(screen *ebiten.Image) {
	w, h, _ := v.region.Dims()
	bounds := screen.Bounds()
	if w != bounds.Dx() || h != bounds.Dy() || w <= 0 || h <= 0 {
		return // metadata changed between Layout and Draw
	}

	need := w * h * 4
	if len(v.buf) != need {
		v.buf = make([]byte, need)
	}
	copy(v.buf, v.region.Frame()[:need])

	for _, r := range v.region.Results() {
		if !r.Found {
			continue
		}
		if r.BoundingBox.W > 0 && r.BoundingBox.H > 0 {
			v.outline(w, h, r.BoundingBox)
		} else {
			v.cross(w, h, r.Location)
		}
	}

	screen.WritePixels(v.buf)
}

// outline draws a one-pixel green rectangle border.
func (v *Viewer) outline(w, h int, box shm.Rect) {
	x0, y0 := int(box.X), int(box.Y)
	x1, y1 := x0+int(box.W)-1, y0+int(box.H)-1
	for x := x0; x <= x1; x++ {
		v.plot(w, h, x, y0)
		v.plot(w, h, x, y1)
	}
	for y := y0; y <= y1; y++ {
		v.plot(w, h, x0, y)
		v.plot(w, h, x1, y)
	}
}

// cross marks a point result with a small green cross.
func (v *Viewer) cross(w, h int, p shm.Point) {
	for d := -4; d <= 4; d++ {
		v.plot(w, h, int(p.X)+d, int(p.Y))
		v.plot(w, h, int(p.X), int(p.Y)+d)
	}
}

func (v *Viewer) plot(w, h, x, y int) {
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	i := (y*w + x) * 4
	v.buf[i] = 0
	v.buf[i+1] = 255
	v.buf[i+2] = 0
	v.buf[i+3] = 255
}
