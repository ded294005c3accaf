// Package flappy packages the Flappy Bird presets: color-range
// detectors for the bird and pipes, gap analysis between a pipe pair,
// and ready-made trigger and rule sets for the core engines. It is an
// application of the perception core, not part of it.
package flappy

import (
	"github.com/Rashandd/rashplayer/brain"
	"github.com/Rashandd/rashplayer/shm"
	"github.com/Rashandd/rashplayer/vision"
)

// Default HSV detection ranges on the halved-hue scale.
var (
	BirdLow  = shm.HSV{H: 20, S: 150, V: 150}
	BirdHigh = shm.HSV{H: 40, S: 255, V: 255}
	PipeLow  = shm.HSV{H: 35, S: 100, V: 100}
	PipeHigh = shm.HSV{H: 85, S: 255, V: 255}
)

const (
	// A bird blob needs more pixels than a generic color trigger
	// before it counts.
	birdPixelFloor = 200

	// Pipe candidates: column buckets, minimum density and size.
	pipeColumns   = 100
	pipeMinWidth  = 20
	pipeMinHeight = 50
	pipePairMaxDX = 100
)

// BirdDetection is a located bird blob.
type BirdDetection struct {
	X, Y             int
	Width, Height    int
	CenterX, CenterY int
}

// PipeDetection is one vertical pipe. IsTop marks pipes hanging from
// the upper third of the search region.
type PipeDetection struct {
	X, Y             int
	Width, Height    int
	CenterX, CenterY int
	IsTop            bool
}

// GapInfo is the opening between a top/bottom pipe pair.
type GapInfo struct {
	GapX, GapY int
	PipeX      int
}

// GameVariables is one frame's worth of extracted game state.
type GameVariables struct {
	BirdX, BirdY int
	BirdFound    bool

	PipeCount int

	GapCenterX, GapCenterY int
	GapFound               bool
}

// DetectBird scans region for the bird's color range and returns its
// bounding box when the blob is big enough to be the bird rather than
// noise.
func DetectBird(frame []byte, width, height int, region shm.Rect, low, high shm.HSV) (BirdDetection, bool) {
	var det BirdDetection

	sx, sy, sw, sh := clampRegion(region, width, height)
	if sw <= 0 || sh <= 0 {
		return det, false
	}

	minX, minY := width, height
	maxX, maxY := -1, -1
	count := 0
	for y := sy; y < sy+sh; y++ {
		row := frame[(y*width+sx)*4:]
		for x := 0; x < sw; x++ {
			h, s, v := vision.RGBToHSV(row[x*4], row[x*4+1], row[x*4+2])
			if !vision.HSVInRange(h, s, v, low, high) {
				continue
			}
			fx := sx + x
			if fx < minX {
				minX = fx
			}
			if fx > maxX {
				maxX = fx
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
			count++
		}
	}

	if count <= birdPixelFloor {
		return det, false
	}
	det.X, det.Y = minX, minY
	det.Width = maxX - minX + 1
	det.Height = maxY - minY + 1
	det.CenterX = minX + det.Width/2
	det.CenterY = minY + det.Height/2
	return det, true
}

// DetectPipes finds vertical pipes by bucketing matching pixels into
// columns and keeping runs of columns whose density exceeds a quarter
// of the region height.
func DetectPipes(frame []byte, width, height int, region shm.Rect, low, high shm.HSV, maxPipes int) []PipeDetection {
	sx, sy, sw, sh := clampRegion(region, width, height)
	if sw <= 0 || sh <= 0 || maxPipes <= 0 {
		return nil
	}

	colWidth := sw / pipeColumns
	if colWidth < 1 {
		colWidth = 1
	}

	counts := make([]int, pipeColumns)
	minY := make([]int, pipeColumns)
	maxY := make([]int, pipeColumns)
	for i := range minY {
		minY[i] = height
	}

	for y := sy; y < sy+sh; y++ {
		row := frame[(y*width+sx)*4:]
		for x := 0; x < sw; x++ {
			h, s, v := vision.RGBToHSV(row[x*4], row[x*4+1], row[x*4+2])
			if !vision.HSVInRange(h, s, v, low, high) {
				continue
			}
			col := x / colWidth
			if col >= pipeColumns {
				col = pipeColumns - 1
			}
			counts[col]++
			if y < minY[col] {
				minY[col] = y
			}
			if y > maxY[col] {
				maxY[col] = y
			}
		}
	}

	var pipes []PipeDetection
	inPipe := false
	startCol := 0
	for col := 0; col < pipeColumns && len(pipes) < maxPipes; col++ {
		dense := counts[col] > sh/4
		switch {
		case dense && !inPipe:
			inPipe = true
			startCol = col
		case !dense && inPipe:
			inPipe = false
			px := sx + startCol*colWidth
			pw := (col - startCol) * colWidth

			top, bottom := height, 0
			for c := startCol; c < col; c++ {
				if minY[c] < top {
					top = minY[c]
				}
				if maxY[c] > bottom {
					bottom = maxY[c]
				}
			}
			ph := bottom - top + 1

			if pw > pipeMinWidth && ph > pipeMinHeight {
				pipes = append(pipes, PipeDetection{
					X: px, Y: top, Width: pw, Height: ph,
					CenterX: px + pw/2, CenterY: top + ph/2,
					IsTop: top-sy < sh/3,
				})
			}
		}
	}
	return pipes
}

// FindLeftmostGap pairs a top pipe with a bottom pipe at a close x
// position and returns the center of the opening between them for the
// leftmost such pair.
func FindLeftmostGap(pipes []PipeDetection) (GapInfo, bool) {
	var gap GapInfo
	if len(pipes) < 2 {
		return gap, false
	}

	bestX := int(^uint(0) >> 1)
	found := false
	for i := range pipes {
		for j := i + 1; j < len(pipes); j++ {
			dx := pipes[i].CenterX - pipes[j].CenterX
			if dx < 0 {
				dx = -dx
			}
			if dx >= pipePairMaxDX || pipes[i].IsTop == pipes[j].IsTop {
				continue
			}

			pairX := (pipes[i].CenterX + pipes[j].CenterX) / 2
			if pairX >= bestX {
				continue
			}
			bestX = pairX

			top, bottom := &pipes[i], &pipes[j]
			if !top.IsTop {
				top, bottom = bottom, top
			}
			gap.PipeX = pairX
			gap.GapX = pairX
			gap.GapY = (top.Y + top.Height + bottom.Y) / 2
			found = true
		}
	}
	return gap, found
}

// ShouldTap reports whether the bird has sunk below the gap center by
// more than threshold pixels.
func ShouldTap(bird BirdDetection, gap GapInfo, threshold int) bool {
	return bird.CenterY > gap.GapY+threshold
}

// ExtractGameVariables runs the full detection pass with the default
// color ranges.
func ExtractGameVariables(frame []byte, width, height int) GameVariables {
	var out GameVariables

	if bird, ok := DetectBird(frame, width, height, shm.Rect{}, BirdLow, BirdHigh); ok {
		out.BirdX = bird.CenterX
		out.BirdY = bird.CenterY
		out.BirdFound = true
	}

	pipes := DetectPipes(frame, width, height, shm.Rect{}, PipeLow, PipeHigh, 10)
	out.PipeCount = len(pipes)

	if gap, ok := FindLeftmostGap(pipes); ok {
		out.GapCenterX = gap.GapX
		out.GapCenterY = gap.GapY
		out.GapFound = true
	}
	return out
}

// Triggers returns the preset trigger set for the core engines: the
// bird as trigger 1 and the pipe gap region as trigger 2, matching the
// conventional blackboard names.
func Triggers() []vision.Trigger {
	birdTarget := mid(BirdLow, BirdHigh)
	pipeTarget := mid(PipeLow, PipeHigh)
	return []vision.Trigger{
		{ID: 1, Name: "bird", Label: "bird", Kind: vision.TRIGGER_COLOR,
			Active: true, Color: birdTarget},
		{ID: 2, Name: "gap", Label: "gap_center", Kind: vision.TRIGGER_COLOR,
			Active: true, Color: pipeTarget},
	}
}

// Rules returns the preset rule set: tap when the bird drops below the
// gap, with a higher-priority rule for when it drops well below. Both
// rules issue the same tap at the same target.
func Rules(tapX, tapY int32) []brain.Rule {
	return []brain.Rule{
		{Condition: "bird_y > gap_center_y", Action: shm.ACTION_TAP,
			Target: shm.Point{X: tapX, Y: tapY}, Priority: 1},
		{Condition: "bird_y > gap_center_y + 40", Action: shm.ACTION_TAP,
			Target: shm.Point{X: tapX, Y: tapY}, Priority: 2},
	}
}

// mid picks the midpoint of an HSV range as a tolerance-search target.
func mid(low, high shm.HSV) shm.HSV {
	return shm.HSV{
		H: uint8((int(low.H) + int(high.H)) / 2),
		S: uint8((int(low.S) + int(high.S)) / 2),
		V: uint8((int(low.V) + int(high.V)) / 2),
	}
}

// clampRegion mirrors the detector entry-point convention: zero rect
// means the whole frame, extents clip to the frame edge.
func clampRegion(r shm.Rect, width, height int) (x, y, w, h int) {
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
