package vision

import (
	"math"
	"time"

	"github.com/Rashandd/rashplayer/shm"
)

const (
	// Coarse scan stride. Fine refinement rescans every offset within
	// this distance of the coarse winner.
	matchStep = 4

	// Coarse scores below this are not worth refining.
	refineFloor = 0.5
)

// nccScore computes normalized cross-correlation between tmpl and the
// frame window whose top-left is (fx, fy). Pixels are reduced to
// grayscale by averaging R, G and B; alpha is ignored. The score is in
// [0, 1] for non-negative images, and 0 when either window has zero
// energy or the template does not fit.
func nccScore(frame []byte, frameWidth, frameHeight, fx, fy int, tmpl *Template) float64 {
	if fx < 0 || fy < 0 ||
		fx+tmpl.Width > frameWidth ||
		fy+tmpl.Height > frameHeight {
		return 0
	}

	var sumProd, sumFrameSq, sumTmplSq float64
	for ty := 0; ty < tmpl.Height; ty++ {
		frameRow := frame[((fy+ty)*frameWidth+fx)*4:]
		tmplRow := tmpl.Data[ty*tmpl.Width*4:]
		for tx := 0; tx < tmpl.Width; tx++ {
			f := float64(int(frameRow[tx*4])+int(frameRow[tx*4+1])+int(frameRow[tx*4+2])) / 3
			t := float64(int(tmplRow[tx*4])+int(tmplRow[tx*4+1])+int(tmplRow[tx*4+2])) / 3
			sumProd += f * t
			sumFrameSq += f * f
			sumTmplSq += t * t
		}
	}

	denom := math.Sqrt(sumFrameSq * sumTmplSq)
	if denom == 0 {
		return 0
	}
	return sumProd / denom
}

// FindTemplate locates tmpl inside the frame with a two-phase search:
// a stride-4 coarse scan over every position the template fits at,
// then, when the coarse best clears the refinement floor, an exhaustive
// rescan of the surrounding 9x9 offset window. Found means the best
// score reached the template's own threshold.
func FindTemplate(frame []byte, width, height int, tmpl *Template) shm.VisionResult {
	result := shm.VisionResult{TimestampNS: time.Now().UnixNano()}
	if frame == nil || tmpl == nil || tmpl.Width <= 0 || tmpl.Height <= 0 {
		return result
	}
	result.TriggerID = tmpl.ID

	rx, ry, rw, rh := clampRect(tmpl.SearchRegion, width, height)

	best := 0.0
	bestX, bestY := 0, 0
	for y := ry; y+tmpl.Height <= ry+rh; y += matchStep {
		for x := rx; x+tmpl.Width <= rx+rw; x += matchStep {
			if score := nccScore(frame, width, height, x, y, tmpl); score > best {
				best = score
				bestX, bestY = x, y
			}
		}
	}

	if best >= refineFloor {
		y0, y1 := bestY-matchStep, bestY+matchStep
		x0, x1 := bestX-matchStep, bestX+matchStep
		if y0 < ry {
			y0 = ry
		}
		if x0 < rx {
			x0 = rx
		}
		if y1 > ry+rh-tmpl.Height {
			y1 = ry + rh - tmpl.Height
		}
		if x1 > rx+rw-tmpl.Width {
			x1 = rx + rw - tmpl.Width
		}
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				if score := nccScore(frame, width, height, x, y, tmpl); score > best {
					best = score
					bestX, bestY = x, y
				}
			}
		}
	}

	result.Confidence = float32(best)
	result.Found = best >= float64(tmpl.Threshold)
	result.BoundingBox = shm.Rect{
		X: int32(bestX), Y: int32(bestY),
		W: int32(tmpl.Width), H: int32(tmpl.Height),
	}
	result.Location = shm.Point{
		X: int32(bestX + tmpl.Width/2),
		Y: int32(bestY + tmpl.Height/2),
	}
	return result
}
