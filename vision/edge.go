package vision

import (
	"github.com/Rashandd/rashplayer/shm"
)

// A gradient peak must exceed this (summed |next-prev| over R, G and B
// across the scan line) before it counts as an edge.
const edgeGradientFloor = 1000

// DetectEdge locates the strongest luminance step inside region. With
// horizontal set it scans interior rows and returns the row index of
// the peak |row[y+1]-row[y-1]| gradient sum; otherwise it scans
// interior columns symmetrically. The returned position is in frame
// coordinates; ok is false when no gradient clears the floor.
func DetectEdge(frame []byte, width, height int, region shm.Rect, horizontal bool) (pos int, ok bool) {
	if frame == nil || width <= 0 || height <= 0 {
		return -1, false
	}

	rx, ry, rw, rh := clampRect(region, width, height)
	if rw <= 0 || rh <= 0 {
		return -1, false
	}

	maxGradient := 0
	pos = -1

	if horizontal {
		for y := ry + 1; y < ry+rh-1; y++ {
			prev := frame[(y-1)*width*4:]
			next := frame[(y+1)*width*4:]
			sum := 0
			for x := rx; x < rx+rw; x++ {
				i := x * 4
				sum += absDiff(next[i], prev[i]) +
					absDiff(next[i+1], prev[i+1]) +
					absDiff(next[i+2], prev[i+2])
			}
			if sum > maxGradient {
				maxGradient = sum
				pos = y
			}
		}
	} else {
		for x := rx + 1; x < rx+rw-1; x++ {
			sum := 0
			for y := ry; y < ry+rh; y++ {
				row := frame[y*width*4:]
				ip, in := (x-1)*4, (x+1)*4
				sum += absDiff(row[in], row[ip]) +
					absDiff(row[in+1], row[ip+1]) +
					absDiff(row[in+2], row[ip+2])
			}
			if sum > maxGradient {
				maxGradient = sum
				pos = x
			}
		}
	}

	return pos, maxGradient > edgeGradientFloor
}

func absDiff(a, b uint8) int {
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}
