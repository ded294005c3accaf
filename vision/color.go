package vision

import (
	"github.com/Rashandd/rashplayer/shm"
)

// DefaultMaxMatches caps the blob scan when callers have no tighter
// bound; the centroid of 10000 pixels is as good as the centroid of all
// of them.
const DefaultMaxMatches = 10000

// FindColorRegion scans region row-major for pixels within tol of
// target and returns the match count and their centroid. The scan stops
// early once maxMatches pixels have been accumulated. A count of 0
// means no match; the caller decides how many pixels make a meaningful
// blob.
func FindColorRegion(frame []byte, width, height int, region shm.Rect,
	target shm.HSV, tol, maxMatches int) (int, shm.Point, error) {
	if frame == nil || width <= 0 || height <= 0 {
		return 0, shm.Point{}, ErrInvalidArgument
	}
	if maxMatches <= 0 {
		return 0, shm.Point{}, ErrInvalidArgument
	}

	rx, ry, rw, rh := clampRect(region, width, height)
	if rw <= 0 || rh <= 0 {
		return 0, shm.Point{}, nil
	}

	count := 0
	var sumX, sumY int64
	for y := ry; y < ry+rh && count < maxMatches; y++ {
		row := frame[(y*width+rx)*4:]
		for x := 0; x < rw; x++ {
			h, s, v := RGBToHSV(row[x*4], row[x*4+1], row[x*4+2])
			if hsvClose(target, h, s, v, tol) {
				sumX += int64(rx + x)
				sumY += int64(y)
				count++
				if count >= maxMatches {
					break
				}
			}
		}
	}

	if count == 0 {
		return 0, shm.Point{}, nil
	}
	center := shm.Point{
		X: int32(sumX / int64(count)),
		Y: int32(sumY / int64(count)),
	}
	return count, center, nil
}
