package player

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rashandd/rashplayer/shm"
)

// ErrFrameTooLarge reports a frame exceeding the region's pixel buffer.
var ErrFrameTooLarge = errors.New("player: frame exceeds region capacity")

// Producer is the capture side of the handoff, used by tests and demo
// harnesses; the real capture process speaks the same protocol over
// the same region from outside.
type Producer struct {
	region *shm.Region
	frame  uint64
}

// NewProducer wraps the producer side of a region.
func NewProducer(region *shm.Region) *Producer {
	return &Producer{region: region}
}

// Publish copies one RGBA frame into the region and raises
// frame_ready. The caller must have consumed the previous result
// first; publishing over an unread frame overwrites it.
func (p *Producer) Publish(pixels []byte, width, height int) error {
	if width <= 0 || height <= 0 || len(pixels) < width*height*4 {
		return fmt.Errorf("player: bad frame %dx%d with %d bytes", width, height, len(pixels))
	}
	if width*height*4 > shm.FRAME_BUFFER_SIZE {
		return ErrFrameTooLarge
	}

	copy(p.region.Frame(), pixels[:width*height*4])
	p.region.SetDims(width, height)
	p.frame++
	p.region.SetFrameNumber(p.frame)
	p.region.SetFrameTimestamp(time.Now().UnixNano())
	p.region.RaiseFrameReady()
	return nil
}

// AwaitResult polls result_ready, then reads the results and pending
// action and clears the flag, arming the producer for the next frame.
func (p *Producer) AwaitResult(ctx context.Context, poll time.Duration) ([]shm.VisionResult, shm.ActionCommand, error) {
	if poll <= 0 {
		poll = time.Millisecond
	}
	for !p.region.ResultReady() {
		select {
		case <-ctx.Done():
			return nil, shm.ActionCommand{}, ctx.Err()
		case <-time.After(poll):
		}
	}

	results := p.region.Results()
	action := p.region.PendingAction()
	p.region.ClearResultReady()
	return results, action, nil
}
