package shm

import (
	"encoding/binary"
	"errors"
	"math"
	"sync/atomic"
	"unsafe"
)

var (
	// ErrNotAttached reports a region whose magic or version does not
	// match, or one that is too small to hold the agreed layout.
	ErrNotAttached = errors.New("shm: region not attached")

	// ErrBadSlot reports a result slot index outside 0..15.
	ErrBadSlot = errors.New("shm: result slot out of range")
)

// Region is one mapped view of the shared bridge. All multi-byte fields
// are little-endian. Only the two ready flags are cross-process mutable
// between flag transitions; they are accessed through sync/atomic so
// each observation of a raised flag happens-after the peer's preceding
// writes.
type Region struct {
	buf    []byte
	mapped bool // munmap on Close
}

// NewRegion returns a heap-backed region with a valid magic and
// version. It backs in-process producer/consumer pairs and tests; a
// cross-process region comes from Attach or Create instead.
func NewRegion() *Region {
	r := &Region{buf: make([]byte, TOTAL_SIZE)}
	r.stamp()
	return r
}

// fromBytes wraps an existing mapping without touching its contents.
func fromBytes(buf []byte, mapped bool) *Region {
	return &Region{buf: buf, mapped: mapped}
}

// stamp initializes the identity fields on a fresh region.
func (r *Region) stamp() {
	r.put32(OFF_MAGIC, MAGIC)
	r.put32(OFF_VERSION, VERSION)
}

// Valid reports whether the region carries the bridge magic and version.
// A non-matching magic means "not attached".
func (r *Region) Valid() bool {
	return len(r.buf) >= TOTAL_SIZE &&
		r.get32(OFF_MAGIC) == MAGIC &&
		r.get32(OFF_VERSION) == VERSION
}

func (r *Region) get32(off int) uint32    { return binary.LittleEndian.Uint32(r.buf[off:]) }
func (r *Region) put32(off int, v uint32) { binary.LittleEndian.PutUint32(r.buf[off:], v) }
func (r *Region) get64(off int) uint64    { return binary.LittleEndian.Uint64(r.buf[off:]) }
func (r *Region) put64(off int, v uint64) { binary.LittleEndian.PutUint64(r.buf[off:], v) }

// flag32 returns the atomically accessible word at off. The mapping is
// page-aligned and both flag offsets are 4-byte multiples, so the cast
// is safe.
func (r *Region) flag32(off int) *uint32 {
	return (*uint32)(unsafe.Pointer(&r.buf[off]))
}

// FrameReady reports whether the producer has published a frame. The
// load carries acquire semantics: pixel bytes written before the flag
// was raised are visible once this returns true.
func (r *Region) FrameReady() bool {
	return atomic.LoadUint32(r.flag32(OFF_FRAME_READY)) != 0
}

// RaiseFrameReady publishes the current frame. Producer-side only.
func (r *Region) RaiseFrameReady() {
	atomic.StoreUint32(r.flag32(OFF_FRAME_READY), 1)
}

// ClearFrameReady arms the next cycle. Consumer-side only.
func (r *Region) ClearFrameReady() {
	atomic.StoreUint32(r.flag32(OFF_FRAME_READY), 0)
}

// ResultReady reports whether the consumer has published results for
// the current frame.
func (r *Region) ResultReady() bool {
	return atomic.LoadUint32(r.flag32(OFF_RESULT_READY)) != 0
}

// RaiseResultReady publishes results and the pending action.
// Consumer-side only.
func (r *Region) RaiseResultReady() {
	atomic.StoreUint32(r.flag32(OFF_RESULT_READY), 1)
}

// ClearResultReady acknowledges the results. Producer-side only.
func (r *Region) ClearResultReady() {
	atomic.StoreUint32(r.flag32(OFF_RESULT_READY), 0)
}

func (r *Region) FrameNumber() uint64        { return r.get64(OFF_FRAME_NUMBER) }
func (r *Region) SetFrameNumber(n uint64)    { r.put64(OFF_FRAME_NUMBER, n) }
func (r *Region) FrameTimestamp() int64      { return int64(r.get64(OFF_FRAME_TIMESTAMP)) }
func (r *Region) SetFrameTimestamp(ns int64) { r.put64(OFF_FRAME_TIMESTAMP, uint64(ns)) }

// State is consumer-owned; the producer treats it as read-only.
func (r *Region) State() GameState     { return GameState(r.get32(OFF_CURRENT_STATE)) }
func (r *Region) SetState(s GameState) { r.put32(OFF_CURRENT_STATE, uint32(s)) }

// Dims returns the current frame metadata.
func (r *Region) Dims() (width, height, stride int) {
	return int(int32(r.get32(OFF_FRAME_WIDTH))),
		int(int32(r.get32(OFF_FRAME_HEIGHT))),
		int(int32(r.get32(OFF_FRAME_STRIDE)))
}

// SetDims stores the frame metadata; stride is always width*4.
func (r *Region) SetDims(width, height int) {
	r.put32(OFF_FRAME_WIDTH, uint32(int32(width)))
	r.put32(OFF_FRAME_HEIGHT, uint32(int32(height)))
	r.put32(OFF_FRAME_STRIDE, uint32(int32(width*FRAME_CHANNELS)))
}

func (r *Region) VisionLatency() int64      { return int64(r.get64(OFF_VISION_LATENCY)) }
func (r *Region) SetVisionLatency(ns int64) { r.put64(OFF_VISION_LATENCY, uint64(ns)) }
func (r *Region) BrainLatency() int64       { return int64(r.get64(OFF_BRAIN_LATENCY)) }
func (r *Region) SetBrainLatency(ns int64)  { r.put64(OFF_BRAIN_LATENCY, uint64(ns)) }
func (r *Region) TotalLatency() int64       { return int64(r.get64(OFF_TOTAL_LATENCY)) }
func (r *Region) SetTotalLatency(ns int64)  { r.put64(OFF_TOTAL_LATENCY, uint64(ns)) }

func (r *Region) NumResults() int { return int(r.get32(OFF_NUM_RESULTS)) }

func (r *Region) SetNumResults(n int) { r.put32(OFF_NUM_RESULTS, uint32(n)) }

// Result reads slot i. Slots at or beyond NumResults hold stale data
// from earlier frames.
func (r *Region) Result(i int) (VisionResult, error) {
	if i < 0 || i >= MAX_RESULTS {
		return VisionResult{}, ErrBadSlot
	}
	off := OFF_RESULTS + i*RESULT_SIZE
	var v VisionResult
	v.TriggerID = r.get32(off)
	v.Found = r.buf[off+4] != 0
	v.Confidence = math.Float32frombits(r.get32(off + 8))
	v.Location.X = int32(r.get32(off + 12))
	v.Location.Y = int32(r.get32(off + 16))
	v.BoundingBox.X = int32(r.get32(off + 20))
	v.BoundingBox.Y = int32(r.get32(off + 24))
	v.BoundingBox.W = int32(r.get32(off + 28))
	v.BoundingBox.H = int32(r.get32(off + 32))
	v.TimestampNS = int64(r.get64(off + 40))
	return v, nil
}

// SetResult writes slot i.
func (r *Region) SetResult(i int, v VisionResult) error {
	if i < 0 || i >= MAX_RESULTS {
		return ErrBadSlot
	}
	off := OFF_RESULTS + i*RESULT_SIZE
	r.put32(off, v.TriggerID)
	var found byte
	if v.Found {
		found = 1
	}
	r.buf[off+4] = found
	r.put32(off+8, math.Float32bits(v.Confidence))
	r.put32(off+12, uint32(v.Location.X))
	r.put32(off+16, uint32(v.Location.Y))
	r.put32(off+20, uint32(v.BoundingBox.X))
	r.put32(off+24, uint32(v.BoundingBox.Y))
	r.put32(off+28, uint32(v.BoundingBox.W))
	r.put32(off+32, uint32(v.BoundingBox.H))
	r.put64(off+40, uint64(v.TimestampNS))
	return nil
}

// Results reads the populated slots.
func (r *Region) Results() []VisionResult {
	n := r.NumResults()
	if n > MAX_RESULTS {
		n = MAX_RESULTS
	}
	out := make([]VisionResult, 0, n)
	for i := 0; i < n; i++ {
		v, _ := r.Result(i)
		out = append(out, v)
	}
	return out
}

// PendingAction reads the action slot.
func (r *Region) PendingAction() ActionCommand {
	off := OFF_PENDING_ACTION
	return ActionCommand{
		Type:       ActionType(int32(r.get32(off))),
		Start:      Point{int32(r.get32(off + 4)), int32(r.get32(off + 8))},
		End:        Point{int32(r.get32(off + 12)), int32(r.get32(off + 16))},
		DurationMS: int32(r.get32(off + 20)),
		HoldMS:     int32(r.get32(off + 24)),
		Randomize:  math.Float32frombits(r.get32(off + 28)),
	}
}

// SetPendingAction writes the action slot.
func (r *Region) SetPendingAction(a ActionCommand) {
	off := OFF_PENDING_ACTION
	r.put32(off, uint32(a.Type))
	r.put32(off+4, uint32(a.Start.X))
	r.put32(off+8, uint32(a.Start.Y))
	r.put32(off+12, uint32(a.End.X))
	r.put32(off+16, uint32(a.End.Y))
	r.put32(off+20, uint32(a.DurationMS))
	r.put32(off+24, uint32(a.HoldMS))
	r.put32(off+28, math.Float32bits(a.Randomize))
}

// Frame returns the pixel buffer that follows the header. The live
// bytes for the current frame are the first stride*height of it.
func (r *Region) Frame() []byte {
	return r.buf[OFF_FRAME : OFF_FRAME+FRAME_BUFFER_SIZE]
}

// Close releases the mapping. Heap-backed regions are garbage collected
// and Close is a no-op for them.
func (r *Region) Close() error {
	if !r.mapped {
		return nil
	}
	r.mapped = false
	return unmap(r.buf)
}
