// Package shm implements the shared-memory bridge between the capture
// producer and the perception core. The layout mirrors the C
// SharedMemoryHeader struct byte for byte so either side of the region
// can be a foreign process. https://github.com/Rashandd/RashPlayer-C
package shm

const (
	SHM_NAME = "/rashplayer_shm"

	MAX_FRAME_WIDTH  = 1920
	MAX_FRAME_HEIGHT = 1080
	FRAME_CHANNELS   = 4 // RGBA

	// 1920 * 1080 * 4 = 8,294,400 bytes
	FRAME_BUFFER_SIZE = MAX_FRAME_WIDTH * MAX_FRAME_HEIGHT * FRAME_CHANNELS

	MAX_RESULTS = 16

	MAGIC   = 0x52415348 // "RASH"
	VERSION = 1
)

// Header field offsets. These are the C struct offsets under the
// System V AMD64 ABI; both peers rely on them, so they are spelled out
// rather than derived.
const (
	OFF_MAGIC           = 0
	OFF_VERSION         = 4
	OFF_FRAME_NUMBER    = 8
	OFF_FRAME_TIMESTAMP = 16
	OFF_FRAME_READY     = 24
	OFF_RESULT_READY    = 28
	OFF_CURRENT_STATE   = 32
	OFF_FRAME_WIDTH     = 40
	OFF_FRAME_HEIGHT    = 44
	OFF_FRAME_STRIDE    = 48
	OFF_VISION_LATENCY  = 56
	OFF_BRAIN_LATENCY   = 64
	OFF_TOTAL_LATENCY   = 72
	OFF_NUM_RESULTS     = 88
	OFF_RESULTS         = 96
	OFF_PENDING_ACTION  = OFF_RESULTS + MAX_RESULTS*RESULT_SIZE

	// One VisionResult slot: trigger_id, found (padded), confidence,
	// location, bounding box, timestamp.
	RESULT_SIZE = 48

	// ActionCommand: type, start, end, duration_ms, hold_ms, randomize.
	ACTION_SIZE = 32

	HEADER_SIZE = OFF_PENDING_ACTION + ACTION_SIZE // 896, 64-byte aligned

	// The pixel buffer begins immediately after the header.
	OFF_FRAME = HEADER_SIZE

	// Total region size agreed on a priori by producer and consumer.
	TOTAL_SIZE = HEADER_SIZE + FRAME_BUFFER_SIZE + 4096
)

// GameState is the lifecycle state of the decision core, stored in the
// header where the producer can observe it.
type GameState uint32

const (
	STATE_IDLE GameState = iota
	STATE_DETECTING
	STATE_ACTION_PENDING
	STATE_EXECUTING
	STATE_PAUSED
	STATE_ERROR
)

func (s GameState) String() string {
	switch s {
	case STATE_IDLE:
		return "IDLE"
	case STATE_DETECTING:
		return "DETECTING"
	case STATE_ACTION_PENDING:
		return "ACTION_PENDING"
	case STATE_EXECUTING:
		return "EXECUTING"
	case STATE_PAUSED:
		return "PAUSED"
	case STATE_ERROR:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ActionType selects the kind of synthetic input the injection process
// should perform.
type ActionType int32

const (
	ACTION_NONE ActionType = iota
	ACTION_TAP
	ACTION_SWIPE
	ACTION_LONG_PRESS
	ACTION_DRAG
	ACTION_WAIT
)

func (a ActionType) String() string {
	switch a {
	case ACTION_NONE:
		return "NONE"
	case ACTION_TAP:
		return "TAP"
	case ACTION_SWIPE:
		return "SWIPE"
	case ACTION_LONG_PRESS:
		return "LONG_PRESS"
	case ACTION_DRAG:
		return "DRAG"
	case ACTION_WAIT:
		return "WAIT"
	}
	return "UNKNOWN"
}

// Point is a pixel position in frame coordinates (origin top-left, x
// rightward, y downward).
type Point struct {
	X, Y int32
}

// Rect is a pixel region. A zero width and height means "entire frame"
// at detector entry points.
type Rect struct {
	X, Y, W, H int32
}

// HSV is a color on the halved-hue scale: H 0-179, S 0-255, V 0-255.
type HSV struct {
	H, S, V uint8
}

// VisionResult is one per-trigger detection outcome, written into a
// header result slot every frame.
type VisionResult struct {
	TriggerID   uint32
	Found       bool
	Confidence  float32
	Location    Point
	BoundingBox Rect
	TimestampNS int64
}

// ActionCommand describes the input to synthesize for the current frame.
type ActionCommand struct {
	Type       ActionType
	Start      Point
	End        Point // for swipe/drag
	DurationMS int32
	HoldMS     int32 // for long press
	Randomize  float32
}
