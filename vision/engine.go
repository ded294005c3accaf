package vision

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Rashandd/rashplayer/shm"
)

const (
	MAX_TEMPLATES = 32
	MAX_TRIGGERS  = 64

	// Color triggers need more than this many matching pixels before
	// they count as found.
	COLOR_FOUND_FLOOR = 100

	// Tolerance applied to color triggers by the orchestrator.
	COLOR_TRIGGER_TOL = 15
)

var (
	ErrInvalidArgument = errors.New("vision: invalid argument")
	ErrFull            = errors.New("vision: table full")
	ErrNoFrame         = errors.New("vision: no frame ready")
)

// TriggerKind selects which detector a trigger runs.
type TriggerKind int

const (
	TRIGGER_TEMPLATE TriggerKind = iota
	TRIGGER_COLOR
	TRIGGER_EDGE
)

// Template is a reference image searched for in each frame. Data is
// RGBA, Width*Height*4 bytes, owned by the engine once loaded.
type Template struct {
	ID           uint32
	Name         string
	Data         []byte
	Width        int
	Height       int
	Threshold    float32 // match confidence floor, 0-1
	SearchRegion shm.Rect
}

// EdgeParams configures an edge trigger.
type EdgeParams struct {
	Color      shm.HSV // reserved for color-gated edges
	Horizontal bool
}

// Trigger is a declarative detection request applied every frame while
// active. Exactly one of the variant payloads is meaningful, selected
// by Kind: TemplateIndex for TRIGGER_TEMPLATE, Color for TRIGGER_COLOR,
// Edge for TRIGGER_EDGE.
type Trigger struct {
	ID     uint32
	Name   string
	Label  string // optional blackboard name published by the brain
	Kind   TriggerKind
	Region shm.Rect
	Active bool

	TemplateIndex int
	Color         shm.HSV
	Edge          EdgeParams
}

// Engine holds the session's template and trigger tables and runs the
// active triggers against each frame. Tables are append-only: indices
// returned on insert stay stable until Close.
type Engine struct {
	templates []Template
	triggers  []Trigger
	log       *slog.Logger
}

// New returns an empty engine. A nil logger discards engine diagnostics.
func New(log *slog.Logger) *Engine {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{log: log}
}

// Close drops the owned template pixel data and all triggers.
func (e *Engine) Close() {
	e.templates = nil
	e.triggers = nil
}

// LoadTemplate deep-copies tmpl into the table and returns its index.
// The table is left unchanged on any failure.
func (e *Engine) LoadTemplate(tmpl Template) (int, error) {
	if tmpl.Width <= 0 || tmpl.Height <= 0 {
		return -1, fmt.Errorf("%w: template %q is %dx%d",
			ErrInvalidArgument, tmpl.Name, tmpl.Width, tmpl.Height)
	}
	if len(tmpl.Data) < tmpl.Width*tmpl.Height*4 {
		return -1, fmt.Errorf("%w: template %q has %d data bytes, want %d",
			ErrInvalidArgument, tmpl.Name, len(tmpl.Data), tmpl.Width*tmpl.Height*4)
	}
	if len(e.templates) >= MAX_TEMPLATES {
		return -1, fmt.Errorf("%w: %d templates", ErrFull, MAX_TEMPLATES)
	}

	owned := make([]byte, tmpl.Width*tmpl.Height*4)
	copy(owned, tmpl.Data)
	tmpl.Data = owned

	e.templates = append(e.templates, tmpl)
	idx := len(e.templates) - 1
	e.log.Debug("template loaded", "index", idx, "name", tmpl.Name,
		"size", fmt.Sprintf("%dx%d", tmpl.Width, tmpl.Height))
	return idx, nil
}

// AddTrigger appends a trigger and returns its index. Template triggers
// are validated against the template table here rather than per frame.
func (e *Engine) AddTrigger(tr Trigger) (int, error) {
	if len(e.triggers) >= MAX_TRIGGERS {
		return -1, fmt.Errorf("%w: %d triggers", ErrFull, MAX_TRIGGERS)
	}
	if tr.Kind == TRIGGER_TEMPLATE {
		if tr.TemplateIndex < 0 || tr.TemplateIndex >= len(e.templates) {
			return -1, fmt.Errorf("%w: trigger %q references template %d of %d",
				ErrInvalidArgument, tr.Name, tr.TemplateIndex, len(e.templates))
		}
	}

	e.triggers = append(e.triggers, tr)
	return len(e.triggers) - 1, nil
}

// Template returns the template at idx, or nil.
func (e *Engine) Template(idx int) *Template {
	if idx < 0 || idx >= len(e.templates) {
		return nil
	}
	return &e.templates[idx]
}

// Triggers returns the live trigger table. Callers may toggle Active in
// place between frames.
func (e *Engine) Triggers() []Trigger {
	return e.triggers
}

// ProcessFrame runs every active trigger against the frame currently
// published in the region, writing up to 16 results and the vision
// latency into the header. It fails without touching the results when
// no frame is ready.
func (e *Engine) ProcessFrame(region *shm.Region) error {
	if region == nil {
		return ErrInvalidArgument
	}
	if !region.FrameReady() {
		return ErrNoFrame
	}

	start := time.Now()
	startNS := start.UnixNano()
	width, height, _ := region.Dims()
	frame := region.Frame()

	count := 0
	for i := range e.triggers {
		if count >= shm.MAX_RESULTS {
			break
		}
		tr := &e.triggers[i]
		if !tr.Active {
			continue
		}

		result := shm.VisionResult{TriggerID: tr.ID, TimestampNS: startNS}

		switch tr.Kind {
		case TRIGGER_TEMPLATE:
			tmpl := e.Template(tr.TemplateIndex)
			result = FindTemplate(frame, width, height, tmpl)
			result.TriggerID = tr.ID
			result.TimestampNS = startNS

		case TRIGGER_COLOR:
			n, center, err := FindColorRegion(frame, width, height,
				tr.Region, tr.Color, COLOR_TRIGGER_TOL, DefaultMaxMatches)
			if err != nil {
				e.log.Warn("color trigger failed", "trigger", tr.Name, "err", err)
			}
			result.Found = n > COLOR_FOUND_FLOOR
			result.Location = center
			if n > 0 {
				result.Confidence = 1
			}

		case TRIGGER_EDGE:
			pos, ok := DetectEdge(frame, width, height, tr.Region, tr.Edge.Horizontal)
			result.Found = ok
			rx, ry, rw, rh := clampRect(tr.Region, width, height)
			if tr.Edge.Horizontal {
				result.Location = shm.Point{
					X: int32(rx + rw/2),
					Y: int32(pos),
				}
			} else {
				result.Location = shm.Point{
					X: int32(pos),
					Y: int32(ry + rh/2),
				}
			}
			if ok {
				result.Confidence = 1
			}
		}

		region.SetResult(count, result)
		count++
	}

	region.SetNumResults(count)
	region.SetVisionLatency(time.Since(start).Nanoseconds())
	return nil
}
