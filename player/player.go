// Package player drives the perception core: a polled consumer loop
// that watches the shared region for frames, runs vision and brain per
// tick, and reports per-frame latency. It also carries a minimal
// producer harness and an optional live viewer.
package player

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Rashandd/rashplayer/brain"
	"github.com/Rashandd/rashplayer/shm"
	"github.com/Rashandd/rashplayer/vision"
)

// DEFAULT_HZ is the polling cadence: the loop times each iteration and
// sleeps the remainder of the period.
const DEFAULT_HZ = 100

// Player couples one region with a vision and a brain engine. A single
// goroutine owns it; there is no internal parallelism.
type Player struct {
	region *shm.Region
	vision *vision.Engine
	brain  *brain.Engine
	hz     int
	out    io.Writer
	log    *slog.Logger
}

// Option adjusts a Player at construction.
type Option func(*Player)

// WithHz overrides the polling rate.
func WithHz(hz int) Option {
	return func(p *Player) {
		if hz > 0 {
			p.hz = hz
		}
	}
}

// WithOutput redirects the per-frame report, which defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(p *Player) { p.out = w }
}

// WithLogger installs a logger for per-tick diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(p *Player) { p.log = log }
}

// New wires a player. Trigger labels already present on the vision
// engine's triggers are registered with the brain so rules can refer
// to them by name.
func New(region *shm.Region, v *vision.Engine, b *brain.Engine, opts ...Option) *Player {
	p := &Player{
		region: region,
		vision: v,
		brain:  b,
		hz:     DEFAULT_HZ,
		out:    os.Stdout,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	for _, tr := range v.Triggers() {
		if tr.Label != "" {
			b.SetTriggerLabel(tr.ID, tr.Label)
		}
	}
	return p
}

// Tick performs one polled iteration: when a frame is ready it runs
// vision then brain, arms the next cycle, and reports true.
func (p *Player) Tick() (bool, error) {
	if !p.region.FrameReady() {
		return false, nil
	}
	if err := p.vision.ProcessFrame(p.region); err != nil {
		return false, fmt.Errorf("vision: %w", err)
	}
	if err := p.brain.Process(p.region); err != nil {
		return false, fmt.Errorf("brain: %w", err)
	}
	p.region.ClearFrameReady()
	return true, nil
}

// Run polls until the context is canceled. Per-tick errors are logged
// and the loop continues; only cancellation ends it.
func (p *Player) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(p.hz)
	p.log.Info("processing loop started", "hz", p.hz)

	for {
		start := time.Now()

		processed, err := p.Tick()
		if err != nil {
			p.log.Warn("tick failed", "err", err)
		}
		if processed {
			fmt.Fprintf(p.out, "Frame %d: Vision=%dus Brain=%dus Total=%dus State=%s\n",
				p.region.FrameNumber(),
				p.region.VisionLatency()/1000,
				p.region.BrainLatency()/1000,
				p.region.TotalLatency()/1000,
				p.region.State())
		}

		remaining := interval - time.Since(start)
		if remaining <= 0 {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(remaining):
		}
	}
}
