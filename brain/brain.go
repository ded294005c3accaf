package brain

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Rashandd/rashplayer/shm"
)

const MAX_RULES = 256

// Action defaults applied to every selected rule.
const (
	DEFAULT_TAP_DURATION_MS = 50
	DEFAULT_RANDOMIZE       = 0.3
)

var ErrInvalidArgument = errors.New("brain: invalid argument")

// Rule is one condition/action pair. Rules are evaluated in load order;
// among rules whose condition holds, the highest priority wins and
// earlier rules win ties.
type Rule struct {
	Condition string
	Action    shm.ActionType
	Target    shm.Point
	Priority  int32
}

// Engine owns the rule table, the blackboard and the lifecycle state
// for one session.
type Engine struct {
	rules  []Rule
	vars   *Blackboard
	state  shm.GameState
	labels map[uint32]string
	log    *slog.Logger
}

// New returns an idle engine with an empty blackboard. A nil logger
// discards diagnostics.
func New(log *slog.Logger) *Engine {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		vars:   NewBlackboard(),
		state:  shm.STATE_IDLE,
		labels: make(map[uint32]string),
		log:    log,
	}
}

// Close drops the rule table and blackboard and returns to IDLE.
func (e *Engine) Close() {
	e.rules = nil
	e.vars = NewBlackboard()
	e.state = shm.STATE_IDLE
}

// LoadRules replaces the rule table. Between 1 and 256 rules are
// accepted; anything else leaves the table unchanged.
func (e *Engine) LoadRules(rules []Rule) error {
	if len(rules) < 1 || len(rules) > MAX_RULES {
		return fmt.Errorf("%w: %d rules", ErrInvalidArgument, len(rules))
	}
	e.rules = append([]Rule(nil), rules...)
	return nil
}

// SetState forces the lifecycle state. This is the supervisor's door
// into PAUSED and ERROR, which the per-tick machine never enters on
// its own.
func (e *Engine) SetState(s shm.GameState) {
	e.state = s
}

// State returns the current lifecycle state.
func (e *Engine) State() shm.GameState {
	return e.state
}

// SetTriggerLabel binds a blackboard name to a trigger id, so a found
// result for that trigger also publishes <label>_x, <label>_y and
// <label>_found.
func (e *Engine) SetTriggerLabel(id uint32, label string) {
	e.labels[id] = label
}

// Variables exposes the blackboard.
func (e *Engine) Variables() *Blackboard {
	return e.vars
}

// ingest publishes one found result onto the blackboard.
func (e *Engine) ingest(r shm.VisionResult) {
	e.setVar(fmt.Sprintf("trigger_%d_x", r.TriggerID), r.Location.X)
	e.setVar(fmt.Sprintf("trigger_%d_y", r.TriggerID), r.Location.Y)
	e.setVar(fmt.Sprintf("trigger_%d_found", r.TriggerID), 1)

	if label, ok := e.labels[r.TriggerID]; ok && label != "" {
		e.setVar(label+"_x", r.Location.X)
		e.setVar(label+"_y", r.Location.Y)
		e.setVar(label+"_found", 1)
	}

	// Conventional names for the first two trigger ids, kept so
	// existing rule files continue to resolve.
	switch r.TriggerID {
	case 1:
		e.setVar("bird_x", r.Location.X)
		e.setVar("bird_y", r.Location.Y)
	case 2:
		e.setVar("gap_center_x", r.Location.X)
		e.setVar("gap_center_y", r.Location.Y)
	}
}

func (e *Engine) setVar(name string, value int32) {
	if err := e.vars.Set(name, value); err != nil {
		e.log.Warn("blackboard full", "name", name)
	}
}

// Evaluate ingests the found results and selects the best matching
// rule. With no results, or no rule whose condition holds, the action
// is ACTION_NONE.
func (e *Engine) Evaluate(results []shm.VisionResult) shm.ActionCommand {
	action := shm.ActionCommand{Type: shm.ACTION_NONE}
	if len(results) == 0 {
		return action
	}

	for _, r := range results {
		if r.Found {
			e.ingest(r)
		}
	}

	bestPriority := int32(-1)
	var best *Rule
	for i := range e.rules {
		if (best == nil || e.rules[i].Priority > bestPriority) && Eval(e.rules[i].Condition, e.vars) {
			bestPriority = e.rules[i].Priority
			best = &e.rules[i]
		}
	}

	if best != nil {
		action.Type = best.Action
		action.Start = best.Target
		action.DurationMS = DEFAULT_TAP_DURATION_MS
		action.Randomize = DEFAULT_RANDOMIZE
	}
	return action
}

// Process runs one brain tick over the region: ingest results, select
// a rule, advance the lifecycle machine, publish the pending action on
// the tick entering ACTION_PENDING, and raise result_ready.
func (e *Engine) Process(region *shm.Region) error {
	if region == nil {
		return ErrInvalidArgument
	}

	start := time.Now()
	results := region.Results()

	// Only populated slots vote: a frame has results when there is at
	// least one and every one of them was found.
	hasResults := len(results) > 0
	for _, r := range results {
		if !r.Found {
			hasResults = false
			break
		}
	}

	action := e.Evaluate(results)
	actionPending := action.Type != shm.ACTION_NONE

	if next := transition(e.state, hasResults, actionPending); next != e.state {
		e.log.Debug("state change", "from", e.state.String(), "to", next.String())
		e.state = next
	}

	if actionPending && e.state == shm.STATE_ACTION_PENDING {
		region.SetPendingAction(action)
	}

	region.SetState(e.state)
	region.SetBrainLatency(time.Since(start).Nanoseconds())
	region.SetTotalLatency(region.VisionLatency() + region.BrainLatency())
	region.RaiseResultReady()
	return nil
}
