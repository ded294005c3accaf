package brain

import (
	"errors"
	"testing"

	"github.com/Rashandd/rashplayer/shm"
)

func TestLoadRulesValidation(t *testing.T) {
	e := New(nil)
	defer e.Close()

	if err := e.LoadRules(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty: Got %v, want ErrInvalidArgument", err)
	}
	if err := e.LoadRules(make([]Rule, MAX_RULES+1)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("oversized: Got %v, want ErrInvalidArgument", err)
	}
	if err := e.LoadRules([]Rule{{Condition: "1", Action: shm.ACTION_TAP}}); err != nil {
		t.Errorf("single rule: %v", err)
	}
}

// Scenario: two rules both true; the higher priority one supplies the
// action target.
func TestEvaluatePriority(t *testing.T) {
	e := New(nil)
	defer e.Close()

	e.Variables().Set("bird_y", 100)
	e.Variables().Set("gap_center_y", 50)

	err := e.LoadRules([]Rule{
		{Condition: "bird_y > gap_center_y", Action: shm.ACTION_TAP,
			Target: shm.Point{X: 500, Y: 500}, Priority: 1},
		{Condition: "bird_y > gap_center_y + 20", Action: shm.ACTION_TAP,
			Target: shm.Point{X: 600, Y: 600}, Priority: 2},
	})
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}

	// One found result so evaluation runs; it only touches trigger_9_*.
	action := e.Evaluate([]shm.VisionResult{{TriggerID: 9, Found: true}})
	if action.Type != shm.ACTION_TAP {
		t.Fatalf("action type: Got %v, want TAP", action.Type)
	}
	if action.Start.X != 600 || action.Start.Y != 600 {
		t.Errorf("target: Got (%d,%d), want (600,600)", action.Start.X, action.Start.Y)
	}
	if action.DurationMS != 50 {
		t.Errorf("duration: Got %d, want 50", action.DurationMS)
	}
	if action.Randomize != 0.3 {
		t.Errorf("randomize: Got %v, want 0.3", action.Randomize)
	}
}

// Equal priorities: the first loaded rule wins.
func TestEvaluateTieBreak(t *testing.T) {
	e := New(nil)
	defer e.Close()

	e.LoadRules([]Rule{
		{Condition: "1", Action: shm.ACTION_TAP, Target: shm.Point{X: 1}, Priority: 5},
		{Condition: "1", Action: shm.ACTION_TAP, Target: shm.Point{X: 2}, Priority: 5},
	})
	action := e.Evaluate([]shm.VisionResult{{TriggerID: 1, Found: true}})
	if action.Start.X != 1 {
		t.Errorf("tie target: Got %d, want 1", action.Start.X)
	}
}

func TestEvaluateNoResults(t *testing.T) {
	e := New(nil)
	defer e.Close()
	e.LoadRules([]Rule{{Condition: "1", Action: shm.ACTION_TAP, Priority: 1}})

	if action := e.Evaluate(nil); action.Type != shm.ACTION_NONE {
		t.Errorf("no results: Got %v, want NONE", action.Type)
	}
}

func TestEvaluateIngestsVariables(t *testing.T) {
	e := New(nil)
	defer e.Close()
	e.SetTriggerLabel(5, "marker")

	e.Evaluate([]shm.VisionResult{
		{TriggerID: 1, Found: true, Location: shm.Point{X: 120, Y: 340}},
		{TriggerID: 2, Found: true, Location: shm.Point{X: 200, Y: 80}},
		{TriggerID: 5, Found: true, Location: shm.Point{X: 7, Y: 8}},
		{TriggerID: 6, Found: false, Location: shm.Point{X: 999, Y: 999}},
	})

	vars := e.Variables()
	cases := []struct {
		name string
		want int32
	}{
		{"trigger_1_x", 120},
		{"trigger_1_y", 340},
		{"trigger_1_found", 1},
		{"bird_x", 120},
		{"bird_y", 340},
		{"gap_center_x", 200},
		{"gap_center_y", 80},
		{"marker_x", 7},
		{"marker_y", 8},
		{"marker_found", 1},
		{"trigger_6_found", 0}, // not found, never ingested
	}
	for i, tc := range cases {
		if got := vars.Get(tc.name); got != tc.want {
			t.Errorf("%d: %s: Got %d, want %d", i, tc.name, got, tc.want)
		}
	}
}

// Scenario: the full lifecycle trace across four ticks, including when
// the pending action is and is not written to the header.
func TestProcessLifecycle(t *testing.T) {
	e := New(nil)
	defer e.Close()
	r := shm.NewRegion()

	publish := func(results ...shm.VisionResult) {
		for i, res := range results {
			r.SetResult(i, res)
		}
		r.SetNumResults(len(results))
	}

	// Tick 1: results but no matching rule -> DETECTING, no action.
	publish(shm.VisionResult{TriggerID: 1, Found: true, Location: shm.Point{X: 10, Y: 10}})
	if err := e.Process(r); err != nil {
		t.Fatalf("tick 1: %v", err)
	}
	if e.State() != shm.STATE_DETECTING {
		t.Fatalf("tick 1: Got %s, want DETECTING", e.State())
	}
	if got := r.PendingAction(); got.Type != shm.ACTION_NONE {
		t.Errorf("tick 1: action written early: %+v", got)
	}
	if !r.ResultReady() {
		t.Error("tick 1: result_ready not raised")
	}
	r.ClearResultReady()

	// Tick 2: rule fires -> ACTION_PENDING, action copied out.
	if err := e.LoadRules([]Rule{{Condition: "trigger_1_found == 1",
		Action: shm.ACTION_TAP, Target: shm.Point{X: 55, Y: 66}, Priority: 1}}); err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if err := e.Process(r); err != nil {
		t.Fatalf("tick 2: %v", err)
	}
	if e.State() != shm.STATE_ACTION_PENDING {
		t.Fatalf("tick 2: Got %s, want ACTION_PENDING", e.State())
	}
	action := r.PendingAction()
	if action.Type != shm.ACTION_TAP || action.Start.X != 55 || action.Start.Y != 66 {
		t.Errorf("tick 2: pending action: Got %+v", action)
	}
	if r.State() != shm.STATE_ACTION_PENDING {
		t.Errorf("tick 2: header state: Got %s", r.State())
	}

	// Tick 3: always on to EXECUTING.
	if err := e.Process(r); err != nil {
		t.Fatalf("tick 3: %v", err)
	}
	if e.State() != shm.STATE_EXECUTING {
		t.Fatalf("tick 3: Got %s, want EXECUTING", e.State())
	}

	// Tick 4: back to DETECTING.
	if err := e.Process(r); err != nil {
		t.Fatalf("tick 4: %v", err)
	}
	if e.State() != shm.STATE_DETECTING {
		t.Fatalf("tick 4: Got %s, want DETECTING", e.State())
	}
}

// Only populated slots decide has_results; stale data beyond
// num_results is ignored, and one unfound populated slot vetoes.
func TestProcessHasResults(t *testing.T) {
	e := New(nil)
	defer e.Close()
	r := shm.NewRegion()

	// Stale unfound garbage in slot 2, beyond num_results.
	r.SetResult(2, shm.VisionResult{TriggerID: 9, Found: false})
	r.SetResult(0, shm.VisionResult{TriggerID: 1, Found: true})
	r.SetResult(1, shm.VisionResult{TriggerID: 2, Found: true})
	r.SetNumResults(2)

	e.Process(r)
	if e.State() != shm.STATE_DETECTING {
		t.Fatalf("Got %s, want DETECTING", e.State())
	}

	// An unfound populated slot drops the frame back toward IDLE.
	r.SetResult(1, shm.VisionResult{TriggerID: 2, Found: false})
	e.Process(r)
	if e.State() != shm.STATE_IDLE {
		t.Errorf("Got %s, want IDLE", e.State())
	}
}

func TestProcessNilRegion(t *testing.T) {
	e := New(nil)
	defer e.Close()
	if err := e.Process(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Got %v, want ErrInvalidArgument", err)
	}
}

func TestSetStatePausedSticks(t *testing.T) {
	e := New(nil)
	defer e.Close()
	r := shm.NewRegion()

	e.SetState(shm.STATE_PAUSED)
	r.SetResult(0, shm.VisionResult{TriggerID: 1, Found: true})
	r.SetNumResults(1)
	e.Process(r)
	if e.State() != shm.STATE_PAUSED {
		t.Errorf("Got %s, want PAUSED", e.State())
	}
}
