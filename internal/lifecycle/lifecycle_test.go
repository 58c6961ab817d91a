package lifecycle

import (
	"os"
	"path/filepath"
	"testing"

	"hydroflow.dev/engine/internal/errs"
	"hydroflow.dev/engine/internal/kernel"
	"hydroflow.dev/engine/internal/property"
)

const oneNodeProject = `{
	"start_datetime": "2004-01-01 00:00:00",
	"end_datetime":   "2004-01-01 01:00:00",
	"report_step_s":  600,
	"route_step_s":   10,
	"wet_step_s":     300,
	"nodes": [{"id": "N1", "type": "junction", "invert": 0, "max_depth": 10, "init_depth": 0}],
	"links": [{"id": "L1", "type": "conduit", "from_node": 0, "to_node": 0}]
}`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "project.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// Scenario 1, spec.md §8: an empty-network run (missing input file)
// advances in wet_step_s-bounded strides until the one-hour default
// horizon is reached, then Step returns elapsed == 0 forever after.
func TestEmptyNetworkRunReachesHorizon(t *testing.T) {
	e := New(kernel.Reference())
	if ec := e.Open(filepath.Join(t.TempDir(), "missing.json"), "", ""); ec != errs.OK {
		t.Fatalf("Open: %v", ec)
	}
	if ec := e.Start(false); ec != errs.OK {
		t.Fatalf("Start: %v", ec)
	}

	var elapsed float64
	calls := 0
	for {
		if ec := e.Step(&elapsed); ec != errs.OK {
			t.Fatalf("Step: %v", ec)
		}
		calls++
		if calls > 100 {
			t.Fatal("Step never reached the horizon")
		}
		if elapsed == 0 {
			break
		}
	}

	if e.newRoutingTimeMS != e.totalDurationMS {
		t.Errorf("expected newRoutingTimeMS == totalDurationMS (%v), got %v", e.totalDurationMS, e.newRoutingTimeMS)
	}
	// One more call after the horizon is reached just re-confirms
	// termination without advancing further (spec.md §4.1 step 1).
	if ec := e.Step(&elapsed); ec != errs.OK || elapsed != 0 {
		t.Fatalf("Step past horizon: expected OK/0, got %v/%v", ec, elapsed)
	}
	if e.totalStepCount != 12 {
		t.Errorf("expected totalStepCount == 12, got %d", e.totalStepCount)
	}

	if ec := e.End(); ec != errs.OK {
		t.Fatalf("End: %v", ec)
	}
	if ec := e.Close(); ec != errs.OK {
		t.Fatalf("Close: %v", ec)
	}
}

// Scenario 2, spec.md §8: Stride precision. Six 60-second strides over a
// one-node network whose nominal route_step is 10s should each advance
// routing time by exactly 60000ms and report 60 seconds of progress.
func TestStridePrecision(t *testing.T) {
	e := New(kernel.Reference())
	path := writeFixture(t, oneNodeProject)
	if ec := e.Open(path, "", ""); ec != errs.OK {
		t.Fatalf("Open: %v", ec)
	}
	if ec := e.Start(false); ec != errs.OK {
		t.Fatalf("Start: %v", ec)
	}

	var totalElapsed float64
	for i := 1; i <= 6; i++ {
		var elapsed float64
		if ec := e.Stride(60, &elapsed); ec != errs.OK {
			t.Fatalf("Stride(%d): %v", i, ec)
		}
		if want := float64(i) * 60000; e.newRoutingTimeMS != want {
			t.Errorf("stride %d: newRoutingTimeMS = %v, want %v", i, e.newRoutingTimeMS, want)
		}
		totalElapsed += elapsed
	}
	if totalElapsed != 360 {
		t.Errorf("expected cumulative stride elapsed == 360s, got %v", totalElapsed)
	}

	// route_step_s is restored to its pre-Stride value once Stride returns.
	if e.proj.RouteStepS != 10 {
		t.Errorf("expected route_step_s restored to 10, got %v", e.proj.RouteStepS)
	}
}

// Open/Start/Step/End/Close must reject calls made in the wrong
// lifecycle state, per spec.md §7's API lifecycle error codes.
func TestLifecycleStateGuards(t *testing.T) {
	e := New(kernel.Reference())

	var elapsed float64
	if ec := e.Step(&elapsed); ec != errs.ErrAPINotOpen {
		t.Errorf("Step before Open: expected ErrAPINotOpen, got %v", ec)
	}
	if ec := e.Start(false); ec != errs.ErrAPINotOpen {
		t.Errorf("Start before Open: expected ErrAPINotOpen, got %v", ec)
	}

	path := writeFixture(t, oneNodeProject)
	if ec := e.Open(path, "", ""); ec != errs.OK {
		t.Fatalf("Open: %v", ec)
	}
	if ec := e.Open(path, "", ""); ec != errs.ErrAPIAlreadyOpen {
		t.Errorf("double Open: expected ErrAPIAlreadyOpen, got %v", ec)
	}
	if ec := e.Step(&elapsed); ec != errs.ErrAPINotStarted {
		t.Errorf("Step before Start: expected ErrAPINotStarted, got %v", ec)
	}

	if ec := e.Start(false); ec != errs.OK {
		t.Fatalf("Start: %v", ec)
	}
	if ec := e.Report(); ec != errs.ErrAPINotEnded {
		t.Errorf("Report before End: expected ErrAPINotEnded, got %v", ec)
	}
}

// SetValue must honor the property interface's phase gate: a
// writable-only-while-running property is rejected in PhasePreStart and
// accepted once STARTED.
func TestSetValuePhaseGate(t *testing.T) {
	e := New(kernel.Reference())
	path := writeFixture(t, oneNodeProject)
	if ec := e.Open(path, "", ""); ec != errs.OK {
		t.Fatalf("Open: %v", ec)
	}

	ec := e.SetValue(property.Link, property.LinkTargetSetting, 0, 0, 0.5)
	if ec != errs.ErrAPIPropertyLocked {
		t.Errorf("SetValue in PhasePreStart: expected ErrAPIPropertyLocked, got %v", ec)
	}

	if ec := e.Start(false); ec != errs.OK {
		t.Fatalf("Start: %v", ec)
	}
	if ec := e.SetValue(property.Link, property.LinkTargetSetting, 0, 0, 0.5); ec != errs.OK {
		t.Errorf("SetValue in PhaseRunning: expected OK, got %v", ec)
	}
}

// A lifecycle callback that re-enters the engine's public API observes
// ErrAPIReentrant rather than deadlocking, per spec.md §9.
func TestLifecycleCallbackReentrancyGuard(t *testing.T) {
	e := New(kernel.Reference())
	path := writeFixture(t, oneNodeProject)
	if ec := e.Open(path, "", ""); ec != errs.OK {
		t.Fatalf("Open: %v", ec)
	}

	var observed errs.Code
	e.RegisterLifecycleCallback(AfterStart, func(eng *Engine) {
		var elapsed float64
		observed = eng.Step(&elapsed)
	})

	if ec := e.Start(false); ec != errs.OK {
		t.Fatalf("Start: %v", ec)
	}
	if observed != errs.ErrAPIReentrant {
		t.Errorf("expected ErrAPIReentrant from re-entrant Step, got %v", observed)
	}
}

// Close releases the project and permits a fresh Open to begin.
func TestCloseAllowsReopen(t *testing.T) {
	e := New(kernel.Reference())
	path := writeFixture(t, oneNodeProject)

	if ec := e.Open(path, "", ""); ec != errs.OK {
		t.Fatalf("Open: %v", ec)
	}
	if ec := e.Start(false); ec != errs.OK {
		t.Fatalf("Start: %v", ec)
	}
	if ec := e.End(); ec != errs.OK {
		t.Fatalf("End: %v", ec)
	}
	if ec := e.Close(); ec != errs.OK {
		t.Fatalf("Close: %v", ec)
	}
	if e.State() != StateClosed {
		t.Fatalf("expected StateClosed, got %v", e.State())
	}

	if ec := e.Open(path, "", ""); ec != errs.OK {
		t.Fatalf("reopen after Close: %v", ec)
	}
}

// Start creates a results file when saveResults is true, and the file
// still exists once End has finalized it.
func TestStartWritesOutputFileWhenRequested(t *testing.T) {
	e := New(kernel.Reference())
	path := writeFixture(t, oneNodeProject)
	outPath := filepath.Join(t.TempDir(), "out.bin")

	if ec := e.Open(path, "", outPath); ec != errs.OK {
		t.Fatalf("Open: %v", ec)
	}
	if ec := e.Start(true); ec != errs.OK {
		t.Fatalf("Start: %v", ec)
	}

	var elapsed float64
	for elapsed == 0 {
		if ec := e.Step(&elapsed); ec != errs.OK {
			t.Fatalf("Step: %v", ec)
		}
		if e.newRoutingTimeMS >= e.totalDurationMS {
			break
		}
	}

	if ec := e.End(); ec != errs.OK {
		t.Fatalf("End: %v", ec)
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Fatalf("expected output file to exist: %v", err)
	}
}
