// Package lifecycle implements the simulation lifecycle and stepwise
// routing controller (spec.md §4.1): the state machine UNINITIALIZED →
// OPEN → STARTED → ENDED → CLOSED, the adaptive variable-step routing
// loop, reporting cadence, hot-start coordination, and the lifecycle and
// progress callback mechanisms.
//
// Grounded on the teacher's internal/task.Task: the mutex-guarded state
// enum with an explicit setState transition point, the fixed-order
// component startup, and the graceful, always-runs shutdown sequence are
// all generalized here from a packet-capture task to the routing engine.
// Where the teacher rolls back already-started components on a failed
// Start, this package does not need an equivalent rollback stack: unlike
// the teacher's Reporters/Capturers, internal/kernel's collaborators
// expose no Stop counterpart to Init, so a failed Start simply leaves
// the engine in OPEN with the sticky error set.
package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"hydroflow.dev/engine/internal/clock"
	"hydroflow.dev/engine/internal/errs"
	"hydroflow.dev/engine/internal/hotstart"
	"hydroflow.dev/engine/internal/kernel"
	"hydroflow.dev/engine/internal/log"
	"hydroflow.dev/engine/internal/output"
	"hydroflow.dev/engine/internal/project"
	"hydroflow.dev/engine/internal/property"
)

// State is the lifecycle controller's state machine, per spec.md §4.1.
type State int

const (
	StateUninitialized State = iota
	StateOpen
	StateStarted
	StateEnded
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateOpen:
		return "open"
	case StateStarted:
		return "started"
	case StateEnded:
		return "ended"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// HotstartSave schedules a periodic hot-start save at AtMS (engine
// milliseconds since StartDateTime), per spec.md §4.5's "save-at-
// specified-times during simulation" mode.
type HotstartSave struct {
	AtMS float64
	Path string
}

// reportVarSet is the fixed attribute-code set the engine reports to the
// output file for each object class, per spec.md §6's attribute-code
// arrays. A real embedding chooses its own set via SetReportVars; the
// package default covers the properties the reference kernels compute.
type reportVarSet struct {
	Subcatch []property.Code
	Node     []property.Code
	Link     []property.Code
	Sys      []property.Code
}

func defaultReportVars() reportVarSet {
	return reportVarSet{
		Subcatch: []property.Code{property.SubcatchRunoff},
		Node:     []property.Code{property.NodeDepth, property.NodeVolume},
		Link:     []property.Code{property.LinkFlow, property.LinkDepth},
		Sys:      []property.Code{property.SysElapsedTime},
	}
}

// Engine is the lifecycle controller's single-instance handle. Its
// single-instance invariant (spec.md §9's "global mutable engine"
// design note) is the caller's responsibility — New returns an
// independent handle each time; an embedder that wants the classic
// one-project-per-process constraint enforces it by holding one Engine
// for the process lifetime rather than this package reaching for
// package-scope state.
type Engine struct {
	mu    sync.Mutex
	state State

	kernels *kernel.Set
	props   *property.Interface
	errCtx  *errs.Context

	proj *project.Project

	reportVars  reportVarSet
	saveResults bool
	out         *output.Writer

	hotstartLoadPath string
	hotstartSaves    []HotstartSave
	hotstartSaveNext int

	routingDurationMS float64 // total_duration_ms, temporarily capped by Stride
	totalDurationMS   float64
	newRoutingTimeMS  float64
	newRunoffTimeMS   float64
	reportTimeMS      float64
	elapsedTimeDays   float64

	totalStepCount   int
	reportStepCount  int
	nonConvergeCount int

	inCallback atomic.Bool
	callbacks  map[CallbackPhase][]func(*Engine)

	progressFn      func(float64)
	progressLimiter *progressLimiter

	log log.Logger
}

// New returns a fresh Engine in state UNINITIALIZED, wired to kernels
// (or the package's reference Set if nil).
func New(kernels *kernel.Set) *Engine {
	if kernels == nil {
		kernels = kernel.Reference()
	}
	return &Engine{
		state:      StateUninitialized,
		kernels:    kernels,
		props:      property.New(),
		errCtx:     &errs.Context{},
		reportVars: defaultReportVars(),
		callbacks:  make(map[CallbackPhase][]func(*Engine)),
		log:        log.GetLogger(),
	}
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// ErrorContext exposes the engine's sticky error context.
func (e *Engine) ErrorContext() *errs.Context { return e.errCtx }

// Progress returns the fraction of total_duration_ms elapsed, in [0,1].
// Returns 0 before Start and when the project has a zero-length horizon.
func (e *Engine) Progress() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.totalDurationMS <= 0 {
		return 0
	}
	return e.newRoutingTimeMS / e.totalDurationMS
}

// SetReportVars overrides the default attribute-code set reported to the
// output file. Must be called before Start.
func (e *Engine) SetReportVars(subcatch, node, link, sys []property.Code) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reportVars = reportVarSet{Subcatch: subcatch, Node: node, Link: link, Sys: sys}
}

// ConfigureHotstart sets an optional hot-start file to load as the
// initial condition before Start, and a list of wall-clock-timestamped
// saves to perform during the run (spec.md §4.5's two usage modes).
func (e *Engine) ConfigureHotstart(loadPath string, saves []HotstartSave) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hotstartLoadPath = loadPath
	e.hotstartSaves = saves
	e.hotstartSaveNext = 0
}

func (e *Engine) logf() log.Logger {
	if e.log == nil {
		return nopLogger{}
	}
	return e.log
}

// Open parses inp (via the external InputParser), records rpt/out, and
// transitions OPEN, per spec.md §4.1. Preconditions: state is
// UNINITIALIZED or CLOSED.
func (e *Engine) Open(inp, rpt, out string) errs.Code {
	if ec := e.checkReentrant(); ec != errs.OK {
		return ec
	}

	e.mu.Lock()
	if e.state != StateUninitialized && e.state != StateClosed {
		ec := e.errCtx.Set(errs.ErrAPIAlreadyOpen)
		e.mu.Unlock()
		return ec
	}
	e.mu.Unlock()

	e.fire(BeforeOpen)

	proj, err := e.kernels.Parser.Parse(context.Background(), inp)
	if err != nil {
		e.mu.Lock()
		ec := e.errCtx.Set(errs.ErrInputFirst)
		e.mu.Unlock()
		e.logf().WithError(err).Error("open: input parse failed")
		return ec
	}
	proj.ReportPath = rpt
	proj.OutputPath = out

	e.mu.Lock()
	e.proj = proj
	e.errCtx.Clear()
	e.props = property.New()
	e.totalDurationMS = proj.TotalDurationMS()
	e.routingDurationMS = e.totalDurationMS
	e.reportTimeMS = clock.DiffMilliseconds(proj.StartDateTime, proj.ReportStart) + proj.ReportStepS*1000
	e.newRoutingTimeMS = 0
	e.newRunoffTimeMS = 0
	e.totalStepCount, e.reportStepCount, e.nonConvergeCount = 0, 0, 0
	e.state = StateOpen
	e.mu.Unlock()

	e.logf().WithField("input", inp).Info("open: project ready")
	e.fire(AfterOpen)
	return errs.OK
}

// Start initializes the kernel collaborators in the fixed order spec.md
// §4.1 names (report options, rainfall/runoff, project state, output
// file, hot-start, routing, mass balance, statistics) and transitions
// STARTED.
func (e *Engine) Start(saveResults bool) errs.Code {
	if ec := e.checkReentrant(); ec != errs.OK {
		return ec
	}

	e.mu.Lock()
	if e.state != StateOpen {
		st := e.state
		e.mu.Unlock()
		return e.errCtx.Set(wrongStateCode(st, StateOpen))
	}
	p := e.proj
	e.mu.Unlock()

	e.fire(BeforeStart)

	if err := e.kernels.Report.Init(nil); err != nil {
		return e.failStart(fmt.Errorf("init report writer: %w", err))
	}
	if !p.IgnoreRainfall && p.HasSubcatchments() {
		if err := e.kernels.Runoff.Init(nil); err != nil {
			return e.failStart(fmt.Errorf("init runoff processor: %w", err))
		}
	}

	var writer *output.Writer
	if saveResults {
		w, err := output.NewWriter(p.OutputPath, e.buildOutputSpec(p))
		if err != nil {
			return e.failStart(fmt.Errorf("open output file: %w", err))
		}
		writer = w
	}

	e.mu.Lock()
	loadPath := e.hotstartLoadPath
	e.mu.Unlock()
	if loadPath != "" {
		snap, ec := hotstart.Load(loadPath, p, e.kernels.Routing.Name())
		if ec != errs.OK {
			if writer != nil {
				writer.Close(ec)
			}
			return e.failStart(fmt.Errorf("load hot-start file: %s", errs.Message(ec)))
		}
		if ec := hotstart.Apply(p, snap); ec != errs.OK {
			if writer != nil {
				writer.Close(ec)
			}
			return e.failStart(fmt.Errorf("apply hot-start snapshot: %s", errs.Message(ec)))
		}
	}

	if p.HasNodes() && !p.IgnoreRouting {
		if err := e.kernels.Routing.Init(nil); err != nil {
			if writer != nil {
				writer.Close(errs.OK)
			}
			return e.failStart(fmt.Errorf("init routing processor: %w", err))
		}
		e.kernels.Routing.SetThreadCount(p.NumThreads)
	}
	if err := e.kernels.MassBalance.Init(nil); err != nil {
		return e.failStart(fmt.Errorf("init mass balance: %w", err))
	}
	if err := e.kernels.Stats.Init(nil); err != nil {
		return e.failStart(fmt.Errorf("init statistics: %w", err))
	}

	e.mu.Lock()
	e.out = writer
	e.saveResults = saveResults
	e.routingDurationMS = e.totalDurationMS
	e.newRoutingTimeMS = 0
	e.newRunoffTimeMS = 0
	e.state = StateStarted
	e.mu.Unlock()

	e.logf().WithField("save_results", saveResults).Info("start: kernels initialized")
	e.fire(AfterStart)
	return errs.OK
}

func (e *Engine) failStart(err error) errs.Code {
	e.logf().WithError(err).Error("start failed")
	e.mu.Lock()
	ec := e.errCtx.Set(errs.ErrFileOpen)
	e.mu.Unlock()
	return ec
}

// wrongStateCode maps an unexpected current state against the state an
// operation required, to one of the API lifecycle error codes (spec.md
// §7's 400-409 range).
func wrongStateCode(got, want State) errs.Code {
	if got < StateOpen {
		return errs.ErrAPINotOpen
	}
	switch want {
	case StateOpen:
		return errs.ErrAPIIsRunning
	case StateStarted:
		if got < StateStarted {
			return errs.ErrAPINotStarted
		}
		return errs.ErrAPIIsRunning
	case StateEnded:
		return errs.ErrAPINotEnded
	default:
		return errs.ErrAPIIsRunning
	}
}

// Step advances the simulation by one adaptive routing step, running the
// 8-step routing loop of spec.md §4.1. elapsed is set to the decimal-day
// cursor, or exactly 0.0 once the horizon has been reached.
func (e *Engine) Step(elapsed *float64) errs.Code {
	if ec := e.checkReentrant(); ec != errs.OK {
		*elapsed = 0
		return ec
	}

	e.mu.Lock()
	if e.state != StateStarted {
		st := e.state
		e.mu.Unlock()
		*elapsed = 0
		return e.errCtx.Set(wrongStateCode(st, StateStarted))
	}
	if e.errCtx.Fatal() {
		ec := e.errCtx.Code()
		e.mu.Unlock()
		*elapsed = 0
		return ec
	}
	e.mu.Unlock()

	e.fire(BeforeStep)
	ec := e.stepOnce(elapsed)
	e.fire(AfterStep)
	return ec
}

func (e *Engine) stepOnce(elapsed *float64) errs.Code {
	e.mu.Lock()
	p := e.proj

	// 1. Termination check.
	if e.newRoutingTimeMS >= e.routingDurationMS {
		e.elapsedTimeDays = 0
		*elapsed = 0
		e.mu.Unlock()
		return errs.OK
	}

	// 2. Choose routing_step_s.
	var stepS float64
	if p.IgnoreRouting || !p.HasNodes() {
		stepS = p.WetStepS
		if p.ReportStepS < stepS {
			stepS = p.ReportStepS
		}
	} else {
		stepS = e.kernels.Routing.AdaptiveStep(p, p.RouteStepS)
	}
	if stepS <= 0 {
		stepS = p.MinRouteStepS
	}

	// 3. Clamp to land exactly on the duration, never below 0.001s.
	remainingMS := e.routingDurationMS - e.newRoutingTimeMS
	if stepS*1000 > remainingMS {
		stepS = remainingMS / 1000
	}
	if stepS < 0.001 {
		stepS = 0.001
	}
	nextRoutingTimeMS := e.newRoutingTimeMS + stepS*1000
	nowMS := e.newRoutingTimeMS
	e.mu.Unlock()

	// 4. Runoff, up to the next routing instant.
	newRunoffMS := nextRoutingTimeMS
	if p.HasSubcatchments() {
		r, err := e.kernels.Runoff.Step(context.Background(), p, nowMS, nextRoutingTimeMS)
		if err != nil {
			return e.failStep(errs.ErrNonConvergence, err)
		}
		newRunoffMS = r
	}

	// 5. Advance routing.
	newRoutingMS := nextRoutingTimeMS
	if p.HasNodes() && !p.IgnoreRouting {
		r, err := e.kernels.Routing.Route(context.Background(), p, nowMS, stepS)
		if err != nil {
			return e.failStep(errs.ErrNonConvergence, err)
		}
		newRoutingMS = r
	}

	e.mu.Lock()
	e.newRunoffTimeMS = newRunoffMS
	e.newRoutingTimeMS = newRoutingMS
	e.totalStepCount++
	e.mu.Unlock()

	e.kernels.MassBalance.Update(p, stepS)
	e.kernels.Stats.Update(p, stepS)

	// 6. Reporting.
	e.mu.Lock()
	crossedReport := e.newRoutingTimeMS >= e.reportTimeMS
	e.mu.Unlock()
	if crossedReport {
		if e.out != nil {
			period := e.buildPeriod(p)
			if err := e.out.WritePeriod(period); err != nil {
				return e.failStep(errs.ErrFileWrite, err)
			}
		}
		e.mu.Lock()
		e.reportStepCount++
		e.reportTimeMS += p.ReportStepS * 1000
		e.mu.Unlock()
	}

	// 7. Periodic hot-start save.
	e.mu.Lock()
	savePath, doSave := "", false
	if e.hotstartSaveNext < len(e.hotstartSaves) && e.newRoutingTimeMS >= e.hotstartSaves[e.hotstartSaveNext].AtMS {
		savePath = e.hotstartSaves[e.hotstartSaveNext].Path
		doSave = true
		e.hotstartSaveNext++
	}
	e.mu.Unlock()
	if doSave {
		if _, err := hotstart.Save(savePath, p, e.kernels.Routing.Name()); err != nil {
			e.logf().WithError(err).Warn("periodic hot-start save failed")
			e.mu.Lock()
			e.errCtx.Set(errs.ErrFileWrite)
			e.mu.Unlock()
		}
	}

	// 8. Update elapsed_time_days.
	e.mu.Lock()
	if e.newRoutingTimeMS >= e.routingDurationMS {
		e.elapsedTimeDays = 0
	} else {
		e.elapsedTimeDays = e.newRoutingTimeMS / clock.MillisecondsPerDay
	}
	// Mirror onto the project so property.SysElapsedTime/SysTotalSteps,
	// which dispatch only through *project.Project, can read them.
	p.ElapsedTimeDays = e.elapsedTimeDays
	p.TotalSteps = e.totalStepCount
	*elapsed = e.elapsedTimeDays
	totalMS := e.totalDurationMS
	curMS := e.newRoutingTimeMS
	ec := e.errCtx.Code()
	e.mu.Unlock()

	if e.progressFn != nil && e.progressLimiter != nil && totalMS > 0 {
		if e.progressLimiter.allowNow() {
			e.inCallback.Store(true)
			e.progressFn(curMS / totalMS)
			e.inCallback.Store(false)
		}
	}

	return ec
}

func (e *Engine) failStep(code errs.Code, err error) errs.Code {
	e.logf().WithError(err).Error("step failed")
	e.mu.Lock()
	ec := e.errCtx.Set(code)
	e.mu.Unlock()
	return ec
}

// Stride repeatedly steps until strideSeconds of routing time has
// elapsed or the simulation horizon is reached, by temporarily capping
// routing_duration_ms at the stride's window and forcing the routing
// step to strideSeconds, restoring both on exit (spec.md §4.1). elapsed
// is set to the number of seconds actually advanced during this call —
// strideSeconds on a full stride, less on the final partial stride, or
// 0.0 if the horizon had already been reached before this call.
//
// Step's own elapsed==0 sentinel (meaning "reached routing_duration_ms")
// is not reused here to detect the true simulation horizon: Stride's
// temporary cap makes that sentinel fire at every stride boundary, not
// just the real one. Stride instead compares its own cursor against
// total_duration_ms directly.
func (e *Engine) Stride(strideSeconds float64, elapsed *float64) errs.Code {
	if ec := e.checkReentrant(); ec != errs.OK {
		*elapsed = 0
		return ec
	}

	e.mu.Lock()
	if e.state != StateStarted {
		st := e.state
		e.mu.Unlock()
		*elapsed = 0
		return e.errCtx.Set(wrongStateCode(st, StateStarted))
	}
	msBefore := e.newRoutingTimeMS
	totalMS := e.totalDurationMS
	if msBefore >= totalMS {
		e.mu.Unlock()
		*elapsed = 0
		return errs.OK
	}
	origDuration := e.routingDurationMS
	origRouteStep := e.proj.RouteStepS
	cappedDuration := msBefore + 1000*strideSeconds
	if cappedDuration > totalMS {
		cappedDuration = totalMS
	}
	e.routingDurationMS = cappedDuration
	e.proj.RouteStepS = strideSeconds
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.routingDurationMS = origDuration
		e.proj.RouteStepS = origRouteStep
		e.mu.Unlock()
	}()

	for {
		var stepElapsed float64
		ec := e.Step(&stepElapsed)
		e.mu.Lock()
		ms := e.newRoutingTimeMS
		e.mu.Unlock()
		if ec != errs.OK {
			*elapsed = (ms - msBefore) / 1000.0
			return ec
		}
		if ms >= cappedDuration {
			break
		}
	}

	e.mu.Lock()
	ms := e.newRoutingTimeMS
	e.mu.Unlock()
	*elapsed = (ms - msBefore) / 1000.0
	return errs.OK
}

// End finalizes the output file trailer and runs the mass-balance and
// statistics reports (unless the sticky error is fatal). It does not
// close the kernel collaborators Start initialized: the kernel
// interfaces have no close method. Idempotent if already ENDED.
func (e *Engine) End() errs.Code {
	if ec := e.checkReentrant(); ec != errs.OK {
		return ec
	}

	e.mu.Lock()
	if e.state == StateEnded {
		e.mu.Unlock()
		return errs.OK
	}
	if e.state != StateStarted {
		st := e.state
		e.mu.Unlock()
		return e.errCtx.Set(wrongStateCode(st, StateStarted))
	}
	p := e.proj
	writer := e.out
	fatal := e.errCtx.Fatal()
	finalCode := e.errCtx.Code()
	e.mu.Unlock()

	e.fire(BeforeEnd)

	if writer != nil {
		if err := writer.Close(finalCode); err != nil {
			e.mu.Lock()
			e.errCtx.Set(errs.ErrFileWrite)
			e.mu.Unlock()
		}
		e.mu.Lock()
		e.out = nil
		e.mu.Unlock()
	}

	if !fatal {
		if err := e.kernels.MassBalance.Report(p); err != nil {
			e.logf().WithError(err).Warn("mass balance report failed")
		}
		if err := e.kernels.Stats.Report(p); err != nil {
			e.logf().WithError(err).Warn("statistics report failed")
		}
	}

	e.mu.Lock()
	e.state = StateEnded
	e.mu.Unlock()

	e.logf().Info("end: simulation finalized")
	e.fire(AfterEnd)
	return e.errCtx.Code()
}

// Report writes the human-readable text report via the external
// ReportWriter. Preconditions: state = ENDED.
func (e *Engine) Report() errs.Code {
	if ec := e.checkReentrant(); ec != errs.OK {
		return ec
	}

	e.mu.Lock()
	if e.state != StateEnded {
		st := e.state
		e.mu.Unlock()
		return e.errCtx.Set(wrongStateCode(st, StateEnded))
	}
	p := e.proj
	e.mu.Unlock()

	e.fire(BeforeReport)

	if p.ReportPath != "" {
		if err := e.kernels.Report.WriteReport(p, p.ReportPath); err != nil {
			e.mu.Lock()
			e.errCtx.Set(errs.ErrFileWrite)
			e.mu.Unlock()
			e.logf().WithError(err).Error("report: write failed")
		}
	}

	e.fire(AfterReport)
	return e.errCtx.Code()
}

// Close releases all project resources and resets the singleton to
// CLOSED, from which a new Open may begin.
func (e *Engine) Close() errs.Code {
	if ec := e.checkReentrant(); ec != errs.OK {
		return ec
	}

	e.mu.Lock()
	if e.state == StateUninitialized {
		e.mu.Unlock()
		return errs.OK
	}
	writer := e.out
	finalCode := e.errCtx.Code()
	e.mu.Unlock()

	e.fire(BeforeClose)

	if writer != nil {
		writer.Close(finalCode)
	}

	e.mu.Lock()
	e.out = nil
	e.proj = nil
	e.errCtx.Clear()
	e.hotstartLoadPath = ""
	e.hotstartSaves = nil
	e.hotstartSaveNext = 0
	e.state = StateClosed
	e.mu.Unlock()

	e.logf().Info("close: resources released")
	e.fire(AfterClose)
	return errs.OK
}

// --- Property interface delegation --------------------------------------

// propPhase translates the current lifecycle state into the write-gate
// property.Phase the Property Interface dispatches on.
func (e *Engine) propPhase() property.Phase {
	switch e.state {
	case StateOpen:
		return property.PhasePreStart
	case StateStarted:
		return property.PhaseRunning
	case StateEnded:
		return property.PhaseEnded
	default:
		return property.PhaseUninitialized
	}
}

func (e *Engine) currentSimDateLocked() clock.Date {
	if e.proj == nil {
		return 0
	}
	return clock.AddMilliseconds(e.proj.StartDateTime, e.newRoutingTimeMS)
}

// GetValue reads ot/code/index/subIndex's current value in the
// project's configured user units, per spec.md §4.3's Read contract.
func (e *Engine) GetValue(ot property.ObjectType, code property.Code, index, subIndex int) (float64, errs.Code) {
	if ec := e.checkReentrant(); ec != errs.OK {
		return 0, ec
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.proj == nil {
		return 0, e.errCtx.Set(errs.ErrAPINotOpen)
	}
	sys := property.UnitSystem(e.proj.UnitSystem)
	fu := property.FlowUnits(e.proj.FlowUnits)
	return e.props.Get(e.proj, ot, code, index, subIndex, sys, fu)
}

// SetValue writes value to ot/code/index/subIndex, enforcing the
// lifecycle-phase write gate of spec.md §4.3.
func (e *Engine) SetValue(ot property.ObjectType, code property.Code, index, subIndex int, value float64) errs.Code {
	if ec := e.checkReentrant(); ec != errs.OK {
		return ec
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.proj == nil {
		return e.errCtx.Set(errs.ErrAPINotOpen)
	}
	sys := property.UnitSystem(e.proj.UnitSystem)
	fu := property.FlowUnits(e.proj.FlowUnits)
	now := e.currentSimDateLocked()
	return e.props.Set(e.proj, ot, code, index, subIndex, value, sys, fu, e.propPhase(), now)
}

// --- Output file wiring --------------------------------------------------

func (e *Engine) buildOutputSpec(p *project.Project) output.Spec {
	names := func(get func(int) string, n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = get(i)
		}
		return out
	}

	pollutantUnits := make([]output.PollutantUnits, len(p.Pollutants))
	for i, pol := range p.Pollutants {
		pollutantUnits[i] = output.PollutantUnits(pol.ConcUnits)
	}

	toCodes := func(codes []property.Code) []int32 {
		out := make([]int32, len(codes))
		for i, c := range codes {
			out[i] = int32(c)
		}
		return out
	}

	return output.Spec{
		FlowUnits:        output.FlowUnits(p.FlowUnits),
		PollutantUnits:   pollutantUnits,
		SubcatchNames:    names(func(i int) string { return p.Subcatchments[i].ID }, len(p.Subcatchments)),
		NodeNames:        names(func(i int) string { return p.Nodes[i].ID }, len(p.Nodes)),
		LinkNames:        names(func(i int) string { return p.Links[i].ID }, len(p.Links)),
		PollutantNames:   names(func(i int) string { return p.Pollutants[i].ID }, len(p.Pollutants)),
		SubcatchVars:     toCodes(e.reportVars.Subcatch),
		NodeVars:         toCodes(e.reportVars.Node),
		LinkVars:         toCodes(e.reportVars.Link),
		SysVars:          toCodes(e.reportVars.Sys),
		ObjectProperties: e.buildObjectProperties(p),
		StartDate:        p.StartDateTime,
		ReportStepS:      int32(p.ReportStepS),
	}
}

// buildObjectProperties flattens one representative static input
// property per object (area, invert, upstream offset) into the
// opaque per-object property block spec.md §6 describes; this engine
// does not interpret the block on read, only persists and replays it.
func (e *Engine) buildObjectProperties(p *project.Project) []float32 {
	out := make([]float32, 0, len(p.Subcatchments)+len(p.Nodes)+len(p.Links))
	for _, sc := range p.Subcatchments {
		out = append(out, float32(sc.Area))
	}
	for _, n := range p.Nodes {
		out = append(out, float32(n.Invert))
	}
	for _, l := range p.Links {
		out = append(out, float32(l.OffsetUp))
	}
	return out
}

// buildPeriod reads the current value of every reported attribute for
// every element, laid out element-major as the output package's
// classOffset indexing requires.
func (e *Engine) buildPeriod(p *project.Project) output.Period {
	sys := property.UnitSystem(p.UnitSystem)
	fu := property.FlowUnits(p.FlowUnits)

	period := output.Period{Date: e.currentSimDateLocked()}
	for i := range p.Subcatchments {
		for _, code := range e.reportVars.Subcatch {
			v, _ := e.props.Get(p, property.Subcatchment, code, i, 0, sys, fu)
			period.Subcatch = append(period.Subcatch, float32(v))
		}
	}
	for i := range p.Nodes {
		for _, code := range e.reportVars.Node {
			v, _ := e.props.Get(p, property.Node, code, i, 0, sys, fu)
			period.Node = append(period.Node, float32(v))
		}
	}
	for i := range p.Links {
		for _, code := range e.reportVars.Link {
			v, _ := e.props.Get(p, property.Link, code, i, 0, sys, fu)
			period.Link = append(period.Link, float32(v))
		}
	}
	for _, code := range e.reportVars.Sys {
		v, _ := e.props.Get(p, property.System, code, 0, 0, sys, fu)
		period.Sys = append(period.Sys, float32(v))
	}
	return period
}

// nopLogger discards everything; used only if the embedder never called
// log.Init, so the engine never panics on a nil logger.
type nopLogger struct{}

func (nopLogger) Print(args ...interface{})                    {}
func (nopLogger) Printf(format string, args ...interface{})    {}
func (nopLogger) Trace(args ...interface{})                    {}
func (nopLogger) Tracef(format string, args ...interface{})    {}
func (nopLogger) Debug(args ...interface{})                    {}
func (nopLogger) Debugf(format string, args ...interface{})    {}
func (nopLogger) Info(args ...interface{})                     {}
func (nopLogger) Infof(format string, args ...interface{})     {}
func (nopLogger) Warn(args ...interface{})                      {}
func (nopLogger) Warnf(format string, args ...interface{})      {}
func (nopLogger) Error(args ...interface{})                    {}
func (nopLogger) Errorf(format string, args ...interface{})    {}
func (nopLogger) Fatal(args ...interface{})                    {}
func (nopLogger) Fatalf(format string, args ...interface{})    {}
func (nopLogger) Panic(args ...interface{})                    {}
func (nopLogger) Panicf(format string, args ...interface{})    {}
func (nopLogger) WithField(string, interface{}) log.Logger     { return nopLogger{} }
func (nopLogger) WithFields(map[string]interface{}) log.Logger { return nopLogger{} }
func (nopLogger) WithError(error) log.Logger                   { return nopLogger{} }
func (nopLogger) IsTraceEnabled() bool                          { return false }
func (nopLogger) IsDebugEnabled() bool                          { return false }
func (nopLogger) IsInfoEnabled() bool                           { return false }
