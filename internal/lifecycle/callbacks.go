package lifecycle

import "hydroflow.dev/engine/internal/errs"

// CallbackPhase names a lifecycle phase boundary a callback can be
// registered against, per spec.md §6's "Lifecycle callbacks": callers
// are notified BEFORE and AFTER each operation crosses a state
// transition.
type CallbackPhase int

const (
	BeforeOpen CallbackPhase = iota
	AfterOpen
	BeforeStart
	AfterStart
	BeforeStep
	AfterStep
	BeforeEnd
	AfterEnd
	BeforeReport
	AfterReport
	BeforeClose
	AfterClose
)

// RegisterLifecycleCallback adds fn to the set invoked at phase.
// Callbacks for the same phase run in registration order.
func (e *Engine) RegisterLifecycleCallback(phase CallbackPhase, fn func(*Engine)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.callbacks[phase] = append(e.callbacks[phase], fn)
}

// RegisterProgressCallback arms a rate-limited progress callback, fired
// at most maxPerSecond times per wall-clock second from within Step,
// per spec.md §6's default of 2/sec. Passing maxPerSecond <= 0 keeps the
// default.
func (e *Engine) RegisterProgressCallback(fn func(progress float64), maxPerSecond float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.progressFn = fn
	e.progressLimiter = newProgressLimiter(maxPerSecond)
}

// fire invokes phase's registered callbacks outside of e.mu, arming the
// reentrancy guard for their duration: a callback that calls back into
// the engine's public API (Step, GetValue, ...) gets ErrAPIReentrant
// instead of a deadlock or a logically nested operation, matching the
// "single lifecycle operation in flight" invariant of spec.md §9.
func (e *Engine) fire(phase CallbackPhase) {
	e.mu.Lock()
	var fns []func(*Engine)
	fns = append(fns, e.callbacks[phase]...)
	e.mu.Unlock()
	if len(fns) == 0 {
		return
	}

	e.inCallback.Store(true)
	defer e.inCallback.Store(false)
	for _, fn := range fns {
		fn(e)
	}
}

// checkReentrant reports ErrAPIReentrant if called while a callback
// registered via RegisterLifecycleCallback or RegisterProgressCallback
// is currently executing, and errs.OK otherwise.
func (e *Engine) checkReentrant() errs.Code {
	if e.inCallback.Load() {
		return errs.ErrAPIReentrant
	}
	return errs.OK
}
