// Package swmm re-exports the engine's core types for external callers,
// so an embedder can depend on this one stable import instead of reaching
// into internal/*.
package swmm

import (
	"hydroflow.dev/engine/internal/clock"
	"hydroflow.dev/engine/internal/errs"
	"hydroflow.dev/engine/internal/lifecycle"
	"hydroflow.dev/engine/internal/property"
)

// Re-export the lifecycle controller and its state machine.
type (
	Engine       = lifecycle.Engine
	State        = lifecycle.State
	HotstartSave = lifecycle.HotstartSave

	CallbackPhase = lifecycle.CallbackPhase
)

// Re-export lifecycle state constants.
const (
	StateUninitialized = lifecycle.StateUninitialized
	StateOpen          = lifecycle.StateOpen
	StateStarted       = lifecycle.StateStarted
	StateEnded         = lifecycle.StateEnded
	StateClosed        = lifecycle.StateClosed
)

// Re-export lifecycle callback phase constants.
const (
	BeforeOpen  = lifecycle.BeforeOpen
	AfterOpen   = lifecycle.AfterOpen
	BeforeStart = lifecycle.BeforeStart
	AfterStart  = lifecycle.AfterStart
	BeforeStep  = lifecycle.BeforeStep
	AfterStep   = lifecycle.AfterStep
	BeforeEnd   = lifecycle.BeforeEnd
	AfterEnd    = lifecycle.AfterEnd
	BeforeReport = lifecycle.BeforeReport
	AfterReport  = lifecycle.AfterReport
	BeforeClose  = lifecycle.BeforeClose
	AfterClose   = lifecycle.AfterClose
)

// Re-export the typed property get/set surface.
type (
	ObjectType = property.ObjectType
	Code       = property.Code
)

const (
	System       = property.System
	Gauge        = property.Gauge
	Subcatchment = property.Subcatchment
	Node         = property.Node
	Link         = property.Link
)

// Re-export error codes and the Date/Time representation.
type (
	ErrCode = errs.Code
	Date    = clock.Date
)

// New returns a fresh Engine wired to the package's reference kernel set.
// Passing a non-nil kernel.Set (via the internal/kernel package) lets a
// caller substitute its own routing/runoff/report collaborators; this
// convenience constructor exists so external callers don't need to import
// internal/kernel just to get the default behavior.
func New() *Engine {
	return lifecycle.New(nil)
}
