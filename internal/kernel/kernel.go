// Package kernel defines the interfaces for the physical subcomponent
// solvers spec.md §1 puts out of scope — rainfall ingest, infiltration,
// runoff generation, the hydraulic routing solver, mass-balance and
// statistics accounting, and the input-file parser — together with
// minimal reference implementations sufficient to drive the lifecycle
// controller end to end.
//
// The shape is grounded on the teacher repo's pkg/plugin package: a
// base Plugin lifecycle interface (Name/Init/Start/Stop) that the
// domain-specific interfaces embed, generalized here from
// capture/parse/process/report to runoff/route/balance/stat.
package kernel

import (
	"context"

	"hydroflow.dev/engine/internal/project"
)

// Plugin is the base lifecycle every kernel collaborator implements,
// mirroring the teacher's pkg/plugin.Plugin.
type Plugin interface {
	Name() string
	Init(cfg map[string]any) error
}

// InputParser parses and validates an input file into a Project. It is
// the sole collaborator spec.md §1 names explicitly as "the input-file
// parser, validator, and project object graph construction" — out of
// scope for this module's core, but needed as an interface so Open
// (internal/lifecycle) has something concrete to call.
type InputParser interface {
	Plugin
	Parse(ctx context.Context, path string) (*project.Project, error)
}

// RunoffKernel generates rainfall-runoff from subcatchments, advancing
// the project's runoff clock.
type RunoffKernel interface {
	Plugin
	// Step advances runoff computation up to nextRoutingTimeMS (engine
	// milliseconds since StartDateTime) and returns the new runoff
	// cursor, satisfying the invariant new_runoff_time_ms >=
	// new_routing_time_ms described in spec.md §3.
	Step(ctx context.Context, p *project.Project, nowMS, nextRoutingTimeMS float64) (newRunoffTimeMS float64, err error)
}

// RoutingKernel propagates flow and quality through the drainage
// network.
type RoutingKernel interface {
	Plugin
	// AdaptiveStep returns the routing step (seconds) the solver wants
	// to take next, given its internal model and the project's nominal
	// route_step — spec.md §4.1 step 2.
	AdaptiveStep(p *project.Project, nominalStepS float64) float64
	// Route advances routing by stepS seconds and returns the new
	// routing-time cursor in milliseconds.
	Route(ctx context.Context, p *project.Project, nowMS, stepS float64) (newRoutingTimeMS float64, err error)
	// SetThreadCount configures the kernel's internal fan-out width for
	// per-object computation within one step (spec.md §5, num_threads).
	SetThreadCount(n int)
}

// MassBalanceKernel accumulates and reports continuity error statistics.
type MassBalanceKernel interface {
	Plugin
	Update(p *project.Project, stepS float64)
	Report(p *project.Project) error
}

// StatsKernel accumulates summary statistics (max values, flood volumes,
// surcharge durations) over the run.
type StatsKernel interface {
	Plugin
	Update(p *project.Project, stepS float64)
	Report(p *project.Project) error
}

// ReportWriter produces the human-readable text report. Out of scope
// per spec.md §1 beyond this interface contract.
type ReportWriter interface {
	Plugin
	WriteReport(p *project.Project, path string) error
}

// Set bundles one of each collaborator, as Start (spec.md §4.1)
// initializes them together in a fixed order.
type Set struct {
	Parser       InputParser
	Runoff       RunoffKernel
	Routing      RoutingKernel
	MassBalance  MassBalanceKernel
	Stats        StatsKernel
	Report       ReportWriter
}

// Reference returns a Set backed by this package's deterministic
// reference implementations — not physically accurate, but sufficient
// to exercise the full lifecycle and satisfy the testable properties of
// spec.md §8. Callers needing real physics supply their own Set.
func Reference() *Set {
	return &Set{
		Parser:      &StubParser{},
		Runoff:      &LinearRunoff{},
		Routing:     &LinearReservoirRouting{threads: 1},
		MassBalance: &AccumulatingMassBalance{},
		Stats:       &AccumulatingStats{},
		Report:      &TextReportWriter{},
	}
}
