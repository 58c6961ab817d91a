// Package metrics implements Prometheus metrics for the simulation engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StepsTotal counts routing steps taken by run ID.
	StepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_steps_total",
			Help: "Total number of routing steps taken",
		},
		[]string{"run"},
	)

	// ReportPeriodsTotal counts reporting periods written to the results file.
	ReportPeriodsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_report_periods_total",
			Help: "Total number of reporting periods written to the results file",
		},
		[]string{"run"},
	)

	// NonConvergenceTotal counts routing steps that failed to converge.
	NonConvergenceTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_nonconvergence_total",
			Help: "Total number of routing steps that failed to converge",
		},
		[]string{"run"},
	)

	// HotstartSavesTotal counts periodic hot-start snapshots written.
	HotstartSavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_hotstart_saves_total",
			Help: "Total number of hot-start snapshots written",
		},
		[]string{"run"},
	)

	// RoutingStepSeconds measures the wall-clock duration of a single
	// routing step, by phase (runoff, routing, reporting).
	RoutingStepSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engine_routing_step_seconds",
			Help:    "Wall-clock duration of one routing step, by phase",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
		},
		[]string{"run", "phase"},
	)

	// SimulationProgress tracks fraction of total_duration_ms elapsed, [0,1].
	SimulationProgress = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "engine_simulation_progress_ratio",
			Help: "Fraction of the simulation horizon elapsed, in [0,1]",
		},
		[]string{"run"},
	)

	// RunState tracks the lifecycle state of a run (see
	// internal/lifecycle.State), 0=uninitialized..4=closed.
	RunState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "engine_run_state",
			Help: "Current lifecycle state of a run (0=uninitialized,1=open,2=started,3=ended,4=closed)",
		},
		[]string{"run"},
	)

	// MassBalanceError tracks the continuity error percentage reported at
	// End, by balance kind (runoff, flow routing, quality routing).
	MassBalanceError = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "engine_mass_balance_error_percent",
			Help: "Continuity error percentage reported at run end",
		},
		[]string{"run", "balance"},
	)
)
