// Package project holds the process-wide simulation object graph: the
// counts and arrays of gauges, subcatchments, nodes, links, pollutants
// and the other input objects spec.md §3 describes as the "Project".
//
// Construction (parsing the .inp file and validating topology) is an
// external collaborator's job per spec.md §1 — this package only holds
// the resulting structures, with a minimal in-memory builder
// (internal/kernel.StubParser) good enough to drive the lifecycle end to
// end without a real parser.
package project

import "hydroflow.dev/engine/internal/clock"

// OutfallType distinguishes outfall boundary-condition kinds.
type OutfallType int

const (
	OutfallFree OutfallType = iota
	OutfallNormal
	OutfallFixed
	OutfallTidal
	OutfallTimeseries
)

// NodeType distinguishes the drainage-network node kinds named in the
// GLOSSARY.
type NodeType int

const (
	NodeJunction NodeType = iota
	NodeOutfall
	NodeStorage
	NodeDivider
)

// LinkType distinguishes conveyance kinds named in the GLOSSARY.
type LinkType int

const (
	LinkConduit LinkType = iota
	LinkPump
	LinkOrifice
	LinkWeir
	LinkOutlet
)

// Gauge is a rain gauge: a time series of rainfall intensity assignable
// to subcatchments.
type Gauge struct {
	ID             string
	Index          int
	RainfallOverride float64 // API-injected rainfall, in/hr or mm/hr
	HasOverride      bool
}

// Subcatchment is a land-area runoff-producing unit.
type Subcatchment struct {
	ID        string
	Index     int
	GaugeIdx  int // -1 if unassigned
	Area      float64
	Width     float64
	Slope     float64
	CurbLen   float64
	OutletNodeIdx int

	// Runtime state, mutated by the runoff kernel and the property interface.
	Runoff       float64 // current computed runoff, internal flow units (CFS)
	APIRainfall  float64
	APISnowfall  float64
	HasAPIRain   bool
	HasAPISnow   bool
}

// Node is a point in the drainage network.
type Node struct {
	ID    string
	Index int
	Type  NodeType

	Invert        float64
	MaxDepth      float64
	InitDepth     float64
	PondedArea    float64
	SurchargeDepth float64

	// Outfall-specific.
	OutfallType  OutfallType
	FixedStage   float64

	// Runtime state, mutated by the routing kernel and hot-start manager.
	Depth        float64
	LateralInflow float64
	Volume       float64
	PondedVolume float64
	PollutantConc []float64
}

// Head returns the node's current hydraulic head (invert + depth),
// matching the HEAD property semantics of spec.md §8 scenario 4.
func (n *Node) Head() float64 {
	return n.Invert + n.Depth
}

// Link is a conveyance between two nodes.
type Link struct {
	ID    string
	Index int
	Type  LinkType

	FromNode, ToNode int
	OffsetUp, OffsetDown float64
	LossCoeffs  [3]float64 // entry, exit, average
	SeepageRate float64
	FlowLimit   float64
	HasFlapGate bool

	// Runtime state.
	Flow         float64
	Depth        float64
	Setting      float64 // current valve position / pump speed, [0,1] or unbounded for pumps
	TargetSetting float64
	TimeLastSet  clock.Date
	PollutantConc []float64
}

// Pollutant describes a water-quality constituent tracked project-wide.
type Pollutant struct {
	ID    string
	Index int
	ConcUnits int // 0=mg/L, 1=ug/L, 2=count/L
}

// Project is the process-wide object graph. One instance exists per
// open simulation; ownership is enforced by the lifecycle controller's
// single-instance invariant (internal/lifecycle.Engine), not by any
// global mutable state in this package (see spec.md §9 design notes).
type Project struct {
	InputPath, ReportPath, OutputPath string
	InputDir                         string // absolute dir of InputPath, for relative-path resolution

	Gauges        []*Gauge
	Subcatchments []*Subcatchment
	Nodes         []*Node
	Links         []*Link
	Pollutants    []*Pollutant

	FlowUnits     int // 0..5 = CFS,GPM,MGD,CMS,LPS,MLD
	UnitSystem    int // 0=US, 1=SI

	StartDateTime  clock.Date
	EndDateTime    clock.Date
	ReportStart    clock.Date

	RouteStepS       float64
	ReportStepS      float64
	RuleStepS        float64
	MinRouteStepS    float64
	LengtheningStepS float64
	WetStepS         float64

	AllowPonding     bool
	InertiaDamping   int
	SurchargeMethod  int
	IgnoreRainfall   bool
	IgnoreRouting    bool
	IgnoreQuality    bool

	NumThreads int

	ReportControlsEnabled bool

	// ElapsedTimeDays and TotalSteps mirror the lifecycle engine's live
	// simulation-clock cursor (internal/lifecycle.Engine), refreshed once
	// per Step call, so the property table's SysElapsedTime/SysTotalSteps
	// getters have a Project field to read: the table only ever dispatches
	// through *Project, never through the engine itself.
	ElapsedTimeDays float64
	TotalSteps      int
}

// New returns an empty Project with sane zero-value defaults, mirroring
// what Open (spec.md §4.1) populates before the external parser fills in
// object arrays.
func New() *Project {
	return &Project{
		Gauges:        make([]*Gauge, 0),
		Subcatchments: make([]*Subcatchment, 0),
		Nodes:         make([]*Node, 0),
		Links:         make([]*Link, 0),
		Pollutants:    make([]*Pollutant, 0),
		NumThreads:    1,
	}
}

// NumSubcatchments, NumNodes, NumLinks, NumPollutants, NumGauges return
// the stable object counts used throughout the property interface and
// the binary output header.
func (p *Project) NumSubcatchments() int { return len(p.Subcatchments) }
func (p *Project) NumNodes() int         { return len(p.Nodes) }
func (p *Project) NumLinks() int         { return len(p.Links) }
func (p *Project) NumPollutants() int    { return len(p.Pollutants) }
func (p *Project) NumGauges() int        { return len(p.Gauges) }

// HasSubcatchments reports whether the project has any runoff-producing
// areas — gates whether Start initializes the runoff processor
// (spec.md §4.1).
func (p *Project) HasSubcatchments() bool { return len(p.Subcatchments) > 0 }

// HasNodes reports whether the project has a drainage network at all —
// gates whether Start initializes the routing processor.
func (p *Project) HasNodes() bool { return len(p.Nodes) > 0 }

// TotalDurationMS returns the simulation horizon length in milliseconds.
func (p *Project) TotalDurationMS() float64 {
	return clock.DiffMilliseconds(p.StartDateTime, p.EndDateTime)
}
