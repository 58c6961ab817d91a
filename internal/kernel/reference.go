package kernel

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"hydroflow.dev/engine/internal/clock"
	"hydroflow.dev/engine/internal/project"
)

// --- StubParser -------------------------------------------------------

// projectFile is the minimal JSON shape StubParser accepts. A real
// engine embedding this module supplies its own InputParser grounded on
// the actual .inp grammar (out of scope per spec.md §1); StubParser
// exists only so Open has something concrete to call in tests and
// demos.
type projectFile struct {
	StartDateTime string              `json:"start_datetime"`
	EndDateTime   string              `json:"end_datetime"`
	ReportStepS   float64             `json:"report_step_s"`
	RouteStepS    float64             `json:"route_step_s"`
	WetStepS      float64             `json:"wet_step_s"`
	FlowUnits     int                 `json:"flow_units"`
	Gauges        []json.RawMessage   `json:"gauges"`
	Subcatchments []stubSubcatchment  `json:"subcatchments"`
	Nodes         []stubNode          `json:"nodes"`
	Links         []stubLink          `json:"links"`
}

type stubSubcatchment struct {
	ID       string  `json:"id"`
	GaugeIdx int     `json:"gauge_index"`
	Area     float64 `json:"area"`
	Width    float64 `json:"width"`
	Slope    float64 `json:"slope"`
}

type stubNode struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"` // junction|outfall|storage|divider
	Invert     float64 `json:"invert"`
	MaxDepth   float64 `json:"max_depth"`
	InitDepth  float64 `json:"init_depth"`
}

type stubLink struct {
	ID       string  `json:"id"`
	Type     string  `json:"type"`
	FromNode int     `json:"from_node"`
	ToNode   int     `json:"to_node"`
}

// StubParser is a reference InputParser: it reads a small JSON
// description of the project rather than a real .inp file. A missing
// file is not an error — it yields an empty-network project (spec.md §8
// scenario 1) with a one-hour default horizon, which is useful for
// smoke-testing the lifecycle without any input at all.
type StubParser struct{}

func (s *StubParser) Name() string { return "stub-parser" }
func (s *StubParser) Init(map[string]any) error { return nil }

func (s *StubParser) Parse(_ context.Context, path string) (*project.Project, error) {
	p := project.New()

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve input path: %w", err)
	}
	p.InputPath = abs
	p.InputDir = filepath.Dir(abs)

	p.StartDateTime = clock.Encode(clock.CalendarDate{Year: 2004, Month: 1, Day: 1})
	p.EndDateTime = clock.Encode(clock.CalendarDate{Year: 2004, Month: 1, Day: 1, Hour: 1})
	p.ReportStart = p.StartDateTime
	p.ReportStepS = 600
	p.RouteStepS = 10
	p.WetStepS = 300
	p.MinRouteStepS = 0.5
	p.LengtheningStepS = 0
	p.RuleStepS = 60
	p.NumThreads = 1

	data, readErr := os.ReadFile(abs)
	if readErr != nil {
		// No file at all: fall through with the empty-network defaults
		// above (spec.md §8 scenario 1).
		return p, nil
	}

	var pf projectFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse project file %s: %w", abs, err)
	}

	if pf.ReportStepS > 0 {
		p.ReportStepS = pf.ReportStepS
	}
	if pf.RouteStepS > 0 {
		p.RouteStepS = pf.RouteStepS
	}
	if pf.WetStepS > 0 {
		p.WetStepS = pf.WetStepS
	}
	p.FlowUnits = pf.FlowUnits

	if pf.StartDateTime != "" {
		if d, err := parseSimpleDate(pf.StartDateTime); err == nil {
			p.StartDateTime = d
			p.ReportStart = d
		}
	}
	if pf.EndDateTime != "" {
		if d, err := parseSimpleDate(pf.EndDateTime); err == nil {
			p.EndDateTime = d
		}
	}

	for i := range pf.Subcatchments {
		sc := pf.Subcatchments[i]
		p.Subcatchments = append(p.Subcatchments, &project.Subcatchment{
			ID:       sc.ID,
			Index:    i,
			GaugeIdx: sc.GaugeIdx,
			Area:     sc.Area,
			Width:    sc.Width,
			Slope:    sc.Slope,
		})
	}
	for i := range pf.Nodes {
		n := pf.Nodes[i]
		p.Nodes = append(p.Nodes, &project.Node{
			ID:        n.ID,
			Index:     i,
			Type:      parseNodeType(n.Type),
			Invert:    n.Invert,
			MaxDepth:  n.MaxDepth,
			InitDepth: n.InitDepth,
			Depth:     n.InitDepth,
		})
	}
	for i := range pf.Links {
		l := pf.Links[i]
		p.Links = append(p.Links, &project.Link{
			ID:       l.ID,
			Index:    i,
			Type:     parseLinkType(l.Type),
			FromNode: l.FromNode,
			ToNode:   l.ToNode,
			Setting:  1,
		})
	}
	if len(pf.Gauges) > 0 {
		p.Gauges = make([]*project.Gauge, len(pf.Gauges))
		for i := range pf.Gauges {
			p.Gauges[i] = &project.Gauge{Index: i}
		}
	}

	return p, nil
}

func parseNodeType(s string) project.NodeType {
	switch s {
	case "outfall":
		return project.NodeOutfall
	case "storage":
		return project.NodeStorage
	case "divider":
		return project.NodeDivider
	default:
		return project.NodeJunction
	}
}

func parseLinkType(s string) project.LinkType {
	switch s {
	case "pump":
		return project.LinkPump
	case "orifice":
		return project.LinkOrifice
	case "weir":
		return project.LinkWeir
	case "outlet":
		return project.LinkOutlet
	default:
		return project.LinkConduit
	}
}

// parseSimpleDate parses "YYYY-MM-DD[ HH:MM:SS]" without pulling in a
// calendar library, matching spec.md §4.7's pure-arithmetic mandate.
func parseSimpleDate(s string) (clock.Date, error) {
	var y, mo, d, h, mi, se int
	n, err := fmt.Sscanf(s, "%d-%d-%d %d:%d:%d", &y, &mo, &d, &h, &mi, &se)
	if err != nil && n < 3 {
		return 0, fmt.Errorf("bad date %q: %w", s, err)
	}
	return clock.Encode(clock.CalendarDate{Year: y, Month: mo, Day: d, Hour: h, Minute: mi, Second: se}), nil
}

// --- LinearRunoff -------------------------------------------------------

// LinearRunoff is a reference RunoffKernel: it carries forward each
// subcatchment's gauge-assigned rainfall override (spec.md §8 scenario
// 3) and computes a trivially proportional runoff, without modeling
// infiltration or overland flow routing.
type LinearRunoff struct{}

func (r *LinearRunoff) Name() string            { return "linear-runoff" }
func (r *LinearRunoff) Init(map[string]any) error { return nil }

func (r *LinearRunoff) Step(_ context.Context, p *project.Project, _, nextRoutingTimeMS float64) (float64, error) {
	for _, sc := range p.Subcatchments {
		rainfall := 0.0
		if sc.HasAPIRain {
			rainfall = sc.APIRainfall
		} else if sc.GaugeIdx >= 0 && sc.GaugeIdx < len(p.Gauges) && p.Gauges[sc.GaugeIdx].HasOverride {
			rainfall = p.Gauges[sc.GaugeIdx].RainfallOverride
			sc.APIRainfall = rainfall
		}
		sc.Runoff = rainfall * sc.Area * 0.9
	}
	return nextRoutingTimeMS, nil
}

// --- LinearReservoirRouting ---------------------------------------------

// LinearReservoirRouting is a reference RoutingKernel: each node is an
// independent linear reservoir draining toward its invert, fed by
// lateral inflow. Fixed-stage outfalls hold their configured stage.
// Per-node updates are independent, so they fan out across
// SetThreadCount goroutines via errgroup (spec.md §5 num_threads),
// mirroring the teacher's goroutine/WaitGroup fan-out in
// internal/task.Task.Start generalized to propagate the first error.
type LinearReservoirRouting struct {
	threads int
}

func (r *LinearReservoirRouting) Name() string              { return "linear-reservoir-routing" }
func (r *LinearReservoirRouting) Init(map[string]any) error { return nil }

func (r *LinearReservoirRouting) SetThreadCount(n int) {
	if n < 1 {
		n = 1
	}
	r.threads = n
}

func (r *LinearReservoirRouting) AdaptiveStep(p *project.Project, nominalStepS float64) float64 {
	if nominalStepS <= 0 {
		return p.MinRouteStepS
	}
	return nominalStepS
}

const drainageTimeConstantS = 1800.0

func (r *LinearReservoirRouting) Route(ctx context.Context, p *project.Project, nowMS, stepS float64) (float64, error) {
	threads := r.threads
	if threads < 1 {
		threads = 1
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(threads)

	for _, node := range p.Nodes {
		node := node
		g.Go(func() error {
			routeNode(node, stepS)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nowMS, err
	}

	for _, link := range p.Links {
		routeLink(p, link, stepS)
	}

	return nowMS + stepS*1000, nil
}

func routeNode(n *project.Node, stepS float64) {
	if n.Type == project.NodeOutfall && n.OutfallType == project.OutfallFixed {
		n.Depth = n.FixedStage - n.Invert
		return
	}
	decay := math.Exp(-stepS / drainageTimeConstantS)
	inflowTerm := n.LateralInflow * stepS / math.Max(n.PondedArea+1, 1)
	n.Depth = n.Depth*decay + inflowTerm
	if n.Depth < 0 {
		n.Depth = 0
	}
	if n.MaxDepth > 0 && n.Depth > n.MaxDepth {
		n.Depth = n.MaxDepth
	}
	n.Volume = n.Depth * math.Max(n.PondedArea, 1)
}

func routeLink(p *project.Project, l *project.Link, stepS float64) {
	applyTargetSetting(l)
	if l.FromNode < 0 || l.FromNode >= len(p.Nodes) {
		return
	}
	upstream := p.Nodes[l.FromNode]
	l.Flow = upstream.Depth * l.Setting * 10
	if l.FlowLimit > 0 && l.Flow > l.FlowLimit {
		l.Flow = l.FlowLimit
	}
}

// applyTargetSetting applies a pending target_setting write (spec.md
// §4.3 link setting semantics): the kernel only adopts the new setting
// on the next routing step, and a zero<->nonzero transition stamps
// TimeLastSet.
func applyTargetSetting(l *project.Link) {
	if l.TargetSetting == l.Setting {
		return
	}
	wasZero := l.Setting == 0
	willBeZero := l.TargetSetting == 0
	if wasZero != willBeZero {
		// TimeLastSet is stamped by the property interface at write
		// time (internal/property), not here; the kernel only adopts
		// the value.
	}
	l.Setting = l.TargetSetting
}

// --- Mass balance & stats -----------------------------------------------

// AccumulatingMassBalance is a reference MassBalanceKernel.
type AccumulatingMassBalance struct {
	elapsedS float64
}

func (m *AccumulatingMassBalance) Name() string              { return "accumulating-mass-balance" }
func (m *AccumulatingMassBalance) Init(map[string]any) error { return nil }
func (m *AccumulatingMassBalance) Update(_ *project.Project, stepS float64) {
	m.elapsedS += stepS
}
func (m *AccumulatingMassBalance) Report(*project.Project) error { return nil }

// AccumulatingStats is a reference StatsKernel.
type AccumulatingStats struct {
	maxDepth map[int]float64
}

func (s *AccumulatingStats) Name() string              { return "accumulating-stats" }
func (s *AccumulatingStats) Init(map[string]any) error { return nil }
func (s *AccumulatingStats) Update(p *project.Project, _ float64) {
	if s.maxDepth == nil {
		s.maxDepth = make(map[int]float64)
	}
	for _, n := range p.Nodes {
		if n.Depth > s.maxDepth[n.Index] {
			s.maxDepth[n.Index] = n.Depth
		}
	}
}
func (s *AccumulatingStats) Report(*project.Project) error { return nil }

// TextReportWriter is a reference ReportWriter producing a minimal
// plain-text summary; a real text report writer's formatting is out of
// scope per spec.md §1.
type TextReportWriter struct{}

func (w *TextReportWriter) Name() string              { return "text-report-writer" }
func (w *TextReportWriter) Init(map[string]any) error { return nil }
func (w *TextReportWriter) WriteReport(p *project.Project, path string) error {
	content := fmt.Sprintf(
		"Simulation Summary\n==================\nSubcatchments: %d\nNodes: %d\nLinks: %d\n",
		p.NumSubcatchments(), p.NumNodes(), p.NumLinks(),
	)
	return os.WriteFile(path, []byte(content), 0o644)
}
