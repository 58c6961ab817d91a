package kernel

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"hydroflow.dev/engine/internal/project"
)

func TestStubParserEmptyNetworkWhenFileMissing(t *testing.T) {
	p, err := (&StubParser{}).Parse(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.NumSubcatchments() != 0 || p.NumNodes() != 0 || p.NumLinks() != 0 {
		t.Fatalf("expected empty network, got sc=%d n=%d l=%d", p.NumSubcatchments(), p.NumNodes(), p.NumLinks())
	}
	if p.TotalDurationMS() != 3600*1000 {
		t.Fatalf("expected default 1-hour horizon, got %v ms", p.TotalDurationMS())
	}
}

func TestStubParserReadsProjectFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "proj.json")
	pf := projectFile{
		StartDateTime: "2004-01-01 00:00:00",
		EndDateTime:   "2004-01-01 01:00:00",
		ReportStepS:   600,
		RouteStepS:    10,
		Nodes: []stubNode{
			{ID: "N1", Type: "junction", Invert: 10, MaxDepth: 5},
			{ID: "OUT", Type: "outfall", Invert: 0},
		},
		Links: []stubLink{{ID: "C1", Type: "conduit", FromNode: 0, ToNode: 1}},
	}
	data, _ := json.Marshal(pf)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := (&StubParser{}).Parse(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.NumNodes() != 2 || p.NumLinks() != 1 {
		t.Fatalf("expected 2 nodes/1 link, got %d/%d", p.NumNodes(), p.NumLinks())
	}
	if p.Nodes[1].Type != project.NodeOutfall {
		t.Errorf("expected second node to be an outfall")
	}
}

func TestLinearRunoffAppliesGaugeOverride(t *testing.T) {
	p := project.New()
	p.Gauges = append(p.Gauges, &project.Gauge{Index: 0, RainfallOverride: 3.6, HasOverride: true})
	p.Subcatchments = append(p.Subcatchments, &project.Subcatchment{ID: "S1", GaugeIdx: 0, Area: 10})

	rk := &LinearRunoff{}
	if _, err := rk.Step(context.Background(), p, 0, 1000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Subcatchments[0].APIRainfall != 3.6 {
		t.Errorf("expected subcatchment rainfall 3.6, got %v", p.Subcatchments[0].APIRainfall)
	}
}

func TestLinearReservoirRoutingHoldsFixedOutfallStage(t *testing.T) {
	p := project.New()
	p.Nodes = append(p.Nodes, &project.Node{
		Index: 0, Type: project.NodeOutfall, OutfallType: project.OutfallFixed,
		Invert: 5, FixedStage: 8,
	})

	routing := &LinearReservoirRouting{threads: 2}
	if _, err := routing.Route(context.Background(), p, 0, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := p.Nodes[0].Head(); got != 8 {
		t.Errorf("expected head 8, got %v", got)
	}
}

func TestReferenceSetIsFullyPopulated(t *testing.T) {
	set := Reference()
	if set.Parser == nil || set.Runoff == nil || set.Routing == nil ||
		set.MassBalance == nil || set.Stats == nil || set.Report == nil {
		t.Fatal("Reference() must populate every collaborator")
	}
}
