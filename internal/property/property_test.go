package property

import (
	"testing"

	"hydroflow.dev/engine/internal/clock"
	"hydroflow.dev/engine/internal/errs"
	"hydroflow.dev/engine/internal/project"
)

func newTestProject() *project.Project {
	p := project.New()
	p.Nodes = append(p.Nodes, &project.Node{Index: 0, Type: project.NodeJunction, Invert: 10, Depth: 2})
	p.Nodes = append(p.Nodes, &project.Node{Index: 1, Type: project.NodeOutfall, Invert: 0, OutfallType: project.OutfallFixed, FixedStage: 3})
	p.Links = append(p.Links, &project.Link{Index: 0, FromNode: 0, ToNode: 1, Setting: 1, TargetSetting: 1})
	p.Subcatchments = append(p.Subcatchments, &project.Subcatchment{Index: 0, Area: 5})
	p.Gauges = append(p.Gauges, &project.Gauge{Index: 0})
	return p
}

func TestGetNodeHeadComputesInvertPlusDepth(t *testing.T) {
	in := New()
	p := newTestProject()
	v, ec := in.Get(p, Node, NodeHead, 0, 0, US, CFS)
	if ec != errs.OK {
		t.Fatalf("unexpected error: %v", ec)
	}
	if v != 12 {
		t.Errorf("expected head 12, got %v", v)
	}
}

func TestGetRejectsBadObjectIndex(t *testing.T) {
	in := New()
	p := newTestProject()
	_, ec := in.Get(p, Node, NodeHead, 99, 0, US, CFS)
	if ec != errs.ErrAPIObjectIndex {
		t.Errorf("expected ErrAPIObjectIndex, got %v", ec)
	}
}

func TestGetRejectsUnknownPropertyCode(t *testing.T) {
	in := New()
	p := newTestProject()
	_, ec := in.Get(p, Node, Code(9999), 0, 0, US, CFS)
	if ec != errs.ErrAPIPropertyCode {
		t.Errorf("expected ErrAPIPropertyCode, got %v", ec)
	}
}

func TestSetRejectsPreStartOnlyPropertyDuringRun(t *testing.T) {
	in := New()
	p := newTestProject()
	ec := in.Set(p, Node, NodeInvert, 0, 0, 20, US, CFS, PhaseRunning, 0)
	if ec != errs.ErrAPIPropertyLocked {
		t.Errorf("expected ErrAPIPropertyLocked, got %v", ec)
	}
}

func TestSetAllowsPreStartOnlyPropertyBeforeStart(t *testing.T) {
	in := New()
	p := newTestProject()
	ec := in.Set(p, Node, NodeInvert, 0, 0, 20, US, CFS, PhasePreStart, 0)
	if ec != errs.OK {
		t.Fatalf("unexpected error: %v", ec)
	}
	if p.Nodes[0].Invert != 20 {
		t.Errorf("expected invert 20, got %v", p.Nodes[0].Invert)
	}
}

func TestSetLinkTargetSettingStampsTimeLastSet(t *testing.T) {
	in := New()
	p := newTestProject()
	now := clock.Encode(clock.CalendarDate{Year: 2004, Month: 1, Day: 2})
	// Setting starts at 1, so a target of 0 is a nonzero-to-zero change.
	ec := in.Set(p, Link, LinkTargetSetting, 0, 0, 0, US, CFS, PhaseRunning, now)
	if ec != errs.OK {
		t.Fatalf("unexpected error: %v", ec)
	}
	if p.Links[0].TargetSetting != 0 {
		t.Errorf("expected target setting 0, got %v", p.Links[0].TargetSetting)
	}
	if p.Links[0].TimeLastSet != now {
		t.Errorf("expected TimeLastSet stamped to %v, got %v", now, p.Links[0].TimeLastSet)
	}
}

func TestGetFlowConvertsByFlowUnits(t *testing.T) {
	in := New()
	p := newTestProject()
	p.Links[0].Flow = 10 // internal CFS

	cfs, _ := in.Get(p, Link, LinkFlow, 0, 0, US, CFS)
	cms, _ := in.Get(p, Link, LinkFlow, 0, 0, US, CMS)
	if cfs != 10 {
		t.Errorf("expected 10 cfs, got %v", cfs)
	}
	want := ToUserFlow(10, CMS)
	if cms != want {
		t.Errorf("expected %v cms, got %v", want, cms)
	}
}

func TestGetScalarConvertsBySystemForSI(t *testing.T) {
	in := New()
	p := newTestProject()
	p.Nodes[0].MaxDepth = 10 // feet

	us, _ := in.Get(p, Node, NodeMaxDepth, 0, 0, US, CFS)
	si, _ := in.Get(p, Node, NodeMaxDepth, 0, 0, SI, CFS)
	if us != 10 {
		t.Errorf("expected 10 ft in US, got %v", us)
	}
	if si != 10*0.3048 {
		t.Errorf("expected %v m in SI, got %v", 10*0.3048, si)
	}
}

func TestSetOutfallStageRejectsNonOutfallNode(t *testing.T) {
	in := New()
	p := newTestProject()
	ec := in.Set(p, Node, NodeOutfallStage, 0, 0, 5, US, CFS, PhaseRunning, 0)
	if ec != errs.ErrAPIObjectType {
		t.Errorf("expected ErrAPIObjectType for junction node, got %v", ec)
	}
}

func TestSetGaugeRainfallWritableInBothPreStartAndRunning(t *testing.T) {
	in := New()
	p := newTestProject()
	if ec := in.Set(p, Gauge, GageRainfall, 0, 0, 1.5, US, CFS, PhasePreStart, 0); ec != errs.OK {
		t.Fatalf("pre-start set failed: %v", ec)
	}
	if ec := in.Set(p, Gauge, GageRainfall, 0, 0, 2.5, US, CFS, PhaseRunning, 0); ec != errs.OK {
		t.Fatalf("running set failed: %v", ec)
	}
	if !p.Gauges[0].HasOverride || p.Gauges[0].RainfallOverride != 2.5 {
		t.Errorf("expected override 2.5, got %+v", p.Gauges[0])
	}
}

func TestSetNumThreadsRejectsNonPositive(t *testing.T) {
	in := New()
	p := newTestProject()
	ec := in.Set(p, System, SysNumThreads, 0, 0, 0, US, CFS, PhasePreStart, 0)
	if ec != errs.ErrAPIPropertyValue {
		t.Errorf("expected ErrAPIPropertyValue, got %v", ec)
	}
}

func TestSetRouteStepRejectsNonPositive(t *testing.T) {
	in := New()
	p := newTestProject()
	for _, v := range []float64{0, -5} {
		ec := in.Set(p, System, SysRouteStep, 0, 0, v, US, CFS, PhasePreStart, 0)
		if ec != errs.ErrAPIPropertyValue {
			t.Errorf("Set(SysRouteStep, %v) = %v, want ErrAPIPropertyValue", v, ec)
		}
	}
}

func TestSetRouteStepWritableDuringRun(t *testing.T) {
	in := New()
	p := newTestProject()
	ec := in.Set(p, System, SysRouteStep, 0, 0, 5, US, CFS, PhaseRunning, 0)
	if ec != errs.OK {
		t.Fatalf("expected SysRouteStep writable while running, got %v", ec)
	}
	if p.RouteStepS != 5 {
		t.Errorf("expected RouteStepS 5, got %v", p.RouteStepS)
	}
}

func TestSetOutfallStageConvertsOutfallTypeToFixed(t *testing.T) {
	in := New()
	p := newTestProject()
	p.Nodes = append(p.Nodes, &project.Node{Index: 2, Type: project.NodeOutfall, OutfallType: project.OutfallFree})

	ec := in.Set(p, Node, NodeOutfallStage, 2, 0, 7, US, CFS, PhaseRunning, 0)
	if ec != errs.OK {
		t.Fatalf("unexpected error: %v", ec)
	}
	if p.Nodes[2].OutfallType != project.OutfallFixed {
		t.Errorf("expected OutfallType converted to OutfallFixed, got %v", p.Nodes[2].OutfallType)
	}
	if p.Nodes[2].FixedStage != 7 {
		t.Errorf("expected FixedStage 7, got %v", p.Nodes[2].FixedStage)
	}
}

func TestObjectTypeForCodeRangesMatchTableConstants(t *testing.T) {
	cases := []struct {
		code Code
		want ObjectType
	}{
		{SysFlowUnits, System},
		{GageRainfall, Gauge},
		{SubcatchRunoff, Subcatchment},
		{NodeVolume, Node},
		{LinkDepth, Link},
	}
	for _, c := range cases {
		if got := ObjectTypeForCode(c.code); got != c.want {
			t.Errorf("ObjectTypeForCode(%d) = %v, want %v", c.code, got, c.want)
		}
	}
}
