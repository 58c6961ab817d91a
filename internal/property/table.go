package property

import (
	"hydroflow.dev/engine/internal/errs"
	"hydroflow.dev/engine/internal/project"
)

// Phase is a lifecycle write-gate the caller passes into Set, mirroring
// the phase argument spec.md §4.3 describes for write contracts
// ("writable only before Start" / "writable only while running"). It is
// defined locally rather than imported from the lifecycle package to
// avoid a cycle: the lifecycle engine owns the real state machine and
// translates its own state into one of these values at the call site.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhasePreStart             // project is Open but Start has not run
	PhaseRunning              // Start has run, End has not
	PhaseEnded                // End has run
)

// getFunc reads a property's current value in internal units.
type getFunc func(p *project.Project, index, subIndex int) (float64, errs.Code)

// setFunc writes a property's value, given in internal units.
type setFunc func(p *project.Project, index, subIndex int, value float64) errs.Code

// record is one dispatch-table entry: the teacher's registration-table
// pattern (internal/kernel.Set, formerly pkg/plugin.Registry) generalized
// to per-property get/set closures instead of per-plugin instances.
type record struct {
	quantity     QuantityClass
	get          getFunc
	set          setFunc
	writablePre  bool // writable while PhasePreStart
	writableRun  bool // writable while PhaseRunning
}

func boundsErr(ok bool) errs.Code {
	if !ok {
		return errs.ErrAPIObjectIndex
	}
	return errs.OK
}

func sysTable() map[Code]record {
	return map[Code]record{
		SysStartDateTime: {quantity: QtyDays,
			get: func(p *project.Project, _, _ int) (float64, errs.Code) { return float64(p.StartDateTime), errs.OK },
			set: func(p *project.Project, _, _ int, v float64) errs.Code { p.StartDateTime = clockDate(v); return errs.OK },
			writablePre: true,
		},
		SysEndDateTime: {quantity: QtyDays,
			get: func(p *project.Project, _, _ int) (float64, errs.Code) { return float64(p.EndDateTime), errs.OK },
			set: func(p *project.Project, _, _ int, v float64) errs.Code { p.EndDateTime = clockDate(v); return errs.OK },
			writablePre: true,
		},
		SysReportStart: {quantity: QtyDays,
			get: func(p *project.Project, _, _ int) (float64, errs.Code) { return float64(p.ReportStart), errs.OK },
			set: func(p *project.Project, _, _ int, v float64) errs.Code { p.ReportStart = clockDate(v); return errs.OK },
			writablePre: true,
		},
		SysRouteStep: {quantity: QtySeconds,
			get: func(p *project.Project, _, _ int) (float64, errs.Code) { return p.RouteStepS, errs.OK },
			set: func(p *project.Project, _, _ int, v float64) errs.Code {
				if v <= 0 {
					return errs.ErrAPIPropertyValue
				}
				p.RouteStepS = v
				return errs.OK
			},
			writablePre: true,
			writableRun: true,
		},
		SysReportStep: {quantity: QtySeconds,
			get: func(p *project.Project, _, _ int) (float64, errs.Code) { return p.ReportStepS, errs.OK },
			set: func(p *project.Project, _, _ int, v float64) errs.Code { p.ReportStepS = v; return errs.OK },
			writablePre: true,
		},
		SysRuleStep: {quantity: QtySeconds,
			get: func(p *project.Project, _, _ int) (float64, errs.Code) { return p.RuleStepS, errs.OK },
			set: func(p *project.Project, _, _ int, v float64) errs.Code { p.RuleStepS = v; return errs.OK },
			writablePre: true,
		},
		SysMinRouteStep: {quantity: QtySeconds,
			get: func(p *project.Project, _, _ int) (float64, errs.Code) { return p.MinRouteStepS, errs.OK },
			set: func(p *project.Project, _, _ int, v float64) errs.Code { p.MinRouteStepS = v; return errs.OK },
			writablePre: true,
		},
		SysLengtheningStep: {quantity: QtySeconds,
			get: func(p *project.Project, _, _ int) (float64, errs.Code) { return p.LengtheningStepS, errs.OK },
			set: func(p *project.Project, _, _ int, v float64) errs.Code { p.LengtheningStepS = v; return errs.OK },
			writablePre: true,
		},
		SysAllowPonding: {quantity: QtyDimensionless,
			get: func(p *project.Project, _, _ int) (float64, errs.Code) { return boolToF(p.AllowPonding), errs.OK },
			set: func(p *project.Project, _, _ int, v float64) errs.Code { p.AllowPonding = v != 0; return errs.OK },
			writablePre: true,
		},
		SysInertiaDamping: {quantity: QtyDimensionless,
			get: func(p *project.Project, _, _ int) (float64, errs.Code) { return float64(p.InertiaDamping), errs.OK },
			set: func(p *project.Project, _, _ int, v float64) errs.Code { p.InertiaDamping = int(v); return errs.OK },
			writablePre: true,
		},
		SysSurchargeMethod: {quantity: QtyDimensionless,
			get: func(p *project.Project, _, _ int) (float64, errs.Code) { return float64(p.SurchargeMethod), errs.OK },
			set: func(p *project.Project, _, _ int, v float64) errs.Code { p.SurchargeMethod = int(v); return errs.OK },
			writablePre: true,
		},
		SysIgnoreRainfall: {quantity: QtyDimensionless,
			get: func(p *project.Project, _, _ int) (float64, errs.Code) { return boolToF(p.IgnoreRainfall), errs.OK },
			set: func(p *project.Project, _, _ int, v float64) errs.Code { p.IgnoreRainfall = v != 0; return errs.OK },
			writablePre: true,
		},
		SysIgnoreRouting: {quantity: QtyDimensionless,
			get: func(p *project.Project, _, _ int) (float64, errs.Code) { return boolToF(p.IgnoreRouting), errs.OK },
			set: func(p *project.Project, _, _ int, v float64) errs.Code { p.IgnoreRouting = v != 0; return errs.OK },
			writablePre: true,
		},
		SysIgnoreQuality: {quantity: QtyDimensionless,
			get: func(p *project.Project, _, _ int) (float64, errs.Code) { return boolToF(p.IgnoreQuality), errs.OK },
			set: func(p *project.Project, _, _ int, v float64) errs.Code { p.IgnoreQuality = v != 0; return errs.OK },
			writablePre: true,
		},
		SysNumThreads: {quantity: QtyCount,
			get: func(p *project.Project, _, _ int) (float64, errs.Code) { return float64(p.NumThreads), errs.OK },
			set: func(p *project.Project, _, _ int, v float64) errs.Code {
				n := int(v)
				if n < 1 {
					return errs.ErrAPIPropertyValue
				}
				p.NumThreads = n
				return errs.OK
			},
			writablePre: true, writableRun: true,
		},
		SysFlowUnits: {quantity: QtyDimensionless,
			get: func(p *project.Project, _, _ int) (float64, errs.Code) { return float64(p.FlowUnits), errs.OK },
		},
		SysElapsedTime: {quantity: QtyDays,
			get: func(p *project.Project, _, _ int) (float64, errs.Code) { return p.ElapsedTimeDays, errs.OK },
		},
		SysTotalSteps: {quantity: QtyCount,
			get: func(p *project.Project, _, _ int) (float64, errs.Code) { return float64(p.TotalSteps), errs.OK },
		},
	}
}

func gaugeTable() map[Code]record {
	return map[Code]record{
		GageRainfall: {quantity: QtyRainfallRate,
			get: func(p *project.Project, idx, _ int) (float64, errs.Code) {
				if idx < 0 || idx >= len(p.Gauges) {
					return 0, errs.ErrAPIObjectIndex
				}
				g := p.Gauges[idx]
				if g.HasOverride {
					return g.RainfallOverride, errs.OK
				}
				return 0, errs.OK
			},
			set: func(p *project.Project, idx, _ int, v float64) errs.Code {
				if idx < 0 || idx >= len(p.Gauges) {
					return errs.ErrAPIObjectIndex
				}
				p.Gauges[idx].RainfallOverride = v
				p.Gauges[idx].HasOverride = true
				return errs.OK
			},
			writablePre: true, writableRun: true,
		},
	}
}

func subcatchTable() map[Code]record {
	return map[Code]record{
		SubcatchArea: {quantity: QtyArea,
			get: func(p *project.Project, idx, _ int) (float64, errs.Code) {
				if idx < 0 || idx >= len(p.Subcatchments) {
					return 0, errs.ErrAPIObjectIndex
				}
				return p.Subcatchments[idx].Area, errs.OK
			},
			set: func(p *project.Project, idx, _ int, v float64) errs.Code {
				if idx < 0 || idx >= len(p.Subcatchments) {
					return errs.ErrAPIObjectIndex
				}
				p.Subcatchments[idx].Area = v
				return errs.OK
			},
			writablePre: true,
		},
		SubcatchWidth: {quantity: QtyLength,
			get: func(p *project.Project, idx, _ int) (float64, errs.Code) {
				if idx < 0 || idx >= len(p.Subcatchments) {
					return 0, errs.ErrAPIObjectIndex
				}
				return p.Subcatchments[idx].Width, errs.OK
			},
			set: func(p *project.Project, idx, _ int, v float64) errs.Code {
				if idx < 0 || idx >= len(p.Subcatchments) {
					return errs.ErrAPIObjectIndex
				}
				p.Subcatchments[idx].Width = v
				return errs.OK
			},
			writablePre: true,
		},
		SubcatchSlope: {quantity: QtyDimensionless,
			get: func(p *project.Project, idx, _ int) (float64, errs.Code) {
				if idx < 0 || idx >= len(p.Subcatchments) {
					return 0, errs.ErrAPIObjectIndex
				}
				return p.Subcatchments[idx].Slope, errs.OK
			},
			writablePre: true,
			set: func(p *project.Project, idx, _ int, v float64) errs.Code {
				if idx < 0 || idx >= len(p.Subcatchments) {
					return errs.ErrAPIObjectIndex
				}
				p.Subcatchments[idx].Slope = v
				return errs.OK
			},
		},
		SubcatchCurbLength: {quantity: QtyLength,
			get: func(p *project.Project, idx, _ int) (float64, errs.Code) {
				if idx < 0 || idx >= len(p.Subcatchments) {
					return 0, errs.ErrAPIObjectIndex
				}
				return p.Subcatchments[idx].CurbLen, errs.OK
			},
			writablePre: true,
			set: func(p *project.Project, idx, _ int, v float64) errs.Code {
				if idx < 0 || idx >= len(p.Subcatchments) {
					return errs.ErrAPIObjectIndex
				}
				p.Subcatchments[idx].CurbLen = v
				return errs.OK
			},
		},
		SubcatchRainfall: {quantity: QtyRainfallRate,
			get: func(p *project.Project, idx, _ int) (float64, errs.Code) {
				if idx < 0 || idx >= len(p.Subcatchments) {
					return 0, errs.ErrAPIObjectIndex
				}
				return p.Subcatchments[idx].APIRainfall, errs.OK
			},
			set: func(p *project.Project, idx, _ int, v float64) errs.Code {
				if idx < 0 || idx >= len(p.Subcatchments) {
					return errs.ErrAPIObjectIndex
				}
				sc := p.Subcatchments[idx]
				sc.APIRainfall = v
				sc.HasAPIRain = true
				return errs.OK
			},
			writableRun: true,
		},
		SubcatchAPISnowfall: {quantity: QtyLength,
			get: func(p *project.Project, idx, _ int) (float64, errs.Code) {
				if idx < 0 || idx >= len(p.Subcatchments) {
					return 0, errs.ErrAPIObjectIndex
				}
				return p.Subcatchments[idx].APISnowfall, errs.OK
			},
			set: func(p *project.Project, idx, _ int, v float64) errs.Code {
				if idx < 0 || idx >= len(p.Subcatchments) {
					return errs.ErrAPIObjectIndex
				}
				sc := p.Subcatchments[idx]
				sc.APISnowfall = v
				sc.HasAPISnow = true
				return errs.OK
			},
			writableRun: true,
		},
		SubcatchRunoff: {quantity: QtyFlow,
			get: func(p *project.Project, idx, _ int) (float64, errs.Code) {
				if idx < 0 || idx >= len(p.Subcatchments) {
					return 0, errs.ErrAPIObjectIndex
				}
				return p.Subcatchments[idx].Runoff, errs.OK
			},
		},
	}
}

func nodeTable() map[Code]record {
	return map[Code]record{
		NodeInvert: {quantity: QtyLength,
			get: func(p *project.Project, idx, _ int) (float64, errs.Code) {
				if idx < 0 || idx >= len(p.Nodes) {
					return 0, errs.ErrAPIObjectIndex
				}
				return p.Nodes[idx].Invert, errs.OK
			},
			writablePre: true,
			set: func(p *project.Project, idx, _ int, v float64) errs.Code {
				if idx < 0 || idx >= len(p.Nodes) {
					return errs.ErrAPIObjectIndex
				}
				p.Nodes[idx].Invert = v
				return errs.OK
			},
		},
		NodeMaxDepth: {quantity: QtyLength,
			get: func(p *project.Project, idx, _ int) (float64, errs.Code) {
				if idx < 0 || idx >= len(p.Nodes) {
					return 0, errs.ErrAPIObjectIndex
				}
				return p.Nodes[idx].MaxDepth, errs.OK
			},
			writablePre: true,
			set: func(p *project.Project, idx, _ int, v float64) errs.Code {
				if idx < 0 || idx >= len(p.Nodes) {
					return errs.ErrAPIObjectIndex
				}
				p.Nodes[idx].MaxDepth = v
				return errs.OK
			},
		},
		NodeInitDepth: {quantity: QtyLength,
			get: func(p *project.Project, idx, _ int) (float64, errs.Code) {
				if idx < 0 || idx >= len(p.Nodes) {
					return 0, errs.ErrAPIObjectIndex
				}
				return p.Nodes[idx].InitDepth, errs.OK
			},
			writablePre: true,
			set: func(p *project.Project, idx, _ int, v float64) errs.Code {
				if idx < 0 || idx >= len(p.Nodes) {
					return errs.ErrAPIObjectIndex
				}
				p.Nodes[idx].InitDepth = v
				return errs.OK
			},
		},
		NodePondedArea: {quantity: QtyArea,
			get: func(p *project.Project, idx, _ int) (float64, errs.Code) {
				if idx < 0 || idx >= len(p.Nodes) {
					return 0, errs.ErrAPIObjectIndex
				}
				return p.Nodes[idx].PondedArea, errs.OK
			},
			writablePre: true,
			set: func(p *project.Project, idx, _ int, v float64) errs.Code {
				if idx < 0 || idx >= len(p.Nodes) {
					return errs.ErrAPIObjectIndex
				}
				p.Nodes[idx].PondedArea = v
				return errs.OK
			},
		},
		NodeSurchargeDepth: {quantity: QtyLength,
			get: func(p *project.Project, idx, _ int) (float64, errs.Code) {
				if idx < 0 || idx >= len(p.Nodes) {
					return 0, errs.ErrAPIObjectIndex
				}
				return p.Nodes[idx].SurchargeDepth, errs.OK
			},
			writablePre: true,
			set: func(p *project.Project, idx, _ int, v float64) errs.Code {
				if idx < 0 || idx >= len(p.Nodes) {
					return errs.ErrAPIObjectIndex
				}
				p.Nodes[idx].SurchargeDepth = v
				return errs.OK
			},
		},
		NodeLateralInflow: {quantity: QtyFlow,
			get: func(p *project.Project, idx, _ int) (float64, errs.Code) {
				if idx < 0 || idx >= len(p.Nodes) {
					return 0, errs.ErrAPIObjectIndex
				}
				return p.Nodes[idx].LateralInflow, errs.OK
			},
			set: func(p *project.Project, idx, _ int, v float64) errs.Code {
				if idx < 0 || idx >= len(p.Nodes) {
					return errs.ErrAPIObjectIndex
				}
				p.Nodes[idx].LateralInflow = v
				return errs.OK
			},
			writableRun: true,
		},
		NodeHead: {quantity: QtyLength,
			get: func(p *project.Project, idx, _ int) (float64, errs.Code) {
				if idx < 0 || idx >= len(p.Nodes) {
					return 0, errs.ErrAPIObjectIndex
				}
				return p.Nodes[idx].Head(), errs.OK
			},
		},
		NodeDepth: {quantity: QtyLength,
			get: func(p *project.Project, idx, _ int) (float64, errs.Code) {
				if idx < 0 || idx >= len(p.Nodes) {
					return 0, errs.ErrAPIObjectIndex
				}
				return p.Nodes[idx].Depth, errs.OK
			},
		},
		NodeOutfallStage: {quantity: QtyLength,
			get: func(p *project.Project, idx, _ int) (float64, errs.Code) {
				if idx < 0 || idx >= len(p.Nodes) {
					return 0, errs.ErrAPIObjectIndex
				}
				n := p.Nodes[idx]
				if n.Type != project.NodeOutfall {
					return 0, errs.ErrAPIObjectType
				}
				return n.FixedStage, errs.OK
			},
			set: func(p *project.Project, idx, _ int, v float64) errs.Code {
				if idx < 0 || idx >= len(p.Nodes) {
					return errs.ErrAPIObjectIndex
				}
				n := p.Nodes[idx]
				if n.Type != project.NodeOutfall {
					return errs.ErrAPIObjectType
				}
				n.FixedStage = v
				n.OutfallType = project.OutfallFixed
				return errs.OK
			},
			writableRun: true,
		},
		NodeVolume: {quantity: QtyVolume,
			get: func(p *project.Project, idx, _ int) (float64, errs.Code) {
				if idx < 0 || idx >= len(p.Nodes) {
					return 0, errs.ErrAPIObjectIndex
				}
				return p.Nodes[idx].Volume, errs.OK
			},
		},
	}
}

func linkTable() map[Code]record {
	return map[Code]record{
		LinkOffsetUp: {quantity: QtyLength,
			get: func(p *project.Project, idx, _ int) (float64, errs.Code) {
				if idx < 0 || idx >= len(p.Links) {
					return 0, errs.ErrAPIObjectIndex
				}
				return p.Links[idx].OffsetUp, errs.OK
			},
			writablePre: true,
			set: func(p *project.Project, idx, _ int, v float64) errs.Code {
				if idx < 0 || idx >= len(p.Links) {
					return errs.ErrAPIObjectIndex
				}
				p.Links[idx].OffsetUp = v
				return errs.OK
			},
		},
		LinkOffsetDown: {quantity: QtyLength,
			get: func(p *project.Project, idx, _ int) (float64, errs.Code) {
				if idx < 0 || idx >= len(p.Links) {
					return 0, errs.ErrAPIObjectIndex
				}
				return p.Links[idx].OffsetDown, errs.OK
			},
			writablePre: true,
			set: func(p *project.Project, idx, _ int, v float64) errs.Code {
				if idx < 0 || idx >= len(p.Links) {
					return errs.ErrAPIObjectIndex
				}
				p.Links[idx].OffsetDown = v
				return errs.OK
			},
		},
		LinkLossEntry: {quantity: QtyDimensionless,
			get: func(p *project.Project, idx, _ int) (float64, errs.Code) {
				if idx < 0 || idx >= len(p.Links) {
					return 0, errs.ErrAPIObjectIndex
				}
				return p.Links[idx].LossCoeffs[0], errs.OK
			},
			writablePre: true,
			set: func(p *project.Project, idx, _ int, v float64) errs.Code {
				if idx < 0 || idx >= len(p.Links) {
					return errs.ErrAPIObjectIndex
				}
				p.Links[idx].LossCoeffs[0] = v
				return errs.OK
			},
		},
		LinkLossExit: {quantity: QtyDimensionless,
			get: func(p *project.Project, idx, _ int) (float64, errs.Code) {
				if idx < 0 || idx >= len(p.Links) {
					return 0, errs.ErrAPIObjectIndex
				}
				return p.Links[idx].LossCoeffs[1], errs.OK
			},
			writablePre: true,
			set: func(p *project.Project, idx, _ int, v float64) errs.Code {
				if idx < 0 || idx >= len(p.Links) {
					return errs.ErrAPIObjectIndex
				}
				p.Links[idx].LossCoeffs[1] = v
				return errs.OK
			},
		},
		LinkLossAvg: {quantity: QtyDimensionless,
			get: func(p *project.Project, idx, _ int) (float64, errs.Code) {
				if idx < 0 || idx >= len(p.Links) {
					return 0, errs.ErrAPIObjectIndex
				}
				return p.Links[idx].LossCoeffs[2], errs.OK
			},
			writablePre: true,
			set: func(p *project.Project, idx, _ int, v float64) errs.Code {
				if idx < 0 || idx >= len(p.Links) {
					return errs.ErrAPIObjectIndex
				}
				p.Links[idx].LossCoeffs[2] = v
				return errs.OK
			},
		},
		LinkSeepageRate: {quantity: QtyRainfallRate,
			get: func(p *project.Project, idx, _ int) (float64, errs.Code) {
				if idx < 0 || idx >= len(p.Links) {
					return 0, errs.ErrAPIObjectIndex
				}
				return p.Links[idx].SeepageRate, errs.OK
			},
			writablePre: true,
			set: func(p *project.Project, idx, _ int, v float64) errs.Code {
				if idx < 0 || idx >= len(p.Links) {
					return errs.ErrAPIObjectIndex
				}
				p.Links[idx].SeepageRate = v
				return errs.OK
			},
		},
		LinkFlowLimit: {quantity: QtyFlow,
			get: func(p *project.Project, idx, _ int) (float64, errs.Code) {
				if idx < 0 || idx >= len(p.Links) {
					return 0, errs.ErrAPIObjectIndex
				}
				return p.Links[idx].FlowLimit, errs.OK
			},
			writablePre: true,
			set: func(p *project.Project, idx, _ int, v float64) errs.Code {
				if idx < 0 || idx >= len(p.Links) {
					return errs.ErrAPIObjectIndex
				}
				p.Links[idx].FlowLimit = v
				return errs.OK
			},
		},
		LinkFlapGate: {quantity: QtyDimensionless,
			get: func(p *project.Project, idx, _ int) (float64, errs.Code) {
				if idx < 0 || idx >= len(p.Links) {
					return 0, errs.ErrAPIObjectIndex
				}
				return boolToF(p.Links[idx].HasFlapGate), errs.OK
			},
			writablePre: true,
			set: func(p *project.Project, idx, _ int, v float64) errs.Code {
				if idx < 0 || idx >= len(p.Links) {
					return errs.ErrAPIObjectIndex
				}
				p.Links[idx].HasFlapGate = v != 0
				return errs.OK
			},
		},
		LinkSetting: {quantity: QtyDimensionless,
			get: func(p *project.Project, idx, _ int) (float64, errs.Code) {
				if idx < 0 || idx >= len(p.Links) {
					return 0, errs.ErrAPIObjectIndex
				}
				return p.Links[idx].Setting, errs.OK
			},
		},
		// LinkTargetSetting's write path additionally stamps TimeLastSet;
		// see property.go's Set, which special-cases this code per
		// spec.md §4.3's "external override" action-record semantics.
		LinkTargetSetting: {quantity: QtyDimensionless,
			get: func(p *project.Project, idx, _ int) (float64, errs.Code) {
				if idx < 0 || idx >= len(p.Links) {
					return 0, errs.ErrAPIObjectIndex
				}
				return p.Links[idx].TargetSetting, errs.OK
			},
			set: func(p *project.Project, idx, _ int, v float64) errs.Code {
				if idx < 0 || idx >= len(p.Links) {
					return errs.ErrAPIObjectIndex
				}
				p.Links[idx].TargetSetting = v
				return errs.OK
			},
			writableRun: true,
		},
		LinkFlow: {quantity: QtyFlow,
			get: func(p *project.Project, idx, _ int) (float64, errs.Code) {
				if idx < 0 || idx >= len(p.Links) {
					return 0, errs.ErrAPIObjectIndex
				}
				return p.Links[idx].Flow, errs.OK
			},
		},
		LinkDepth: {quantity: QtyLength,
			get: func(p *project.Project, idx, _ int) (float64, errs.Code) {
				if idx < 0 || idx >= len(p.Links) {
					return 0, errs.ErrAPIObjectIndex
				}
				return p.Links[idx].Depth, errs.OK
			},
		},
	}
}

func boolToF(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
