// Package property implements the typed, table-dispatched get/set
// surface over every observable simulation property (spec.md §4.3), and
// the unit-conversion table its read/write contract depends on.
//
// Dispatch is a single indexed lookup into a table of records — exactly
// the design note in spec.md §9 ("Dispatch on property codes") — rather
// than a hand-written switch, grounded on the teacher's registration-
// table pattern (its pkg/plugin Registry).
package property

import (
	"sync"

	"hydroflow.dev/engine/internal/clock"
	"hydroflow.dev/engine/internal/errs"
	"hydroflow.dev/engine/internal/project"
)

func clockDate(v float64) clock.Date { return clock.Date(v) }

// Interface is the typed get/set surface over a Project. It holds no
// simulation state of its own; Phase is supplied by the caller (the
// lifecycle engine) on every Set call, and the current time (for
// stamping TimeLastSet) is supplied by the caller too, keeping this
// package free of any dependency on internal/lifecycle or internal/clock
// beyond the Date type.
type Interface struct {
	mu     sync.RWMutex
	system map[Code]record
	gauge  map[Code]record
	subc   map[Code]record
	node   map[Code]record
	link   map[Code]record
}

// New builds the fully-populated dispatch table, one record per property
// code per ObjectType, as described in the package doc.
func New() *Interface {
	return &Interface{
		system: sysTable(),
		gauge:  gaugeTable(),
		subc:   subcatchTable(),
		node:   nodeTable(),
		link:   linkTable(),
	}
}

func (in *Interface) tableFor(ot ObjectType) map[Code]record {
	switch ot {
	case System:
		return in.system
	case Gauge:
		return in.gauge
	case Subcatchment:
		return in.subc
	case Node:
		return in.node
	case Link:
		return in.link
	default:
		return nil
	}
}

// Get returns code's current value for object index (sub-indexed, e.g.
// a per-pollutant concentration slot) as a user-unit scalar, converting
// through the quantity-class table keyed by sys (for the UnitSystem) and
// flowUnits (for QtyFlow quantities), per spec.md §4.3's Read contract.
func (in *Interface) Get(p *project.Project, ot ObjectType, code Code, index, subIndex int, sys UnitSystem, flowUnits FlowUnits) (float64, errs.Code) {
	in.mu.RLock()
	defer in.mu.RUnlock()

	tbl := in.tableFor(ot)
	if tbl == nil {
		return 0, errs.ErrAPIObjectType
	}
	rec, ok := tbl[code]
	if !ok || rec.get == nil {
		return 0, errs.ErrAPIPropertyCode
	}
	raw, ec := rec.get(p, index, subIndex)
	if ec != errs.OK {
		return 0, ec
	}
	return convertOut(raw, rec.quantity, sys, flowUnits), errs.OK
}

// Set writes code's value for object index, converting the user-unit
// input back to internal units before dispatch, and enforcing the
// phase-gated write contract of spec.md §4.3: a property writable only
// "before Start" rejects writes once phase is PhaseRunning or later, and
// one writable only "during a run" rejects writes in PhasePreStart.
//
// A LinkTargetSetting write additionally stamps the link's TimeLastSet
// to now when the new target crosses zero relative to the link's current
// setting (zero to nonzero or nonzero to zero); a write between two
// nonzero values, or from zero to zero, leaves TimeLastSet unchanged.
func (in *Interface) Set(p *project.Project, ot ObjectType, code Code, index, subIndex int, value float64, sys UnitSystem, flowUnits FlowUnits, phase Phase, now clock.Date) errs.Code {
	in.mu.Lock()
	defer in.mu.Unlock()

	tbl := in.tableFor(ot)
	if tbl == nil {
		return errs.ErrAPIObjectType
	}
	rec, ok := tbl[code]
	if !ok {
		return errs.ErrAPIPropertyCode
	}
	if rec.set == nil {
		return errs.ErrAPIPropertyLocked
	}
	switch phase {
	case PhasePreStart:
		if !rec.writablePre {
			return errs.ErrAPIPropertyLocked
		}
	case PhaseRunning:
		if !rec.writableRun {
			return errs.ErrAPIPropertyLocked
		}
	default:
		return errs.ErrAPIPropertyLocked
	}

	internal := convertIn(value, rec.quantity, sys, flowUnits)
	ec := rec.set(p, index, subIndex, internal)
	if ec != errs.OK {
		return ec
	}
	if ot == Link && code == LinkTargetSetting {
		if index >= 0 && index < len(p.Links) {
			l := p.Links[index]
			if (l.Setting == 0) != (l.TargetSetting == 0) {
				l.TimeLastSet = now
			}
		}
	}
	return errs.OK
}

func convertOut(raw float64, qc QuantityClass, sys UnitSystem, fu FlowUnits) float64 {
	if qc == QtyFlow {
		return ToUserFlow(raw, fu)
	}
	return ToUserScalar(raw, qc, sys)
}

func convertIn(value float64, qc QuantityClass, sys UnitSystem, fu FlowUnits) float64 {
	if qc == QtyFlow {
		return FromUserFlow(value, fu)
	}
	return FromUserScalar(value, qc, sys)
}
