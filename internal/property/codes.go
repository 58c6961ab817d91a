// Package property implements the typed, table-dispatched get/set
// surface over every observable simulation property (spec.md §4.3), and
// the unit-conversion table its read/write contract depends on.
//
// Dispatch is a single indexed lookup into a table of records — exactly
// the design note in spec.md §9 ("Dispatch on property codes") — rather
// than a hand-written switch, grounded on the teacher's registration-
// table pattern (its pkg/plugin Registry).
package property

// ObjectType identifies which object class a property code belongs to.
// The numeric ranges below let the legacy single-argument form
// (property code alone) dispatch unambiguously, as spec.md §4.3
// requires: system < 100, gauge 100-199, subcatchment 200-299, node
// 300-399, link 400-499.
type ObjectType int

const (
	System ObjectType = iota
	Gauge
	Subcatchment
	Node
	Link
)

// ObjectTypeForCode returns the ObjectType implied by a legacy,
// object-type-less property code, per the disjoint ranges in spec.md
// §4.3. Per spec.md §9's "Open question" note, the *corrected* form
// always keys dispatch on an explicit ObjectType (passed separately by
// callers); this helper exists only to support the legacy single-code
// lookup path.
func ObjectTypeForCode(code Code) ObjectType {
	switch {
	case code < 100:
		return System
	case code < 200:
		return Gauge
	case code < 300:
		return Subcatchment
	case code < 400:
		return Node
	default:
		return Link
	}
}

// Code is a property code, unique within its ObjectType's range.
type Code int

// System properties (< 100).
const (
	SysStartDateTime Code = iota
	SysEndDateTime
	SysReportStart
	SysRouteStep
	SysReportStep
	SysRuleStep
	SysMinRouteStep
	SysLengtheningStep
	SysAllowPonding
	SysInertiaDamping
	SysSurchargeMethod
	SysIgnoreRainfall
	SysIgnoreRouting
	SysIgnoreQuality
	SysNumThreads
	SysElapsedTime
	SysTotalSteps
	SysFlowUnits
)

// Gauge properties (100-199).
const (
	GageRainfall Code = 100 + iota
)

// Subcatchment properties (200-299).
const (
	SubcatchArea Code = 200 + iota
	SubcatchWidth
	SubcatchSlope
	SubcatchCurbLength
	SubcatchRainfall // alias of the assigned gauge's current rainfall, API-overridable
	SubcatchAPISnowfall
	SubcatchRunoff
)

// Node properties (300-399).
const (
	NodeInvert Code = 300 + iota
	NodeMaxDepth
	NodeInitDepth
	NodePondedArea
	NodeSurchargeDepth
	NodeLateralInflow
	NodeHead
	NodeDepth
	NodeOutfallStage
	NodeVolume
)

// Link properties (400-499).
const (
	LinkOffsetUp Code = 400 + iota
	LinkOffsetDown
	LinkLossEntry
	LinkLossExit
	LinkLossAvg
	LinkSeepageRate
	LinkFlowLimit
	LinkFlapGate
	LinkSetting
	LinkTargetSetting
	LinkFlow
	LinkDepth
)

// QuantityClass groups properties that share a unit-conversion rule.
type QuantityClass int

const (
	QtyDimensionless QuantityClass = iota
	QtyDays          // decimal-day Date values: never unit-converted
	QtySeconds
	QtyLength        // ft <-> m
	QtyArea          // acres/hectares <-> internal sq-ft (kept simple: ft^2 <-> m^2)
	QtyFlow          // uses FlowUnits, not UnitSystem
	QtyRainfallRate  // in/hr <-> mm/hr
	QtyVolume
	QtyCount
)
