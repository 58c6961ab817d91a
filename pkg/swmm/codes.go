package swmm

import (
	"fmt"

	"hydroflow.dev/engine/internal/property"
)

// codeNames maps the string identifiers a run configuration's
// report_vars lists use (internal/config.ReportVarConfig) to the
// property.Code values internal/lifecycle.Engine.SetReportVars expects.
var codeNames = map[string]Code{
	"SysElapsedTime":     property.SysElapsedTime,
	"SysTotalSteps":      property.SysTotalSteps,
	"SysFlowUnits":       property.SysFlowUnits,
	"SubcatchRunoff":     property.SubcatchRunoff,
	"SubcatchRainfall":   property.SubcatchRainfall,
	"SubcatchArea":       property.SubcatchArea,
	"NodeDepth":          property.NodeDepth,
	"NodeHead":           property.NodeHead,
	"NodeVolume":         property.NodeVolume,
	"NodeInvert":         property.NodeInvert,
	"NodeLateralInflow":  property.NodeLateralInflow,
	"LinkFlow":           property.LinkFlow,
	"LinkDepth":          property.LinkDepth,
	"LinkSetting":        property.LinkSetting,
	"LinkTargetSetting":  property.LinkTargetSetting,
}

// ResolveCode looks up a report_vars string identifier, returning an
// error that names the identifier if it has no corresponding code.
func ResolveCode(name string) (Code, error) {
	c, ok := codeNames[name]
	if !ok {
		return 0, fmt.Errorf("swmm: unknown property code name %q", name)
	}
	return c, nil
}

// ResolveCodes resolves a list of string identifiers in order, stopping
// at the first unresolvable name.
func ResolveCodes(names []string) ([]Code, error) {
	codes := make([]Code, 0, len(names))
	for _, n := range names {
		c, err := ResolveCode(n)
		if err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, nil
}
