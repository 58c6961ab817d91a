// Package run implements the Run Facade (spec.md §4.2): a one-call
// wrapper over internal/lifecycle.Engine's Open/Start/Step/End/Report
// sequence for callers who don't need fine-grained stepwise control.
// It does not call Close: the returned engine is left ENDED and the
// caller closes it.
//
// Grounded on the teacher's cmd package's single-call command wrappers
// (e.g. runStart's one-shot client.Start/fmt.Fprintln sequence): Run
// and RunWithCallback fold a multi-step collaborator interaction into
// one function a CLI command or embedding program can call directly.
package run

import (
	"hydroflow.dev/engine/internal/errs"
	"hydroflow.dev/engine/internal/lifecycle"
	"hydroflow.dev/engine/internal/property"
)

// Options configures a single facade-driven simulation run.
type Options struct {
	InputPath  string
	ReportPath string
	OutputPath string

	// SaveResults requests a binary results file at OutputPath; if false,
	// OutputPath is ignored and no results file is written.
	SaveResults bool

	HotstartLoadPath string
	HotstartSaves    []lifecycle.HotstartSave

	ReportVars *ReportVars
}

// ReportVars overrides the engine's default per-class attribute set
// written to the results file (internal/lifecycle.Engine.SetReportVars).
type ReportVars struct {
	Subcatch, Node, Link, Sys []property.Code
}

// Run executes one complete simulation: Open, Start, Step until the
// horizon is reached, End, and Report, in that fixed order, returning
// the first non-OK code encountered. The caller owns Close.
func Run(opts Options) (*lifecycle.Engine, errs.Code) {
	return RunWithCallback(opts, nil)
}

// RunWithCallback is Run, but invokes cb after every routing step with
// the simulation's current progress fraction ([0,1]), unconditionally —
// once per step, not rate-limited. This is deliberately a separate path
// from internal/lifecycle.Engine.RegisterProgressCallback, which caps
// callback frequency to a wall-clock rate suited to a UI progress bar;
// RunWithCallback's contract is "exactly once per step", suited to a
// caller that wants to observe every step's state (e.g. a test or a
// scripted batch driver).
func RunWithCallback(opts Options, cb func(progress float64)) (*lifecycle.Engine, errs.Code) {
	e := lifecycle.New(nil)

	if ec := e.Open(opts.InputPath, opts.ReportPath, opts.OutputPath); ec != errs.OK {
		return e, ec
	}

	if opts.HotstartLoadPath != "" || len(opts.HotstartSaves) > 0 {
		e.ConfigureHotstart(opts.HotstartLoadPath, opts.HotstartSaves)
	}

	if opts.ReportVars != nil {
		e.SetReportVars(opts.ReportVars.Subcatch, opts.ReportVars.Node, opts.ReportVars.Link, opts.ReportVars.Sys)
	}

	if ec := e.Start(opts.SaveResults); ec != errs.OK {
		return e, ec
	}

	var elapsed float64
	for {
		if ec := e.Step(&elapsed); ec != errs.OK {
			return e, ec
		}
		if cb != nil {
			cb(e.Progress())
		}
		if elapsed == 0 {
			break
		}
	}

	if ec := e.End(); ec != errs.OK {
		return e, ec
	}
	if ec := e.Report(); ec != errs.OK {
		return e, ec
	}

	return e, errs.OK
}
