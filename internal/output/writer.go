package output

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"hydroflow.dev/engine/internal/clock"
	"hydroflow.dev/engine/internal/errs"
)

// Spec is everything the Lifecycle Controller supplies up front to open
// a results file for writing: element names and counts, the reported
// attribute-code arrays per object class, and the object-property block
// (static per-object input values such as area, invert, or offsets, laid
// out by the caller in the order its own object arrays iterate).
type Spec struct {
	FlowUnits      FlowUnits
	PollutantUnits []PollutantUnits

	SubcatchNames []string
	NodeNames     []string
	LinkNames     []string
	PollutantNames []string

	SubcatchVars []int32
	NodeVars     []int32
	LinkVars     []int32
	SysVars      []int32

	// ObjectProperties is the flattened per-object input-property block
	// (spec.md §4.4's "per-object input properties"); this package does
	// not interpret its contents, only persists and replays the bytes.
	ObjectProperties []float32

	StartDate   clock.Date
	ReportStepS int32
}

// Writer appends reporting periods to a results file, matching the
// header/object-property/results/epilogue layout of spec.md §6. It is
// not safe for concurrent use; the lifecycle controller owns one Writer
// per open simulation, matching the single-writer invariant of §5.
type Writer struct {
	f      *os.File
	h      header
	errCtx *errs.Context

	nPeriods int32
}

// NewWriter creates (or truncates) path and writes the fixed header, the
// element-name table (IDPos), and the object-property block
// (ObjPropPos), leaving the file positioned at ResultsPos ready for
// WritePeriod calls.
func NewWriter(path string, spec Spec) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file %s: %w", path, err)
	}

	w := &Writer{
		f: f,
		h: header{
			engineVersion:  engineVersion,
			flowUnits:      spec.FlowUnits,
			nSubcatch:      int32(len(spec.SubcatchNames)),
			nNodes:         int32(len(spec.NodeNames)),
			nLinks:         int32(len(spec.LinkNames)),
			nPollutant:     int32(len(spec.PollutantNames)),
			pollutantUnits: spec.PollutantUnits,
			subcatchVars:   spec.SubcatchVars,
			nodeVars:       spec.NodeVars,
			linkVars:       spec.LinkVars,
			sysVars:        spec.SysVars,
			startDate:      float64(spec.StartDate),
			reportStepS:    spec.ReportStepS,
		},
		errCtx: &errs.Context{},
	}

	if err := w.writeHeader(spec); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeInt32(v int32) error { return binary.Write(w.f, byteOrder, v) }
func (w *Writer) writeFloat64(v float64) error { return binary.Write(w.f, byteOrder, v) }
func (w *Writer) writeFloat32(v float32) error { return binary.Write(w.f, byteOrder, v) }

func (w *Writer) writeHeader(spec Spec) error {
	if err := w.writeInt32(magic); err != nil {
		return err
	}
	if err := w.writeInt32(w.h.engineVersion); err != nil {
		return err
	}
	if err := w.writeInt32(int32(w.h.flowUnits)); err != nil {
		return err
	}
	if err := w.writeInt32(w.h.nSubcatch); err != nil {
		return err
	}
	if err := w.writeInt32(w.h.nNodes); err != nil {
		return err
	}
	if err := w.writeInt32(w.h.nLinks); err != nil {
		return err
	}
	if err := w.writeInt32(w.h.nPollutant); err != nil {
		return err
	}
	for _, u := range w.h.pollutantUnits {
		if err := w.writeInt32(int32(u)); err != nil {
			return err
		}
	}

	idPos, err := w.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	w.h.idPos = idPos

	allNames := make([][]string, 0, 4)
	allNames = append(allNames, spec.SubcatchNames, spec.NodeNames, spec.LinkNames, spec.PollutantNames)
	for _, group := range allNames {
		for _, name := range group {
			if err := w.writeInt32(int32(len(name))); err != nil {
				return err
			}
			if _, err := w.f.WriteString(name); err != nil {
				return err
			}
		}
	}

	objPropPos, err := w.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	w.h.objPropPos = objPropPos

	// objPropCount precedes the payload itself so a reader can locate
	// the four variable-count headers that follow it without already
	// knowing how many object-property values this engine wrote.
	if err := w.writeInt32(int32(len(spec.ObjectProperties))); err != nil {
		return err
	}
	for _, v := range spec.ObjectProperties {
		if err := w.writeFloat32(v); err != nil {
			return err
		}
	}
	if err := w.writeInt32(int32(len(spec.SubcatchVars))); err != nil {
		return err
	}
	if err := w.writeInt32(int32(len(spec.NodeVars))); err != nil {
		return err
	}
	if err := w.writeInt32(int32(len(spec.LinkVars))); err != nil {
		return err
	}
	if err := w.writeInt32(int32(len(spec.SysVars))); err != nil {
		return err
	}
	for _, codes := range [][]int32{spec.SubcatchVars, spec.NodeVars, spec.LinkVars, spec.SysVars} {
		for _, c := range codes {
			if err := w.writeInt32(c); err != nil {
				return err
			}
		}
	}

	if err := w.writeFloat64(w.h.startDate); err != nil {
		return err
	}
	if err := w.writeInt32(w.h.reportStepS); err != nil {
		return err
	}
	if err := w.writeInt32(0); err != nil { // reserved
		return err
	}

	resultsPos, err := w.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	w.h.resultsPos = resultsPos

	return nil
}

// Period is one reporting-period payload, in the exact attribute order
// the Spec's SubcatchVars/NodeVars/LinkVars/SysVars arrays declare,
// flattened per-object (spec.md §6: REAL32[n_subcatch*subcatch_vars]
// etc.).
type Period struct {
	Date          clock.Date
	Subcatch      []float32
	Node          []float32
	Link          []float32
	Sys           []float32
}

// WritePeriod appends one reporting period and bumps the period count.
// Called once per reporting deadline from the routing loop (spec.md
// §4.1 step 6), never more than once per deadline (periods are emitted
// in strictly monotonic time order per §5).
func (w *Writer) WritePeriod(p Period) error {
	if err := w.writeFloat64(float64(p.Date)); err != nil {
		return w.fail(err)
	}
	for _, group := range [][]float32{p.Subcatch, p.Node, p.Link, p.Sys} {
		for _, v := range group {
			if err := w.writeFloat32(v); err != nil {
				return w.fail(err)
			}
		}
	}
	w.nPeriods++
	return nil
}

func (w *Writer) fail(err error) error {
	w.errCtx.Set(errs.ErrFileWrite)
	return fmt.Errorf("write results period: %w", err)
}

// Close writes the epilogue (back-pointers, period count, the sticky
// error code at the moment of writing, and the closing magic2) and
// closes the underlying file. errorCode is the engine's sticky error
// code at end of run, persisted per spec.md §4.4 step 2's
// error_code_at_write field.
func (w *Writer) Close(errorCode errs.Code) error {
	defer w.f.Close()

	fields := []int32{
		int32(w.h.idPos),
		int32(w.h.objPropPos),
		int32(w.h.resultsPos),
		w.nPeriods,
		int32(errorCode),
		magic,
	}
	for _, v := range fields {
		if err := w.writeInt32(v); err != nil {
			return fmt.Errorf("write epilogue: %w", err)
		}
	}
	return nil
}

// ErrorContext exposes this writer's sticky error context, e.g. for a
// caller that wants to know whether a write already failed before
// attempting Close.
func (w *Writer) ErrorContext() *errs.Context { return w.errCtx }
