package output

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"hydroflow.dev/engine/internal/clock"
	"hydroflow.dev/engine/internal/errs"
)

// Reader opens a finalized results file for random-access query. Each
// handle owns its own file pointer and error context (spec.md §4.4,
// §4.6) — handles share no mutable state and are independently
// threadable, per §5.
type Reader struct {
	f      *os.File
	h      header
	errCtx *errs.Context

	names     []string // lazily built on first NameAt call
	namesBuilt bool
}

// Open validates and reads a results file's header and epilogue
// following the exact procedure of spec.md §4.4's Open procedure
// (steps 1-6).
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open output file %s: %w", path, err)
	}

	r := &Reader{f: f, errCtx: &errs.Context{}}
	if err := r.readEpilogueAndHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) readEpilogueAndHeader() error {
	size, err := r.f.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	const epilogueSize = 6 * recordSize
	if size < epilogueSize {
		r.errCtx.Set(errs.ErrInvalidFile)
		return fmt.Errorf("output file too small: %s", errs.Message(errs.ErrInvalidFile))
	}

	// Step 1: seek to end - 6*record_size; read id_pos, obj_prop_pos,
	// results_pos, n_periods, error_code_at_write, magic2.
	if _, err := r.f.Seek(size-epilogueSize, io.SeekStart); err != nil {
		return err
	}
	var idPos, objPropPos, resultsPos, nPeriods, errAtWrite, magic2 int32
	for _, dst := range []*int32{&idPos, &objPropPos, &resultsPos, &nPeriods, &errAtWrite, &magic2} {
		if err := binary.Read(r.f, byteOrder, dst); err != nil {
			r.errCtx.Set(errs.ErrFileRead)
			return fmt.Errorf("read epilogue: %w", err)
		}
	}

	// Step 2: seek to start; read magic1; validate against magic2 and
	// n_periods.
	if _, err := r.f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	var magic1 int32
	if err := binary.Read(r.f, byteOrder, &magic1); err != nil {
		r.errCtx.Set(errs.ErrFileRead)
		return fmt.Errorf("read header magic: %w", err)
	}
	if magic1 != magic2 {
		r.errCtx.Set(errs.ErrInvalidFile)
		return fmt.Errorf("header magic %x != epilogue magic %x", magic1, magic2)
	}
	if nPeriods <= 0 {
		r.errCtx.Set(errs.ErrNoResults)
		return fmt.Errorf("file has %d periods", nPeriods)
	}
	if errAtWrite != 0 {
		// Warnings were issued at write time; not fatal to opening.
		r.errCtx.Set(errs.Code(errAtWrite))
	}

	var engineVer, flowUnits int32
	if err := binary.Read(r.f, byteOrder, &engineVer); err != nil {
		return err
	}
	if err := binary.Read(r.f, byteOrder, &flowUnits); err != nil {
		return err
	}

	// Step 3: counts.
	var nSubcatch, nNodes, nLinks, nPollutant int32
	for _, dst := range []*int32{&nSubcatch, &nNodes, &nLinks, &nPollutant} {
		if err := binary.Read(r.f, byteOrder, dst); err != nil {
			return err
		}
	}
	pollutantUnits := make([]PollutantUnits, nPollutant)
	for i := range pollutantUnits {
		var u int32
		if err := binary.Read(r.f, byteOrder, &u); err != nil {
			return err
		}
		pollutantUnits[i] = PollutantUnits(u)
	}

	r.h = header{
		engineVersion:  engineVer,
		flowUnits:      FlowUnits(flowUnits),
		nSubcatch:      nSubcatch,
		nNodes:         nNodes,
		nLinks:         nLinks,
		nPollutant:     nPollutant,
		pollutantUnits: pollutantUnits,
		idPos:          int64(idPos),
		objPropPos:     int64(objPropPos),
		resultsPos:     int64(resultsPos),
		nPeriods:       nPeriods,
		errorCodeAtWrite: errAtWrite,
	}

	// Step 4: skip the object-property payload (self-describing via its
	// own leading count) to reach the four variable-count headers and
	// the attribute-code arrays that follow them.
	if err := r.readObjectPropsAndVarCodes(); err != nil {
		return err
	}

	// Step 5: seek back 16 bytes (start_date, report_step_s and one
	// reserved record) from results_pos; read start_date (8 bytes),
	// report_step_s (4 bytes).
	if _, err := r.f.Seek(r.h.resultsPos-dateSize-recordSize-recordSize, io.SeekStart); err != nil {
		return err
	}
	var startDate float64
	if err := binary.Read(r.f, byteOrder, &startDate); err != nil {
		return err
	}
	var reportStepS int32
	if err := binary.Read(r.f, byteOrder, &reportStepS); err != nil {
		return err
	}
	r.h.startDate = startDate
	r.h.reportStepS = reportStepS

	return nil
}

// readObjectPropsAndVarCodes reads and discards the object-property
// payload (prefixed by its own element count, written by NewWriter) then
// reads the four variable-count headers and their attribute-code arrays
// that immediately follow it.
func (r *Reader) readObjectPropsAndVarCodes() error {
	if _, err := r.f.Seek(r.h.objPropPos, io.SeekStart); err != nil {
		return err
	}
	var objPropCount int32
	if err := binary.Read(r.f, byteOrder, &objPropCount); err != nil {
		r.errCtx.Set(errs.ErrFileRead)
		return fmt.Errorf("read object-property count: %w", err)
	}
	if _, err := r.f.Seek(int64(objPropCount)*recordSize, io.SeekCurrent); err != nil {
		return err
	}

	var subV, nodeV, linkV, sysV int32
	for _, dst := range []*int32{&subV, &nodeV, &linkV, &sysV} {
		if err := binary.Read(r.f, byteOrder, dst); err != nil {
			r.errCtx.Set(errs.ErrFileRead)
			return fmt.Errorf("read variable counts: %w", err)
		}
	}
	readCodes := func(n int32) ([]int32, error) {
		codes := make([]int32, n)
		for i := range codes {
			if err := binary.Read(r.f, byteOrder, &codes[i]); err != nil {
				return nil, err
			}
		}
		return codes, nil
	}
	var err error
	if r.h.subcatchVars, err = readCodes(subV); err != nil {
		return err
	}
	if r.h.nodeVars, err = readCodes(nodeV); err != nil {
		return err
	}
	if r.h.linkVars, err = readCodes(linkV); err != nil {
		return err
	}
	if r.h.sysVars, err = readCodes(sysV); err != nil {
		return err
	}
	return nil
}

// NumPeriods, NumSubcatch, NumNodes, NumLinks, StartDate and ReportStepS
// expose the cached header values.
func (r *Reader) NumPeriods() int   { return int(r.h.nPeriods) }
func (r *Reader) NumSubcatch() int  { return int(r.h.nSubcatch) }
func (r *Reader) NumNodes() int     { return int(r.h.nNodes) }
func (r *Reader) NumLinks() int     { return int(r.h.nLinks) }
func (r *Reader) StartDate() clock.Date { return clock.Date(r.h.startDate) }
func (r *Reader) ReportStepS() int  { return int(r.h.reportStepS) }

// ErrorContext exposes this reader's own sticky error context.
func (r *Reader) ErrorContext() *errs.Context { return r.errCtx }

// DateAt returns the timestamp of period p, matching spec.md §8's
// invariant start_date + (p+1)*report_step/86400.
func (r *Reader) DateAt(p int) (clock.Date, errs.Code) {
	if p < 0 || p >= int(r.h.nPeriods) {
		return 0, errs.ErrAPIPeriodRange
	}
	off := r.h.resultsPos + int64(p)*r.h.bytesPerPeriod()
	if _, err := r.f.Seek(off, io.SeekStart); err != nil {
		r.errCtx.Set(errs.ErrFileRead)
		return 0, errs.ErrFileRead
	}
	var d float64
	if err := binary.Read(r.f, byteOrder, &d); err != nil {
		r.errCtx.Set(errs.ErrFileRead)
		return 0, errs.ErrFileRead
	}
	return clock.Date(d), errs.OK
}

// ObjectClass identifies which per-period array a query targets.
type ObjectClass int

const (
	ClassSubcatch ObjectClass = iota
	ClassNode
	ClassLink
	ClassSys
)

func (r *Reader) varCount(c ObjectClass) int {
	switch c {
	case ClassSubcatch:
		return len(r.h.subcatchVars)
	case ClassNode:
		return len(r.h.nodeVars)
	case ClassLink:
		return len(r.h.linkVars)
	default:
		return len(r.h.sysVars)
	}
}

func (r *Reader) elementCount(c ObjectClass) int {
	switch c {
	case ClassSubcatch:
		return int(r.h.nSubcatch)
	case ClassNode:
		return int(r.h.nNodes)
	case ClassLink:
		return int(r.h.nLinks)
	default:
		return 1
	}
}

// classOffset returns the byte offset, relative to the start of period
// p's record, at which class c's block begins (after DATE8 and any
// preceding classes in subcatch/node/link/sys order, per spec.md §6).
func (r *Reader) classOffset(c ObjectClass) int64 {
	off := int64(dateSize)
	order := []ObjectClass{ClassSubcatch, ClassNode, ClassLink, ClassSys}
	for _, oc := range order {
		if oc == c {
			break
		}
		off += int64(r.elementCount(oc)*r.varCount(oc)) * recordSize
	}
	return off
}

// AttributeSeries returns attribute attrIdx (an index into the class's
// reported-variable array, not a raw property code) for element elemIdx
// over periods [start, end), a freshly allocated array per spec.md
// §4.4's Query contract.
func (r *Reader) AttributeSeries(c ObjectClass, attrIdx, elemIdx, start, end int) ([]float32, errs.Code) {
	if start < 0 || end > int(r.h.nPeriods) || start >= end {
		return nil, errs.ErrAPIPeriodRange
	}
	n := r.elementCount(c)
	nv := r.varCount(c)
	if elemIdx < 0 || elemIdx >= n || attrIdx < 0 || attrIdx >= nv {
		return nil, errs.ErrAPIObjectIndex
	}

	out := make([]float32, 0, end-start)
	stride := r.h.bytesPerPeriod()
	base := r.h.resultsPos + r.classOffset(c) + int64(elemIdx*nv+attrIdx)*recordSize
	for p := start; p < end; p++ {
		off := base + int64(p)*stride
		if _, err := r.f.Seek(off, io.SeekStart); err != nil {
			r.errCtx.Set(errs.ErrFileRead)
			return nil, errs.ErrFileRead
		}
		var v float32
		if err := binary.Read(r.f, byteOrder, &v); err != nil {
			r.errCtx.Set(errs.ErrFileRead)
			return nil, errs.ErrFileRead
		}
		out = append(out, v)
	}
	return out, errs.OK
}

// AttributeAtPeriod returns attribute attrIdx for every element of class
// c at period p, an array of length n_elements per spec.md §4.4's Query
// contract.
func (r *Reader) AttributeAtPeriod(c ObjectClass, attrIdx, p int) ([]float32, errs.Code) {
	if p < 0 || p >= int(r.h.nPeriods) {
		return nil, errs.ErrAPIPeriodRange
	}
	n := r.elementCount(c)
	nv := r.varCount(c)
	if attrIdx < 0 || attrIdx >= nv {
		return nil, errs.ErrAPIPropertyCode
	}
	periodBase := r.h.resultsPos + int64(p)*r.h.bytesPerPeriod() + r.classOffset(c)
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		off := periodBase + int64(i*nv+attrIdx)*recordSize
		if _, err := r.f.Seek(off, io.SeekStart); err != nil {
			r.errCtx.Set(errs.ErrFileRead)
			return nil, errs.ErrFileRead
		}
		if err := binary.Read(r.f, byteOrder, &out[i]); err != nil {
			r.errCtx.Set(errs.ErrFileRead)
			return nil, errs.ErrFileRead
		}
	}
	return out, errs.OK
}

// ResultAtPeriod returns every reported attribute of class c for one
// element at one period, per spec.md §4.4's Query contract.
func (r *Reader) ResultAtPeriod(c ObjectClass, elemIdx, p int) ([]float32, errs.Code) {
	if p < 0 || p >= int(r.h.nPeriods) {
		return nil, errs.ErrAPIPeriodRange
	}
	n := r.elementCount(c)
	nv := r.varCount(c)
	if elemIdx < 0 || elemIdx >= n {
		return nil, errs.ErrAPIObjectIndex
	}
	base := r.h.resultsPos + int64(p)*r.h.bytesPerPeriod() + r.classOffset(c) + int64(elemIdx*nv)*recordSize
	if _, err := r.f.Seek(base, io.SeekStart); err != nil {
		r.errCtx.Set(errs.ErrFileRead)
		return nil, errs.ErrFileRead
	}
	out := make([]float32, nv)
	for i := range out {
		if err := binary.Read(r.f, byteOrder, &out[i]); err != nil {
			r.errCtx.Set(errs.ErrFileRead)
			return nil, errs.ErrFileRead
		}
	}
	return out, errs.OK
}

// NameAt returns the name of the element at flat index idx, where
// indices run subcatchments, then nodes, then links, then pollutants, in
// write order. The name table is built lazily on first call by seeking
// to IDPos, matching spec.md §4.4's "built lazily on first name query".
func (r *Reader) NameAt(idx int) (string, errs.Code) {
	if !r.namesBuilt {
		if err := r.buildNameTable(); err != nil {
			r.errCtx.Set(errs.ErrFileRead)
			return "", errs.ErrFileRead
		}
		r.namesBuilt = true
	}
	if idx < 0 || idx >= len(r.names) {
		return "", errs.ErrAPIObjectIndex
	}
	return r.names[idx], errs.OK
}

func (r *Reader) buildNameTable() error {
	if _, err := r.f.Seek(r.h.idPos, io.SeekStart); err != nil {
		return err
	}
	total := int(r.h.nSubcatch + r.h.nNodes + r.h.nLinks + r.h.nPollutant)
	names := make([]string, total)
	for i := 0; i < total; i++ {
		var length int32
		if err := binary.Read(r.f, byteOrder, &length); err != nil {
			return err
		}
		buf := make([]byte, length)
		if _, err := io.ReadFull(r.f, buf); err != nil {
			return err
		}
		names[i] = string(buf)
	}
	r.names = names
	return nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.f.Close()
}
