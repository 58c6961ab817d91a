// Package output implements the binary results file: an append-only
// writer during a run and a random-access reader afterward, matching the
// header/object-property/results/epilogue layout of spec.md §6 exactly
// (record_size = 4 bytes, date_size = 8 bytes, little-endian).
//
// Grounded on the teacher's internal/log and internal/config file-I/O
// style (explicit os.File ownership, wrapped errors via fmt.Errorf) with
// the random-access offset bookkeeping novel to this component — the
// teacher repo has no binary-file component to imitate directly.
package output

import "encoding/binary"

// recordSize is the width of every INT32/REAL32 slot in the file.
const recordSize = 4

// dateSize is the width of a DATE8 slot (an IEEE-754 float64 decimal day,
// the wire encoding of internal/clock.Date).
const dateSize = 8

// magic is written at offset 0 and must reappear unchanged as the last
// epilogue record (magic2) for the file to be considered valid.
const magic int32 = 0x53574D4D // "SWMM" in ASCII, read little-endian

// engineVersion is stamped into the header so future readers can detect
// a format change; bumped only if the layout below changes.
const engineVersion int32 = 1

// byteOrder is fixed for the whole file format.
var byteOrder = binary.LittleEndian

// FlowUnits mirrors internal/property.FlowUnits's wire codes (0..5 =
// CFS,GPM,MGD,CMS,LPS,MLD); duplicated here as a plain int32 wire type to
// keep this package free of a property-package import.
type FlowUnits int32

const (
	CFS FlowUnits = iota
	GPM
	MGD
	CMS
	LPS
	MLD
)

// PollutantUnits enumerates the wire codes for a pollutant's
// concentration unit: 0=mg/L, 1=ug/L, 2=count/L.
type PollutantUnits int32

const (
	MgPerL PollutantUnits = iota
	UgPerL
	CountPerL
)

// header holds every field read during Open, cached for the lifetime of
// a Reader or Writer handle so no query re-seeks to re-derive them.
type header struct {
	engineVersion int32
	flowUnits     FlowUnits

	nSubcatch  int32
	nNodes     int32
	nLinks     int32
	nPollutant int32

	pollutantUnits []PollutantUnits

	subcatchVars []int32 // attribute codes reported per subcatchment
	nodeVars     []int32
	linkVars     []int32
	sysVars      []int32

	idPos      int64
	objPropPos int64
	resultsPos int64

	startDate   float64 // decimal-day, wire-compatible with clock.Date
	reportStepS int32

	nPeriods          int32
	errorCodeAtWrite  int32
}

// bytesPerPeriod is the fixed-size stride between consecutive result
// records: DATE8 plus one REAL32 per reported attribute across every
// object class and the system block, per spec.md §4.4 step 6.
func (h *header) bytesPerPeriod() int64 {
	n := int64(h.nSubcatch)*int64(len(h.subcatchVars)) +
		int64(h.nNodes)*int64(len(h.nodeVars)) +
		int64(h.nLinks)*int64(len(h.linkVars)) +
		int64(len(h.sysVars))
	return dateSize + recordSize*n
}
