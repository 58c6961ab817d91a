// Package errs implements the engine's typed error taxonomy and the
// single-slot "sticky" error context shared by the live engine and each
// output-file reader handle.
//
// The numeric ranges below are preserved for wire compatibility with the
// binary output file's trailing error_code_at_write field (see
// internal/output) and must not be renumbered.
package errs

// Code is a sticky error/warning code. Zero means success.
type Code int

const (
	// OK indicates no error.
	OK Code = 0

	// WarningsIssued indicates the run completed but issued warnings.
	WarningsIssued Code = 10
)

// Input/validation errors: 100-199, surfaced from Open via the external
// parser collaborator. The engine itself never originates these, but
// forwards whatever the parser reports.
const (
	ErrInputFirst Code = 100
	ErrInputLast  Code = 199
)

// Simulation numerical errors: 200-299.
const (
	ErrTimeStepTooSmall Code = 200
	ErrNonConvergence   Code = 201
)

// File I/O errors: 300-399.
const (
	ErrFileOpen  Code = 303
	ErrFileWrite Code = 308
	ErrFileRead  Code = 309
)

// API lifecycle errors: 400-409.
const (
	ErrAPINotOpen      Code = 401
	ErrAPINotStarted   Code = 402
	ErrAPINotEnded     Code = 403
	ErrAPIIsRunning    Code = 404
	ErrAPIAlreadyOpen  Code = 405
	ErrAPIReentrant    Code = 406
)

// API value errors: 410-429.
const (
	ErrAPIObjectType     Code = 410
	ErrAPIObjectIndex    Code = 411
	ErrAPIPropertyCode   Code = 412
	ErrAPIPropertyValue  Code = 413
	ErrAPIPropertyLocked Code = 414
	ErrAPIPeriodRange    Code = 415
	ErrAPISubIndex       Code = 416
	ErrAPIMemory         Code = 417
)

// Output-file format errors: 430-439.
const (
	ErrInvalidFile Code = 430
	ErrNoResults   Code = 431
)

// IsFatal reports whether c should abort the current run/operation.
func IsFatal(c Code) bool {
	return c != OK && c != WarningsIssued
}

// messages maps codes to human-readable text. Consulted by Context.Message.
var messages = map[Code]string{
	OK:                   "no error",
	WarningsIssued:       "run completed with warnings",
	ErrTimeStepTooSmall:  "routing time step reduced below minimum allowed",
	ErrNonConvergence:    "routing failed to converge",
	ErrFileOpen:          "cannot open file",
	ErrFileWrite:         "error writing to file",
	ErrFileRead:          "error reading from file",
	ErrAPINotOpen:        "project not open",
	ErrAPINotStarted:     "simulation not started",
	ErrAPINotEnded:       "simulation not ended",
	ErrAPIIsRunning:      "simulation is running",
	ErrAPIAlreadyOpen:    "project already open",
	ErrAPIReentrant:      "re-entrant call into the engine from a callback",
	ErrAPIObjectType:     "invalid object type",
	ErrAPIObjectIndex:    "invalid object index",
	ErrAPIPropertyCode:   "invalid property code",
	ErrAPIPropertyValue:  "invalid property value",
	ErrAPIPropertyLocked: "property not writable in current lifecycle state",
	ErrAPIPeriodRange:    "invalid reporting period index",
	ErrAPISubIndex:       "invalid property sub-index",
	ErrAPIMemory:         "memory allocation failed",
	ErrInvalidFile:       "file is not a valid results file",
	ErrNoResults:         "file contains no results",
}

// Message returns the catalog message for c, or a generic fallback for
// codes outside the known tables (e.g. a parser-reported 1xx code this
// module doesn't enumerate individually).
func Message(c Code) string {
	if m, ok := messages[c]; ok {
		return m
	}
	switch {
	case c >= ErrInputFirst && c <= ErrInputLast:
		return "input file error"
	case c == OK:
		return "no error"
	default:
		return "unrecognized error code"
	}
}
