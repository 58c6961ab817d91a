package errs

import "testing"

func TestSetIsStickyFirstErrorWins(t *testing.T) {
	var ctx Context
	ctx.Set(ErrAPINotOpen)
	ctx.Set(ErrAPIPropertyValue)
	if got := ctx.Code(); got != ErrAPINotOpen {
		t.Errorf("expected first error %v to stick, got %v", ErrAPINotOpen, got)
	}
}

func TestSetZeroIsNoop(t *testing.T) {
	var ctx Context
	ctx.Set(ErrNonConvergence)
	ctx.Set(OK)
	if got := ctx.Code(); got != ErrNonConvergence {
		t.Errorf("Set(OK) clobbered sticky error: got %v", got)
	}
}

func TestClearResets(t *testing.T) {
	var ctx Context
	ctx.Set(ErrFileRead)
	ctx.Clear()
	if got := ctx.Code(); got != OK {
		t.Errorf("expected OK after Clear, got %v", got)
	}
}

func TestFatalClassifiesWarningsAsNonFatal(t *testing.T) {
	var ctx Context
	ctx.Set(WarningsIssued)
	if ctx.Fatal() {
		t.Error("WarningsIssued should not be fatal")
	}
	var ctx2 Context
	ctx2.Set(ErrNonConvergence)
	if !ctx2.Fatal() {
		t.Error("ErrNonConvergence should be fatal")
	}
}

func TestMessageLookup(t *testing.T) {
	if Message(ErrAPINotOpen) == "" {
		t.Error("expected non-empty message for known code")
	}
	if Message(Code(999)) == "" {
		t.Error("expected fallback message for unknown code")
	}
}
