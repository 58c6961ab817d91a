package swmm

import (
	"testing"

	"hydroflow.dev/engine/internal/lifecycle"
	"hydroflow.dev/engine/internal/property"
)

// Re-exported types must be assignable to and from their internal
// counterparts, so embedders depending only on pkg/swmm interoperate
// transparently with internal/lifecycle-returned values.
func TestTypeAliasesInteroperateWithInternal(t *testing.T) {
	t.Run("Engine", func(t *testing.T) {
		var e *Engine = New()
		var internalE *lifecycle.Engine = e
		if internalE.State() != StateUninitialized {
			t.Errorf("expected StateUninitialized, got %v", internalE.State())
		}
	})

	t.Run("State", func(t *testing.T) {
		var s State = StateStarted
		var internalS lifecycle.State = s
		if internalS != lifecycle.StateStarted {
			t.Errorf("expected lifecycle.StateStarted, got %v", internalS)
		}
	})

	t.Run("HotstartSave", func(t *testing.T) {
		hs := HotstartSave{AtMS: 1000, Path: "mid.hsf"}
		var internalHS lifecycle.HotstartSave = hs
		if internalHS.Path != "mid.hsf" {
			t.Errorf("expected path mid.hsf, got %s", internalHS.Path)
		}
	})

	t.Run("Code", func(t *testing.T) {
		var c Code = property.NodeDepth
		var internalC property.Code = c
		if internalC != property.NodeDepth {
			t.Errorf("expected property.NodeDepth, got %v", internalC)
		}
	})
}

func TestNewReturnsUninitializedEngine(t *testing.T) {
	e := New()
	if e.State() != StateUninitialized {
		t.Errorf("expected StateUninitialized, got %v", e.State())
	}
}

func TestObjectTypeConstantsAreDistinct(t *testing.T) {
	cases := []struct {
		name string
		ot   ObjectType
	}{
		{"System", System},
		{"Gauge", Gauge},
		{"Subcatchment", Subcatchment},
		{"Node", Node},
		{"Link", Link},
	}
	seen := make(map[ObjectType]bool)
	for _, c := range cases {
		if seen[c.ot] {
			t.Errorf("%s: object type value %d collides with another constant", c.name, c.ot)
		}
		seen[c.ot] = true
	}
}

func TestResolveCode(t *testing.T) {
	c, err := ResolveCode("NodeDepth")
	if err != nil {
		t.Fatalf("ResolveCode(NodeDepth): %v", err)
	}
	if c != property.NodeDepth {
		t.Errorf("ResolveCode(NodeDepth) = %v, want %v", c, property.NodeDepth)
	}
}

func TestResolveCodeUnknown(t *testing.T) {
	if _, err := ResolveCode("NotARealCode"); err == nil {
		t.Fatal("expected error for unknown code name")
	}
}

func TestResolveCodes(t *testing.T) {
	codes, err := ResolveCodes([]string{"NodeDepth", "NodeVolume"})
	if err != nil {
		t.Fatalf("ResolveCodes: %v", err)
	}
	if len(codes) != 2 {
		t.Fatalf("expected 2 codes, got %d", len(codes))
	}
}

func TestResolveCodesStopsAtFirstUnknown(t *testing.T) {
	if _, err := ResolveCodes([]string{"NodeDepth", "Bogus"}); err == nil {
		t.Fatal("expected error from unresolvable second entry")
	}
}
