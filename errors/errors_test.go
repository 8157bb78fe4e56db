package errors

import (
	"errors"
	"testing"

	handletable "github.com/wippyai/handle-table"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseLookup,
				Kind:   KindStaleHandle,
				Handle: handletable.NewHandle(1, 1, 0),
				Detail: "generation mismatch: handle 1, entry 2",
			},
			contains: []string{"[lookup]", "stale_handle", "0x40000040", "generation mismatch"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseAlloc,
				Kind:  KindCorruption,
			},
			contains: []string{"[alloc]", "corruption"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseGrow,
				Kind:   KindExhausted,
				Detail: "index space exhausted",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[grow]", "exhausted", "index space exhausted", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !containsSubstring(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseGrow,
		Kind:  KindExhausted,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	// Test with errors.Unwrap
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase:  PhaseAssign,
		Kind:   KindBusy,
		Handle: handletable.NewHandle(5, 2, 0),
	}

	// Same phase and kind
	if !err.Is(&Error{Phase: PhaseAssign, Kind: KindBusy}) {
		t.Error("Is should match same phase and kind")
	}

	// Different phase
	if err.Is(&Error{Phase: PhaseFree, Kind: KindBusy}) {
		t.Error("Is should not match different phase")
	}

	// Different kind
	if err.Is(&Error{Phase: PhaseAssign, Kind: KindCorruption}) {
		t.Error("Is should not match different kind")
	}

	// Test with errors.Is
	target := &Error{Phase: PhaseAssign, Kind: KindBusy}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	h := handletable.NewHandle(7, 3, 0)
	err := New(PhaseFree, KindStaleHandle).
		Handle(h).
		Value(uint32(7)).
		Cause(cause).
		Detail("entry is free at index %d", 7).
		Build()

	if err.Phase != PhaseFree {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseFree)
	}
	if err.Kind != KindStaleHandle {
		t.Errorf("Kind = %v, want %v", err.Kind, KindStaleHandle)
	}
	if err.Handle != h {
		t.Errorf("Handle = %v, want %v", err.Handle, h)
	}
	if err.Value != uint32(7) {
		t.Errorf("Value = %v, want 7", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "entry is free at index 7" {
		t.Errorf("Detail = %v, want 'entry is free at index 7'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("Corruption", func(t *testing.T) {
		err := Corruption(PhaseAlloc, "free list head %d out of bounds (size %d)", 4096, 8)
		if err.Kind != KindCorruption {
			t.Errorf("Kind = %v, want %v", err.Kind, KindCorruption)
		}
		if !containsSubstring(err.Detail, "4096") {
			t.Errorf("Detail = %v, should contain head index", err.Detail)
		}
	})

	t.Run("Exhausted", func(t *testing.T) {
		err := Exhausted(PhaseGrow, handletable.IndexMax+100, handletable.IndexMax)
		if err.Kind != KindExhausted {
			t.Errorf("Kind = %v, want %v", err.Kind, KindExhausted)
		}
		if !containsSubstring(err.Detail, "limit") {
			t.Errorf("Detail = %v, should contain limit", err.Detail)
		}
	})

	t.Run("Busy", func(t *testing.T) {
		h := handletable.NewHandle(3, 1, 0)
		err := Busy(PhaseAssign, h, 2)
		if err.Kind != KindBusy {
			t.Errorf("Kind = %v, want %v", err.Kind, KindBusy)
		}
		if err.Handle != h {
			t.Errorf("Handle = %v, want %v", err.Handle, h)
		}
	})

	t.Run("StaleHandle", func(t *testing.T) {
		h := handletable.NewHandle(9, 2, 0)
		err := StaleHandle(PhaseFree, h, "entry is free")
		if err.Kind != KindStaleHandle {
			t.Errorf("Kind = %v, want %v", err.Kind, KindStaleHandle)
		}
		if err.Detail != "entry is free" {
			t.Errorf("Detail = %v, want 'entry is free'", err.Detail)
		}
	})

	t.Run("InvalidInput", func(t *testing.T) {
		err := InvalidInput(PhaseAssign, "handle index 16777215 is out of range")
		if err.Kind != KindInvalidInput {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidInput)
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		cause := errors.New("inner")
		err := Wrap(PhaseGrow, KindCorruption, cause, "tail invariant violated")
		if err.Kind != KindCorruption {
			t.Errorf("Kind = %v, want %v", err.Kind, KindCorruption)
		}
		if !errors.Is(err, cause) {
			t.Error("wrapped cause should match with errors.Is")
		}
	})
}

func containsSubstring(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(substr) == 0 ||
		(len(s) > 0 && containsSubstringHelper(s, substr)))
}

func containsSubstringHelper(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
