package errors

import (
	"errors"
	"strings"
	"testing"
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
				Phase:  PhaseGenerate,
				Kind:   KindInvalidSignature,
				Path:   []string{"wrapper", "args"},
				Symbol: "n",
				Detail: "output symbol not bound",
			},
			contains: []string{"[generate]", "invalid_signature", "wrapper.args", "symbol n", "output symbol not bound"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseExecute,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[execute]", "out_of_bounds"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLower,
				Kind:   KindInvalidData,
				Detail: "compile failed",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[lower]", "invalid_data", "compile failed", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(PhaseExecute, KindInvalidData, cause, "wrapper call")
	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable through errors.Is")
	}
}

func TestError_Is(t *testing.T) {
	err := KernelError(5)
	if !errors.Is(err, &Error{Phase: PhaseExecute, Kind: KindKernelError}) {
		t.Error("matching phase and kind should satisfy Is")
	}
	if errors.Is(err, &Error{Phase: PhaseExecute, Kind: KindBoxingFailure}) {
		t.Error("different kind should not satisfy Is")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("inner")
	err := New(PhaseSignature, KindInvalidSignature).
		Path("parse", "group").
		Symbol("m").
		Value(42).
		Cause(cause).
		Detail("size %d conflicts", 42).
		Build()

	if err.Phase != PhaseSignature || err.Kind != KindInvalidSignature {
		t.Errorf("phase/kind = %s/%s", err.Phase, err.Kind)
	}
	if err.Symbol != "m" || err.Value != 42 || err.Cause != cause {
		t.Errorf("builder fields not carried: %+v", err)
	}
	if err.Detail != "size 42 conflicts" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		kind Kind
	}{
		{"unsupported", Unsupported(PhaseLower, "load width"), KindUnsupported},
		{"invalid signature", InvalidSignature("(m", "unterminated"), KindInvalidSignature},
		{"kernel error", KernelError(7), KindKernelError},
		{"boxing failed", BoxingFailed(2), KindBoxingFailure},
		{"null result", NullResult(), KindNullResult},
		{"out of bounds", OutOfBounds(PhaseExecute, 10, 5), KindOutOfBounds},
		{"not found", NotFound(PhaseExecute, "host binding", "kernel"), KindNotFound},
		{"exhausted", Exhausted("object table"), KindExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", tt.err.Kind, tt.kind)
			}
			if tt.err.Error() == "" {
				t.Error("empty error message")
			}
		})
	}

	if KernelError(7).Value != int64(7) {
		t.Error("kernel status not carried in Value")
	}
	if BoxingFailed(2).Value != 2 {
		t.Error("argument index not carried in Value")
	}
}
