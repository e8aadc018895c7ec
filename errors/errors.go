package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in wrapper processing the error occurred
type Phase string

const (
	PhaseGenerate  Phase = "generate"  // wrapper IR generation
	PhaseSignature Phase = "signature" // shape signature parsing
	PhaseLower     Phase = "lower"     // IR to wasm lowering
	PhaseExecute   Phase = "execute"   // wrapper execution
	PhaseHost      Phase = "host"      // host runtime services
)

// Kind categorizes the error
type Kind string

const (
	KindUnsupported      Kind = "unsupported"
	KindInvalidSignature Kind = "invalid_signature"
	KindBoxingFailure    Kind = "boxing_failure"
	KindNullResult       Kind = "null_result"
	KindKernelError      Kind = "kernel_error"
	KindOutOfBounds      Kind = "out_of_bounds"
	KindTypeMismatch     Kind = "type_mismatch"
	KindExhausted        Kind = "exhausted"
	KindNotFound         Kind = "not_found"
	KindInvalidData      Kind = "invalid_data"
)

// Error is the structured error type used throughout the code generator
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Symbol string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Symbol != "" {
		b.WriteString(": symbol ")
		b.WriteString(e.Symbol)
	}

	if e.Detail != "" {
		if e.Symbol != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the component path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Symbol sets the offending symbol name (host binding, dimension symbol)
func (b *Builder) Symbol(s string) *Builder {
	b.err.Symbol = s
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidSignature creates a shape signature error
func InvalidSignature(sig string, detail string) *Error {
	return &Error{
		Phase:  PhaseSignature,
		Kind:   KindInvalidSignature,
		Detail: fmt.Sprintf("%s in %q", detail, sig),
	}
}

// KernelError wraps a nonzero kernel status code
func KernelError(code int64) *Error {
	return &Error{
		Phase:  PhaseExecute,
		Kind:   KindKernelError,
		Detail: fmt.Sprintf("kernel returned status %d", code),
		Value:  code,
	}
}

// BoxingFailed creates a native-to-managed conversion failure error
func BoxingFailed(argIndex int) *Error {
	return &Error{
		Phase:  PhaseExecute,
		Kind:   KindBoxingFailure,
		Detail: fmt.Sprintf("failed to box argument %d", argIndex),
		Value:  argIndex,
	}
}

// NullResult creates a null kernel result error
func NullResult() *Error {
	return &Error{
		Phase: PhaseExecute,
		Kind:  KindNullResult,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, offset, length int64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("offset %d out of bounds (length %d)", offset, length),
		Value:  offset,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Exhausted creates a resource exhaustion error
func Exhausted(what string) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindExhausted,
		Detail: what,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
