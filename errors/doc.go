// Package errors provides structured error types for the wrapper
// generation library.
//
// Errors are categorized by Phase (where the error occurred) and Kind
// (error category). The Error type includes rich context: component
// path, the offending symbol, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseGenerate, errors.KindInvalidSignature).
//		Symbol("n").
//		Detail("output symbol not bound by any input").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.KernelError(status)
//	err := errors.OutOfBounds(errors.PhaseExecute, offset, length)
//
// All errors implement the standard error interface and support
// errors.Is/As.
package errors
