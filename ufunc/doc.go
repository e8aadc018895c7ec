// Package ufunc generates vectorized loop entry points around compiled
// scalar kernels.
//
// A wrapper conforms to the fixed loop ABI: run(args, dims, steps,
// data), four int64 pointers into linear memory. args holds one data
// pointer per argument (inputs then outputs), dims holds the outer
// iteration count (and, for generalized kernels, the resolved core
// dimension sizes), steps holds outer byte strides followed by core
// strides, and data is opaque extra state (the environment handle in
// object mode).
//
// BuildElementwise produces a wrapper iterating one scalar element per
// index, choosing at call time between a densely-packed fast path and
// a general strided path. BuildGeneralized produces a wrapper for
// kernels with per-argument core dimensions described by a shape
// signature such as "(m,n),(n)->(m)".
//
// Wrappers are built as backend-agnostic IR; execute them with the
// interp package or compile them to WebAssembly with wasmgen.
package ufunc
