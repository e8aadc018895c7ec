// Package host provides the runtime surface consumed by generated loop
// wrappers: linear memory, the process-wide pending-error channel, the
// runtime exclusivity lock, the reference-counted object table for
// boxed values, and the symbol bindings both execution backends use to
// reach the kernel and these services.
//
// All "pointers" handled by generated code are int64 byte offsets into
// a single little-endian linear memory. Memory is the in-process
// implementation; the wasmgen backend substitutes the instance memory
// of a compiled module through the same Mem interface.
package host
