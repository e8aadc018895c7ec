// Package interp executes generated wrapper functions by walking their
// IR tree directly. It is the reference backend: the wasmgen backend
// must observe identical semantics for every wrapper.
package interp
