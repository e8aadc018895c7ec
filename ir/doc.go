// Package ir provides a structured intermediate representation for
// generated loop wrappers.
//
// Generation builds a tree of control nodes (sequences, if/else,
// counted loops, labeled blocks with forward branches) over a flat set
// of 64-bit virtual variables and three-address instructions. The tree
// is backend-agnostic: the interp package walks it directly and the
// wasmgen package lowers it to a WebAssembly function.
//
// # Builder
//
// Builder keeps an append cursor into the current sequence and offers
// structured helpers mirroring how the wrappers are generated:
//
//	b.ForRange(count, func(i ir.Var) {
//		v := b.Load(b.Add(base, i), 4)
//		...
//	})
//
// Memory is a single linear address space; pointers are i64 byte
// offsets. Element values travel as raw bits, so loads and stores are
// plain byte moves of the element size and the IR never needs float
// arithmetic.
package ir
