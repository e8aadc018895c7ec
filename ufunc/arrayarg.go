package ufunc

import "github.com/numforge/ufuncgen/ir"

// arrayArg describes one elementwise wrapper argument: base data
// pointer, per-call byte stride, element size, and whether the stride
// equals the element size (densely packed). All of it is computed once
// at wrapper entry and constant for the call's lifetime.
type arrayArg struct {
	elem          ElemType
	data          ir.Var
	step          ir.Var
	itemSize      ir.Var
	isUnitStrided ir.Var
}

// newArrayArg emits the argument setup: indexed loads from the args and
// steps tables plus the densely-packed comparison.
func newArrayArg(b *ir.Builder, args, steps ir.Var, i int, elem ElemType) *arrayArg {
	off := b.ConstI64(int64(i) * 8)
	data := b.Load(b.Add(args, off), 8)
	step := b.Load(b.Add(steps, off), 8)
	size := b.ConstI64(int64(elem.Size()))

	return &arrayArg{
		elem:          elem,
		data:          data,
		step:          step,
		itemSize:      size,
		isUnitStrided: b.Eq(size, step),
	}
}

// loadDirect emits a generic load from the given byte offset.
// loadIndexed is preferred when the argument is densely packed.
func (a *arrayArg) loadDirect(b *ir.Builder, byteOff ir.Var) ir.Var {
	return b.Load(b.Add(a.data, byteOff), a.elem.Size())
}

// loadIndexed emits an indexed load at data + ind*itemsize. Only valid
// when the argument is densely packed; constant-stride indexed access
// keeps the loop vectorizable by downstream backends.
func (a *arrayArg) loadIndexed(b *ir.Builder, ind ir.Var) ir.Var {
	return b.Load(b.Add(a.data, b.Mul(ind, a.itemSize)), a.elem.Size())
}

// storeDirect emits a generic store at the given byte offset.
func (a *arrayArg) storeDirect(b *ir.Builder, val, byteOff ir.Var) {
	b.Store(val, b.Add(a.data, byteOff), a.elem.Size())
}

// storeIndexed emits an indexed store at data + ind*itemsize.
func (a *arrayArg) storeIndexed(b *ir.Builder, val, ind ir.Var) {
	b.Store(val, b.Add(a.data, b.Mul(ind, a.itemSize)), a.elem.Size())
}
