package ufunc

import "github.com/numforge/ufuncgen/ir"

// genArrayArg describes one generalized wrapper argument: the outer
// loop stride plus the core-dimensional shape and strides resolved
// from the shape signature. A scalar argument (no symbols) broadcasts:
// shape [1], stride [0], every outer iteration reading the same slot.
type genArrayArg struct {
	elem     ElemType
	syms     []string
	asScalar bool
	ndim     int
	data     ir.Var
	coreStep ir.Var
	shape    []ir.Var
	strides  []ir.Var
}

// newGenArrayArg emits the argument setup. stepOffset is the running
// offset into the steps table where this argument's core strides
// start; symDim maps each bound symbol to its resolved size variable.
func newGenArrayArg(b *ir.Builder, args, steps ir.Var, i, stepOffset int,
	elem ElemType, syms []string, symDim map[string]ir.Var) *genArrayArg {

	off := b.ConstI64(int64(i) * 8)
	coreStep := b.Load(b.Add(steps, off), 8)
	data := b.Load(b.Add(args, off), 8)

	a := &genArrayArg{
		elem:     elem,
		syms:     syms,
		asScalar: len(syms) == 0,
		data:     data,
		coreStep: coreStep,
	}

	if a.asScalar {
		a.ndim = 1
		a.shape = []ir.Var{b.ConstI64(1)}
		a.strides = []ir.Var{b.ConstI64(0)}
		return a
	}

	a.ndim = len(syms)
	a.strides = make([]ir.Var, a.ndim)
	for j := 0; j < a.ndim; j++ {
		stepPtr := b.ConstI64(int64(stepOffset+j) * 8)
		a.strides[j] = b.Load(b.Add(steps, stepPtr), 8)
	}
	a.shape = make([]ir.Var, a.ndim)
	for j, s := range syms {
		a.shape[j] = symDim[s]
	}
	return a
}

// sliceAt emits the sub-array view for the given outer index: the base
// pointer offset by ind*coreStep followed by the recorded shape and
// strides, in the flat (data, shape..., strides...) wire layout.
func (a *genArrayArg) sliceAt(b *ir.Builder, ind ir.Var) []ir.Var {
	off := b.Add(a.data, b.Mul(a.coreStep, ind))
	flat := make([]ir.Var, 0, 1+2*a.ndim)
	flat = append(flat, off)
	flat = append(flat, a.shape...)
	flat = append(flat, a.strides...)
	return flat
}
