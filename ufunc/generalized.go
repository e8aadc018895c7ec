package ufunc

import (
	"go.uber.org/zap"

	"github.com/numforge/ufuncgen/errors"
	"github.com/numforge/ufuncgen/host"
	"github.com/numforge/ufuncgen/ir"
)

// GeneralizedConfig configures one generalized wrapper generation.
// Types holds one element type per argument, inputs then outputs, in
// the order of the shape signature's groups.
type GeneralizedConfig struct {
	Types          []ElemType
	ShapeSignature string
	Kernel         GeneralizedKernel
	ObjectKernel   ObjectKernel
	ObjectMode     bool
}

// genMode supplies the mode-specific prologue, per-iteration body and
// epilogue of a generalized wrapper.
type genMode interface {
	prologue(g *genState)
	loopBody(g *genState, views [][]ir.Var) (status, errFlag ir.Var)
	epilogue(g *genState)
}

// genState is the shared generation state the mode hooks operate on.
type genState struct {
	b    *ir.Builder
	zero ir.Var
	one  ir.Var
	data ir.Var // extra-data ABI parameter
}

// BuildGeneralized generates a wrapper for a kernel with per-argument
// core dimensions. The outer loop exits early on the first kernel
// error, unlike the elementwise wrapper which runs to completion.
func BuildGeneralized(cfg GeneralizedConfig, rt *host.Runtime) (*Wrapper, error) {
	ins, outs, err := ParseShapeSignature(cfg.ShapeSignature)
	if err != nil {
		return nil, err
	}
	groups := append(append([][]string{}, ins...), outs...)
	if len(groups) != len(cfg.Types) {
		return nil, errors.New(errors.PhaseGenerate, errors.KindInvalidSignature).
			Detail("%d element types for %d signature groups", len(cfg.Types), len(groups)).
			Build()
	}
	if cfg.ObjectMode && cfg.ObjectKernel == nil {
		return nil, errors.New(errors.PhaseGenerate, errors.KindInvalidData).
			Detail("object mode without object kernel").
			Build()
	}
	if !cfg.ObjectMode && cfg.Kernel == nil {
		return nil, errors.New(errors.PhaseGenerate, errors.KindInvalidData).
			Detail("native mode without kernel").
			Build()
	}

	// Each distinct input symbol gets a dims slot, in first-occurrence
	// order; its size is bound once for the whole call.
	symSlot := make(map[string]int)
	for _, syms := range ins {
		for _, s := range syms {
			if _, ok := symSlot[s]; !ok {
				symSlot[s] = len(symSlot)
			}
		}
	}

	b := ir.NewFunc("gufunc.wrapper", 4)
	argsP, dimsP := b.Param(0), b.Param(1)
	stepsP, dataP := b.Param(2), b.Param(3)

	loopcount := b.Load(dimsP, 8)
	zero := b.ConstI64(0)
	one := b.ConstI64(1)

	symDim := make(map[string]ir.Var, len(symSlot))
	for s, slot := range symSlot {
		off := b.ConstI64(int64(slot+1) * 8)
		symDim[s] = b.Load(b.Add(dimsP, off), 8)
	}

	arrays := make([]*genArrayArg, len(groups))
	stepOffset := len(groups)
	for i, syms := range groups {
		a := newGenArrayArg(b, argsP, stepsP, i, stepOffset, cfg.Types[i], syms, symDim)
		if !a.asScalar {
			stepOffset += a.ndim
		}
		arrays[i] = a
	}

	g := &genState{b: b, zero: zero, one: one, data: dataP}

	var mode genMode
	if cfg.ObjectMode {
		mode = &objectGenMode{}
	} else {
		mode = &nativeGenMode{}
	}

	mode.prologue(g)
	b.NamedBlock("return", func() {
		b.ForRange(loopcount, func(ind ir.Var) {
			views := make([][]ir.Var, len(arrays))
			for i, a := range arrays {
				views[i] = a.sliceAt(b, ind)
			}
			_, errFlag := mode.loopBody(g, views)
			b.BrIf(errFlag, "return")
		})
	})
	mode.epilogue(g)
	b.Return()

	fn, err := b.Finish()
	if err != nil {
		return nil, err
	}

	bindings := serviceBindings(rt)
	if cfg.ObjectMode {
		bindObjectKernel(bindings, rt, cfg.ObjectKernel, len(groups))
		for i, a := range arrays {
			bindArrayNew(bindings, rt, i, a.ndim, a.elem)
		}
	} else {
		ndims := make([]int, len(arrays))
		for i, a := range arrays {
			ndims[i] = a.ndim
		}
		bindGeneralizedKernel(bindings, cfg.Kernel, cfg.Types, ndims)
	}

	Logger().Debug("generated generalized wrapper",
		zap.String("shape_signature", cfg.ShapeSignature),
		zap.Int("args", len(groups)),
		zap.Bool("object_mode", cfg.ObjectMode),
		zap.Int("vars", fn.NumVars))

	return &Wrapper{Func: fn, Bindings: bindings}, nil
}

// nativeGenMode: no prologue or epilogue; kernel errors are reported
// under a transiently held lock, then abort the outer loop.
type nativeGenMode struct{}

func (*nativeGenMode) prologue(*genState) {}
func (*nativeGenMode) epilogue(*genState) {}

func (*nativeGenMode) loopBody(g *genState, views [][]ir.Var) (ir.Var, ir.Var) {
	b := g.b
	flat := []ir.Var{}
	for _, v := range views {
		flat = append(flat, v...)
	}

	status := b.Call(symKernel, 1, flat...)[0]
	errFlag := b.Ne(status, g.zero)
	b.IfThen(errFlag, func() {
		guard := b.Call(symLockAcquire, 1)[0]
		b.Call(symErrRaise, 0, status)
		b.Call(symLockRelease, 0, guard)
	})
	return status, errFlag
}

// objectGenMode: the environment handle is bound and the runtime lock
// held across the whole loop; each iteration goes through the boxed
// call adapter.
type objectGenMode struct {
	env   ir.Var
	guard ir.Var
}

func (m *objectGenMode) prologue(g *genState) {
	m.env = g.data
	m.guard = g.b.Call(symLockAcquire, 1)[0]
}

func (m *objectGenMode) epilogue(g *genState) {
	g.b.Call(symLockRelease, 0, m.guard)
}

func (m *objectGenMode) loopBody(g *genState, views [][]ir.Var) (ir.Var, ir.Var) {
	return buildObjectCallAdapter(g, m.env, views)
}
