package ufunc

import (
	"go.uber.org/zap"

	"github.com/numforge/ufuncgen/errors"
	"github.com/numforge/ufuncgen/host"
	"github.com/numforge/ufuncgen/ir"
)

// ElementwiseConfig configures one elementwise wrapper generation.
// Exactly one of Kernel or ObjectKernel is used, selected by
// ObjectMode.
type ElementwiseConfig struct {
	Signature    Signature
	Kernel       ElementKernel
	ObjectKernel ObjectKernel
	ObjectMode   bool

	// ForceGeneral drops the fast densely-packed path, leaving only
	// the strided loop. Used to cross-check the two paths.
	ForceGeneral bool
}

// BuildElementwise generates a wrapper that iterates one output element
// per index. At call time the wrapper branches once between a fast
// indexed loop (every input densely packed) and a general strided
// loop; object-mode kernels always run the general loop under the
// runtime lock.
func BuildElementwise(cfg ElementwiseConfig, rt *host.Runtime) (*Wrapper, error) {
	if len(cfg.Signature.Args) == 0 {
		return nil, errors.New(errors.PhaseGenerate, errors.KindInvalidSignature).
			Detail("elementwise kernel needs at least one input").
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

	b := ir.NewFunc("ufunc.wrapper", 4)
	argsP, dimsP := b.Param(0), b.Param(1)
	stepsP, dataP := b.Param(2), b.Param(3)

	loopcount := b.Load(dimsP, 8)
	zero := b.ConstI64(0)

	arrays := make([]*arrayArg, len(cfg.Signature.Args))
	for i, elem := range cfg.Signature.Args {
		arrays[i] = newArrayArg(b, argsP, stepsP, i, elem)
	}
	out := newArrayArg(b, argsP, stepsP, len(arrays), cfg.Signature.Ret)

	offsets := make([]ir.Var, len(arrays))
	for i := range offsets {
		offsets[i] = b.NewVar()
		b.Assign(offsets[i], zero)
	}
	storeOffset := b.NewVar()
	b.Assign(storeOffset, zero)

	unitStrided := b.ConstI64(1)
	for _, ary := range arrays {
		unitStrided = b.And(unitStrided, ary.isUnitStrided)
	}

	state := &loopState{
		b:           b,
		arrays:      arrays,
		out:         out,
		offsets:     offsets,
		storeOffset: storeOffset,
		zero:        zero,
	}

	if cfg.ObjectMode {
		// Boxing requires full strided generality, so object mode is a
		// single general loop under the runtime lock.
		guard := b.Call(symLockAcquire, 1)[0]
		b.ForRange(loopcount, func(ir.Var) {
			state.buildObjectBody(dataP)
		})
		b.Call(symLockRelease, 0, guard)
		b.Return()
	} else {
		emitGeneral := func() {
			b.ForRange(loopcount, func(ir.Var) {
				state.buildSlowBody()
			})
		}
		if cfg.ForceGeneral {
			emitGeneral()
		} else {
			b.IfElse(unitStrided, func() {
				b.ForRange(loopcount, func(ind ir.Var) {
					state.buildFastBody(ind)
				})
			}, emitGeneral)
		}
		b.Return()
	}

	fn, err := b.Finish()
	if err != nil {
		return nil, err
	}

	bindings := serviceBindings(rt)
	if cfg.ObjectMode {
		bindObjectKernel(bindings, rt, cfg.ObjectKernel, len(cfg.Signature.Args))
	} else {
		bindElementKernel(bindings, cfg.Kernel, len(cfg.Signature.Args))
	}

	Logger().Debug("generated elementwise wrapper",
		zap.Int("inputs", len(cfg.Signature.Args)),
		zap.Bool("object_mode", cfg.ObjectMode),
		zap.Int("vars", fn.NumVars))

	return &Wrapper{Func: fn, Bindings: bindings}, nil
}
