package ufunc

import (
	"fmt"

	"github.com/numforge/ufuncgen/errors"
	"github.com/numforge/ufuncgen/host"
)

// Call symbols generated wrappers are linked against. The kernel symbol
// is bound per wrapper; the rest reach the host runtime services.
const (
	symKernel      = "kernel"
	symLockAcquire = "lock.acquire"
	symLockRelease = "lock.release"
	symErrRaise    = "error.raise"
	symErrPush     = "err.push"
	symErrPop      = "err.pop"
	symBox         = "obj.box"
	symUnbox       = "obj.unbox"
	symDecref      = "obj.decref"
)

// symArrayNew names the per-argument array construction entry point;
// dimensionality, type tag and item size are fixed per argument at
// generation time, so each argument gets its own import.
func symArrayNew(arg int) string {
	return fmt.Sprintf("obj.arraynew.%d", arg)
}

// serviceBindings binds the host runtime services every wrapper may
// call. Kernel and array-construction symbols are bound by the
// individual generators.
func serviceBindings(rt *host.Runtime) *host.Bindings {
	b := host.NewBindings()

	b.Bind(symLockAcquire, host.HostFunc{
		Params: 0, Results: 1,
		Fn: func(_ host.Mem, _ []uint64) ([]uint64, error) {
			g := rt.Lock.Acquire()
			return []uint64{g.ID()}, nil
		},
	})
	b.Bind(symLockRelease, host.HostFunc{
		Params: 1, Results: 0,
		Fn: func(_ host.Mem, args []uint64) ([]uint64, error) {
			rt.Lock.ReleaseID(args[0])
			return nil, nil
		},
	})
	b.Bind(symErrRaise, host.HostFunc{
		Params: 1, Results: 0,
		Fn: func(_ host.Mem, args []uint64) ([]uint64, error) {
			rt.Errors.Set(errors.KernelError(int64(args[0])))
			return nil, nil
		},
	})
	b.Bind(symErrPush, host.HostFunc{
		Params: 0, Results: 0,
		Fn: func(_ host.Mem, _ []uint64) ([]uint64, error) {
			rt.Errors.Push()
			return nil, nil
		},
	})
	b.Bind(symErrPop, host.HostFunc{
		Params: 0, Results: 0,
		Fn: func(_ host.Mem, _ []uint64) ([]uint64, error) {
			rt.Errors.PopUnlessNew()
			return nil, nil
		},
	})
	b.Bind(symBox, host.HostFunc{
		Params: 2, Results: 1,
		Fn: func(_ host.Mem, args []uint64) ([]uint64, error) {
			h := rt.Objects.NewScalar(int64(args[0]), args[1])
			if h == 0 {
				rt.Errors.Set(errors.Exhausted("scalar box"))
			}
			return []uint64{h}, nil
		},
	})
	b.Bind(symUnbox, host.HostFunc{
		Params: 2, Results: 1,
		Fn: func(_ host.Mem, args []uint64) ([]uint64, error) {
			if args[1] == 0 {
				return nil, errors.NullResult()
			}
			v, ok := rt.Objects.Get(args[1])
			if !ok {
				return nil, errors.NotFound(errors.PhaseExecute, "boxed value", "unbox")
			}
			sb, ok := v.(*host.ScalarBox)
			if !ok || sb.TypeTag != int64(args[0]) {
				return nil, errors.New(errors.PhaseExecute, errors.KindTypeMismatch).
					Detail("unbox of non-scalar or mistyped box").
					Build()
			}
			return []uint64{sb.Bits}, nil
		},
	})
	b.Bind(symDecref, host.HostFunc{
		Params: 1, Results: 0,
		Fn: func(_ host.Mem, args []uint64) ([]uint64, error) {
			rt.Objects.Decref(args[0])
			return nil, nil
		},
	})

	return b
}

// bindArrayNew binds the array construction entry point for argument
// index arg with static dimensionality and element type.
func bindArrayNew(b *host.Bindings, rt *host.Runtime, arg, ndim int, elem ElemType) {
	b.Bind(symArrayNew(arg), host.HostFunc{
		Params:  1 + 2*ndim,
		Results: 1,
		Fn: func(_ host.Mem, args []uint64) ([]uint64, error) {
			shape := make([]int64, ndim)
			strides := make([]int64, ndim)
			for j := 0; j < ndim; j++ {
				shape[j] = int64(args[1+j])
				strides[j] = int64(args[1+ndim+j])
			}
			h := rt.Objects.NewArray(shape, strides, int64(args[0]),
				elem.TypeTag(), int64(elem.Size()))
			if h == 0 {
				rt.Errors.Set(errors.BoxingFailed(arg))
			}
			return []uint64{h}, nil
		},
	})
}
