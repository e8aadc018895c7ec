package ufunc

import "github.com/numforge/ufuncgen/host"

// ElementKernel is the native scalar kernel calling convention: one raw
// 64-bit value per input argument (the element bits, decoded per the
// signature's element type by the kernel itself), returning the result
// bits and a status code. Status 0 is success; any other value is a
// kernel compute error.
type ElementKernel func(args []uint64) (uint64, int64)

// ObjectKernel is the boxed calling convention used in object mode:
// the environment handle and one object handle per argument. It
// returns an owned handle to the boxed result - or the null handle if
// the kernel raised through the host's own mechanism - and a status
// code.
type ObjectKernel func(rt *host.Runtime, env uint64, args []uint64) (uint64, int64)

// GeneralizedKernel is the native calling convention for kernels with
// core dimensions: one sub-array view per argument, inputs then
// outputs. Results are written through the output views; only a status
// code is returned.
type GeneralizedKernel func(mem host.Mem, views []ArrayView) int64

// bindElementKernel adapts a native scalar kernel to the generic host
// calling convention.
func bindElementKernel(b *host.Bindings, k ElementKernel, nin int) {
	b.Bind(symKernel, host.HostFunc{
		Params:  nin,
		Results: 2,
		Fn: func(_ host.Mem, args []uint64) ([]uint64, error) {
			v, status := k(args)
			return []uint64{v, uint64(status)}, nil
		},
	})
}

// bindObjectKernel adapts a boxed kernel; the first wire argument is
// the environment handle.
func bindObjectKernel(b *host.Bindings, rt *host.Runtime, k ObjectKernel, nargs int) {
	b.Bind(symKernel, host.HostFunc{
		Params:  1 + nargs,
		Results: 2,
		Fn: func(_ host.Mem, args []uint64) ([]uint64, error) {
			h, status := k(rt, args[0], args[1:])
			return []uint64{h, uint64(status)}, nil
		},
	})
}

// bindGeneralizedKernel adapts a generalized kernel. The wire layout
// per argument is (data, shape..., strides...), with dimensionality
// fixed at generation time, so the flat argument count is static.
func bindGeneralizedKernel(b *host.Bindings, k GeneralizedKernel, elems []ElemType, ndims []int) {
	flat := 0
	for _, nd := range ndims {
		flat += 1 + 2*nd
	}
	b.Bind(symKernel, host.HostFunc{
		Params:  flat,
		Results: 1,
		Fn: func(mem host.Mem, args []uint64) ([]uint64, error) {
			views := make([]ArrayView, len(ndims))
			pos := 0
			for i, nd := range ndims {
				v := ArrayView{
					Data:    int64(args[pos]),
					Shape:   make([]int64, nd),
					Strides: make([]int64, nd),
					Elem:    elems[i],
				}
				for j := 0; j < nd; j++ {
					v.Shape[j] = int64(args[pos+1+j])
					v.Strides[j] = int64(args[pos+1+nd+j])
				}
				views[i] = v
				pos += 1 + 2*nd
			}
			status := k(mem, views)
			return []uint64{uint64(status)}, nil
		},
	})
}
