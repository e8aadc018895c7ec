package ufunc

import "github.com/numforge/ufuncgen/host"

// ArrayView is a sub-array handed to a generalized kernel: a data
// offset plus core-dimensional shape and byte strides. Views never own
// memory; they index the linear memory of the executing wrapper.
type ArrayView struct {
	Data    int64
	Shape   []int64
	Strides []int64
	Elem    ElemType
}

// NDim returns the view's core dimensionality.
func (v ArrayView) NDim() int {
	return len(v.Shape)
}

// offset computes the byte offset of the element at idx.
func (v ArrayView) offset(idx []int64) int64 {
	off := v.Data
	for k, i := range idx {
		off += i * v.Strides[k]
	}
	return off
}

// Load reads the element at idx as raw bits.
func (v ArrayView) Load(mem host.Mem, idx ...int64) (uint64, bool) {
	return mem.LoadN(v.offset(idx), v.Elem.Size())
}

// Store writes raw bits to the element at idx.
func (v ArrayView) Store(mem host.Mem, bits uint64, idx ...int64) bool {
	return mem.StoreN(v.offset(idx), v.Elem.Size(), bits)
}
