package ufunc

import (
	"context"

	"github.com/numforge/ufuncgen/host"
	"github.com/numforge/ufuncgen/interp"
	"github.com/numforge/ufuncgen/ir"
)

// Wrapper is one generated loop entry point: the backend-agnostic
// function plus the symbol bindings it resolves against. Wrappers hold
// no mutable call state; concurrent calls on disjoint index ranges are
// safe.
type Wrapper struct {
	Func     *ir.Func
	Bindings *host.Bindings
}

// Call runs the wrapper with the reference backend against mem,
// following the loop ABI: args, dims and steps are byte offsets of the
// respective tables in mem, data is the opaque extra value. Kernel
// failures surface through the host pending-error channel, not the
// returned error, which reports execution faults only.
func (w *Wrapper) Call(ctx context.Context, mem host.Mem, args, dims, steps, data int64) error {
	return interp.Run(ctx, w.Func, w.Bindings, mem,
		uint64(args), uint64(dims), uint64(steps), uint64(data))
}
