package ufunc

import "github.com/numforge/ufuncgen/ir"

// buildObjectCallAdapter emits one object-mode core invocation: box
// every argument view into a managed array handle, invoke the boxed
// kernel, release its returned handle, then release every argument
// handle. If construction fails for any argument the kernel is never
// called and only the handles built so far are released - each exactly
// once, since releasing the null handle is a no-op.
//
// The pending-error state is pushed aside around the kernel call so an
// unrelated pre-existing error cannot be confused with one freshly
// raised by this invocation.
func buildObjectCallAdapter(g *genState, env ir.Var, views [][]ir.Var) (status, errFlag ir.Var) {
	b := g.b

	statusVar := b.NewVar()
	b.Assign(statusVar, g.zero)
	errVar := b.NewVar()
	b.Assign(errVar, g.one)

	handles := make([]ir.Var, len(views))
	for i := range handles {
		handles[i] = b.NewVar()
		b.Assign(handles[i], g.zero)
	}

	b.NamedBlock("core.return", func() {
		for i, view := range views {
			h := b.Call(symArrayNew(i), 1, view...)[0]
			b.Assign(handles[i], h)
			isNull := b.Eq(h, g.zero)
			b.Assign(errVar, isNull)
			b.BrIf(isNull, "core.return")
		}

		b.Call(symErrPush, 0)
		res := b.Call(symKernel, 2, append([]ir.Var{env}, handles...)...)
		retval, st := res[0], res[1]
		// The wrapper never retains kernel results across calls.
		b.Call(symDecref, 0, retval)
		b.Call(symErrPop, 0)

		b.Assign(statusVar, st)
		b.Assign(errVar, b.Ne(st, g.zero))
	})

	for _, h := range handles {
		b.Call(symDecref, 0, h)
	}

	return statusVar, errVar
}
