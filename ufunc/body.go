package ufunc

import "github.com/numforge/ufuncgen/ir"

// loopState carries the per-wrapper pieces every loop body variant
// shares: the argument descriptors, the output descriptor, and the
// cursor variables advanced once per iteration.
type loopState struct {
	b           *ir.Builder
	arrays      []*arrayArg
	out         *arrayArg
	offsets     []ir.Var
	storeOffset ir.Var
	zero        ir.Var
}

// advance moves every input cursor by its stride and the output cursor
// by the output's stride. Cursors are monotonically non-decreasing and
// advanced exactly once per iteration.
func (s *loopState) advance() {
	for i, ary := range s.arrays {
		s.b.Assign(s.offsets[i], s.b.Add(s.offsets[i], ary.step))
	}
	s.b.Assign(s.storeOffset, s.b.Add(s.storeOffset, s.out.step))
}

// buildBody emits one native iteration: load operands, invoke the
// kernel, store on success or report the error to the host channel on
// failure (continuing the loop either way), then advance the cursors.
func (s *loopState) buildBody(load func() []ir.Var, store func(ir.Var)) {
	b := s.b
	elems := load()

	res := b.Call(symKernel, 2, elems...)
	retval, status := res[0], res[1]

	ok := b.Eq(status, s.zero)
	b.IfElse(ok, func() {
		store(retval)
	}, func() {
		guard := b.Call(symLockAcquire, 1)[0]
		b.Call(symErrRaise, 0, status)
		b.Call(symLockRelease, 0, guard)
	})

	s.advance()
}

// buildSlowBody emits the general strided iteration, addressing every
// operand through its byte-offset cursor. Correct for any stride.
func (s *loopState) buildSlowBody() {
	s.buildBody(
		func() []ir.Var {
			elems := make([]ir.Var, len(s.arrays))
			for i, ary := range s.arrays {
				elems[i] = ary.loadDirect(s.b, s.offsets[i])
			}
			return elems
		},
		func(retval ir.Var) {
			s.out.storeDirect(s.b, retval, s.storeOffset)
		},
	)
}

// buildFastBody emits the densely-packed iteration, addressing operands
// by the loop index directly. Only valid when every input argument is
// densely packed.
func (s *loopState) buildFastBody(ind ir.Var) {
	s.buildBody(
		func() []ir.Var {
			elems := make([]ir.Var, len(s.arrays))
			for i, ary := range s.arrays {
				elems[i] = ary.loadIndexed(s.b, ind)
			}
			return elems
		},
		func(retval ir.Var) {
			s.out.storeIndexed(s.b, retval, ind)
		},
	)
}

// buildObjectBody emits one object-mode iteration: load native
// operands, box each into a managed handle, invoke the boxed kernel
// with the pending-error state pushed aside, release the argument
// handles, and store the unboxed result when the kernel returned one.
// Kernel failure is not fatal to the wrapper; the host's own exception
// detection notices it after the call returns.
func (s *loopState) buildObjectBody(env ir.Var) {
	b := s.b

	handles := make([]ir.Var, len(s.arrays))
	for i, ary := range s.arrays {
		bits := ary.loadDirect(b, s.offsets[i])
		tag := b.ConstI64(ary.elem.TypeTag())
		handles[i] = b.Call(symBox, 1, tag, bits)[0]
	}

	b.Call(symErrPush, 0)
	res := b.Call(symKernel, 2, append([]ir.Var{env}, handles...)...)
	retval := res[0]
	for _, h := range handles {
		b.Call(symDecref, 0, h)
	}
	b.Call(symErrPop, 0)

	isOK := b.Ne(retval, s.zero)
	b.IfThen(isOK, func() {
		tag := b.ConstI64(s.out.elem.TypeTag())
		bits := b.Call(symUnbox, 1, tag, retval)[0]
		s.out.storeDirect(b, bits, s.storeOffset)
		b.Call(symDecref, 0, retval)
	})

	s.advance()
}
