package interp

import (
	"context"

	"github.com/numforge/ufuncgen/errors"
	"github.com/numforge/ufuncgen/host"
	"github.com/numforge/ufuncgen/ir"
)

type control uint8

const (
	ctrlNone control = iota
	ctrlBr
	ctrlReturn
)

type frame struct {
	vars     []uint64
	mem      host.Mem
	bindings *host.Bindings
}

// Run executes fn against mem with the given bindings. Parameters fill
// the first variable slots; remaining variables start at zero. The
// returned error reports execution faults (unbound symbols, out of
// bounds access, host failures) - kernel errors surface through the
// host pending-error channel, never here.
func Run(ctx context.Context, fn *ir.Func, bindings *host.Bindings, mem host.Mem, params ...uint64) error {
	if len(params) != fn.NumParams {
		return errors.New(errors.PhaseExecute, errors.KindInvalidData).
			Detail("function %q takes %d params, got %d", fn.Name, fn.NumParams, len(params)).
			Build()
	}
	for _, d := range fn.Decls {
		hf, ok := bindings.Lookup(d.Symbol)
		if !ok {
			return errors.NotFound(errors.PhaseExecute, "host binding", d.Symbol)
		}
		if hf.Params != d.Params || hf.Results != d.Results {
			return errors.New(errors.PhaseExecute, errors.KindTypeMismatch).
				Symbol(d.Symbol).
				Detail("declared %d->%d, bound %d->%d", d.Params, d.Results, hf.Params, hf.Results).
				Build()
		}
	}

	f := &frame{
		vars:     make([]uint64, fn.NumVars),
		mem:      mem,
		bindings: bindings,
	}
	copy(f.vars, params)

	_, _, err := f.execSeq(ctx, fn.Body)
	return err
}

func (f *frame) execSeq(ctx context.Context, s *ir.Seq) (control, string, error) {
	for _, n := range s.Nodes {
		ctrl, label, err := f.execNode(ctx, n)
		if err != nil {
			return ctrlNone, "", err
		}
		if ctrl != ctrlNone {
			return ctrl, label, nil
		}
	}
	return ctrlNone, "", nil
}

func (f *frame) execNode(ctx context.Context, n ir.Node) (control, string, error) {
	switch t := n.(type) {
	case *ir.InstrNode:
		return ctrlNone, "", f.execInstr(t.Instr)

	case *ir.If:
		if f.vars[t.Cond] != 0 {
			return f.execSeq(ctx, t.Then)
		}
		if t.Else != nil {
			return f.execSeq(ctx, t.Else)
		}
		return ctrlNone, "", nil

	case *ir.ForRange:
		count := int64(f.vars[t.Count])
		for i := int64(0); i < count; i++ {
			if err := ctx.Err(); err != nil {
				return ctrlNone, "", err
			}
			f.vars[t.Index] = uint64(i)
			ctrl, label, err := f.execSeq(ctx, t.Body)
			if err != nil {
				return ctrlNone, "", err
			}
			if ctrl != ctrlNone {
				return ctrl, label, nil
			}
		}
		return ctrlNone, "", nil

	case *ir.Block:
		ctrl, label, err := f.execSeq(ctx, t.Body)
		if err != nil {
			return ctrlNone, "", err
		}
		if ctrl == ctrlBr && label == t.Label {
			return ctrlNone, "", nil
		}
		return ctrl, label, nil

	case *ir.Br:
		return ctrlBr, t.Label, nil

	case *ir.BrIf:
		if f.vars[t.Cond] != 0 {
			return ctrlBr, t.Label, nil
		}
		return ctrlNone, "", nil

	case *ir.Return:
		return ctrlReturn, "", nil

	case *ir.Seq:
		return f.execSeq(ctx, t)
	}
	return ctrlNone, "", errors.Unsupported(errors.PhaseExecute, "unknown IR node")
}

func (f *frame) execInstr(in ir.Instr) error {
	switch in.Op {
	case ir.OpConst:
		f.vars[in.Dst] = uint64(in.Imm)
	case ir.OpCopy:
		f.vars[in.Dst] = f.vars[in.X]
	case ir.OpAdd:
		f.vars[in.Dst] = uint64(int64(f.vars[in.X]) + int64(f.vars[in.Y]))
	case ir.OpMul:
		f.vars[in.Dst] = uint64(int64(f.vars[in.X]) * int64(f.vars[in.Y]))
	case ir.OpAnd:
		f.vars[in.Dst] = f.vars[in.X] & f.vars[in.Y]
	case ir.OpEq:
		f.vars[in.Dst] = boolBit(f.vars[in.X] == f.vars[in.Y])
	case ir.OpNe:
		f.vars[in.Dst] = boolBit(f.vars[in.X] != f.vars[in.Y])
	case ir.OpLoad:
		addr := int64(f.vars[in.X])
		v, ok := f.mem.LoadN(addr, in.Size)
		if !ok {
			return errors.OutOfBounds(errors.PhaseExecute, addr, f.mem.Len())
		}
		f.vars[in.Dst] = v
	case ir.OpStore:
		addr := int64(f.vars[in.Y])
		if !f.mem.StoreN(addr, in.Size, f.vars[in.X]) {
			return errors.OutOfBounds(errors.PhaseExecute, addr, f.mem.Len())
		}
	case ir.OpCall:
		args := make([]uint64, len(in.Args))
		for i, a := range in.Args {
			args[i] = f.vars[a]
		}
		res, err := f.bindings.Call(in.Symbol, f.mem, args)
		if err != nil {
			return err
		}
		for i, d := range in.Dsts {
			f.vars[d] = res[i]
		}
	default:
		return errors.Unsupported(errors.PhaseExecute, "unknown IR op")
	}
	return nil
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
