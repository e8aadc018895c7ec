package wasmgen

import (
	"github.com/numforge/ufuncgen/errors"
	"github.com/numforge/ufuncgen/ir"
	"github.com/numforge/ufuncgen/wasmgen/internal/bin"
)

// Wasm opcodes used by the lowering.
const (
	opBlock        = 0x02
	opLoop         = 0x03
	opIf           = 0x04
	opElse         = 0x05
	opEnd          = 0x0b
	opBr           = 0x0c
	opBrIf         = 0x0d
	opReturn       = 0x0f
	opCall         = 0x10
	opLocalGet     = 0x20
	opLocalSet     = 0x21
	opI64Load      = 0x29
	opI64Load8U    = 0x31
	opI64Load16U   = 0x33
	opI64Load32U   = 0x35
	opI64Store     = 0x37
	opI64Store8    = 0x3c
	opI64Store16   = 0x3d
	opI64Store32   = 0x3e
	opI64Const     = 0x42
	opI64Eq        = 0x51
	opI64Ne        = 0x52
	opI64GeS       = 0x59
	opI64Add       = 0x7c
	opI64Mul       = 0x7e
	opI64And       = 0x83
	opI32WrapI64   = 0xa7
	opI64ExtendI32 = 0xad // i64.extend_i32_u

	valI64        = 0x7e
	blockTypeVoid = 0x40

	secType   = 1
	secImport = 2
	secFunc   = 3
	secMemory = 5
	secExport = 7
	secCode   = 10
)

// wasmPageSize is the wasm linear memory page granularity.
const wasmPageSize = 64 * 1024

// ExportName is the exported wrapper function name.
const ExportName = "run"

// Lower compiles fn into a standalone wasm module importing one
// function per call declaration from importModule, defining a memory
// of memPages pages exported as "memory", and exporting the wrapper
// as "run".
func Lower(fn *ir.Func, importModule string, memPages uint32) ([]byte, error) {
	l := &lowerer{fn: fn}

	body, err := l.lowerBody()
	if err != nil {
		return nil, err
	}

	w := bin.NewWriter()
	w.WriteBytes([]byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00})

	// Type section: one type per import (dedup is not worth it at this
	// scale) plus the wrapper's own type at the end.
	types := bin.NewWriter()
	types.WriteU32(uint32(len(fn.Decls)) + 1)
	for _, d := range fn.Decls {
		writeFuncType(types, d.Params, d.Results)
	}
	writeFuncType(types, fn.NumParams, 0)
	w.WriteSection(secType, types.Bytes())

	imports := bin.NewWriter()
	imports.WriteU32(uint32(len(fn.Decls)))
	for i, d := range fn.Decls {
		imports.WriteName(importModule)
		imports.WriteName(d.Symbol)
		imports.Byte(0x00) // func import
		imports.WriteU32(uint32(i))
	}
	w.WriteSection(secImport, imports.Bytes())

	funcs := bin.NewWriter()
	funcs.WriteU32(1)
	funcs.WriteU32(uint32(len(fn.Decls))) // wrapper type index
	w.WriteSection(secFunc, funcs.Bytes())

	mem := bin.NewWriter()
	mem.WriteU32(1)
	mem.Byte(0x00) // min only
	mem.WriteU32(memPages)
	w.WriteSection(secMemory, mem.Bytes())

	exports := bin.NewWriter()
	exports.WriteU32(2)
	exports.WriteName("memory")
	exports.Byte(0x02) // memory export
	exports.WriteU32(0)
	exports.WriteName(ExportName)
	exports.Byte(0x00) // func export
	exports.WriteU32(uint32(len(fn.Decls))) // first defined func
	w.WriteSection(secExport, exports.Bytes())

	code := bin.NewWriter()
	code.WriteU32(1)
	code.WriteU32(uint32(len(body)))
	code.WriteBytes(body)
	w.WriteSection(secCode, code.Bytes())

	return w.Bytes(), nil
}

// PagesFor returns the page count covering size bytes.
func PagesFor(size int64) uint32 {
	pages := (size + wasmPageSize - 1) / wasmPageSize
	if pages < 1 {
		pages = 1
	}
	return uint32(pages)
}

func writeFuncType(w *bin.Writer, params, results int) {
	w.Byte(0x60)
	w.WriteU32(uint32(params))
	for i := 0; i < params; i++ {
		w.Byte(valI64)
	}
	w.WriteU32(uint32(results))
	for i := 0; i < results; i++ {
		w.Byte(valI64)
	}
}

type lowerer struct {
	fn *ir.Func
	w  *bin.Writer

	// labels tracks the enclosing branch targets, innermost last.
	// Anonymous structural entries (loops, ifs) use "".
	labels []string
}

func (l *lowerer) lowerBody() ([]byte, error) {
	l.w = bin.NewWriter()

	// One i64 local group for every non-parameter variable.
	locals := l.fn.NumVars - l.fn.NumParams
	if locals > 0 {
		l.w.WriteU32(1)
		l.w.WriteU32(uint32(locals))
		l.w.Byte(valI64)
	} else {
		l.w.WriteU32(0)
	}

	if err := l.lowerSeq(l.fn.Body); err != nil {
		return nil, err
	}
	l.w.Byte(opEnd)
	return l.w.Bytes(), nil
}

func (l *lowerer) funcIndex(symbol string) (uint32, error) {
	for i, d := range l.fn.Decls {
		if d.Symbol == symbol {
			return uint32(i), nil
		}
	}
	return 0, errors.NotFound(errors.PhaseLower, "call declaration", symbol)
}

// branchDepth computes the relative depth of the labeled block.
func (l *lowerer) branchDepth(label string) (uint32, error) {
	for i := len(l.labels) - 1; i >= 0; i-- {
		if l.labels[i] == label {
			return uint32(len(l.labels) - 1 - i), nil
		}
	}
	return 0, errors.NotFound(errors.PhaseLower, "branch target", label)
}

func (l *lowerer) getLocal(v ir.Var) {
	l.w.Byte(opLocalGet)
	l.w.WriteU32(uint32(v))
}

func (l *lowerer) setLocal(v ir.Var) {
	l.w.Byte(opLocalSet)
	l.w.WriteU32(uint32(v))
}

// condI32 pushes a variable as an i32 truth value.
func (l *lowerer) condI32(v ir.Var) {
	l.getLocal(v)
	l.w.Byte(opI64Const)
	l.w.WriteS64(0)
	l.w.Byte(opI64Ne)
}

func (l *lowerer) memArg() {
	l.w.WriteU32(0) // align
	l.w.WriteU32(0) // offset
}

func (l *lowerer) lowerSeq(s *ir.Seq) error {
	for _, n := range s.Nodes {
		if err := l.lowerNode(n); err != nil {
			return err
		}
	}
	return nil
}

func (l *lowerer) lowerNode(n ir.Node) error {
	switch t := n.(type) {
	case *ir.InstrNode:
		return l.lowerInstr(t.Instr)

	case *ir.Seq:
		return l.lowerSeq(t)

	case *ir.If:
		l.condI32(t.Cond)
		l.w.Byte(opIf)
		l.w.Byte(blockTypeVoid)
		l.labels = append(l.labels, "")
		if err := l.lowerSeq(t.Then); err != nil {
			return err
		}
		if t.Else != nil && len(t.Else.Nodes) > 0 {
			l.w.Byte(opElse)
			if err := l.lowerSeq(t.Else); err != nil {
				return err
			}
		}
		l.labels = l.labels[:len(l.labels)-1]
		l.w.Byte(opEnd)
		return nil

	case *ir.ForRange:
		// index = 0; block { loop { index >= count -> br exit;
		// body; index++; br top } }
		l.w.Byte(opI64Const)
		l.w.WriteS64(0)
		l.setLocal(t.Index)

		l.w.Byte(opBlock)
		l.w.Byte(blockTypeVoid)
		l.labels = append(l.labels, "")
		l.w.Byte(opLoop)
		l.w.Byte(blockTypeVoid)
		l.labels = append(l.labels, "")

		l.getLocal(t.Index)
		l.getLocal(t.Count)
		l.w.Byte(opI64GeS)
		l.w.Byte(opBrIf)
		l.w.WriteU32(1) // exit block

		if err := l.lowerSeq(t.Body); err != nil {
			return err
		}

		l.getLocal(t.Index)
		l.w.Byte(opI64Const)
		l.w.WriteS64(1)
		l.w.Byte(opI64Add)
		l.setLocal(t.Index)
		l.w.Byte(opBr)
		l.w.WriteU32(0) // loop top

		l.labels = l.labels[:len(l.labels)-2]
		l.w.Byte(opEnd) // loop
		l.w.Byte(opEnd) // block
		return nil

	case *ir.Block:
		l.w.Byte(opBlock)
		l.w.Byte(blockTypeVoid)
		l.labels = append(l.labels, t.Label)
		if err := l.lowerSeq(t.Body); err != nil {
			return err
		}
		l.labels = l.labels[:len(l.labels)-1]
		l.w.Byte(opEnd)
		return nil

	case *ir.Br:
		depth, err := l.branchDepth(t.Label)
		if err != nil {
			return err
		}
		l.w.Byte(opBr)
		l.w.WriteU32(depth)
		return nil

	case *ir.BrIf:
		depth, err := l.branchDepth(t.Label)
		if err != nil {
			return err
		}
		l.condI32(t.Cond)
		l.w.Byte(opBrIf)
		l.w.WriteU32(depth)
		return nil

	case *ir.Return:
		l.w.Byte(opReturn)
		return nil
	}
	return errors.Unsupported(errors.PhaseLower, "unknown IR node")
}

func (l *lowerer) lowerInstr(in ir.Instr) error {
	switch in.Op {
	case ir.OpConst:
		l.w.Byte(opI64Const)
		l.w.WriteS64(in.Imm)
		l.setLocal(in.Dst)

	case ir.OpCopy:
		l.getLocal(in.X)
		l.setLocal(in.Dst)

	case ir.OpAdd, ir.OpMul, ir.OpAnd:
		l.getLocal(in.X)
		l.getLocal(in.Y)
		switch in.Op {
		case ir.OpAdd:
			l.w.Byte(opI64Add)
		case ir.OpMul:
			l.w.Byte(opI64Mul)
		case ir.OpAnd:
			l.w.Byte(opI64And)
		}
		l.setLocal(in.Dst)

	case ir.OpEq, ir.OpNe:
		l.getLocal(in.X)
		l.getLocal(in.Y)
		if in.Op == ir.OpEq {
			l.w.Byte(opI64Eq)
		} else {
			l.w.Byte(opI64Ne)
		}
		l.w.Byte(opI64ExtendI32)
		l.setLocal(in.Dst)

	case ir.OpLoad:
		l.getLocal(in.X)
		l.w.Byte(opI32WrapI64)
		switch in.Size {
		case 1:
			l.w.Byte(opI64Load8U)
		case 2:
			l.w.Byte(opI64Load16U)
		case 4:
			l.w.Byte(opI64Load32U)
		case 8:
			l.w.Byte(opI64Load)
		default:
			return errors.Unsupported(errors.PhaseLower, "load width")
		}
		l.memArg()
		l.setLocal(in.Dst)

	case ir.OpStore:
		l.getLocal(in.Y)
		l.w.Byte(opI32WrapI64)
		l.getLocal(in.X)
		switch in.Size {
		case 1:
			l.w.Byte(opI64Store8)
		case 2:
			l.w.Byte(opI64Store16)
		case 4:
			l.w.Byte(opI64Store32)
		case 8:
			l.w.Byte(opI64Store)
		default:
			return errors.Unsupported(errors.PhaseLower, "store width")
		}
		l.memArg()

	case ir.OpCall:
		idx, err := l.funcIndex(in.Symbol)
		if err != nil {
			return err
		}
		for _, a := range in.Args {
			l.getLocal(a)
		}
		l.w.Byte(opCall)
		l.w.WriteU32(idx)
		for i := len(in.Dsts) - 1; i >= 0; i-- {
			l.setLocal(in.Dsts[i])
		}

	default:
		return errors.Unsupported(errors.PhaseLower, "unknown IR op")
	}
	return nil
}
