package ir

import (
	"github.com/numforge/ufuncgen/errors"
)

// Builder constructs a Func by appending instructions at a cursor and
// entering structured regions through callbacks.
type Builder struct {
	fn     *Func
	cur    *Seq
	labels map[string]bool
	err    error
}

// NewFunc starts a new function with numParams parameters.
func NewFunc(name string, numParams int) *Builder {
	return &Builder{
		fn: &Func{
			Name:      name,
			NumParams: numParams,
			NumVars:   numParams,
			Body:      &Seq{},
		},
		cur:    nil,
		labels: make(map[string]bool),
	}
}

func (b *Builder) seq() *Seq {
	if b.cur == nil {
		b.cur = b.fn.Body
	}
	return b.cur
}

func (b *Builder) emit(in Instr) {
	s := b.seq()
	s.Nodes = append(s.Nodes, &InstrNode{Instr: in})
}

func (b *Builder) fail(format string, args ...any) {
	if b.err == nil {
		b.err = errors.New(errors.PhaseGenerate, errors.KindInvalidData).
			Detail(format, args...).
			Build()
	}
}

// Param returns the i-th parameter variable.
func (b *Builder) Param(i int) Var {
	if i < 0 || i >= b.fn.NumParams {
		b.fail("parameter %d out of range", i)
		return NoVar
	}
	return Var(i)
}

// NewVar allocates a fresh variable, initialized to zero at entry.
func (b *Builder) NewVar() Var {
	v := Var(b.fn.NumVars)
	b.fn.NumVars++
	return v
}

// ConstI64 yields a variable holding the constant v.
func (b *Builder) ConstI64(v int64) Var {
	dst := b.NewVar()
	b.emit(Instr{Op: OpConst, Dst: dst, Imm: v, X: NoVar, Y: NoVar})
	return dst
}

// Assign copies src into an existing variable.
func (b *Builder) Assign(dst, src Var) {
	b.emit(Instr{Op: OpCopy, Dst: dst, X: src, Y: NoVar})
}

func (b *Builder) binop(op Op, x, y Var) Var {
	dst := b.NewVar()
	b.emit(Instr{Op: op, Dst: dst, X: x, Y: y})
	return dst
}

// Add yields x + y.
func (b *Builder) Add(x, y Var) Var { return b.binop(OpAdd, x, y) }

// Mul yields x * y.
func (b *Builder) Mul(x, y Var) Var { return b.binop(OpMul, x, y) }

// And yields the bitwise AND of x and y.
func (b *Builder) And(x, y Var) Var { return b.binop(OpAnd, x, y) }

// Eq yields 1 when x == y, else 0.
func (b *Builder) Eq(x, y Var) Var { return b.binop(OpEq, x, y) }

// Ne yields 1 when x != y, else 0.
func (b *Builder) Ne(x, y Var) Var { return b.binop(OpNe, x, y) }

// Load yields size bytes at address addr, zero-extended.
func (b *Builder) Load(addr Var, size int) Var {
	if !validWidth(size) {
		b.fail("invalid load width %d", size)
	}
	dst := b.NewVar()
	b.emit(Instr{Op: OpLoad, Dst: dst, X: addr, Y: NoVar, Size: size})
	return dst
}

// Store writes the size low bytes of val at address addr.
func (b *Builder) Store(val, addr Var, size int) {
	if !validWidth(size) {
		b.fail("invalid store width %d", size)
	}
	b.emit(Instr{Op: OpStore, Dst: NoVar, X: val, Y: addr, Size: size})
}

func validWidth(size int) bool {
	return size == 1 || size == 2 || size == 4 || size == 8
}

// Call invokes an external symbol and yields numResults fresh variables.
// A symbol keeps one arity for the whole function.
func (b *Builder) Call(symbol string, numResults int, args ...Var) []Var {
	if d, ok := b.fn.Decl(symbol); ok {
		if d.Params != len(args) || d.Results != numResults {
			b.fail("symbol %q called as %d->%d, declared %d->%d",
				symbol, len(args), numResults, d.Params, d.Results)
		}
	} else {
		b.fn.Decls = append(b.fn.Decls, CallDecl{
			Symbol:  symbol,
			Params:  len(args),
			Results: numResults,
		})
	}

	dsts := make([]Var, numResults)
	for i := range dsts {
		dsts[i] = b.NewVar()
	}
	b.emit(Instr{
		Op:     OpCall,
		Dst:    NoVar,
		X:      NoVar,
		Y:      NoVar,
		Symbol: symbol,
		Args:   append([]Var(nil), args...),
		Dsts:   dsts,
	})
	return dsts
}

func (b *Builder) enter(s *Seq, body func()) {
	saved := b.cur
	b.cur = s
	body()
	b.cur = saved
}

// IfElse emits a two-way branch on cond.
func (b *Builder) IfElse(cond Var, then func(), els func()) {
	n := &If{Cond: cond, Then: &Seq{}, Else: &Seq{}}
	b.enter(n.Then, then)
	b.enter(n.Else, els)
	s := b.seq()
	s.Nodes = append(s.Nodes, n)
}

// IfThen emits a one-way branch on cond.
func (b *Builder) IfThen(cond Var, then func()) {
	n := &If{Cond: cond, Then: &Seq{}}
	b.enter(n.Then, then)
	s := b.seq()
	s.Nodes = append(s.Nodes, n)
}

// ForRange emits a counted loop; body receives the index variable.
func (b *Builder) ForRange(count Var, body func(index Var)) {
	idx := b.NewVar()
	n := &ForRange{Count: count, Index: idx, Body: &Seq{}}
	b.enter(n.Body, func() { body(idx) })
	s := b.seq()
	s.Nodes = append(s.Nodes, n)
}

// NamedBlock emits a labeled region that Br/BrIf can exit from.
func (b *Builder) NamedBlock(label string, body func()) {
	if b.labels[label] {
		b.fail("duplicate block label %q", label)
	}
	b.labels[label] = true
	n := &Block{Label: label, Body: &Seq{}}
	b.enter(n.Body, body)
	s := b.seq()
	s.Nodes = append(s.Nodes, n)
}

// Br branches out of the enclosing block with the given label.
func (b *Builder) Br(label string) {
	s := b.seq()
	s.Nodes = append(s.Nodes, &Br{Label: label})
}

// BrIf branches out of the enclosing block with the given label when
// cond is nonzero.
func (b *Builder) BrIf(cond Var, label string) {
	s := b.seq()
	s.Nodes = append(s.Nodes, &BrIf{Cond: cond, Label: label})
}

// Return emits a function return.
func (b *Builder) Return() {
	s := b.seq()
	s.Nodes = append(s.Nodes, &Return{})
}

// Finish validates and returns the built function.
func (b *Builder) Finish() (*Func, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := checkBranches(b.fn.Body, nil); err != nil {
		return nil, err
	}
	return b.fn, nil
}

// checkBranches verifies every Br/BrIf names an enclosing block.
func checkBranches(s *Seq, stack []string) error {
	inStack := func(label string) bool {
		for _, l := range stack {
			if l == label {
				return true
			}
		}
		return false
	}

	for _, n := range s.Nodes {
		switch t := n.(type) {
		case *Br:
			if !inStack(t.Label) {
				return errors.New(errors.PhaseGenerate, errors.KindNotFound).
					Detail("branch target %q not in scope", t.Label).
					Build()
			}
		case *BrIf:
			if !inStack(t.Label) {
				return errors.New(errors.PhaseGenerate, errors.KindNotFound).
					Detail("branch target %q not in scope", t.Label).
					Build()
			}
		case *Block:
			if err := checkBranches(t.Body, append(stack, t.Label)); err != nil {
				return err
			}
		case *If:
			if err := checkBranches(t.Then, stack); err != nil {
				return err
			}
			if t.Else != nil {
				if err := checkBranches(t.Else, stack); err != nil {
					return err
				}
			}
		case *ForRange:
			if err := checkBranches(t.Body, stack); err != nil {
				return err
			}
		}
	}
	return nil
}
