package ir

// Var is a 64-bit virtual variable. Function parameters occupy the
// first NumParams slots.
type Var int

// NoVar marks an unused variable slot in an instruction.
const NoVar Var = -1

// Op identifies a three-address instruction.
type Op uint8

const (
	OpConst Op = iota // Dst = Imm
	OpCopy            // Dst = X
	OpAdd             // Dst = X + Y
	OpMul             // Dst = X * Y
	OpAnd             // Dst = X & Y
	OpEq              // Dst = (X == Y) ? 1 : 0
	OpNe              // Dst = (X != Y) ? 1 : 0
	OpLoad            // Dst = zero-extended Size bytes at address X
	OpStore           // Size low bytes of X written at address Y
	OpCall            // Dsts = call Symbol(Args...)
)

// Instr is a single instruction. Calls use Symbol/Args/Dsts; all other
// operations use the fixed operand slots.
type Instr struct {
	Op     Op
	Dst    Var
	X, Y   Var
	Imm    int64
	Size   int // load/store width in bytes: 1, 2, 4 or 8
	Symbol string
	Args   []Var
	Dsts   []Var
}

// Node is a node of the structured control-flow tree.
type Node interface {
	isNode()
}

// Seq is an ordered sequence of nodes.
type Seq struct {
	Nodes []Node
}

// InstrNode wraps a single instruction.
type InstrNode struct {
	Instr Instr
}

// If runs Then when Cond is nonzero, Else otherwise. Else may be nil.
type If struct {
	Cond Var
	Then *Seq
	Else *Seq
}

// ForRange runs Body with Index ascending from 0 to the value of Count
// (exclusive). Count is read once at loop entry.
type ForRange struct {
	Count Var
	Index Var
	Body  *Seq
}

// Block is a labeled region; a Br or BrIf naming its label transfers
// control past its end.
type Block struct {
	Label string
	Body  *Seq
}

// Br branches forward out of the enclosing Block with a matching label.
type Br struct {
	Label string
}

// BrIf branches like Br when Cond is nonzero.
type BrIf struct {
	Cond  Var
	Label string
}

// Return ends execution of the function.
type Return struct{}

func (*Seq) isNode()       {}
func (*InstrNode) isNode() {}
func (*If) isNode()        {}
func (*ForRange) isNode()  {}
func (*Block) isNode()     {}
func (*Br) isNode()        {}
func (*BrIf) isNode()      {}
func (*Return) isNode()    {}

// CallDecl records the arity of an external symbol, in first-use order.
// Backends bind each symbol to a host function of matching arity.
type CallDecl struct {
	Symbol  string
	Params  int
	Results int
}

// Func is one generated function. Parameters are vars 0..NumParams-1;
// all variables hold 64 bits.
type Func struct {
	Name      string
	NumParams int
	NumVars   int
	Body      *Seq
	Decls     []CallDecl
}

// Decl returns the call declaration for symbol, if present.
func (f *Func) Decl(symbol string) (CallDecl, bool) {
	for _, d := range f.Decls {
		if d.Symbol == symbol {
			return d, true
		}
	}
	return CallDecl{}, false
}
