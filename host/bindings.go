package host

import (
	"github.com/numforge/ufuncgen/errors"
)

// HostFunc is an external function callable from generated code. All
// parameters and results are raw 64-bit values; Fn receives the linear
// memory the wrapper is executing against.
type HostFunc struct {
	Params  int
	Results int
	Fn      func(mem Mem, args []uint64) ([]uint64, error)
}

// Bindings maps call symbols to host functions. Both backends resolve
// a Func's call declarations against one Bindings set; the wasmgen
// backend additionally turns each binding into an imported function.
type Bindings struct {
	order []string
	funcs map[string]HostFunc
}

// NewBindings creates an empty binding set.
func NewBindings() *Bindings {
	return &Bindings{funcs: make(map[string]HostFunc)}
}

// Bind registers fn under symbol, replacing any previous binding but
// keeping its position in the symbol order.
func (b *Bindings) Bind(symbol string, fn HostFunc) {
	if _, ok := b.funcs[symbol]; !ok {
		b.order = append(b.order, symbol)
	}
	b.funcs[symbol] = fn
}

// Lookup returns the binding for symbol.
func (b *Bindings) Lookup(symbol string) (HostFunc, bool) {
	fn, ok := b.funcs[symbol]
	return fn, ok
}

// Symbols returns the bound symbols in bind order.
func (b *Bindings) Symbols() []string {
	return append([]string(nil), b.order...)
}

// Call resolves and invokes symbol, validating arity.
func (b *Bindings) Call(symbol string, mem Mem, args []uint64) ([]uint64, error) {
	fn, ok := b.funcs[symbol]
	if !ok {
		return nil, errors.NotFound(errors.PhaseExecute, "host binding", symbol)
	}
	if len(args) != fn.Params {
		return nil, errors.New(errors.PhaseExecute, errors.KindTypeMismatch).
			Symbol(symbol).
			Detail("called with %d args, bound with %d", len(args), fn.Params).
			Build()
	}
	res, err := fn.Fn(mem, args)
	if err != nil {
		return nil, err
	}
	if len(res) != fn.Results {
		return nil, errors.New(errors.PhaseExecute, errors.KindTypeMismatch).
			Symbol(symbol).
			Detail("returned %d results, bound with %d", len(res), fn.Results).
			Build()
	}
	return res, nil
}

// Runtime bundles the host services one wrapper generation binds
// against: the pending-error channel, the exclusivity lock and the
// boxed-object table.
type Runtime struct {
	Errors  *PendingError
	Lock    *RuntimeLock
	Objects *ObjectTable
}

// NewRuntime creates a Runtime with an unlimited object table.
func NewRuntime() *Runtime {
	return &Runtime{
		Errors:  NewPendingError(),
		Lock:    NewRuntimeLock(),
		Objects: NewObjectTable(0),
	}
}
