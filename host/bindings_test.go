package host

import "testing"

func TestBindingsCall(t *testing.T) {
	b := NewBindings()
	b.Bind("add", HostFunc{
		Params: 2, Results: 1,
		Fn: func(_ Mem, args []uint64) ([]uint64, error) {
			return []uint64{args[0] + args[1]}, nil
		},
	})

	res, err := b.Call("add", NewMemory(8), []uint64{2, 3})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(res) != 1 || res[0] != 5 {
		t.Errorf("result = %v, want [5]", res)
	}
}

func TestBindingsCallErrors(t *testing.T) {
	b := NewBindings()
	b.Bind("bad", HostFunc{
		Params: 1, Results: 1,
		Fn: func(_ Mem, _ []uint64) ([]uint64, error) {
			return nil, nil // violates the declared result count
		},
	})

	if _, err := b.Call("missing", NewMemory(8), nil); err == nil {
		t.Error("expected error for unbound symbol")
	}
	if _, err := b.Call("bad", NewMemory(8), nil); err == nil {
		t.Error("expected error for wrong argument count")
	}
	if _, err := b.Call("bad", NewMemory(8), []uint64{1}); err == nil {
		t.Error("expected error for wrong result count")
	}
}

func TestBindingsRebindKeepsOrder(t *testing.T) {
	b := NewBindings()
	b.Bind("a", HostFunc{})
	b.Bind("b", HostFunc{})
	b.Bind("a", HostFunc{Params: 1})

	syms := b.Symbols()
	if len(syms) != 2 || syms[0] != "a" || syms[1] != "b" {
		t.Errorf("Symbols = %v, want [a b]", syms)
	}
	fn, _ := b.Lookup("a")
	if fn.Params != 1 {
		t.Error("rebind did not replace the binding")
	}
}
