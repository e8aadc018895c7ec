package interp

import (
	"context"
	"errors"
	"testing"

	uerrors "github.com/numforge/ufuncgen/errors"
	"github.com/numforge/ufuncgen/host"
	"github.com/numforge/ufuncgen/ir"
)

// storeResult binds a one-argument "result" symbol that records every
// value passed to it.
func storeResult(b *host.Bindings) *[]uint64 {
	var got []uint64
	b.Bind("result", host.HostFunc{
		Params: 1, Results: 0,
		Fn: func(_ host.Mem, args []uint64) ([]uint64, error) {
			got = append(got, args[0])
			return nil, nil
		},
	})
	return &got
}

func TestRunArithmetic(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *ir.Builder, x, y ir.Var) ir.Var
		x, y  uint64
		want  uint64
	}{
		{"add", func(b *ir.Builder, x, y ir.Var) ir.Var { return b.Add(x, y) }, 3, 4, 7},
		{"add negative", func(b *ir.Builder, x, y ir.Var) ir.Var { return b.Add(x, y) }, 10, ^uint64(0), 9},
		{"mul", func(b *ir.Builder, x, y ir.Var) ir.Var { return b.Mul(x, y) }, 6, 7, 42},
		{"and", func(b *ir.Builder, x, y ir.Var) ir.Var { return b.And(x, y) }, 0b1100, 0b1010, 0b1000},
		{"eq true", func(b *ir.Builder, x, y ir.Var) ir.Var { return b.Eq(x, y) }, 5, 5, 1},
		{"eq false", func(b *ir.Builder, x, y ir.Var) ir.Var { return b.Eq(x, y) }, 5, 6, 0},
		{"ne true", func(b *ir.Builder, x, y ir.Var) ir.Var { return b.Ne(x, y) }, 5, 6, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ir.NewFunc("f", 2)
			res := tt.build(b, b.Param(0), b.Param(1))
			b.Call("result", 0, res)
			fn, err := b.Finish()
			if err != nil {
				t.Fatalf("Finish: %v", err)
			}

			bindings := host.NewBindings()
			got := storeResult(bindings)
			mem := host.NewMemory(8)
			if err := Run(context.Background(), fn, bindings, mem, tt.x, tt.y); err != nil {
				t.Fatalf("Run: %v", err)
			}
			if len(*got) != 1 || (*got)[0] != tt.want {
				t.Errorf("result = %v, want [%d]", *got, tt.want)
			}
		})
	}
}

func TestRunForRange(t *testing.T) {
	// Sum 0..count-1 into an accumulator.
	b := ir.NewFunc("sum", 1)
	acc := b.NewVar()
	b.Assign(acc, b.ConstI64(0))
	b.ForRange(b.Param(0), func(ind ir.Var) {
		b.Assign(acc, b.Add(acc, ind))
	})
	b.Call("result", 0, acc)
	fn, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	for _, tt := range []struct {
		count uint64
		want  uint64
	}{
		{0, 0},
		{1, 0},
		{5, 10},
	} {
		bindings := host.NewBindings()
		got := storeResult(bindings)
		if err := Run(context.Background(), fn, bindings, host.NewMemory(8), tt.count); err != nil {
			t.Fatalf("Run(%d): %v", tt.count, err)
		}
		if (*got)[0] != tt.want {
			t.Errorf("sum(%d) = %d, want %d", tt.count, (*got)[0], tt.want)
		}
	}
}

func TestRunBlockBranch(t *testing.T) {
	// Branch out of the loop when the index reaches the parameter.
	b := ir.NewFunc("f", 1)
	seen := b.NewVar()
	b.Assign(seen, b.ConstI64(0))
	count := b.ConstI64(10)
	one := b.ConstI64(1)
	b.NamedBlock("exit", func() {
		b.ForRange(count, func(ind ir.Var) {
			hit := b.Eq(ind, b.Param(0))
			b.BrIf(hit, "exit")
			b.Assign(seen, b.Add(seen, one))
		})
	})
	b.Call("result", 0, seen)
	b.Return()
	fn, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	bindings := host.NewBindings()
	got := storeResult(bindings)
	if err := Run(context.Background(), fn, bindings, host.NewMemory(8), 3); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if (*got)[0] != 3 {
		t.Errorf("iterations before branch = %d, want 3", (*got)[0])
	}
}

func TestRunLoadStore(t *testing.T) {
	tests := []struct {
		name string
		size int
		in   uint64
		want uint64
	}{
		{"byte truncates", 1, 0x1ff, 0xff},
		{"half", 2, 0xabcd, 0xabcd},
		{"word", 4, 0xdeadbeef, 0xdeadbeef},
		{"full", 8, 0x0123456789abcdef, 0x0123456789abcdef},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ir.NewFunc("f", 2)
			addr := b.Param(0)
			b.Store(b.Param(1), addr, tt.size)
			back := b.Load(addr, tt.size)
			b.Call("result", 0, back)
			fn, err := b.Finish()
			if err != nil {
				t.Fatalf("Finish: %v", err)
			}

			bindings := host.NewBindings()
			got := storeResult(bindings)
			if err := Run(context.Background(), fn, bindings, host.NewMemory(64), 8, tt.in); err != nil {
				t.Fatalf("Run: %v", err)
			}
			if (*got)[0] != tt.want {
				t.Errorf("roundtrip = %#x, want %#x", (*got)[0], tt.want)
			}
		})
	}
}

func TestRunOutOfBounds(t *testing.T) {
	b := ir.NewFunc("f", 1)
	b.Load(b.Param(0), 8)
	fn, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	err = Run(context.Background(), fn, host.NewBindings(), host.NewMemory(16), 12)
	if err == nil {
		t.Fatal("expected out-of-bounds error")
	}
	want := &uerrors.Error{Phase: uerrors.PhaseExecute, Kind: uerrors.KindOutOfBounds}
	if !errors.Is(err, want) {
		t.Errorf("error = %v, want out_of_bounds", err)
	}
}

func TestRunUnboundSymbol(t *testing.T) {
	b := ir.NewFunc("f", 0)
	b.Call("missing", 0)
	fn, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	err = Run(context.Background(), fn, host.NewBindings(), host.NewMemory(8))
	if err == nil {
		t.Fatal("expected unbound symbol error")
	}
	want := &uerrors.Error{Phase: uerrors.PhaseExecute, Kind: uerrors.KindNotFound}
	if !errors.Is(err, want) {
		t.Errorf("error = %v, want not_found", err)
	}
}

func TestRunArityMismatch(t *testing.T) {
	b := ir.NewFunc("f", 0)
	b.Call("svc", 0)
	fn, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	bindings := host.NewBindings()
	bindings.Bind("svc", host.HostFunc{
		Params: 2, Results: 0,
		Fn: func(_ host.Mem, _ []uint64) ([]uint64, error) { return nil, nil },
	})
	if err := Run(context.Background(), fn, bindings, host.NewMemory(8)); err == nil {
		t.Error("expected arity mismatch error")
	}
}

func TestRunParamCount(t *testing.T) {
	b := ir.NewFunc("f", 2)
	fn, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if err := Run(context.Background(), fn, host.NewBindings(), host.NewMemory(8), 1); err == nil {
		t.Error("expected param count error")
	}
}

func TestRunCancellation(t *testing.T) {
	b := ir.NewFunc("f", 0)
	count := b.ConstI64(1 << 20)
	b.ForRange(count, func(ir.Var) {})
	fn, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Run(ctx, fn, host.NewBindings(), host.NewMemory(8)); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
