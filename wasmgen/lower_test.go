package wasmgen

import (
	"bytes"
	"testing"

	"github.com/numforge/ufuncgen/ir"
)

func TestLowerModuleHeader(t *testing.T) {
	b := ir.NewFunc("f", 4)
	b.Return()
	fn, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	mod, err := Lower(fn, "host", 1)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if !bytes.HasPrefix(mod, []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}) {
		t.Errorf("module does not start with wasm magic: % x", mod[:8])
	}
}

func TestLowerUnknownBranch(t *testing.T) {
	// Hand-built function with a dangling branch; the builder would
	// reject it, the lowerer must too.
	fn := &ir.Func{
		Name:      "f",
		NumParams: 4,
		NumVars:   4,
		Body:      &ir.Seq{Nodes: []ir.Node{&ir.Br{Label: "nowhere"}}},
	}
	if _, err := Lower(fn, "host", 1); err == nil {
		t.Error("expected error for unknown branch target")
	}
}

func TestLowerUnknownSymbol(t *testing.T) {
	fn := &ir.Func{
		Name:      "f",
		NumParams: 4,
		NumVars:   4,
		Body: &ir.Seq{Nodes: []ir.Node{
			&ir.InstrNode{Instr: ir.Instr{Op: ir.OpCall, Symbol: "ghost"}},
		}},
	}
	if _, err := Lower(fn, "host", 1); err == nil {
		t.Error("expected error for call without declaration")
	}
}

func TestPagesFor(t *testing.T) {
	tests := []struct {
		size int64
		want uint32
	}{
		{0, 1},
		{1, 1},
		{wasmPageSize, 1},
		{wasmPageSize + 1, 2},
		{3 * wasmPageSize, 3},
	}
	for _, tt := range tests {
		if got := PagesFor(tt.size); got != tt.want {
			t.Errorf("PagesFor(%d) = %d, want %d", tt.size, got, tt.want)
		}
	}
}
