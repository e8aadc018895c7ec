package host

import "testing"

func TestObjectTableScalar(t *testing.T) {
	tab := NewObjectTable(0)
	h := tab.NewScalar(3, 42)
	if h == 0 {
		t.Fatal("NewScalar returned null handle")
	}

	v, ok := tab.Get(h)
	if !ok {
		t.Fatal("Get failed")
	}
	sb, ok := v.(*ScalarBox)
	if !ok {
		t.Fatalf("boxed value is %T, want *ScalarBox", v)
	}
	if sb.TypeTag != 3 || sb.Bits != 42 {
		t.Errorf("box = {%d %d}, want {3 42}", sb.TypeTag, sb.Bits)
	}
}

func TestObjectTableRefCounting(t *testing.T) {
	tab := NewObjectTable(0)
	h := tab.NewScalar(1, 1)
	if got := tab.Refs(h); got != 1 {
		t.Fatalf("initial refs = %d, want 1", got)
	}

	tab.Incref(h)
	if got := tab.Refs(h); got != 2 {
		t.Errorf("refs after incref = %d, want 2", got)
	}

	tab.Decref(h)
	tab.Decref(h)
	if got := tab.Refs(h); got != 0 {
		t.Errorf("refs after release = %d, want 0", got)
	}
	if _, ok := tab.Get(h); ok {
		t.Error("released handle still resolvable")
	}
	if tab.Len() != 0 {
		t.Errorf("Len = %d, want 0", tab.Len())
	}
}

func TestObjectTableNullHandle(t *testing.T) {
	tab := NewObjectTable(0)
	tab.Incref(0)
	tab.Decref(0)
	if tab.Len() != 0 {
		t.Error("null handle operations must not allocate")
	}
}

func TestObjectTableCapacity(t *testing.T) {
	tab := NewObjectTable(2)
	h1 := tab.NewScalar(1, 1)
	h2 := tab.NewScalar(1, 2)
	if h1 == 0 || h2 == 0 {
		t.Fatal("allocations under capacity failed")
	}

	if h := tab.NewScalar(1, 3); h != 0 {
		t.Errorf("allocation at capacity = %d, want null handle", h)
	}

	// Releasing one entry frees a slot.
	tab.Decref(h1)
	if h := tab.NewScalar(1, 3); h == 0 {
		t.Error("allocation after release failed")
	}
}

func TestObjectTableArray(t *testing.T) {
	tab := NewObjectTable(0)
	shape := []int64{2, 3}
	strides := []int64{24, 8}
	h := tab.NewArray(shape, strides, 128, 7, 8)
	if h == 0 {
		t.Fatal("NewArray returned null handle")
	}

	v, _ := tab.Get(h)
	ab, ok := v.(*ArrayBox)
	if !ok {
		t.Fatalf("boxed value is %T, want *ArrayBox", v)
	}
	if ab.Data != 128 || ab.TypeTag != 7 || ab.ItemSize != 8 {
		t.Errorf("box = %+v", ab)
	}

	// The box owns copies of the layout slices.
	shape[0] = 99
	if ab.Shape[0] != 2 {
		t.Error("shape not copied on construction")
	}

	if h := tab.NewArray([]int64{2}, []int64{8, 8}, 0, 1, 1); h != 0 {
		t.Error("mismatched shape/strides lengths must fail")
	}
}
