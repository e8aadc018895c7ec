package host

import "sync"

// Handle identifies a boxed value in an ObjectTable. Handle 0 is the
// null handle; construction failures return it.
type Handle = uint64

// ScalarBox is a boxed scalar element: its element-type tag and the
// raw bits of the value.
type ScalarBox struct {
	TypeTag int64
	Bits    uint64
}

// ArrayBox is a boxed array: a strided view into linear memory plus
// the element-type tag and size the view was constructed with.
type ArrayBox struct {
	Shape    []int64
	Strides  []int64
	Data     int64
	TypeTag  int64
	ItemSize int64
}

type objEntry struct {
	value any
	refs  int
}

// ObjectTable holds reference-counted boxed values. A zero capacity
// means unlimited; otherwise construction fails with the null handle
// once Len reaches the capacity, modeling host allocation failure.
type ObjectTable struct {
	mu       sync.Mutex
	entries  map[Handle]*objEntry
	next     Handle
	capacity int
}

// NewObjectTable creates an empty table with the given capacity
// (0 = unlimited).
func NewObjectTable(capacity int) *ObjectTable {
	return &ObjectTable{
		entries:  make(map[Handle]*objEntry),
		capacity: capacity,
	}
}

func (t *ObjectTable) insert(v any) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.capacity > 0 && len(t.entries) >= t.capacity {
		return 0
	}
	t.next++
	t.entries[t.next] = &objEntry{value: v, refs: 1}
	return t.next
}

// NewScalar boxes a scalar value, returning its handle with one owned
// reference, or the null handle on exhaustion.
func (t *ObjectTable) NewScalar(typeTag int64, bits uint64) Handle {
	return t.insert(&ScalarBox{TypeTag: typeTag, Bits: bits})
}

// NewArray boxes an array view, returning its handle with one owned
// reference, or the null handle on exhaustion. This is the host's
// array-construction entry point: dimensionality is len(shape).
func (t *ObjectTable) NewArray(shape, strides []int64, data, typeTag, itemSize int64) Handle {
	if len(shape) != len(strides) {
		return 0
	}
	return t.insert(&ArrayBox{
		Shape:    append([]int64(nil), shape...),
		Strides:  append([]int64(nil), strides...),
		Data:     data,
		TypeTag:  typeTag,
		ItemSize: itemSize,
	})
}

// Get returns the boxed value for h.
func (t *ObjectTable) Get(h Handle) (any, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[h]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Incref adds a reference. The null handle is ignored.
func (t *ObjectTable) Incref(h Handle) {
	if h == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[h]; ok {
		e.refs++
	}
}

// Decref drops a reference, releasing the value at zero. The null
// handle is ignored.
func (t *ObjectTable) Decref(h Handle) {
	if h == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[h]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(t.entries, h)
	}
}

// Refs reports the reference count of h, or 0 if absent.
func (t *ObjectTable) Refs(h Handle) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[h]; ok {
		return e.refs
	}
	return 0
}

// Len returns the number of live boxed values.
func (t *ObjectTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
