package host

import "encoding/binary"

// Mem is the linear memory seen by generated code and host services.
// Loads and stores are little-endian; widths are 1, 2, 4 or 8 bytes.
// The boolean result reports whether the access was in bounds.
type Mem interface {
	LoadN(off int64, size int) (uint64, bool)
	StoreN(off int64, size int, v uint64) bool
	Len() int64
}

// Memory is the in-process Mem backed by a byte slice.
type Memory struct {
	buf []byte
}

// NewMemory allocates a zeroed linear memory of the given size.
func NewMemory(size int) *Memory {
	return &Memory{buf: make([]byte, size)}
}

// Bytes exposes the backing buffer. Callers use it to place input
// buffers and inspect outputs.
func (m *Memory) Bytes() []byte {
	return m.buf
}

// Len returns the memory size in bytes.
func (m *Memory) Len() int64 {
	return int64(len(m.buf))
}

// LoadN reads size bytes at off, zero-extended.
func (m *Memory) LoadN(off int64, size int) (uint64, bool) {
	if off < 0 || off+int64(size) > int64(len(m.buf)) {
		return 0, false
	}
	b := m.buf[off:]
	switch size {
	case 1:
		return uint64(b[0]), true
	case 2:
		return uint64(binary.LittleEndian.Uint16(b)), true
	case 4:
		return uint64(binary.LittleEndian.Uint32(b)), true
	case 8:
		return binary.LittleEndian.Uint64(b), true
	}
	return 0, false
}

// StoreN writes the size low bytes of v at off.
func (m *Memory) StoreN(off int64, size int, v uint64) bool {
	if off < 0 || off+int64(size) > int64(len(m.buf)) {
		return false
	}
	b := m.buf[off:]
	switch size {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(b, v)
	default:
		return false
	}
	return true
}

// PutUint64 writes an 8-byte value at off. It is a convenience for
// composing args/dims/steps tables in callers and tests.
func (m *Memory) PutUint64(off int64, v uint64) {
	m.StoreN(off, 8, v)
}

// Uint64 reads an 8-byte value at off.
func (m *Memory) Uint64(off int64) uint64 {
	v, _ := m.LoadN(off, 8)
	return v
}
