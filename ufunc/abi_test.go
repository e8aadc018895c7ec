package ufunc

import (
	"math"

	"github.com/numforge/ufuncgen/host"
)

// loopCall is one assembled wrapper invocation: the linear memory plus
// the byte offsets of the args, dims and steps tables inside it.
type loopCall struct {
	mem   *host.Memory
	args  int64
	dims  int64
	steps int64
	data  []int64 // buffer base offsets, one per argument
}

// layoutLoop packs per-argument buffers and the ABI tables into one
// memory: buffers first (8-byte aligned), then the args table pointing
// at them, the dims table and the steps table.
func layoutLoop(bufs [][]byte, dims, steps []int64) *loopCall {
	off := int64(16)
	data := make([]int64, len(bufs))
	for i, b := range bufs {
		data[i] = off
		off += int64(len(b))
		off = (off + 7) &^ 7
	}

	c := &loopCall{data: data}
	c.args = off
	off += int64(len(bufs)) * 8
	c.dims = off
	off += int64(len(dims)) * 8
	c.steps = off
	off += int64(len(steps)) * 8

	c.mem = host.NewMemory(int(off))
	for i, b := range bufs {
		copy(c.mem.Bytes()[data[i]:], b)
	}
	for i, d := range data {
		c.mem.PutUint64(c.args+int64(i)*8, uint64(d))
	}
	for i, d := range dims {
		c.mem.PutUint64(c.dims+int64(i)*8, uint64(d))
	}
	for i, s := range steps {
		c.mem.PutUint64(c.steps+int64(i)*8, uint64(s))
	}
	return c
}

// buffer returns the bytes of the i-th argument buffer.
func (c *loopCall) buffer(i, size int) []byte {
	return c.mem.Bytes()[c.data[i] : c.data[i]+int64(size)]
}

func f32Bytes(vals ...float32) []byte {
	b := make([]byte, 4*len(vals))
	for i, v := range vals {
		le32(b[i*4:], math.Float32bits(v))
	}
	return b
}

func f64Bytes(vals ...float64) []byte {
	b := make([]byte, 8*len(vals))
	for i, v := range vals {
		le64(b[i*8:], math.Float64bits(v))
	}
	return b
}

func i64Bytes(vals ...int64) []byte {
	b := make([]byte, 8*len(vals))
	for i, v := range vals {
		le64(b[i*8:], uint64(v))
	}
	return b
}

func le32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func le64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func f32At(b []byte, i int) float32 {
	var v uint32
	for k := 0; k < 4; k++ {
		v |= uint32(b[i*4+k]) << (8 * k)
	}
	return math.Float32frombits(v)
}

func f64At(b []byte, i int) float64 {
	var v uint64
	for k := 0; k < 8; k++ {
		v |= uint64(b[i*8+k]) << (8 * k)
	}
	return math.Float64frombits(v)
}

func i64At(b []byte, i int) int64 {
	var v uint64
	for k := 0; k < 8; k++ {
		v |= uint64(b[i*8+k]) << (8 * k)
	}
	return int64(v)
}

func filled(n int, v byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = v
	}
	return b
}
