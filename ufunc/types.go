package ufunc

// ElemType is the in-memory element type of one wrapper argument.
type ElemType uint8

const (
	Int8 ElemType = iota + 1
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
	Float32
	Float64
)

// Size returns the element size in bytes.
func (t ElemType) Size() int {
	switch t {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	}
	return 0
}

// TypeTag returns the numeric tag boxed values carry.
func (t ElemType) TypeTag() int64 {
	return int64(t)
}

func (t ElemType) String() string {
	switch t {
	case Int8:
		return "int8"
	case Uint8:
		return "uint8"
	case Int16:
		return "int16"
	case Uint16:
		return "uint16"
	case Int32:
		return "int32"
	case Uint32:
		return "uint32"
	case Int64:
		return "int64"
	case Uint64:
		return "uint64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	}
	return "invalid"
}

// Signature is the scalar kernel's calling convention: ordered input
// element types and one return element type. Immutable once a wrapper
// generation starts.
type Signature struct {
	Args []ElemType
	Ret  ElemType
}
