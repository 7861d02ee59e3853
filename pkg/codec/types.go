package codec

import (
	"fmt"
	"math"
	"strings"
)

// ValueType identifies the wire type of an entry. The numeric value of each
// type is its wire code and must never change.
type ValueType uint8

const (
	S8 ValueType = iota
	S16
	S32
	S64
	U8
	U16
	U32
	U64
	Float32
	Float64
	Blob
	Invalid
)

// Bounds is the inclusive range of an integer type. Min is only meaningful
// for signed types; unsigned types always start at zero.
type Bounds struct {
	Min int64
	Max uint64
}

type typeInfo struct {
	name   string
	size   int
	signed bool
	bounds Bounds
}

var registry = [...]typeInfo{
	S8:      {name: "s8", size: 1, signed: true, bounds: Bounds{Min: math.MinInt8, Max: math.MaxInt8}},
	S16:     {name: "s16", size: 2, signed: true, bounds: Bounds{Min: math.MinInt16, Max: math.MaxInt16}},
	S32:     {name: "s32", size: 4, signed: true, bounds: Bounds{Min: math.MinInt32, Max: math.MaxInt32}},
	S64:     {name: "s64", size: 8, signed: true, bounds: Bounds{Min: math.MinInt64, Max: math.MaxInt64}},
	U8:      {name: "u8", size: 1, bounds: Bounds{Max: math.MaxUint8}},
	U16:     {name: "u16", size: 2, bounds: Bounds{Max: math.MaxUint16}},
	U32:     {name: "u32", size: 4, bounds: Bounds{Max: math.MaxUint32}},
	U64:     {name: "u64", size: 8, bounds: Bounds{Max: math.MaxUint64}},
	Float32: {name: "float32", size: 4, signed: true},
	Float64: {name: "float64", size: 8, signed: true},
	Blob:    {name: "blob"},
	Invalid: {name: "invalid"},
}

// signedBySize and unsignedBySize list integer types narrowest first.
var (
	signedBySize   = [...]ValueType{S8, S16, S32, S64}
	unsignedBySize = [...]ValueType{U8, U16, U32, U64}
)

// TypeByCode resolves a wire code. Invalid and anything above it are rejected.
func TypeByCode(code uint8) (ValueType, error) {
	if code >= uint8(Invalid) {
		return Invalid, fmt.Errorf("%w: code %d", ErrUnknownType, code)
	}
	return ValueType(code), nil
}

// ParseValueType looks a type up by name. The aliases "float" and
// "double" are accepted as well.
func ParseValueType(name string) (ValueType, error) {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "float", "f32":
		return Float32, nil
	case "double", "f64":
		return Float64, nil
	default:
		for t := S8; t < Invalid; t++ {
			if registry[t].name == n {
				return t, nil
			}
		}
	}
	return Invalid, fmt.Errorf("%w: %q", ErrUnknownType, name)
}

// Code returns the wire code of t.
func (t ValueType) Code() uint8 { return uint8(t) }

// Valid reports whether t may appear on the wire.
func (t ValueType) Valid() bool { return t < Invalid }

// Size is the fixed element width in bytes; 0 means variable (blob) or invalid.
func (t ValueType) Size() int {
	if t > Invalid {
		return 0
	}
	return registry[t].size
}

func (t ValueType) Signed() bool {
	return t <= Invalid && registry[t].signed
}

func (t ValueType) IsInteger() bool { return t <= U64 }

func (t ValueType) IsSignedInteger() bool { return t <= S64 }

func (t ValueType) IsFloat() bool { return t == Float32 || t == Float64 }

// Range returns the representable range of an integer type. ok is false for
// floats, blobs and invalid types.
func (t ValueType) Range() (b Bounds, ok bool) {
	if !t.IsInteger() {
		return Bounds{}, false
	}
	return registry[t].bounds, true
}

func (t ValueType) String() string {
	if t > Invalid {
		return fmt.Sprintf("type(%d)", uint8(t))
	}
	return registry[t].name
}

// MarshalText lets ValueType render by name in JSON, YAML and msgpack views.
func (t ValueType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *ValueType) UnmarshalText(text []byte) error {
	v, err := ParseValueType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
