package codec

import (
	"bytes"
	"fmt"
	"math"
)

// Value is an untyped input or decoded element. The set of implementations is
// closed: IntValue, UintValue, FloatValue, BlobValue and ListValue.
type Value interface {
	isValue()
}

type (
	IntValue   int64
	UintValue  uint64
	FloatValue float64
	BlobValue  []byte
	ListValue  []Value
)

func (IntValue) isValue()   {}
func (UintValue) isValue()  {}
func (FloatValue) isValue() {}
func (BlobValue) isValue()  {}
func (ListValue) isValue()  {}

// Ints wraps a slice of signed integers as a ListValue.
func Ints(vs ...int64) ListValue {
	l := make(ListValue, len(vs))
	for i, v := range vs {
		l[i] = IntValue(v)
	}
	return l
}

// Uints wraps a slice of unsigned integers as a ListValue.
func Uints(vs ...uint64) ListValue {
	l := make(ListValue, len(vs))
	for i, v := range vs {
		l[i] = UintValue(v)
	}
	return l
}

// Floats wraps a slice of floats as a ListValue.
func Floats(vs ...float64) ListValue {
	l := make(ListValue, len(vs))
	for i, v := range vs {
		l[i] = FloatValue(v)
	}
	return l
}

// Blobs wraps byte slices as a ListValue.
func Blobs(bs ...[]byte) ListValue {
	l := make(ListValue, len(bs))
	for i, b := range bs {
		l[i] = BlobValue(b)
	}
	return l
}

// normalize converts v to the canonical element representation for t:
// IntValue for signed integers, UintValue for unsigned integers, FloatValue
// for floats (rounded to float32 precision for Float32) and a private copy of
// the bytes for blobs.
func normalize(t ValueType, v Value) (Value, error) {
	switch {
	case t.IsSignedInteger():
		b := registry[t].bounds
		switch x := v.(type) {
		case IntValue:
			if int64(x) < b.Min || (x >= 0 && uint64(x) > b.Max) {
				return nil, fmt.Errorf("%w: %d does not fit %s", ErrValueOutOfRange, x, t)
			}
			return x, nil
		case UintValue:
			if uint64(x) > b.Max {
				return nil, fmt.Errorf("%w: %d does not fit %s", ErrValueOutOfRange, x, t)
			}
			return IntValue(x), nil
		}
	case t.IsInteger():
		b := registry[t].bounds
		switch x := v.(type) {
		case IntValue:
			if x < 0 || uint64(x) > b.Max {
				return nil, fmt.Errorf("%w: %d does not fit %s", ErrValueOutOfRange, x, t)
			}
			return UintValue(x), nil
		case UintValue:
			if uint64(x) > b.Max {
				return nil, fmt.Errorf("%w: %d does not fit %s", ErrValueOutOfRange, x, t)
			}
			return x, nil
		}
	case t.IsFloat():
		var f float64
		switch x := v.(type) {
		case FloatValue:
			f = float64(x)
		case IntValue:
			f = float64(x)
		case UintValue:
			f = float64(x)
		default:
			return nil, fmt.Errorf("%w: %T cannot be stored as %s", ErrTypeMismatch, v, t)
		}
		if t == Float32 {
			if math.Abs(f) > math.MaxFloat32 && !math.IsInf(f, 0) {
				return nil, fmt.Errorf("%w: %g does not fit %s", ErrValueOutOfRange, f, t)
			}
			f = float64(float32(f))
		}
		return FloatValue(f), nil
	case t == Blob:
		if x, ok := v.(BlobValue); ok {
			return BlobValue(bytes.Clone(x)), nil
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidType, t)
	}
	return nil, fmt.Errorf("%w: %T cannot be stored as %s", ErrTypeMismatch, v, t)
}

func valueEqual(a, b Value) bool {
	switch x := a.(type) {
	case IntValue:
		y, ok := b.(IntValue)
		return ok && x == y
	case UintValue:
		y, ok := b.(UintValue)
		return ok && x == y
	case FloatValue:
		y, ok := b.(FloatValue)
		return ok && math.Float64bits(float64(x)) == math.Float64bits(float64(y))
	case BlobValue:
		y, ok := b.(BlobValue)
		return ok && bytes.Equal(x, y)
	case ListValue:
		y, ok := b.(ListValue)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !valueEqual(x[i], y[i]) {
				return false
			}
		}
		return true
	}
	return false
}
