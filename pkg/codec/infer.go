package codec

import (
	"fmt"
	"sort"
)

// Infer picks the narrowest wire type for a scalar or a homogeneous
// ListValue.
//
// Blobs infer to Blob. Any float forces Float64; Float32 is never chosen so
// that no precision is lost. Integers infer to a signed type when at least
// one element is negative, otherwise to an unsigned one, and the widest
// element decides the width of the whole list.
func Infer(v Value) (ValueType, error) {
	if l, ok := v.(ListValue); ok {
		return InferAll(l)
	}
	return InferAll([]Value{v})
}

// InferAll is Infer over the elements of a list.
func InferAll(values []Value) (ValueType, error) {
	if len(values) == 0 {
		return Invalid, fmt.Errorf("%w: no values", ErrTypeInference)
	}

	var blobs, floats, signed bool
	for i, v := range values {
		switch x := v.(type) {
		case BlobValue:
			blobs = true
		case FloatValue:
			floats = true
		case IntValue:
			if x < 0 {
				signed = true
			}
		case UintValue:
		case ListValue:
			return Invalid, fmt.Errorf("%w: element %d is a nested list", ErrTypeInference, i)
		default:
			return Invalid, fmt.Errorf("%w: element %d has unsupported kind %T", ErrTypeInference, i, v)
		}
	}

	if blobs {
		for i, v := range values {
			if _, ok := v.(BlobValue); !ok {
				return Invalid, fmt.Errorf("%w: element %d mixes %T with blobs", ErrTypeInference, i, v)
			}
		}
		return Blob, nil
	}
	if floats {
		return Float64, nil
	}

	candidates := unsignedBySize[:]
	if signed {
		candidates = signedBySize[:]
	}
	width := 0
	for i, v := range values {
		w, ok := fitWidth(candidates, v)
		if !ok {
			return Invalid, fmt.Errorf("%w: element %d (%v) fits no %s integer type",
				ErrTypeInference, i, v, signedness(signed))
		}
		if w > width {
			width = w
		}
	}
	return candidates[width], nil
}

// fitWidth returns the index of the first candidate whose range holds v.
func fitWidth(candidates []ValueType, v Value) (int, bool) {
	for i, t := range candidates {
		if _, err := normalize(t, v); err == nil {
			return i, true
		}
	}
	return 0, false
}

func signedness(signed bool) string {
	if signed {
		return "signed"
	}
	return "unsigned"
}

func narrowestUnsigned(v uint64) ValueType {
	w, _ := fitWidth(unsignedBySize[:], UintValue(v))
	return unsignedBySize[w]
}

func narrowestSigned(v int64) ValueType {
	w, _ := fitWidth(signedBySize[:], IntValue(v))
	return signedBySize[w]
}

// FromUntyped builds a record from loosely typed input, inferring the wire
// type of every value. Keys must lie in 0..0xFFFF. Entries are inserted in
// ascending key order so the encoded layout is deterministic.
func FromUntyped(m map[int]Value) (*Record, error) {
	keys := make([]int, 0, len(m))
	for k := range m {
		if k < 0 || k > maxKey {
			return nil, fmt.Errorf("%w: %d outside 0..%d", ErrInvalidKey, k, maxKey)
		}
		keys = append(keys, k)
	}
	sort.Ints(keys)

	r := NewRecord()
	for _, k := range keys {
		if err := r.SetInferred(uint16(k), m[k]); err != nil {
			return nil, err
		}
	}
	return r, nil
}
