package codec

import (
	"fmt"
	"math"
)

const (
	maxElements = math.MaxUint16 // element count field is a uint16
	maxBlobSize = math.MaxUint16 // blob length field is a uint16
	maxKey      = math.MaxUint16
)

// Entry is one typed value of a record. It holds one element (a scalar) or
// several (an array); all elements share the entry's type and, for blobs,
// one byte length.
type Entry struct {
	Type   ValueType
	values []Value
}

// newEntry validates and normalizes values for t.
func newEntry(t ValueType, values []Value) (Entry, error) {
	if !t.Valid() {
		return Entry{}, fmt.Errorf("%w: %s", ErrInvalidType, t)
	}
	if len(values) == 0 {
		return Entry{}, ErrEmptyEntry
	}
	if len(values) > maxElements {
		return Entry{}, fmt.Errorf("%w: %d > %d", ErrTooManyElements, len(values), maxElements)
	}

	e := Entry{Type: t, values: make([]Value, len(values))}
	for i, v := range values {
		nv, err := normalize(t, v)
		if err != nil {
			return Entry{}, fmt.Errorf("element %d: %w", i, err)
		}
		e.values[i] = nv
	}

	if t == Blob {
		size := len(e.values[0].(BlobValue))
		if size > maxBlobSize {
			return Entry{}, fmt.Errorf("%w: %d bytes > %d", ErrBlobTooLarge, size, maxBlobSize)
		}
		for i, v := range e.values[1:] {
			if len(v.(BlobValue)) != size {
				return Entry{}, fmt.Errorf("%w: element %d has %d bytes, want %d",
					ErrBlobLengthMismatch, i+1, len(v.(BlobValue)), size)
			}
		}
	}
	return e, nil
}

// Len returns the number of elements.
func (e Entry) Len() int { return len(e.values) }

// IsArray reports whether the entry is written with the array flag.
func (e Entry) IsArray() bool { return len(e.values) != 1 }

// ElemSize is the encoded width of one element.
func (e Entry) ElemSize() int {
	if e.Type == Blob {
		if len(e.values) == 0 {
			return 0
		}
		return len(e.values[0].(BlobValue))
	}
	return e.Type.Size()
}

// ElementBytes returns the wire encoding of element i.
func (e Entry) ElementBytes(i int) []byte {
	return appendElement(nil, e.Type, e.values[i])
}

// Values returns a copy of the elements.
func (e Entry) Values() []Value {
	out := make([]Value, len(e.values))
	for i, v := range e.values {
		if b, ok := v.(BlobValue); ok {
			v = BlobValue(append([]byte(nil), b...))
		}
		out[i] = v
	}
	return out
}

// Scalar returns the only element of a single-element entry.
func (e Entry) Scalar() (Value, bool) {
	if len(e.values) != 1 {
		return nil, false
	}
	return e.Values()[0], true
}

// Ints returns the elements of a signed integer entry, nil otherwise.
func (e Entry) Ints() []int64 {
	if !e.Type.IsSignedInteger() {
		return nil
	}
	out := make([]int64, len(e.values))
	for i, v := range e.values {
		out[i] = int64(v.(IntValue))
	}
	return out
}

// Uints returns the elements of an unsigned integer entry, nil otherwise.
func (e Entry) Uints() []uint64 {
	if !e.Type.IsInteger() || e.Type.IsSignedInteger() {
		return nil
	}
	out := make([]uint64, len(e.values))
	for i, v := range e.values {
		out[i] = uint64(v.(UintValue))
	}
	return out
}

// Floats returns the elements of a float entry, nil otherwise.
func (e Entry) Floats() []float64 {
	if !e.Type.IsFloat() {
		return nil
	}
	out := make([]float64, len(e.values))
	for i, v := range e.values {
		out[i] = float64(v.(FloatValue))
	}
	return out
}

// Blobs returns copies of the elements of a blob entry, nil otherwise.
func (e Entry) Blobs() [][]byte {
	if e.Type != Blob {
		return nil
	}
	out := make([][]byte, len(e.values))
	for i, v := range e.values {
		out[i] = append([]byte(nil), v.(BlobValue)...)
	}
	return out
}

// Equal compares type and elements. Floats compare bit for bit.
func (e Entry) Equal(o Entry) bool {
	if e.Type != o.Type || len(e.values) != len(o.values) {
		return false
	}
	for i := range e.values {
		if !valueEqual(e.values[i], o.values[i]) {
			return false
		}
	}
	return true
}

// Record maps 16-bit keys to entries. Iteration follows insertion order,
// which is also the order entries are encoded in.
//
// A Record is not safe for concurrent mutation.
type Record struct {
	entries map[uint16]Entry
	order   []uint16
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{entries: make(map[uint16]Entry)}
}

// Set stores values under key with an explicit type. Setting an existing
// key replaces its entry and moves it to the end of the iteration order.
func (r *Record) Set(key uint16, t ValueType, values ...Value) error {
	e, err := newEntry(t, values)
	if err != nil {
		return fmt.Errorf("set key %d: %w", key, err)
	}
	r.put(key, e)
	return nil
}

// SetBlob stores one or more equally sized byte sequences under key.
func (r *Record) SetBlob(key uint16, blobs ...[]byte) error {
	return r.Set(key, Blob, Blobs(blobs...)...)
}

// SetUnsigned stores v using the narrowest unsigned type that holds it.
func (r *Record) SetUnsigned(key uint16, v uint64) error {
	return r.Set(key, narrowestUnsigned(v), UintValue(v))
}

// SetSigned stores v using the narrowest signed type that holds it.
func (r *Record) SetSigned(key uint16, v int64) error {
	return r.Set(key, narrowestSigned(v), IntValue(v))
}

// SetInferred stores v with the type Infer picks for it. A ListValue
// becomes an array entry.
func (r *Record) SetInferred(key uint16, v Value) error {
	t, err := Infer(v)
	if err != nil {
		return fmt.Errorf("set key %d: %w", key, err)
	}
	if l, ok := v.(ListValue); ok {
		return r.Set(key, t, l...)
	}
	return r.Set(key, t, v)
}

func (r *Record) put(key uint16, e Entry) {
	if r.entries == nil {
		r.entries = make(map[uint16]Entry)
	}
	if _, ok := r.entries[key]; ok {
		r.unlink(key)
	}
	r.entries[key] = e
	r.order = append(r.order, key)
}

func (r *Record) unlink(key uint16) {
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

// Get returns the entry stored under key.
func (r *Record) Get(key uint16) (Entry, bool) {
	e, ok := r.entries[key]
	return e, ok
}

// Remove deletes key and reports whether it was present.
func (r *Record) Remove(key uint16) bool {
	if _, ok := r.entries[key]; !ok {
		return false
	}
	delete(r.entries, key)
	r.unlink(key)
	return true
}

// Len returns the number of keys. A nil record has none.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// Keys returns the keys in iteration order.
func (r *Record) Keys() []uint16 {
	return append([]uint16(nil), r.order...)
}

// Range calls fn for every entry in iteration order until fn returns false.
func (r *Record) Range(fn func(key uint16, e Entry) bool) {
	for _, k := range r.order {
		if !fn(k, r.entries[k]) {
			return
		}
	}
}

// Equal reports whether both records hold the same keys with equal entries.
// Iteration order is not compared. A nil record equals an empty one.
func (r *Record) Equal(o *Record) bool {
	if r.Len() != o.Len() {
		return false
	}
	if r == nil || o == nil {
		return true
	}
	for k, e := range r.entries {
		oe, ok := o.entries[k]
		if !ok || !e.Equal(oe) {
			return false
		}
	}
	return true
}

func (r *Record) scalar(key uint16) (Entry, error) {
	e, ok := r.entries[key]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %d", ErrNotFound, key)
	}
	if e.Len() != 1 {
		return Entry{}, fmt.Errorf("%w: key %d holds %d elements", ErrTypeMismatch, key, e.Len())
	}
	return e, nil
}

// Unsigned returns the scalar stored under key if it has an unsigned type.
func (r *Record) Unsigned(key uint16) (uint64, error) {
	e, err := r.scalar(key)
	if err != nil {
		return 0, err
	}
	if vs := e.Uints(); vs != nil {
		return vs[0], nil
	}
	return 0, fmt.Errorf("%w: key %d is %s", ErrTypeMismatch, key, e.Type)
}

// Signed returns the scalar stored under key if it has a signed integer type.
func (r *Record) Signed(key uint16) (int64, error) {
	e, err := r.scalar(key)
	if err != nil {
		return 0, err
	}
	if vs := e.Ints(); vs != nil {
		return vs[0], nil
	}
	return 0, fmt.Errorf("%w: key %d is %s", ErrTypeMismatch, key, e.Type)
}

// Float returns the scalar stored under key if it has a float type.
func (r *Record) Float(key uint16) (float64, error) {
	e, err := r.scalar(key)
	if err != nil {
		return 0, err
	}
	if vs := e.Floats(); vs != nil {
		return vs[0], nil
	}
	return 0, fmt.Errorf("%w: key %d is %s", ErrTypeMismatch, key, e.Type)
}

// Bytes returns the single blob stored under key.
func (r *Record) Bytes(key uint16) ([]byte, error) {
	e, err := r.scalar(key)
	if err != nil {
		return nil, err
	}
	if vs := e.Blobs(); vs != nil {
		return vs[0], nil
	}
	return nil, fmt.Errorf("%w: key %d is %s", ErrTypeMismatch, key, e.Type)
}
