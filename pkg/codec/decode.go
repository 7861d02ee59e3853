package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// versionDecoder parses the value section of a buffer whose header has
// already been validated for that major version.
type versionDecoder func(r *reader) (*Record, error)

// decoders dispatches on the header's major version. The string-keyed
// version 1 layout is not supported.
var decoders = map[uint8]versionDecoder{
	MajorVersion: decodeEntriesV2,
}

// reader walks a buffer and refuses to read past end.
type reader struct {
	buf []byte
	off int
	end int
}

func (r *reader) fail(field string, err error) error {
	return &DecodeError{Offset: r.off, Field: field, Err: err}
}

func (r *reader) take(n int, field string) ([]byte, error) {
	if n < 0 || n > r.end-r.off {
		return nil, r.fail(field, ErrTruncatedBuffer)
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) u8(field string) (uint8, error) {
	b, err := r.take(1, field)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u16(field string) (uint16, error) {
	b, err := r.take(2, field)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) u32(field string) (uint32, error) {
	b, err := r.take(4, field)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// DecodeHeader parses and validates the header byte and size field. It does
// not check that the buffer holds the whole value section.
func (c *Codec) DecodeHeader(data []byte) (Header, error) {
	r := &reader{buf: data, end: len(data)}
	return c.readHeader(r)
}

func (c *Codec) readHeader(r *reader) (Header, error) {
	hb, err := r.u8("header")
	if err != nil {
		return Header{}, err
	}
	h := parseHeaderByte(hb)
	if h.Major != MajorVersion {
		r.off = 0
		return Header{}, r.fail("header", fmt.Errorf("%w: got %d, want %d",
			ErrIncompatibleVersion, h.Major, MajorVersion))
	}
	if h.ValueSectionSize, err = r.u32("value section size"); err != nil {
		return Header{}, err
	}
	return h, nil
}

// Decode validates data and parses it into a fresh Record. It never returns
// a partially filled record: on any error the result is nil.
func (c *Codec) Decode(data []byte) (*Record, error) {
	r := &reader{buf: data, end: len(data)}
	h, err := c.readHeader(r)
	if err != nil {
		return nil, err
	}
	decode, ok := decoders[h.Major]
	if !ok {
		return nil, r.fail("header", fmt.Errorf("%w: no decoder for version %d", ErrIncompatibleVersion, h.Major))
	}

	if uint64(h.ValueSectionSize) > uint64(len(data)-ValueSectionOffset) {
		return nil, r.fail("value section", fmt.Errorf("%w: declares %d bytes, %d available",
			ErrTruncatedBuffer, h.ValueSectionSize, len(data)-ValueSectionOffset))
	}
	// Anything after the declared boundary belongs to the caller.
	r.end = ValueSectionOffset + int(h.ValueSectionSize)
	return decode(r)
}

func decodeEntriesV2(r *reader) (*Record, error) {
	rec := NewRecord()
	for r.off < r.end {
		key, e, err := readEntryV2(r)
		if err != nil {
			return nil, err
		}
		// Duplicate keys are not an error; the last one wins.
		rec.put(key, e)
	}
	return rec, nil
}

func readEntryV2(r *reader) (uint16, Entry, error) {
	key, err := r.u16("key")
	if err != nil {
		return 0, Entry{}, err
	}
	tagOff := r.off
	tag, err := r.u8("type tag")
	if err != nil {
		return 0, Entry{}, err
	}
	t, err := TypeByCode(tag & typeCodeMask)
	if err != nil {
		return 0, Entry{}, &DecodeError{Offset: tagOff, Field: "type tag", Err: err}
	}

	size := t.Size()
	if t == Blob {
		n, err := r.u16("blob length")
		if err != nil {
			return 0, Entry{}, err
		}
		size = int(n)
	}

	count := 1
	if tag&arrayFlag != 0 {
		countOff := r.off
		n, err := r.u16("element count")
		if err != nil {
			return 0, Entry{}, err
		}
		if n == 0 {
			return 0, Entry{}, &DecodeError{Offset: countOff, Field: "element count",
				Err: fmt.Errorf("%w: array of key %d has no elements", ErrMalformedEntry, key)}
		}
		count = int(n)
	}

	raw, err := r.take(count*size, "elements")
	if err != nil {
		return 0, Entry{}, err
	}

	e := Entry{Type: t, values: make([]Value, count)}
	for i := range e.values {
		e.values[i] = readElement(t, raw[i*size:(i+1)*size])
	}
	return key, e, nil
}

func readElement(t ValueType, b []byte) Value {
	le := binary.LittleEndian
	switch t {
	case S8:
		return IntValue(int8(b[0]))
	case S16:
		return IntValue(int16(le.Uint16(b)))
	case S32:
		return IntValue(int32(le.Uint32(b)))
	case S64:
		return IntValue(int64(le.Uint64(b)))
	case U8:
		return UintValue(b[0])
	case U16:
		return UintValue(le.Uint16(b))
	case U32:
		return UintValue(le.Uint32(b))
	case U64:
		return UintValue(le.Uint64(b))
	case Float32:
		return FloatValue(math.Float32frombits(le.Uint32(b)))
	case Float64:
		return FloatValue(math.Float64frombits(le.Uint64(b)))
	default:
		return BlobValue(append([]byte(nil), b...))
	}
}
