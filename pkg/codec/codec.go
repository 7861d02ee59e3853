package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	// MajorVersion is the wire format generation this package reads and
	// writes. Buffers with any other major version are rejected.
	MajorVersion = 2
	// MinorVersion is written into new buffers. It is informational only.
	MinorVersion = 0

	HeaderSize         = 1
	SizeFieldSize      = 4
	ValueSectionOffset = HeaderSize + SizeFieldSize

	keyFieldSize    = 2
	typeTagSize     = 1
	blobLenSize     = 2
	countFieldSize  = 2
	arrayFlag       = 0x80
	typeCodeMask    = 0x7f
	bigEndianFlag   = 0x80
	versionBitsMask = 0x7
)

// Header is the decoded first five bytes of a buffer.
type Header struct {
	Major uint8
	Minor uint8
	// BigEndian is the producer byte order flag. The encoder never sets it,
	// since elements are always written little-endian, and the decoder
	// reports it without acting on it.
	BigEndian bool
	// ValueSectionSize is the length of everything after the size field.
	ValueSectionSize uint32
}

// Byte packs the version and byte order bits into the header byte.
func (h Header) Byte() byte {
	b := (h.Major&versionBitsMask)<<3 | h.Minor&versionBitsMask
	if h.BigEndian {
		b |= bigEndianFlag
	}
	return b
}

func parseHeaderByte(b byte) Header {
	return Header{
		Major:     (b >> 3) & versionBitsMask,
		Minor:     b & versionBitsMask,
		BigEndian: b&bigEndianFlag != 0,
	}
}

// Codec encodes records to and decodes records from the binary layout
//
//	[header(1)][valueSectionSize(4)][entry]...
//	entry: [key(2)][typeTag(1)][blobLength(2)]? [count(2)]? [elements]
//
// Codec values carry no mutable state and are safe for concurrent use.
type Codec struct {
	minor uint8
}

// Option configures a Codec.
type Option func(*Codec)

// WithMinorVersion sets the minor version written into encoded headers.
// Only the low three bits are kept.
func WithMinorVersion(v uint8) Option {
	return func(c *Codec) {
		c.minor = v & versionBitsMask
	}
}

// NewCodec creates a codec for the current major version.
func NewCodec(opts ...Option) *Codec {
	c := &Codec{minor: MinorVersion}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultCodec = NewCodec()

// Encode serializes r with the default codec.
func Encode(r *Record) ([]byte, error) {
	return defaultCodec.Encode(r)
}

// Decode parses data with the default codec.
func Decode(data []byte) (*Record, error) {
	return defaultCodec.Decode(data)
}

// DecodeHeader parses only the header of data with the default codec.
func DecodeHeader(data []byte) (Header, error) {
	return defaultCodec.DecodeHeader(data)
}

// EncodedSize returns the encoded length of r with the default codec.
func EncodedSize(r *Record) int {
	return defaultCodec.EncodedSize(r)
}

// header describes buffers written by c. Elements are always written
// little-endian, so the byte order flag stays clear on every host.
func (c *Codec) header() Header {
	return Header{Major: MajorVersion, Minor: c.minor}
}

// EncodedSize returns the exact length Encode will produce for r.
func (c *Codec) EncodedSize(r *Record) int {
	n := ValueSectionOffset
	if r == nil {
		return n
	}
	r.Range(func(_ uint16, e Entry) bool {
		n += entrySize(e)
		return true
	})
	return n
}

func entrySize(e Entry) int {
	n := keyFieldSize + typeTagSize
	if e.Type == Blob {
		n += blobLenSize
	}
	if e.IsArray() {
		n += countFieldSize
	}
	return n + e.Len()*e.ElemSize()
}

// Encode serializes r. Entries are written in r's iteration order. A nil
// record encodes as an empty one.
func (c *Codec) Encode(r *Record) ([]byte, error) {
	size := c.EncodedSize(r)
	if uint64(size-ValueSectionOffset) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: value section of %d bytes", ErrRecordTooLarge, size-ValueSectionOffset)
	}

	// Header and size field are backpatched once the value section is known.
	buf := make([]byte, ValueSectionOffset, size)
	if r != nil {
		var err error
		r.Range(func(key uint16, e Entry) bool {
			buf, err = appendEntry(buf, key, e)
			return err == nil
		})
		if err != nil {
			return nil, err
		}
	}

	buf[0] = c.header().Byte()
	binary.LittleEndian.PutUint32(buf[HeaderSize:], uint32(len(buf)-ValueSectionOffset))
	return buf, nil
}

func appendEntry(buf []byte, key uint16, e Entry) ([]byte, error) {
	if !e.Type.Valid() {
		return nil, fmt.Errorf("encode key %d: %w: %s", key, ErrInvalidType, e.Type)
	}
	if e.Len() == 0 {
		return nil, fmt.Errorf("encode key %d: %w", key, ErrEmptyEntry)
	}

	tag := e.Type.Code()
	if e.IsArray() {
		tag |= arrayFlag
	}
	buf = binary.LittleEndian.AppendUint16(buf, key)
	buf = append(buf, tag)
	if e.Type == Blob {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(e.ElemSize()))
	}
	if e.IsArray() {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(e.Len()))
	}
	for _, v := range e.values {
		buf = appendElement(buf, e.Type, v)
	}
	return buf, nil
}

func appendElement(buf []byte, t ValueType, v Value) []byte {
	le := binary.LittleEndian
	switch t {
	case S8:
		return append(buf, byte(int8(v.(IntValue))))
	case S16:
		return le.AppendUint16(buf, uint16(int16(v.(IntValue))))
	case S32:
		return le.AppendUint32(buf, uint32(int32(v.(IntValue))))
	case S64:
		return le.AppendUint64(buf, uint64(v.(IntValue)))
	case U8:
		return append(buf, byte(v.(UintValue)))
	case U16:
		return le.AppendUint16(buf, uint16(v.(UintValue)))
	case U32:
		return le.AppendUint32(buf, uint32(v.(UintValue)))
	case U64:
		return le.AppendUint64(buf, uint64(v.(UintValue)))
	case Float32:
		return le.AppendUint32(buf, math.Float32bits(float32(v.(FloatValue))))
	case Float64:
		return le.AppendUint64(buf, math.Float64bits(float64(v.(FloatValue))))
	default:
		return append(buf, v.(BlobValue)...)
	}
}
