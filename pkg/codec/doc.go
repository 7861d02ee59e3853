// Package codec provides the sdbuf binary record format.
//
// An sdbuf buffer is a compact, self-describing set of integer-keyed values.
// Every value carries its own wire type, so a reader needs no schema to
// decode a buffer. It is meant for small configuration and telemetry
// payloads passed between processes or written to disk.
//
// # Buffer Format
//
// All multi-byte fields are little-endian:
//
//	[Header(1)][ValueSectionSize(4)][Entry]...
//
// The header byte packs the major version into bits 3-5, the minor version
// into bits 0-2 and a producer byte order flag into bit 7. ValueSectionSize
// counts every byte after the size field.
//
// Each entry is laid out as:
//
//	[Key(2)][TypeTag(1)][BlobLength(2)]?[Count(2)]?[Elements]
//
// Fields:
//   - Key: 16-bit record key
//   - TypeTag: type code in the low seven bits, array flag in bit 7
//   - BlobLength: present only for blobs; the length of every blob element
//   - Count: present only when the array flag is set
//   - Elements: Count fixed-width values, or Count blobs of BlobLength bytes
//
// An entry with exactly one element is written without the array flag and
// without a count.
//
// # Types
//
// Wire codes are fixed:
//
//	s8=0 s16=1 s32=2 s64=3 u8=4 u16=5 u32=6 u64=7 float32=8 float64=9 blob=10
//
// Code 11 (invalid) and above are rejected by the decoder.
//
// # Usage
//
// Building and encoding a record:
//
//	rec := codec.NewRecord()
//	if err := rec.Set(1, codec.U16, codec.UintValue(8080)); err != nil {
//	    return err
//	}
//	rec.SetSigned(2, -40)
//	rec.SetBlob(3, []byte("eth0"))
//
//	buf, err := codec.Encode(rec)
//
// Decoding it again:
//
//	rec, err := codec.Decode(buf)
//	port, err := rec.Unsigned(1)
//
// Records can also be built from untyped values, in which case the narrowest
// wire type is inferred:
//
//	rec, err := codec.FromUntyped(map[int]codec.Value{
//	    1: codec.IntValue(11),
//	    2: codec.Ints(10, -100, 1000), // s16 array
//	    3: codec.FloatValue(1.5),      // float64
//	})
//
// # Error Handling
//
// Decode returns a *DecodeError carrying the offset and field at which it
// stopped. It wraps one of ErrIncompatibleVersion, ErrUnknownType,
// ErrTruncatedBuffer or ErrMalformedEntry; use errors.Is to classify it.
// Decode never returns a partially decoded record.
//
// Construction errors (ErrInvalidKey, ErrTypeInference, ErrValueOutOfRange,
// ErrBlobLengthMismatch, ...) are returned from Set and FromUntyped.
//
// # Byte Order
//
// Buffers are always written little-endian and the byte order flag is left
// clear. The decoder ignores the flag and never swaps bytes.
//
// # Thread Safety
//
// Codec values are safe for concurrent use. A Record belongs to whoever
// created or decoded it and must not be mutated concurrently.
package codec
