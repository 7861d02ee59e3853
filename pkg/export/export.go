// Package export renders decoded records for humans and other tools and
// parses JSON input into records.
package export

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"

	"github.com/ssargent/sdbuf/pkg/codec"
	"github.com/vmihailenco/msgpack/v5"
)

// BlobEncoding selects how blob bytes are rendered as JSON strings.
type BlobEncoding string

const (
	Hex    BlobEncoding = "hex"
	Base64 BlobEncoding = "base64"
)

// ParseBlobEncoding accepts "hex", "base64" or "" (hex).
func ParseBlobEncoding(s string) (BlobEncoding, error) {
	switch BlobEncoding(s) {
	case "", Hex:
		return Hex, nil
	case Base64:
		return Base64, nil
	}
	return "", fmt.Errorf("unknown blob encoding %q", s)
}

func (enc BlobEncoding) encode(b []byte) string {
	if enc == Base64 {
		return base64.StdEncoding.EncodeToString(b)
	}
	return hex.EncodeToString(b)
}

// Names used for floats JSON numbers cannot carry.
const (
	NaN    = "NaN"
	PosInf = "+Inf"
	NegInf = "-Inf"
)

// floatName returns the string form of a non-finite float.
func floatName(f float64) (string, bool) {
	switch {
	case math.IsNaN(f):
		return NaN, true
	case math.IsInf(f, 1):
		return PosInf, true
	case math.IsInf(f, -1):
		return NegInf, true
	}
	return "", false
}

// render replaces []byte values (also inside slices) with encoded strings
// and non-finite floats with their names.
func (enc BlobEncoding) render(v any) any {
	switch x := v.(type) {
	case []byte:
		return enc.encode(x)
	case float64:
		if name, ok := floatName(x); ok {
			return name
		}
		return x
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = enc.render(e)
		}
		return out
	}
	return v
}

// Flat returns the flattened view of rec with blobs rendered as strings.
// Single-element entries are scalars, arrays are lists.
func Flat(rec *codec.Record, enc BlobEncoding) map[uint16]any {
	out := rec.Flatten()
	for k, v := range out {
		out[k] = enc.render(v)
	}
	return out
}

// Detailed returns the per-entry view of rec with blobs rendered as strings.
func Detailed(rec *codec.Record, enc BlobEncoding) []codec.EntryView {
	views := rec.Detailed()
	for i := range views {
		views[i].Value = enc.render(views[i].Value)
	}
	return views
}

// MarshalJSON renders the flattened view as indented JSON.
func MarshalJSON(rec *codec.Record, enc BlobEncoding) ([]byte, error) {
	return json.MarshalIndent(Flat(rec, enc), "", "  ")
}

// MarshalDetailedJSON renders the per-entry view as indented JSON.
func MarshalDetailedJSON(rec *codec.Record, enc BlobEncoding) ([]byte, error) {
	return json.MarshalIndent(Detailed(rec, enc), "", "  ")
}

// MarshalMsgpack renders the flattened view as MessagePack. Blobs stay
// binary and map keys are sorted.
func MarshalMsgpack(rec *codec.Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.GetEncoder()
	defer msgpack.PutEncoder(enc)

	enc.Reset(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(rec.Flatten()); err != nil {
		return nil, fmt.Errorf("failed to encode record using MsgPack: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalMsgpack reads back what MarshalMsgpack wrote as a plain map.
// Integers come back as int64 or uint64 and floats as float64.
func UnmarshalMsgpack(data []byte) (map[uint16]any, error) {
	var out map[uint16]any
	dec := msgpack.GetDecoder()
	defer msgpack.PutDecoder(dec)

	dec.Reset(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode MsgPack record: %w", err)
	}
	return out, nil
}
