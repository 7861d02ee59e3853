package export

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ssargent/sdbuf/pkg/codec"
)

// ParseJSON builds a record from a JSON object keyed by decimal record keys.
//
// Values may be numbers, arrays of numbers, blobs written as {"hex": "..."}
// or {"base64": "..."} (or arrays of those), or explicitly typed entries
// written as {"type": "u32", "value": 7} where value is a scalar or array.
// The strings "NaN", "+Inf" and "-Inf" stand for the matching floats.
// Untyped values get their wire type inferred. Entries are added in
// ascending key order.
func ParseJSON(data []byte) (*codec.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON record: %w", err)
	}

	type item struct {
		key uint16
		val any
	}
	items := make([]item, 0, len(raw))
	for k, v := range raw {
		n, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil || n < 0 || n > 0xFFFF {
			return nil, fmt.Errorf("%w: %q", codec.ErrInvalidKey, k)
		}
		items = append(items, item{key: uint16(n), val: v})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].key < items[j].key })

	rec := codec.NewRecord()
	for _, it := range items {
		if obj, ok := it.val.(map[string]any); ok {
			if _, typed := obj["type"]; typed {
				if err := setTyped(rec, it.key, obj); err != nil {
					return nil, err
				}
				continue
			}
		}
		v, err := ValueFromJSON(it.val)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", it.key, err)
		}
		if err := rec.SetInferred(it.key, v); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

func setTyped(rec *codec.Record, key uint16, obj map[string]any) error {
	name, ok := obj["type"].(string)
	if !ok {
		return fmt.Errorf("key %d: %w: type must be a string", key, codec.ErrUnknownType)
	}
	t, err := codec.ParseValueType(name)
	if err != nil {
		return fmt.Errorf("key %d: %w", key, err)
	}
	raw, ok := obj["value"]
	if !ok {
		return fmt.Errorf("key %d: %w", key, codec.ErrEmptyEntry)
	}
	v, err := ValueFromJSON(raw)
	if err != nil {
		return fmt.Errorf("key %d: %w", key, err)
	}
	if l, ok := v.(codec.ListValue); ok {
		return rec.Set(key, t, l...)
	}
	return rec.Set(key, t, v)
}

// ValueFromJSON converts a value produced by encoding/json (decoded with
// UseNumber) into a codec.Value.
func ValueFromJSON(v any) (codec.Value, error) {
	switch x := v.(type) {
	case json.Number:
		return numberValue(x)
	case float64:
		return codec.FloatValue(x), nil
	case []any:
		l := make(codec.ListValue, len(x))
		for i, e := range x {
			ev, err := ValueFromJSON(e)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			l[i] = ev
		}
		return l, nil
	case map[string]any:
		return blobValue(x)
	case string:
		switch x {
		case NaN:
			return codec.FloatValue(math.NaN()), nil
		case PosInf:
			return codec.FloatValue(math.Inf(1)), nil
		case NegInf:
			return codec.FloatValue(math.Inf(-1)), nil
		}
		return nil, fmt.Errorf("%w: string %q (write blobs as {\"hex\": ...})", codec.ErrTypeInference, x)
	}
	return nil, fmt.Errorf("%w: unsupported JSON value %v", codec.ErrTypeInference, v)
}

func numberValue(n json.Number) (codec.Value, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return codec.IntValue(i), nil
		}
		if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return codec.UintValue(u), nil
		}
		return nil, fmt.Errorf("%w: integer %s exceeds 64 bits", codec.ErrTypeInference, s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", codec.ErrTypeInference, err)
	}
	return codec.FloatValue(f), nil
}

func blobValue(obj map[string]any) (codec.Value, error) {
	if len(obj) != 1 {
		return nil, fmt.Errorf("%w: blob object needs exactly one of \"hex\" or \"base64\"", codec.ErrTypeInference)
	}
	for k, v := range obj {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: blob %s must be a string", codec.ErrTypeInference, k)
		}
		var (
			b   []byte
			err error
		)
		switch k {
		case "hex":
			b, err = hex.DecodeString(s)
		case "base64":
			b, err = base64.StdEncoding.DecodeString(s)
		default:
			return nil, fmt.Errorf("%w: unknown blob encoding %q", codec.ErrTypeInference, k)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: bad %s blob: %v", codec.ErrTypeInference, k, err)
		}
		return codec.BlobValue(b), nil
	}
	return nil, nil
}
