package codec

// EntryView is a flat, serialization friendly description of one entry.
type EntryView struct {
	Key      uint16    `json:"key" msgpack:"key"`
	Type     ValueType `json:"type" msgpack:"type"`
	Count    int       `json:"count" msgpack:"count"`
	ElemSize int       `json:"elem_size" msgpack:"elem_size"`
	Value    any       `json:"value" msgpack:"value"`
}

// Native converts an element to a plain Go value: int64, uint64, float64 or
// []byte.
func Native(v Value) any {
	switch x := v.(type) {
	case IntValue:
		return int64(x)
	case UintValue:
		return uint64(x)
	case FloatValue:
		return float64(x)
	case BlobValue:
		return []byte(x)
	case ListValue:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Native(e)
		}
		return out
	}
	return nil
}

// Native returns the entry as a plain Go value. Single-element entries
// unwrap to a scalar; arrays become a []any.
func (e Entry) Native() any {
	vs := e.Values()
	if len(vs) == 1 {
		return Native(vs[0])
	}
	return Native(ListValue(vs))
}

// Flatten returns the record as a key to value map using Entry.Native.
func (r *Record) Flatten() map[uint16]any {
	out := make(map[uint16]any, r.Len())
	r.Range(func(key uint16, e Entry) bool {
		out[key] = e.Native()
		return true
	})
	return out
}

// Detailed describes every entry in iteration order.
func (r *Record) Detailed() []EntryView {
	out := make([]EntryView, 0, r.Len())
	r.Range(func(key uint16, e Entry) bool {
		out = append(out, EntryView{
			Key:      key,
			Type:     e.Type,
			Count:    e.Len(),
			ElemSize: e.ElemSize(),
			Value:    e.Native(),
		})
		return true
	})
	return out
}
