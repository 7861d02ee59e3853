package export

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/ssargent/sdbuf/pkg/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(t *testing.T) *codec.Record {
	t.Helper()
	rec := codec.NewRecord()
	require.NoError(t, rec.SetUnsigned(1, 11))
	require.NoError(t, rec.SetSigned(2, -222))
	require.NoError(t, rec.Set(10, codec.S16, codec.Ints(10, -100, 1000)...))
	require.NoError(t, rec.SetBlob(20, []byte{0xde, 0xad}))
	require.NoError(t, rec.SetBlob(21, []byte("ab"), []byte("cd")))
	return rec
}

func TestParseBlobEncoding(t *testing.T) {
	enc, err := ParseBlobEncoding("")
	require.NoError(t, err)
	assert.Equal(t, Hex, enc)

	enc, err = ParseBlobEncoding("base64")
	require.NoError(t, err)
	assert.Equal(t, Base64, enc)

	_, err = ParseBlobEncoding("ascii85")
	assert.Error(t, err)
}

func TestFlat(t *testing.T) {
	assert.Equal(t, map[uint16]any{
		1:  uint64(11),
		2:  int64(-222),
		10: []any{int64(10), int64(-100), int64(1000)},
		20: "dead",
		21: []any{"6162", "6364"},
	}, Flat(sample(t), Hex))

	flat := Flat(sample(t), Base64)
	assert.Equal(t, "3q0=", flat[20])
}

func TestMarshalJSON(t *testing.T) {
	data, err := MarshalJSON(sample(t), Hex)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"1": 11,
		"2": -222,
		"10": [10, -100, 1000],
		"20": "dead",
		"21": ["6162", "6364"]
	}`, string(data))
}

func TestMarshalDetailedJSON(t *testing.T) {
	rec := codec.NewRecord()
	require.NoError(t, rec.Set(3, codec.Float32, codec.FloatValue(0.5)))
	require.NoError(t, rec.SetBlob(4, []byte{1, 2, 3}))

	data, err := MarshalDetailedJSON(rec, Hex)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"key": 3, "type": "float32", "count": 1, "elem_size": 4, "value": 0.5},
		{"key": 4, "type": "blob", "count": 1, "elem_size": 3, "value": "010203"}
	]`, string(data))
}

func TestMsgpackRoundTrip(t *testing.T) {
	data, err := MarshalMsgpack(sample(t))
	require.NoError(t, err)

	out, err := UnmarshalMsgpack(data)
	require.NoError(t, err)
	require.Len(t, out, 5)

	assert.EqualValues(t, 11, out[1])
	assert.EqualValues(t, -222, out[2])
	assert.Equal(t, []byte{0xde, 0xad}, out[20])

	arr, ok := out[10].([]any)
	require.True(t, ok)
	require.Len(t, arr, 3)
	assert.EqualValues(t, -100, arr[1])
}

func TestParseJSON_Inferred(t *testing.T) {
	rec, err := ParseJSON([]byte(`{
		"1": 11,
		"2": -222,
		"9": -9999999999,
		"10": [10, -100, 1000],
		"11": [1.5, 2],
		"12": 18446744073709551615,
		"13": {"hex": "dead"},
		"14": [{"base64": "YWI="}, {"hex": "6364"}]
	}`))
	require.NoError(t, err)

	assert.Equal(t, []uint16{1, 2, 9, 10, 11, 12, 13, 14}, rec.Keys())

	want := map[uint16]codec.ValueType{
		1: codec.U8, 2: codec.S16, 9: codec.S64, 10: codec.S16,
		11: codec.Float64, 12: codec.U64, 13: codec.Blob, 14: codec.Blob,
	}
	for key, typ := range want {
		e, ok := rec.Get(key)
		require.True(t, ok)
		assert.Equal(t, typ, e.Type, "key %d", key)
	}

	u, err := rec.Unsigned(12)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), u)

	e, _ := rec.Get(14)
	assert.Equal(t, [][]byte{[]byte("ab"), []byte("cd")}, e.Blobs())
}

func TestParseJSON_Typed(t *testing.T) {
	rec, err := ParseJSON([]byte(`{
		"1": {"type": "u32", "value": 7},
		"2": {"type": "float32", "value": [0.5, 1]},
		"3": {"type": "blob", "value": {"hex": "00ff"}},
		"4": {"type": "s64", "value": [1, 2, 3]}
	}`))
	require.NoError(t, err)

	e, _ := rec.Get(1)
	assert.Equal(t, codec.U32, e.Type)
	e, _ = rec.Get(2)
	assert.Equal(t, codec.Float32, e.Type)
	assert.Equal(t, []float64{0.5, 1}, e.Floats())
	b, err := rec.Bytes(3)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0xff}, b)
	e, _ = rec.Get(4)
	assert.Equal(t, []int64{1, 2, 3}, e.Ints())
}

func TestParseJSON_Errors(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  error
	}{
		{"mixed int and string", `{"1": [1, "x"]}`, codec.ErrTypeInference},
		{"plain string", `{"1": "hello"}`, codec.ErrTypeInference},
		{"boolean", `{"1": true}`, codec.ErrTypeInference},
		{"null", `{"1": null}`, codec.ErrTypeInference},
		{"empty list", `{"1": []}`, codec.ErrTypeInference},
		{"bad hex", `{"1": {"hex": "zz"}}`, codec.ErrTypeInference},
		{"too big integer", `{"1": 99999999999999999999}`, codec.ErrTypeInference},
		{"key not a number", `{"port": 1}`, codec.ErrInvalidKey},
		{"negative key", `{"-1": 1}`, codec.ErrInvalidKey},
		{"key too large", `{"65536": 1}`, codec.ErrInvalidKey},
		{"unknown type name", `{"1": {"type": "u128", "value": 1}}`, codec.ErrUnknownType},
		{"typed without value", `{"1": {"type": "u8"}}`, codec.ErrEmptyEntry},
		{"typed out of range", `{"1": {"type": "u8", "value": 300}}`, codec.ErrValueOutOfRange},
		{"blob lengths differ", `{"1": [{"hex": "00"}, {"hex": "0000"}]}`, codec.ErrBlobLengthMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, err := ParseJSON([]byte(tc.input))
			assert.ErrorIs(t, err, tc.want)
			assert.Nil(t, rec)
		})
	}

	_, err := ParseJSON([]byte(`not json`))
	assert.Error(t, err)
}

func TestParseJSON_RoundTripThroughJSON(t *testing.T) {
	rec := sample(t)
	data, err := MarshalJSON(rec, Hex)
	require.NoError(t, err)

	// blobs come back as strings, so rewrite them in object form first
	var flat map[string]any
	require.NoError(t, json.Unmarshal(data, &flat))
	flat["20"] = map[string]any{"hex": flat["20"]}
	flat["21"] = []any{
		map[string]any{"hex": "6162"},
		map[string]any{"hex": "6364"},
	}
	data, err = json.Marshal(flat)
	require.NoError(t, err)

	parsed, err := ParseJSON(data)
	require.NoError(t, err)
	assert.True(t, rec.Equal(parsed))
}

func TestMarshalJSON_NonFiniteFloats(t *testing.T) {
	rec := codec.NewRecord()
	require.NoError(t, rec.Set(1, codec.Float64, codec.FloatValue(math.NaN())))
	require.NoError(t, rec.Set(2, codec.Float32, codec.FloatValue(math.Inf(1))))
	require.NoError(t, rec.Set(3, codec.Float64, codec.Floats(1.5, math.Inf(-1))...))

	data, err := MarshalJSON(rec, Hex)
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(data, &flat))
	assert.Equal(t, "NaN", flat["1"])
	assert.Equal(t, "+Inf", flat["2"])
	assert.Equal(t, []any{1.5, "-Inf"}, flat["3"])

	_, err = MarshalDetailedJSON(rec, Base64)
	require.NoError(t, err)

	parsed, err := ParseJSON(data)
	require.NoError(t, err)
	nan, err := parsed.Float(1)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(nan))
	inf, err := parsed.Float(2)
	require.NoError(t, err)
	assert.True(t, math.IsInf(inf, 1))
	e, ok := parsed.Get(3)
	require.True(t, ok)
	assert.Equal(t, codec.Float64, e.Type)
	assert.True(t, math.IsInf(e.Floats()[1], -1))
}
