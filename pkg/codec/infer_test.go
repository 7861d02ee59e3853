package codec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfer(t *testing.T) {
	cases := []struct {
		name  string
		value Value
		want  ValueType
	}{
		{"small positive", IntValue(11), U8},
		{"u8 max", IntValue(255), U8},
		{"u16 min", IntValue(256), U16},
		{"u32", IntValue(6666666), U32},
		{"u64 max", UintValue(math.MaxUint64), U64},
		{"s8 min", IntValue(-128), S8},
		{"s16", IntValue(-222), S16},
		{"s32", IntValue(-44444), S32},
		{"s64", IntValue(-9999999999), S64},
		{"unsigned list", Ints(1, 2, 3), U8},
		{"mixed sign list", Ints(10, -100, 1000), S16},
		{"positive forces wider signed", Ints(128, -1), S16},
		{"narrow signed list", Ints(127, -1), S8},
		{"one wide element widens all", Ints(1, 2, 70000), U32},
		{"float scalar", FloatValue(1.5), Float64},
		{"float and int", ListValue{FloatValue(1.5), IntValue(2)}, Float64},
		{"blob", BlobValue("x"), Blob},
		{"blob list", Blobs([]byte("ab"), []byte("cd")), Blob},
		{"int64 max with negative", Ints(math.MaxInt64, -1), S64},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Infer(tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestInferErrors(t *testing.T) {
	cases := []struct {
		name  string
		value Value
	}{
		{"empty list", ListValue{}},
		{"nil", nil},
		{"nil element", ListValue{IntValue(1), nil}},
		{"nested list", ListValue{Ints(1, 2)}},
		{"int and blob", ListValue{IntValue(1), BlobValue("x")}},
		{"blob and float", ListValue{BlobValue("x"), FloatValue(1)}},
		{"huge unsigned with negative", ListValue{UintValue(math.MaxUint64), IntValue(-1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Infer(tc.value)
			assert.ErrorIs(t, err, ErrTypeInference)
			assert.Equal(t, Invalid, got)
		})
	}
}

func TestNarrowest(t *testing.T) {
	assert.Equal(t, U8, narrowestUnsigned(0))
	assert.Equal(t, U16, narrowestUnsigned(math.MaxUint8+1))
	assert.Equal(t, U32, narrowestUnsigned(math.MaxUint16+1))
	assert.Equal(t, U64, narrowestUnsigned(math.MaxUint32+1))

	assert.Equal(t, S8, narrowestSigned(100))
	assert.Equal(t, S16, narrowestSigned(200))
	assert.Equal(t, S32, narrowestSigned(math.MinInt16-1))
	assert.Equal(t, S64, narrowestSigned(math.MinInt64))
}

func TestFromUntyped(t *testing.T) {
	rec, err := FromUntyped(map[int]Value{
		10: Ints(10, -100, 1000),
		1:  IntValue(11),
		2:  IntValue(-222),
		3:  IntValue(3333),
		4:  IntValue(-44444),
		6:  IntValue(6666666),
		9:  IntValue(-9999999999),
		12: FloatValue(0.25),
		13: BlobValue("telemetry"),
	})
	require.NoError(t, err)

	assert.Equal(t, []uint16{1, 2, 3, 4, 6, 9, 10, 12, 13}, rec.Keys())

	want := map[uint16]ValueType{
		1: U8, 2: S16, 3: U16, 4: S32, 6: U32, 9: S64, 10: S16, 12: Float64, 13: Blob,
	}
	for key, typ := range want {
		e, ok := rec.Get(key)
		require.True(t, ok, "key %d", key)
		assert.Equal(t, typ, e.Type, "key %d", key)
	}

	e, _ := rec.Get(10)
	assert.True(t, e.IsArray())
	assert.Equal(t, []int64{10, -100, 1000}, e.Ints())
}

func TestFromUntypedErrors(t *testing.T) {
	_, err := FromUntyped(map[int]Value{-1: IntValue(1)})
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = FromUntyped(map[int]Value{0x10000: IntValue(1)})
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = FromUntyped(map[int]Value{1: ListValue{IntValue(1), BlobValue("x")}})
	assert.ErrorIs(t, err, ErrTypeInference)

	rec, err := FromUntyped(map[int]Value{0xFFFF: IntValue(1)})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Len())
}
