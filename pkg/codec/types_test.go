package codec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeCodesAreStable(t *testing.T) {
	want := map[ValueType]uint8{
		S8: 0, S16: 1, S32: 2, S64: 3,
		U8: 4, U16: 5, U32: 6, U64: 7,
		Float32: 8, Float64: 9, Blob: 10, Invalid: 11,
	}
	for typ, code := range want {
		assert.Equal(t, code, typ.Code(), typ.String())
	}
}

func TestTypeByCode(t *testing.T) {
	for code := uint8(0); code < 11; code++ {
		typ, err := TypeByCode(code)
		require.NoError(t, err)
		assert.Equal(t, code, typ.Code())
	}

	for _, code := range []uint8{11, 12, 0x7f, 0xff} {
		typ, err := TypeByCode(code)
		assert.ErrorIs(t, err, ErrUnknownType, "code %d", code)
		assert.Equal(t, Invalid, typ)
	}
}

func TestTypeSizes(t *testing.T) {
	cases := []struct {
		typ    ValueType
		size   int
		signed bool
	}{
		{S8, 1, true}, {S16, 2, true}, {S32, 4, true}, {S64, 8, true},
		{U8, 1, false}, {U16, 2, false}, {U32, 4, false}, {U64, 8, false},
		{Float32, 4, true}, {Float64, 8, true},
		{Blob, 0, false}, {Invalid, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.typ.String(), func(t *testing.T) {
			assert.Equal(t, tc.size, tc.typ.Size())
			assert.Equal(t, tc.signed, tc.typ.Signed())
		})
	}
}

func TestTypeRange(t *testing.T) {
	b, ok := S16.Range()
	require.True(t, ok)
	assert.Equal(t, int64(math.MinInt16), b.Min)
	assert.Equal(t, uint64(math.MaxInt16), b.Max)

	b, ok = U64.Range()
	require.True(t, ok)
	assert.Equal(t, int64(0), b.Min)
	assert.Equal(t, uint64(math.MaxUint64), b.Max)

	for _, typ := range []ValueType{Float32, Float64, Blob, Invalid} {
		_, ok := typ.Range()
		assert.False(t, ok, typ.String())
	}
}

func TestParseValueType(t *testing.T) {
	for typ := S8; typ < Invalid; typ++ {
		got, err := ParseValueType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}

	got, err := ParseValueType("double")
	require.NoError(t, err)
	assert.Equal(t, Float64, got)

	got, err = ParseValueType(" Float ")
	require.NoError(t, err)
	assert.Equal(t, Float32, got)

	_, err = ParseValueType("invalid")
	assert.ErrorIs(t, err, ErrUnknownType)
	_, err = ParseValueType("string")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestValueTypeText(t *testing.T) {
	text, err := U32.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "u32", string(text))

	var typ ValueType
	require.NoError(t, typ.UnmarshalText([]byte("s64")))
	assert.Equal(t, S64, typ)
	assert.Error(t, typ.UnmarshalText([]byte("nope")))
}
