package dump

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ssargent/sdbuf/pkg/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebug(t *testing.T) {
	rec := codec.NewRecord()
	require.NoError(t, rec.SetUnsigned(1, 11))
	require.NoError(t, rec.Set(2, codec.S16, codec.Ints(-222, 5)...))
	require.NoError(t, rec.SetBlob(3, []byte("hi")))

	var out bytes.Buffer
	require.NoError(t, Debug(&out, rec))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 7)

	assert.Equal(t, []string{"KEY", "TYPE", "INDEX", "VALUE", "RAW"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"0001", "u8", "0/1", "11", "0x0b"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"0002", "s16", "0/2", "-222", "0x22ff"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"0002", "s16", "1/2", "5", "0x0500"}, strings.Fields(lines[3]))
	assert.Equal(t, []string{"0003", "blob", "0/1", "2", "bytes", "0x6869"}, strings.Fields(lines[4]))

	// 5 + (3+1) + (3+2+4) + (3+2+2) = 25 bytes; packed 1+4+2 = 7 bytes
	assert.Equal(t, "size: 25 bytes, value section 20 bytes", lines[5])
	assert.Equal(t, "packed struct would have been: 7 bytes. 257% overhead", lines[6])
}

func TestDebug_Empty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Debug(&out, codec.NewRecord()))
	assert.Contains(t, out.String(), "size: 5 bytes, value section 0 bytes")
	assert.Contains(t, out.String(), "packed struct would have been: 0 bytes")
}

func TestHex(t *testing.T) {
	b := make([]byte, 20)
	for i := range b {
		b[i] = byte(i)
	}

	var out bytes.Buffer
	require.NoError(t, Hex(&out, b))
	assert.Equal(t,
		"00000000  00010203_04050607_08090a0b_0c0d0e0f\n"+
			"00000010  10111213\n",
		out.String())
}

func TestHex_Partial(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Hex(&out, []byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}))
	assert.Equal(t, "00000000  aabbccdd_eeff\n", out.String())

	out.Reset()
	require.NoError(t, Hex(&out, nil))
	assert.Empty(t, out.String())
}
