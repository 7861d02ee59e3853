package storage

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/segmentio/ksuid"
	"github.com/ssargent/sdbuf/pkg/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_DeleteSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.log")

	a, err := OpenLog(path, nil)
	require.NoError(t, err)
	kept, err := a.Put(testRecord(t, 1))
	require.NoError(t, err)
	gone, err := a.Put(testRecord(t, 2))
	require.NoError(t, err)
	require.NoError(t, a.Update(kept, testRecord(t, 3)))
	require.NoError(t, a.Delete(gone))
	require.NoError(t, a.Close())

	a, recovery, err := openLog(path, nil)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, 4, recovery.RecordsValidated)
	assert.Zero(t, recovery.BytesTruncated)

	_, err = a.Get(gone)
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := a.Get(kept)
	require.NoError(t, err)
	assert.True(t, testRecord(t, 3).Equal(got))
}

func TestLog_TruncatesTornTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.log")

	a, err := OpenLog(path, nil)
	require.NoError(t, err)
	id, err := a.Put(testRecord(t, 1))
	require.NoError(t, err)
	require.NoError(t, a.Close())

	stat, err := os.Stat(path)
	require.NoError(t, err)
	goodSize := stat.Size()

	// half a frame header
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0600)
	require.NoError(t, err)
	_, err = f.Write([]byte{1, 2, 3, 4, 5, 6, 7})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	a, recovery, err := openLog(path, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), recovery.BytesTruncated)
	assert.Equal(t, 1, recovery.RecordsValidated)

	_, err = a.Get(id)
	require.NoError(t, err)

	// appends continue from the last good frame
	second, err := a.Put(testRecord(t, 2))
	require.NoError(t, err)
	require.NoError(t, a.Close())

	stat, err = os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, stat.Size(), goodSize)

	a, err = OpenLog(path, nil)
	require.NoError(t, err)
	defer a.Close()
	ids, err := a.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []ksuid.KSUID{id, second}, ids)
}

func TestLog_ChecksumMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.log")

	a, err := OpenLog(path, nil)
	require.NoError(t, err)
	first, err := a.Put(testRecord(t, 1))
	require.NoError(t, err)
	_, err = a.Put(testRecord(t, 2))
	require.NoError(t, err)
	require.NoError(t, a.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// flip the last byte of the second frame's value
	data[len(data)-1] ^= 0xff
	require.NoError(t, os.WriteFile(path, data, 0600))

	a, recovery, err := openLog(path, nil)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, 1, recovery.RecordsValidated)
	assert.Positive(t, recovery.BytesTruncated)

	ids, err := a.List()
	require.NoError(t, err)
	assert.Equal(t, []ksuid.KSUID{first}, ids)
}

func TestEncodeFrame_RoundTrip(t *testing.T) {
	buf, err := codec.Encode(testRecord(t, 5))
	require.NoError(t, err)

	frame := encodeFrame([]byte("key"), buf)
	require.Len(t, frame, logHeaderSize+3+len(buf))

	key, value, n, err := readFrame(bytes.NewReader(frame), int64(len(frame)))
	require.NoError(t, err)
	assert.Equal(t, []byte("key"), key)
	assert.Equal(t, buf, value)
	assert.Equal(t, int64(len(frame)), n)

	_, _, _, err = readFrame(bytes.NewReader(frame), int64(len(frame)-1))
	assert.ErrorIs(t, err, ErrCorruption)
}

// shortWriter passes n bytes through and then fails.
type shortWriter struct {
	w io.Writer
	n int
}

func (s *shortWriter) Write(p []byte) (int, error) {
	if len(p) <= s.n {
		s.n -= len(p)
		return s.w.Write(p)
	}
	written, _ := s.w.Write(p[:s.n])
	s.n = 0
	return written, errors.New("disk full")
}

func TestLog_FailedAppendIsRolledBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.log")

	a, err := OpenLog(path, nil)
	require.NoError(t, err)
	first, err := a.Put(testRecord(t, 1))
	require.NoError(t, err)

	stat, err := os.Stat(path)
	require.NoError(t, err)
	goodSize := stat.Size()

	lb := a.(*archive).kv.(*logBackend)
	lb.writer = bufio.NewWriter(&shortWriter{w: lb.file, n: 10})

	_, err = a.Put(testRecord(t, 2))
	require.Error(t, err)

	stat, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, goodSize, stat.Size(), "partial frame must be removed")

	// the writer recovers and later appends land after the good frame
	second, err := a.Put(testRecord(t, 3))
	require.NoError(t, err)
	require.NoError(t, a.Close())

	a, recovery, err := openLog(path, nil)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, 2, recovery.RecordsValidated)
	assert.Zero(t, recovery.BytesTruncated)
	ids, err := a.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []ksuid.KSUID{first, second}, ids)
}
