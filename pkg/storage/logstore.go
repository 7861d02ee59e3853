package storage

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/ssargent/sdbuf/pkg/codec"
)

// Log frame: [CRC32(4)][KeySize(4)][ValueSize(4)][Timestamp(8)][Key][Value]
//
// The CRC covers everything after itself. A frame with an empty value is a
// tombstone; sdbuf buffers are never empty, so the two cannot collide.
const (
	logHeaderSize   = 20
	logWriterBuffer = 64 * 1024
)

// ErrCorruption marks a log frame that is cut short or fails its checksum.
var ErrCorruption = errors.New("data corruption detected")

// logLocation is where a live value sits in the log file
type logLocation struct {
	offset int64
	size   uint32
}

// LogRecovery describes what OpenLog found while rebuilding its index.
type LogRecovery struct {
	RecordsValidated int
	BytesTruncated   int64
}

type logBackend struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	index  map[string]logLocation
	offset int64
}

// OpenLog opens (or creates) an append-only log archive at path. The index
// is rebuilt by replaying the log; a torn or corrupt tail is truncated.
func OpenLog(path string, c *codec.Codec) (Archive, error) {
	a, _, err := openLog(path, c)
	return a, err
}

func openLog(path string, c *codec.Codec) (Archive, *LogRecovery, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, nil, ioFailure("open log", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, nil, ioFailure("open log", err)
	}

	b := &logBackend{file: file, index: make(map[string]logLocation)}
	recovery, err := b.replay()
	if err != nil {
		file.Close()
		return nil, nil, ioFailure("open log", err)
	}
	if recovery.BytesTruncated > 0 {
		log.Printf("Recovered from corruption: %d bytes truncated from %s", recovery.BytesTruncated, path)
	}

	b.writer = bufio.NewWriterSize(file, logWriterBuffer)
	return newArchive(b, c), recovery, nil
}

// replay scans the log from the start, fills the index and cuts the file
// after the last valid frame.
func (b *logBackend) replay() (*LogRecovery, error) {
	stat, err := b.file.Stat()
	if err != nil {
		return nil, err
	}
	if _, err := b.file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	recovery := &LogRecovery{}
	r := bufio.NewReader(b.file)
	var offset int64
	for {
		key, value, n, err := readFrame(r, stat.Size()-offset)
		if err != nil {
			// io.EOF is a clean end; anything else after the last good
			// frame is a torn write.
			break
		}
		if len(value) == 0 {
			delete(b.index, string(key))
		} else {
			b.index[string(key)] = logLocation{
				offset: offset + logHeaderSize + int64(len(key)),
				size:   uint32(len(value)),
			}
		}
		recovery.RecordsValidated++
		offset += n
	}

	if offset < stat.Size() {
		if err := b.file.Truncate(offset); err != nil {
			return nil, err
		}
		recovery.BytesTruncated = stat.Size() - offset
	}
	if _, err := b.file.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	b.offset = offset
	return recovery, nil
}

// readFrame reads one frame. remaining bounds the sizes a header may claim.
// io.EOF means a clean end of log.
func readFrame(r io.Reader, remaining int64) (key, value []byte, n int64, err error) {
	header := make([]byte, logHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		if err == io.EOF {
			return nil, nil, 0, io.EOF
		}
		return nil, nil, 0, ErrCorruption
	}

	crc := binary.LittleEndian.Uint32(header[0:4])
	keySize := int64(binary.LittleEndian.Uint32(header[4:8]))
	valueSize := int64(binary.LittleEndian.Uint32(header[8:12]))
	if logHeaderSize+keySize+valueSize > remaining {
		return nil, nil, 0, ErrCorruption
	}

	data := make([]byte, keySize+valueSize)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, nil, 0, ErrCorruption
	}
	if crc != frameChecksum(header[4:], data) {
		return nil, nil, 0, ErrCorruption
	}
	return data[:keySize], data[keySize:], logHeaderSize + keySize + valueSize, nil
}

func encodeFrame(key, value []byte) []byte {
	buf := make([]byte, logHeaderSize, logHeaderSize+len(key)+len(value))
	binary.LittleEndian.PutUint32(buf[4:], uint32(len(key)))
	binary.LittleEndian.PutUint32(buf[8:], uint32(len(value)))
	binary.LittleEndian.PutUint64(buf[12:], uint64(time.Now().UnixNano()))
	buf = append(buf, key...)
	buf = append(buf, value...)
	binary.LittleEndian.PutUint32(buf[0:], frameChecksum(buf[4:logHeaderSize], buf[logHeaderSize:]))
	return buf
}

// frameChecksum is the CRC32 of the header fields after the CRC and the data.
func frameChecksum(header, data []byte) uint32 {
	crc := crc32.NewIEEE()
	crc.Write(header)
	crc.Write(data)
	return crc.Sum32()
}

// appendFrame writes a frame and syncs it. It returns the frame's offset.
// On failure the log is cut back to where the frame started.
func (b *logBackend) appendFrame(key, value []byte) (int64, error) {
	frame := encodeFrame(key, value)
	if err := b.writeFrame(frame); err != nil {
		if rbErr := b.rollback(); rbErr != nil {
			return 0, fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return 0, err
	}
	start := b.offset
	b.offset += int64(len(frame))
	return start, nil
}

func (b *logBackend) writeFrame(frame []byte) error {
	if _, err := b.writer.Write(frame); err != nil {
		return err
	}
	if err := b.writer.Flush(); err != nil {
		return err
	}
	return b.file.Sync()
}

// rollback drops any partial frame past b.offset and clears the writer's
// sticky error.
func (b *logBackend) rollback() error {
	b.writer.Reset(b.file)
	if err := b.file.Truncate(b.offset); err != nil {
		return err
	}
	_, err := b.file.Seek(b.offset, io.SeekStart)
	return err
}

func (b *logBackend) set(key, value []byte) error {
	if len(value) == 0 {
		return fmt.Errorf("empty value for key %x", key)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	start, err := b.appendFrame(key, value)
	if err != nil {
		return err
	}
	b.index[string(key)] = logLocation{
		offset: start + logHeaderSize + int64(len(key)),
		size:   uint32(len(value)),
	}
	return nil
}

func (b *logBackend) get(key []byte) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	loc, ok := b.index[string(key)]
	if !ok {
		return nil, nil
	}
	buf := make([]byte, loc.size)
	if _, err := b.file.ReadAt(buf, loc.offset); err != nil {
		return nil, err
	}
	return buf, nil
}

func (b *logBackend) del(key []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.appendFrame(key, nil); err != nil {
		return err
	}
	delete(b.index, string(key))
	return nil
}

func (b *logBackend) keys() ([][]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	keys := make([][]byte, 0, len(b.index))
	for k := range b.index {
		keys = append(keys, []byte(k))
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i], keys[j]) < 0 })
	return keys, nil
}

func (b *logBackend) close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.writer.Flush(); err != nil {
		b.file.Close()
		return err
	}
	if err := b.file.Sync(); err != nil {
		b.file.Close()
		return err
	}
	return b.file.Close()
}
