// Package storage persists encoded sdbuf records.
//
// Single records go to plain files through ReadFile and WriteFile. Many
// records go to an Archive keyed by KSUID, so that listing returns records
// roughly in creation order. Archives sit on Pebble, bbolt, or a plain
// append-only log file with an in-memory index.
package storage

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/segmentio/ksuid"
	"github.com/ssargent/sdbuf/pkg/codec"
)

var (
	// ErrIOFailure wraps every failure of the underlying file or database.
	ErrIOFailure = errors.New("storage I/O failure")
	// ErrNotFound is returned for unknown record IDs.
	ErrNotFound = errors.New("record not found")
)

// Archive stores encoded records under generated IDs.
type Archive interface {
	// Put encodes rec and stores it under a new ID.
	Put(rec *codec.Record) (ksuid.KSUID, error)
	// PutRaw validates buf by decoding it and stores it unchanged.
	PutRaw(buf []byte) (ksuid.KSUID, error)
	Get(id ksuid.KSUID) (*codec.Record, error)
	GetRaw(id ksuid.KSUID) ([]byte, error)
	Update(id ksuid.KSUID, rec *codec.Record) error
	Delete(id ksuid.KSUID) error
	// List returns all IDs in KSUID order, which is creation order at one
	// second resolution.
	List() ([]ksuid.KSUID, error)
	Close() error
}

// kvBackend is the minimal byte store an archive needs.
type kvBackend interface {
	set(key, value []byte) error
	get(key []byte) ([]byte, error) // nil, nil when missing
	del(key []byte) error
	keys() ([][]byte, error)
	close() error
}

// archive implements Archive on top of any kvBackend.
type archive struct {
	kv    kvBackend
	codec *codec.Codec
}

func newArchive(kv kvBackend, c *codec.Codec) *archive {
	if c == nil {
		c = codec.NewCodec()
	}
	return &archive{kv: kv, codec: c}
}

// Open opens the archive for backend ("pebble", "bolt" or "log") inside
// dataDir.
func Open(backend, dataDir string, c *codec.Codec) (Archive, error) {
	switch backend {
	case "pebble":
		return OpenPebble(filepath.Join(dataDir, "records.pebble"), c)
	case "bolt":
		return OpenBolt(filepath.Join(dataDir, "records.bolt"), c)
	case "log":
		return OpenLog(filepath.Join(dataDir, "records.log"), c)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

func ioFailure(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrIOFailure, err)
}

func (a *archive) Put(rec *codec.Record) (ksuid.KSUID, error) {
	buf, err := a.codec.Encode(rec)
	if err != nil {
		return ksuid.Nil, err
	}
	return a.store(buf)
}

func (a *archive) PutRaw(buf []byte) (ksuid.KSUID, error) {
	if _, err := a.codec.Decode(buf); err != nil {
		return ksuid.Nil, err
	}
	return a.store(append([]byte(nil), buf...))
}

func (a *archive) store(buf []byte) (ksuid.KSUID, error) {
	id := ksuid.New()
	if err := a.kv.set(id.Bytes(), buf); err != nil {
		return ksuid.Nil, ioFailure("put", err)
	}
	return id, nil
}

func (a *archive) GetRaw(id ksuid.KSUID) ([]byte, error) {
	buf, err := a.kv.get(id.Bytes())
	if err != nil {
		return nil, ioFailure("get", err)
	}
	if buf == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return buf, nil
}

func (a *archive) Get(id ksuid.KSUID) (*codec.Record, error) {
	buf, err := a.GetRaw(id)
	if err != nil {
		return nil, err
	}
	return a.codec.Decode(buf)
}

func (a *archive) Update(id ksuid.KSUID, rec *codec.Record) error {
	if _, err := a.GetRaw(id); err != nil {
		return err
	}
	buf, err := a.codec.Encode(rec)
	if err != nil {
		return err
	}
	if err := a.kv.set(id.Bytes(), buf); err != nil {
		return ioFailure("update", err)
	}
	return nil
}

func (a *archive) Delete(id ksuid.KSUID) error {
	if _, err := a.GetRaw(id); err != nil {
		return err
	}
	if err := a.kv.del(id.Bytes()); err != nil {
		return ioFailure("delete", err)
	}
	return nil
}

func (a *archive) List() ([]ksuid.KSUID, error) {
	keys, err := a.kv.keys()
	if err != nil {
		return nil, ioFailure("list", err)
	}
	ids := make([]ksuid.KSUID, 0, len(keys))
	for _, k := range keys {
		id, err := ksuid.FromBytes(k)
		if err != nil {
			return nil, ioFailure("list", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (a *archive) Close() error {
	if err := a.kv.close(); err != nil {
		return ioFailure("close", err)
	}
	return nil
}
