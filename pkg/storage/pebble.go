package storage

import (
	"errors"

	"github.com/cockroachdb/pebble"
	"github.com/ssargent/sdbuf/pkg/codec"
)

type pebbleBackend struct {
	db *pebble.DB
}

// OpenPebble opens (or creates) a Pebble archive at path.
func OpenPebble(path string, c *codec.Codec) (Archive, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, ioFailure("open pebble", err)
	}
	return newArchive(&pebbleBackend{db: db}, c), nil
}

func (p *pebbleBackend) set(key, value []byte) error {
	return p.db.Set(key, value, pebble.Sync)
}

func (p *pebbleBackend) get(key []byte) ([]byte, error) {
	data, closer, err := p.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	// data is only valid until closer is closed
	return append([]byte{}, data...), nil
}

func (p *pebbleBackend) del(key []byte) error {
	return p.db.Delete(key, pebble.Sync)
}

func (p *pebbleBackend) keys() ([][]byte, error) {
	iter, err := p.db.NewIter(nil)
	if err != nil {
		return nil, err
	}
	var keys [][]byte
	for iter.First(); iter.Valid(); iter.Next() {
		keys = append(keys, append([]byte(nil), iter.Key()...))
	}
	if err := iter.Error(); err != nil {
		iter.Close()
		return nil, err
	}
	return keys, iter.Close()
}

func (p *pebbleBackend) close() error {
	return p.db.Close()
}
