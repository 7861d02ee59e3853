package storage

import (
	"time"

	"github.com/ssargent/sdbuf/pkg/codec"
	"go.etcd.io/bbolt"
)

var recordsBucket = []byte("records")

type boltBackend struct {
	db *bbolt.DB
}

// OpenBolt opens (or creates) a bbolt archive file at path.
func OpenBolt(path string, c *codec.Codec) (Archive, error) {
	bopt := *bbolt.DefaultOptions
	bopt.Timeout = time.Second
	db, err := bbolt.Open(path, 0600, &bopt)
	if err != nil {
		return nil, ioFailure("open bolt", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(recordsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, ioFailure("open bolt", err)
	}
	return newArchive(&boltBackend{db: db}, c), nil
}

func (b *boltBackend) set(key, value []byte) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(recordsBucket).Put(key, value)
	})
}

func (b *boltBackend) get(key []byte) ([]byte, error) {
	var out []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(recordsBucket).Get(key); v != nil {
			// v is only valid for the life of the transaction
			out = append([]byte{}, v...)
		}
		return nil
	})
	return out, err
}

func (b *boltBackend) del(key []byte) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(recordsBucket).Delete(key)
	})
}

func (b *boltBackend) keys() ([][]byte, error) {
	var keys [][]byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(recordsBucket).ForEach(func(k, _ []byte) error {
			keys = append(keys, append([]byte(nil), k...))
			return nil
		})
	})
	return keys, err
}

func (b *boltBackend) close() error {
	return b.db.Close()
}
