package storage

import (
	"os"
	"path/filepath"

	"github.com/ssargent/sdbuf/pkg/codec"
)

// ReadFile loads and decodes the record stored at path. A nil codec uses the
// defaults.
func ReadFile(path string, c *codec.Codec) (*codec.Record, error) {
	if c == nil {
		c = codec.NewCodec()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ioFailure("read record file", err)
	}
	return c.Decode(data)
}

// WriteFile encodes rec and writes it to path, creating parent directories.
func WriteFile(path string, rec *codec.Record, c *codec.Codec) error {
	if c == nil {
		c = codec.NewCodec()
	}
	buf, err := c.Encode(rec)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return ioFailure("create record directory", err)
	}
	if err := os.WriteFile(path, buf, 0600); err != nil {
		return ioFailure("write record file", err)
	}
	return nil
}
