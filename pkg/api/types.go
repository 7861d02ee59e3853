package api

import (
	"github.com/ssargent/sdbuf/pkg/codec"
	"github.com/ssargent/sdbuf/pkg/export"
)

const (
	contentTypeJSON        = "application/json"
	contentTypeOctetStream = "application/octet-stream"

	defaultMaxBodyBytes = 16 << 20
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// DecodeResponse is the body of a successful /decode request.
type DecodeResponse struct {
	Values  map[uint16]any    `json:"values"`
	Entries []codec.EntryView `json:"entries"`
}

// RecordResponse describes a stored record.
type RecordResponse struct {
	ID      string            `json:"id"`
	Size    int               `json:"size"`
	Values  map[uint16]any    `json:"values,omitempty"`
	Entries []codec.EntryView `json:"entries,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port           int
	Bind           string
	APIKey         string // empty disables authentication
	BlobEncoding   export.BlobEncoding
	RequestLogging bool
	MaxBodyBytes   int64 // 0 means 16 MiB
}

func (c ServerConfig) maxBodyBytes() int64 {
	if c.MaxBodyBytes <= 0 {
		return defaultMaxBodyBytes
	}
	return c.MaxBodyBytes
}
