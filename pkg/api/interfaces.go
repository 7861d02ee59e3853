// Package api provides interfaces for dependency injection
package api

import (
	"context"

	"github.com/ssargent/sdbuf/pkg/codec"
	"github.com/ssargent/sdbuf/pkg/storage"
)

// ArchiveOpener opens record archives
type ArchiveOpener interface {
	// OpenArchive opens the archive for backend inside dataDir
	OpenArchive(backend, dataDir string, c *codec.Codec) (storage.Archive, error)
}

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves the API until ctx is cancelled
	StartServer(ctx context.Context, archive storage.Archive, c *codec.Codec, config ServerConfig) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
