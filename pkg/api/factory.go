// Package api provides factory implementations for dependency injection
package api

import (
	"context"

	"github.com/ssargent/sdbuf/pkg/codec"
	"github.com/ssargent/sdbuf/pkg/storage"
)

// DefaultArchiveOpener opens archives with storage.Open
type DefaultArchiveOpener struct{}

// NewArchiveOpener creates a new archive opener
func NewArchiveOpener() ArchiveOpener {
	return &DefaultArchiveOpener{}
}

// OpenArchive opens the archive for backend inside dataDir
func (o *DefaultArchiveOpener) OpenArchive(backend, dataDir string, c *codec.Codec) (storage.Archive, error) {
	return storage.Open(backend, dataDir, c)
}

// DefaultServerFactory is the default implementation of ServerFactory
type DefaultServerFactory struct{}

// NewServerFactory creates a new server factory
func NewServerFactory() ServerFactory {
	return &DefaultServerFactory{}
}

// CreateServerStarter creates a server starter
func (f *DefaultServerFactory) CreateServerStarter() ServerStarter {
	return &DefaultServerStarter{}
}

// DefaultServerStarter is the default implementation of ServerStarter
type DefaultServerStarter struct{}

// StartServer starts the API server with the given configuration
func (s *DefaultServerStarter) StartServer(
	ctx context.Context,
	archive storage.Archive,
	c *codec.Codec,
	config ServerConfig,
) error {
	return StartServer(ctx, archive, c, config)
}
