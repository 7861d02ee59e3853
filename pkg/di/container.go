// Package di provides dependency injection container
package di

import (
	"github.com/ssargent/sdbuf/pkg/api" //nolint:depguard
)

// Container holds all the dependencies for the application
type Container struct {
	archiveOpener api.ArchiveOpener
	serverFactory api.ServerFactory
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		archiveOpener: api.NewArchiveOpener(),
		serverFactory: api.NewServerFactory(),
	}
}

// GetArchiveOpener returns the archive opener
func (c *Container) GetArchiveOpener() api.ArchiveOpener {
	return c.archiveOpener
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetArchiveOpener allows overriding the archive opener (for testing)
func (c *Container) SetArchiveOpener(opener api.ArchiveOpener) {
	c.archiveOpener = opener
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}
