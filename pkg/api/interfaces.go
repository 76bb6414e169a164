// Package api provides interfaces for dependency injection
package api

import (
	"context"

	"go.uber.org/zap"

	"github.com/ssargent/osubuf/pkg/layout"
)

// ArchiveFactory opens archives
type ArchiveFactory interface {
	// OpenArchive opens or creates the archive under dataDir
	OpenArchive(dataDir string, logger *zap.Logger) (ArchiveStore, error)
}

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves the API until ctx is cancelled
	StartServer(ctx context.Context, archive ArchiveStore, layouts *layout.Registry, config ServerConfig) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
