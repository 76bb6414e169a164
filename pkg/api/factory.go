// Package api provides factory implementations for dependency injection
package api

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ssargent/osubuf/pkg/layout"
	"github.com/ssargent/osubuf/pkg/storage"
)

// ArchiveDirName is the directory under the data dir holding the archive.
const ArchiveDirName = "archive"

// DefaultArchiveFactory is the default implementation of ArchiveFactory
type DefaultArchiveFactory struct{}

// NewArchiveFactory creates a new archive factory
func NewArchiveFactory() ArchiveFactory {
	return &DefaultArchiveFactory{}
}

// OpenArchive opens the pebble archive under dataDir
func (f *DefaultArchiveFactory) OpenArchive(dataDir string, logger *zap.Logger) (ArchiveStore, error) {
	a, err := storage.Open(filepath.Join(dataDir, ArchiveDirName), logger)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// DefaultServerFactory is the default implementation of ServerFactory
type DefaultServerFactory struct {
	logger *zap.Logger
}

// NewServerFactory creates a new server factory
func NewServerFactory(logger *zap.Logger) ServerFactory {
	return &DefaultServerFactory{logger: logger}
}

// CreateServerStarter creates a server starter
func (f *DefaultServerFactory) CreateServerStarter() ServerStarter {
	return &DefaultServerStarter{logger: f.logger}
}

// DefaultServerStarter is the default implementation of ServerStarter
type DefaultServerStarter struct {
	logger *zap.Logger
}

// StartServer starts the API server with the given configuration
func (s *DefaultServerStarter) StartServer(ctx context.Context, archive ArchiveStore, layouts *layout.Registry, config ServerConfig) error {
	return StartServer(ctx, archive, layouts, config, s.logger)
}
