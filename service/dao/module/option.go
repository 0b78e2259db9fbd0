package module

import (
	"github.com/viant/afs"
	"go.uber.org/zap"
)

type Option func(*Service)

// WithFileSystem sets the storage service
func WithFileSystem(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// WithRepository sets the extern module repository
func WithRepository(repository Repository) Option {
	return func(s *Service) {
		s.repository = repository
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}
