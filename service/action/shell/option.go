package shell

import "github.com/viant/afs"

type Option func(*Service)

// WithRunner sets the command runner
func WithRunner(runner Runner) Option {
	return func(s *Service) {
		s.runner = runner
	}
}

// WithFileSystem sets the storage service
func WithFileSystem(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}
