package download

import (
	"net/http"

	"github.com/viant/afs"
	"github.com/viant/gxl/policy"
)

type Option func(*Service)

// WithFileSystem sets the destination file system
func WithFileSystem(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// WithClient sets the http client
func WithClient(client *http.Client) Option {
	return func(s *Service) {
		s.client = client
	}
}

// WithRetry overrides the retry policy
func WithRetry(retry *policy.Retry) Option {
	return func(s *Service) {
		s.retry = retry
	}
}
