package report

import (
	"net/http"

	"go.uber.org/zap"
)

// Option is used to customise the report service.
type Option func(*Service)

// WithClient sets the HTTP client
func WithClient(client *http.Client) Option {
	return func(s *Service) {
		s.client = client
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}
