package executor

import "go.uber.org/zap"

// Option is used to customise the executor instance.
type Option func(*Service)

// WithLogger sets the logger
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithListener sets the callback invoked after every action.
func WithListener(listener Listener) Option {
	return func(s *Service) {
		s.listener = listener
	}
}
