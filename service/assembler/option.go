package assembler

import "go.uber.org/zap"

type Option func(*Service)

// WithLogger sets the logger
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}
