package processor

import (
	"log/slog"

	"github.com/viant/ossim/service/messaging"
)

type Option func(*Service)

// WithConfig sets the configuration for the service
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithMessageQueue sets the command queue implementation
func WithMessageQueue(queue messaging.Queue[Command]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithLogger sets the logger used for errors of posted commands.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}
