package scheduler

import (
	"context"
	"log/slog"

	"github.com/viant/ossim/internal/clock"
	"github.com/viant/ossim/progress"
	"github.com/viant/ossim/service/event"
)

// Publisher receives scheduler lifecycle events. Publish must not block.
type Publisher interface {
	Publish(ctx context.Context, e *event.Event)
}

type Option func(*Service)

// WithConfig sets the configuration for the service
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithTimer sets the tick delivery mechanism.
func WithTimer(timer Timer) Option {
	return func(s *Service) {
		s.timer = timer
	}
}

// WithClock sets the clock used to stamp arrivals and events.
func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithPublisher sets the lifecycle event sink.
func WithPublisher(publisher Publisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

// WithTracker sets the counters tracker.
func WithTracker(tracker *progress.Tracker) Option {
	return func(s *Service) {
		s.tracker = tracker
	}
}
