package ossim

import (
	"log/slog"

	"github.com/viant/ossim/internal/clock"
	"github.com/viant/ossim/model/process"
	"github.com/viant/ossim/service/dao"
	"github.com/viant/ossim/service/dao/snapshot"
	"github.com/viant/ossim/service/event"
	"github.com/viant/ossim/service/messaging"
	"github.com/viant/ossim/service/processor"
)

// Option configures a Service.
type Option func(s *Service)

// WithConfig replaces the default configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithLogger sets the structured logger shared by all components
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock sets the clock stamping arrivals, events and snapshots
func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

// WithManualClock disables real-time ticks; time advances only through Runtime.Step
func WithManualClock() Option {
	return func(s *Service) {
		s.manual = true
	}
}

// WithEventListener registers a handler receiving every lifecycle event
func WithEventListener(handler func(*event.Event)) Option {
	return func(s *Service) {
		s.listener = handler
	}
}

// WithSnapshotStore sets the snapshot store
func WithSnapshotStore(store snapshot.Store) Option {
	return func(s *Service) {
		s.snapshots = store
	}
}

// WithProcessDAO sets the process registry implementation
func WithProcessDAO(registry dao.Service[int, process.Process]) Option {
	return func(s *Service) {
		s.registry = registry
	}
}

// WithQueue sets the command queue
func WithQueue(queue messaging.Queue[processor.Command]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithTracing enables OpenTelemetry tracing. If outputFile is empty spans are
// written to stdout.
func WithTracing(serviceName, outputFile string) Option {
	return func(s *Service) {
		s.tracing = &TracingConfig{Enabled: true, ServiceName: serviceName, OutputFile: outputFile}
	}
}
