package event

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
	"github.com/viant/ossim/service/messaging"
	"github.com/viant/ossim/service/messaging/fs"
	"github.com/viant/ossim/service/messaging/memory"
)

// Service fans scheduler events out to a single listener. Events published
// while no listener is registered are discarded without being queued.
type Service struct {
	config    Config
	publisher *Publisher
	listener  *Listener
	logger    *slog.Logger
	dropped   int
	mux       sync.Mutex
}

type Option func(s *Service)

// WithLogger sets the logger used for dropped events and listener errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates an event service over the configured queue vendor.
func New(config Config, opts ...Option) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	ret := &Service{config: config, logger: slog.Default()}
	for _, opt := range opts {
		opt(ret)
	}
	queue, err := QueueOf[Event](ret, "events")
	if err != nil {
		return nil, err
	}
	ret.publisher = NewPublisher(queue)
	return ret, nil
}

// QueueOf creates a queue named name for the service vendor. Fs queues live
// in a sub folder of the configured URL.
func QueueOf[T any](s *Service, name string) (messaging.Queue[T], error) {
	switch s.config.Vendor {
	case "", messaging.VendorMemory:
		return memory.NewQueue[T](memory.Config{QueueBuffer: s.config.Buffer}), nil
	case messaging.VendorFS:
		config := fs.DefaultConfig()
		config.URL = url.Join(s.config.URL, name)
		return fs.NewQueue[T](afs.New(), config)
	}
	return nil, fmt.Errorf("unsupported queue vendor: %s", s.config.Vendor)
}

// Publish enqueues the event without blocking; when the buffer is full the event is dropped.
func (s *Service) Publish(ctx context.Context, event *Event) {
	s.mux.Lock()
	listening := s.listener != nil
	s.mux.Unlock()
	if !listening {
		return
	}
	if err := s.publisher.TryPublish(ctx, event); err != nil {
		s.mux.Lock()
		s.dropped++
		s.mux.Unlock()
		s.logger.Debug("event dropped", "kind", event.Kind, "error", err)
	}
}

// Dropped returns the number of events discarded because the queue rejected them.
func (s *Service) Dropped() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.dropped
}

// SetListener replaces the current listener.
func (s *Service) SetListener(ctx context.Context, handler func(*Event)) {
	s.mux.Lock()
	previous := s.listener
	s.listener = nil
	s.mux.Unlock()
	if previous != nil {
		previous.Stop()
	}
	listener := NewListener(s.publisher, handler, s.logger)
	listener.Start(ctx)
	s.mux.Lock()
	s.listener = listener
	s.mux.Unlock()
}

// Close stops the listener, if any.
func (s *Service) Close() {
	s.mux.Lock()
	listener := s.listener
	s.listener = nil
	s.mux.Unlock()
	if listener != nil {
		listener.Stop()
	}
}
