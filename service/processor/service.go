package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/viant/ossim/service/messaging"
	"github.com/viant/ossim/service/messaging/memory"
)

// ErrShutdown is returned for commands submitted after Shutdown.
var ErrShutdown = errors.New("processor: shut down")

// Config represents processor configuration
type Config struct {
	// QueueBuffer is the capacity of the command queue.
	QueueBuffer int `json:"queueBuffer" yaml:"queueBuffer"`
}

// DefaultConfig returns the default processor configuration
func DefaultConfig() Config {
	return Config{QueueBuffer: 100}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.QueueBuffer < 1 {
		return fmt.Errorf("processor: queueBuffer must be at least 1, got %d", c.QueueBuffer)
	}
	return nil
}

// Func is the body of a command; it runs on the worker goroutine.
type Func func(ctx context.Context) error

// Command is a unit of work executed by the worker.
type Command struct {
	Name string
	Run  Func
	done chan error
}

// Service runs commands one at a time on a single worker
type Service struct {
	config Config
	queue  messaging.Queue[Command]
	logger *slog.Logger

	ctx        context.Context
	cancel     context.CancelFunc
	workerWg   sync.WaitGroup
	shutdownCh chan struct{}
	once       sync.Once
	startOnce  sync.Once
}

// New creates a new processor service
func New(options ...Option) (*Service, error) {
	s := &Service{
		config:     DefaultConfig(),
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	if s.queue == nil {
		s.queue = memory.NewQueue[Command](memory.Config{QueueBuffer: s.config.QueueBuffer})
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s, nil
}

// Start launches the worker. Subsequent calls have no effect.
func (s *Service) Start(ctx context.Context) error {
	s.startOnce.Do(func() {
		s.ctx, s.cancel = context.WithCancel(ctx)
		s.workerWg.Add(1)
		go s.run()
	})
	return nil
}

func (s *Service) run() {
	defer s.workerWg.Done()
	for {
		msg, err := s.queue.Consume(s.ctx)
		if err != nil {
			if s.ctx.Err() != nil {
				return
			}
			s.logger.Error("failed to consume command", "error", err)
			continue
		}
		if msg == nil {
			continue
		}
		command := msg.T()
		err = command.Run(s.ctx)
		if command.done != nil {
			command.done <- err
		} else if err != nil {
			s.logger.Error("command failed", "command", command.Name, "error", err)
		}
		if err != nil {
			_ = msg.Nack(err)
		} else {
			_ = msg.Ack()
		}
	}
}

// Submit enqueues fn and waits for its result.
func (s *Service) Submit(ctx context.Context, name string, fn Func) error {
	if s.closed() {
		return ErrShutdown
	}
	done := make(chan error, 1)
	if err := s.publish(ctx, &Command{Name: name, Run: fn, done: done}); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-s.shutdownCh:
		// the worker may have finished the command before observing shutdown
		select {
		case err := <-done:
			return err
		default:
			return ErrShutdown
		}
	}
}

// Post enqueues fn without waiting; its error is logged by the worker.
func (s *Service) Post(ctx context.Context, name string, fn Func) error {
	if s.closed() {
		return ErrShutdown
	}
	return s.publish(ctx, &Command{Name: name, Run: fn})
}

func (s *Service) publish(ctx context.Context, command *Command) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.shutdownCh:
			cancel()
		case <-ctx.Done():
		}
	}()
	if err := s.queue.Publish(ctx, command); err != nil {
		if s.closed() {
			return ErrShutdown
		}
		return err
	}
	return nil
}

func (s *Service) closed() bool {
	select {
	case <-s.shutdownCh:
		return true
	default:
		return false
	}
}

// Shutdown stops the worker and waits for it to exit or for ctx to expire.
// Commands still queued are discarded.
func (s *Service) Shutdown(ctx context.Context) error {
	s.once.Do(func() {
		close(s.shutdownCh)
		if s.cancel != nil {
			s.cancel()
		}
	})
	done := make(chan struct{})
	go func() {
		s.workerWg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
