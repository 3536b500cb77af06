package ossim

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/viant/ossim/internal/clock"
	"github.com/viant/ossim/internal/idgen"
	"github.com/viant/ossim/model/process"
	"github.com/viant/ossim/progress"
	"github.com/viant/ossim/service/allocator"
	"github.com/viant/ossim/service/dao"
	pmemory "github.com/viant/ossim/service/dao/process/memory"
	"github.com/viant/ossim/service/dao/snapshot"
	sfs "github.com/viant/ossim/service/dao/snapshot/fs"
	"github.com/viant/ossim/service/event"
	"github.com/viant/ossim/service/generator"
	"github.com/viant/ossim/service/messaging"
	"github.com/viant/ossim/service/processor"
	"github.com/viant/ossim/service/scheduler"
	"github.com/viant/ossim/tracing"
)

// Version is reported as the tracing service version.
const Version = "0.1.0"

// Service owns one simulation engine and its worker.
type Service struct {
	id        string
	config    *Config
	logger    *slog.Logger
	clock     clock.Clock
	manual    bool
	listener  func(*event.Event)
	snapshots snapshot.Store
	registry  dao.Service[int, process.Process]
	queue     messaging.Queue[processor.Command]
	tracing   *TracingConfig
	runtime   *Runtime
}

// New builds and starts an engine.
func New(options ...Option) (*Service, error) {
	s := &Service{id: idgen.NewWithPrefix("ossim")}
	for _, option := range options {
		option(s)
	}
	if err := s.ensureBaseSetup(); err != nil {
		return nil, err
	}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) ensureBaseSetup() error {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if s.tracing != nil {
		s.config.Tracing = *s.tracing
	}
	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	s.logger = s.logger.With("engine", s.id)
	if s.clock == nil {
		s.clock = clock.System
	}
	if s.registry == nil {
		s.registry = pmemory.New()
	}
	if s.snapshots == nil {
		if URL := s.config.Snapshots.URL; URL != "" {
			store, err := sfs.New(URL)
			if err != nil {
				return fmt.Errorf("failed to create snapshot store: %w", err)
			}
			s.snapshots = store
		} else {
			s.snapshots = snapshot.NewMemoryStore()
		}
	}
	if cfg := s.config.Tracing; cfg.Enabled {
		if err := tracing.Init(cfg.ServiceName, Version, cfg.OutputFile); err != nil {
			return fmt.Errorf("failed to init tracing: %w", err)
		}
	}
	return nil
}

func (s *Service) init() error {
	alloc, err := allocator.New(s.config.Memory)
	if err != nil {
		return err
	}
	gen, err := generator.New(s.config.Generator)
	if err != nil {
		return err
	}
	procOptions := []processor.Option{processor.WithConfig(s.config.Processor), processor.WithLogger(s.logger)}
	if s.queue != nil {
		procOptions = append(procOptions, processor.WithMessageQueue(s.queue))
	}
	proc, err := processor.New(procOptions...)
	if err != nil {
		return err
	}
	events, err := event.New(s.config.Events, event.WithLogger(s.logger))
	if err != nil {
		return err
	}

	var timer scheduler.Timer = &scheduler.ManualTimer{}
	var realTimer *processor.Timer
	if !s.manual {
		realTimer = processor.NewTimer(proc, s.config.Scheduler.TickInterval)
		timer = realTimer
	}
	sched, err := scheduler.New(alloc, s.registry,
		scheduler.WithConfig(s.config.Scheduler),
		scheduler.WithTimer(timer),
		scheduler.WithClock(s.clock),
		scheduler.WithLogger(s.logger),
		scheduler.WithPublisher(events),
		scheduler.WithTracker(progress.NewTracker(s.clock.Now())),
	)
	if err != nil {
		return err
	}
	if realTimer != nil {
		realTimer.Bind(sched.Fire)
	}
	if s.listener != nil {
		events.SetListener(context.Background(), s.listener)
	}
	if err = proc.Start(context.Background()); err != nil {
		return err
	}
	s.runtime = &Runtime{
		scheduler: sched,
		generator: gen,
		processor: proc,
		events:    events,
		snapshots: s.snapshots,
		clock:     s.clock,
		logger:    s.logger,
		tracing:   s.config.Tracing.Enabled,
	}
	return nil
}

// ID returns the engine identifier.
func (s *Service) ID() string {
	return s.id
}

// Config returns the effective configuration.
func (s *Service) Config() *Config {
	return s.config
}

func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Shutdown stops the scheduler, the worker and the event listener.
func (s *Service) Shutdown(ctx context.Context) error {
	return s.runtime.Shutdown(ctx)
}
