package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/viant/ossim/internal/clock"
	"github.com/viant/ossim/model/process"
	"github.com/viant/ossim/policy"
	"github.com/viant/ossim/progress"
	"github.com/viant/ossim/service/allocator"
	"github.com/viant/ossim/service/dao"
	"github.com/viant/ossim/service/dao/criteria"
	"github.com/viant/ossim/service/event"
	"github.com/viant/ossim/tracing"
)

// Service schedules admitted processes onto a single simulated CPU
type Service struct {
	config    Config
	policy    policy.Kind
	allocator *allocator.Service
	registry  dao.Service[int, process.Process]
	timer     Timer
	clock     clock.Clock
	logger    *slog.Logger
	publisher Publisher
	tracker   *progress.Tracker

	lastID  int
	running bool
	current *process.Process
	slice   int
	epoch   uint64
	pending bool
	ticks   uint64
}

// New creates a new scheduler service
func New(alloc *allocator.Service, registry dao.Service[int, process.Process], opts ...Option) (*Service, error) {
	s := &Service{
		config:    DefaultConfig(),
		allocator: alloc,
		registry:  registry,
		clock:     clock.System,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.allocator == nil {
		return nil, fmt.Errorf("allocator is required")
	}
	if s.registry == nil {
		return nil, fmt.Errorf("process registry is required")
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	kind, err := policy.Parse(s.config.Policy)
	if err != nil {
		return nil, err
	}
	s.policy = kind
	if s.timer == nil {
		s.timer = &ManualTimer{}
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.tracker == nil {
		s.tracker = progress.NewTracker(s.clock.Now())
	}
	return s, nil
}

// Admit creates a process from spec, reserves its memory and adds it to the
// registry. A process that cannot be allocated is never registered and does
// not consume an id.
func (s *Service) Admit(ctx context.Context, spec process.Spec) (ret *process.Process, err error) {
	ctx, span := tracing.StartSpan(ctx, "scheduler.Admit")
	defer func() { tracing.EndSpan(span, err) }()

	id := s.lastID + 1
	p := process.New(id, spec, s.clock.Now())
	if err = s.allocator.Allocate(p); err != nil {
		s.tracker.Update(progress.Delta{Rejected: 1})
		s.emit(ctx, event.KindRejected, 0)
		s.logger.Warn("process rejected", "name", spec.Name, "memoryMB", spec.MemoryMB, "error", err)
		return nil, fmt.Errorf("failed to admit process %q: %w", spec.Name, err)
	}
	if err = s.AddProcess(ctx, p); err != nil {
		s.allocator.Deallocate(id)
		return nil, err
	}
	s.lastID = id
	span.WithInt("process.id", id)
	return p, nil
}

// AddProcess appends an allocated process to the registry tail as ready. An
// idle running scheduler immediately starts a new cycle.
func (s *Service) AddProcess(ctx context.Context, p *process.Process) error {
	p.State = process.StateReady
	if err := s.registry.Save(ctx, p); err != nil {
		return fmt.Errorf("failed to register process %d: %w", p.ID, err)
	}
	s.tracker.Update(progress.Delta{Admitted: 1})
	s.emit(ctx, event.KindAdmitted, p.ID)
	s.logger.Debug("process admitted", "pid", p.ID, "name", p.Name, "priority", p.Priority.String(), "memoryMB", p.MemoryMB, "burst", p.RemainingBurst)
	if s.running && !s.pending {
		s.ScheduleNext(ctx)
	}
	return nil
}

// RemoveProcess drops the process from the registry and releases its memory.
// It reports whether the process was present.
func (s *Service) RemoveProcess(ctx context.Context, id int) bool {
	if _, err := s.registry.Load(ctx, id); err != nil {
		return false
	}
	if err := s.registry.Delete(ctx, id); err != nil && !errors.Is(err, dao.ErrNotFound) {
		s.logger.Error("failed to remove process", "pid", id, "error", err)
		return false
	}
	s.allocator.Deallocate(id)
	if s.current != nil && s.current.ID == id {
		s.current = nil
		s.slice = 0
	}
	return true
}

// Kill terminates a process on request. Unknown ids are ignored.
func (s *Service) Kill(ctx context.Context, id int) (err error) {
	ctx, span := tracing.StartProcessSpan(ctx, "scheduler.Kill", id)
	defer func() { tracing.EndSpan(span, err) }()

	p, err := s.registry.Load(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) || errors.Is(err, dao.ErrInvalidID) {
			return nil
		}
		return err
	}
	p.Terminate()
	if s.RemoveProcess(ctx, id) {
		s.tracker.Update(progress.Delta{Killed: 1})
		s.emit(ctx, event.KindKilled, id)
		s.logger.Debug("process killed", "pid", id)
	}
	return nil
}

// SetPolicy switches the selection policy. A running scheduler is stopped
// and started again so the new policy applies on the next cycle.
func (s *Service) SetPolicy(ctx context.Context, name string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "scheduler.SetPolicy")
	defer func() { tracing.EndSpan(span, err) }()

	kind, err := policy.Parse(name)
	if err != nil {
		return err
	}
	s.policy = kind
	s.emit(ctx, event.KindPolicyChanged, 0)
	s.logger.Debug("policy changed", "policy", kind.String())
	if s.running {
		s.Stop(ctx)
		s.Start(ctx)
	}
	return nil
}

// Start begins scheduling. Calling Start on a running scheduler has no effect.
func (s *Service) Start(ctx context.Context) {
	if s.running {
		return
	}
	s.running = true
	s.emit(ctx, event.KindStarted, 0)
	s.logger.Debug("scheduler started", "policy", s.policy.String())
	s.ScheduleNext(ctx)
}

// Stop halts scheduling, returns the running process to the ready set and
// cancels the pending tick. It is idempotent.
func (s *Service) Stop(ctx context.Context) {
	if !s.running {
		return
	}
	s.running = false
	s.cancel()
	if s.current != nil && s.current.Preempt() {
		s.tracker.Update(progress.Delta{Preemptions: 1})
		s.emit(ctx, event.KindPreempted, s.current.ID)
	}
	s.current = nil
	s.slice = 0
	s.emit(ctx, event.KindStopped, 0)
	s.logger.Debug("scheduler stopped")
}

// ScheduleNext runs one selection cycle: the running process is demoted once
// its quantum is used, the policy picks among ready processes, the pick is
// dispatched and one tick is armed. With nothing ready the scheduler idles
// until a process is added.
func (s *Service) ScheduleNext(ctx context.Context) {
	if !s.running {
		return
	}
	previous := s.current
	if previous != nil && previous.State.IsRunning() && s.slice < s.config.Quantum {
		previous.Dispatch()
		s.tracker.Update(progress.Delta{Dispatches: 1})
		s.emit(ctx, event.KindDispatched, previous.ID)
		s.arm()
		return
	}
	if previous != nil && previous.Preempt() {
		s.tracker.Update(progress.Delta{Preemptions: 1})
		s.emit(ctx, event.KindPreempted, previous.ID)
	}
	s.current = nil
	s.slice = 0

	ready, err := s.registry.List(ctx, dao.NewParameter(criteria.FieldState, string(process.StateReady)))
	if err != nil {
		s.logger.Error("failed to list ready processes", "error", err)
		return
	}
	next := s.policy.Select(ready)
	if next == nil {
		s.emit(ctx, event.KindIdle, 0)
		s.logger.Debug("scheduler idle")
		return
	}
	next.Dispatch()
	s.current = next
	delta := progress.Delta{Dispatches: 1}
	if previous == nil || previous.ID != next.ID {
		delta.ContextSwitches = 1
	}
	s.tracker.Update(delta)
	s.emit(ctx, event.KindDispatched, next.ID)
	s.logger.Debug("process dispatched", "pid", next.ID, "policy", s.policy.String(), "cpu", next.CPUUsage, "remaining", next.RemainingBurst)
	s.arm()
}

// Tick fires the pending tick, if any, and reports whether one fired.
func (s *Service) Tick(ctx context.Context) bool {
	return s.Fire(ctx, s.epoch)
}

// Fire delivers the tick armed with epoch. Stale or cancelled epochs are
// ignored and Fire returns false.
func (s *Service) Fire(ctx context.Context, epoch uint64) bool {
	if !s.pending || epoch != s.epoch {
		return false
	}
	s.pending = false
	s.ticks++
	s.tracker.Update(progress.Delta{Ticks: 1})

	ctx, span := tracing.StartSpan(ctx, "scheduler.Tick")
	defer tracing.EndSpan(span, nil)

	if p := s.current; p != nil {
		span.WithInt("process.id", p.ID)
		s.slice++
		if p.Run() {
			p.Terminate()
			s.RemoveProcess(ctx, p.ID)
			s.tracker.Update(progress.Delta{Completed: 1})
			s.emit(ctx, event.KindTerminated, p.ID)
			s.logger.Debug("process terminated", "pid", p.ID, "tick", s.ticks)
		}
	}
	s.ScheduleNext(ctx)
	return true
}

func (s *Service) arm() {
	s.epoch++
	s.pending = true
	s.timer.Arm(s.epoch)
}

func (s *Service) cancel() {
	s.epoch++
	if s.pending {
		s.pending = false
		s.timer.Cancel()
	}
}

func (s *Service) emit(ctx context.Context, kind event.Kind, processID int) {
	if s.publisher == nil {
		return
	}
	e := event.NewEvent(kind, processID, s.ticks, s.clock.Now())
	e.Policy = s.policy.String()
	s.publisher.Publish(ctx, e)
}

// Policy returns the active policy.
func (s *Service) Policy() policy.Kind {
	return s.policy
}

// Running reports whether the scheduler is started.
func (s *Service) Running() bool {
	return s.running
}

// Pending reports whether a tick is armed.
func (s *Service) Pending() bool {
	return s.pending
}

// Ticks returns the number of ticks delivered so far.
func (s *Service) Ticks() uint64 {
	return s.ticks
}

// Config returns the scheduler configuration.
func (s *Service) Config() Config {
	return s.config
}

// Current returns a copy of the running process, or nil when idle.
func (s *Service) Current() *process.Process {
	return s.current.Clone()
}

// Processes returns copies of registered processes in admission order.
func (s *Service) Processes(ctx context.Context, parameters ...*dao.Parameter) ([]*process.Process, error) {
	list, err := s.registry.List(ctx, parameters...)
	if err != nil {
		return nil, err
	}
	ret := make([]*process.Process, 0, len(list))
	for _, p := range list {
		ret = append(ret, p.Clone())
	}
	return ret, nil
}

// Memory returns the allocator snapshot.
func (s *Service) Memory() *allocator.Snapshot {
	return s.allocator.Snapshot()
}

// Stats returns the scheduler counters.
func (s *Service) Stats() progress.Stats {
	return s.tracker.Snapshot()
}

// Verify checks the registry against the allocator and the running slot.
func (s *Service) Verify(ctx context.Context) error {
	list, err := s.registry.List(ctx)
	if err != nil {
		return err
	}
	var errs []error
	ids := make([]int, 0, len(list))
	running := 0
	for _, p := range list {
		ids = append(ids, p.ID)
		switch {
		case p.State.IsRunning():
			running++
			if s.current == nil || s.current.ID != p.ID {
				errs = append(errs, fmt.Errorf("process %d is running but not current", p.ID))
			}
		case p.State.IsTerminated():
			errs = append(errs, fmt.Errorf("terminated process %d is still registered", p.ID))
		}
	}
	if running > 1 {
		errs = append(errs, fmt.Errorf("%d processes are running", running))
	}
	if err := s.allocator.Verify(ids); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
