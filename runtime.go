package ossim

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/viant/ossim/internal/clock"
	"github.com/viant/ossim/model/process"
	"github.com/viant/ossim/progress"
	"github.com/viant/ossim/service/allocator"
	"github.com/viant/ossim/service/dao"
	"github.com/viant/ossim/service/dao/snapshot"
	"github.com/viant/ossim/service/event"
	"github.com/viant/ossim/service/generator"
	"github.com/viant/ossim/service/processor"
	"github.com/viant/ossim/service/scheduler"
	"github.com/viant/ossim/service/terminal"
	"github.com/viant/ossim/tracing"
)

var _ terminal.Engine = (*Runtime)(nil)

// Runtime is the engine API. Every call is executed on the engine worker.
type Runtime struct {
	scheduler *scheduler.Service
	generator *generator.Service
	processor *processor.Service
	events    *event.Service
	snapshots snapshot.Store
	clock     clock.Clock
	logger    *slog.Logger
	tracing   bool
	once      sync.Once
}

// SystemStatus summarises the CPU and memory gauges.
type SystemStatus struct {
	Policy      string `json:"policy" yaml:"policy"`
	Running     bool   `json:"running" yaml:"running"`
	Tick        uint64 `json:"tick" yaml:"tick"`
	CurrentPID  int    `json:"currentPID,omitempty" yaml:"currentPID,omitempty"`
	CPUUsage    int    `json:"cpuUsage" yaml:"cpuUsage"`
	Processes   int    `json:"processes" yaml:"processes"`
	UsedMB      int    `json:"usedMB" yaml:"usedMB"`
	FreeMB      int    `json:"freeMB" yaml:"freeMB"`
	TotalMB     int    `json:"totalMB" yaml:"totalMB"`
	MemoryUsage int    `json:"memoryUsage" yaml:"memoryUsage"`
}

func (r *Runtime) submit(ctx context.Context, name string, fn func() error) error {
	return r.processor.Submit(ctx, name, func(context.Context) error { return fn() })
}

// CreateProcess admits a new process. Zero fields of spec are generated.
// It fails with ErrAllocationFailed when memory cannot be reserved.
func (r *Runtime) CreateProcess(ctx context.Context, spec process.Spec) (*process.Process, error) {
	spec = r.generator.Fill(spec)
	var ret *process.Process
	err := r.submit(ctx, "create", func() error {
		p, err := r.scheduler.Admit(ctx, spec)
		if err != nil {
			return err
		}
		ret = p.Clone()
		return nil
	})
	return ret, err
}

// TerminateProcess kills a process and releases its memory. Unknown ids are ignored.
func (r *Runtime) TerminateProcess(ctx context.Context, id int) error {
	return r.submit(ctx, "terminate", func() error {
		return r.scheduler.Kill(ctx, id)
	})
}

// SetPolicy switches the scheduling policy.
func (r *Runtime) SetPolicy(ctx context.Context, name string) error {
	return r.submit(ctx, "setPolicy", func() error {
		return r.scheduler.SetPolicy(ctx, name)
	})
}

// Start begins scheduling.
func (r *Runtime) Start(ctx context.Context) error {
	return r.submit(ctx, "start", func() error {
		r.scheduler.Start(ctx)
		return nil
	})
}

// Stop halts scheduling and cancels the pending tick.
func (r *Runtime) Stop(ctx context.Context) error {
	return r.submit(ctx, "stop", func() error {
		r.scheduler.Stop(ctx)
		return nil
	})
}

// Step delivers the pending tick, if any, and reports whether one fired.
func (r *Runtime) Step(ctx context.Context) (bool, error) {
	var fired bool
	err := r.submit(ctx, "step", func() error {
		fired = r.scheduler.Tick(ctx)
		return nil
	})
	return fired, err
}

// Processes returns copies of registered processes in admission order.
func (r *Runtime) Processes(ctx context.Context, parameters ...*dao.Parameter) ([]*process.Process, error) {
	var ret []*process.Process
	err := r.submit(ctx, "processes", func() (err error) {
		ret, err = r.scheduler.Processes(ctx, parameters...)
		return err
	})
	return ret, err
}

// Memory returns the block table and usage figures.
func (r *Runtime) Memory(ctx context.Context) (*allocator.Snapshot, error) {
	var ret *allocator.Snapshot
	err := r.submit(ctx, "memory", func() error {
		ret = r.scheduler.Memory()
		return nil
	})
	return ret, err
}

// Stats returns the scheduler counters.
func (r *Runtime) Stats(ctx context.Context) (progress.Stats, error) {
	var ret progress.Stats
	err := r.submit(ctx, "stats", func() error {
		ret = r.scheduler.Stats()
		return nil
	})
	return ret, err
}

// SystemStatus returns CPU and memory gauges; CPU usage is 0 when idle.
func (r *Runtime) SystemStatus(ctx context.Context) (*SystemStatus, error) {
	var ret *SystemStatus
	err := r.submit(ctx, "status", func() error {
		processes, err := r.scheduler.Processes(ctx)
		if err != nil {
			return err
		}
		memory := r.scheduler.Memory()
		ret = &SystemStatus{
			Policy:      r.scheduler.Policy().String(),
			Running:     r.scheduler.Running(),
			Tick:        r.scheduler.Ticks(),
			Processes:   len(processes),
			UsedMB:      memory.UsedMB,
			FreeMB:      memory.FreeMB,
			TotalMB:     memory.TotalMB,
			MemoryUsage: memory.UsagePercent,
		}
		if current := r.scheduler.Current(); current != nil {
			ret.CurrentPID = current.ID
			ret.CPUUsage = current.CPUUsage
		}
		return nil
	})
	return ret, err
}

// Verify checks registry, allocator and running slot consistency.
func (r *Runtime) Verify(ctx context.Context) error {
	return r.submit(ctx, "verify", func() error {
		return r.scheduler.Verify(ctx)
	})
}

// SaveSnapshot captures the engine state and stores it under name.
func (r *Runtime) SaveSnapshot(ctx context.Context, name string) (*snapshot.Snapshot, error) {
	if err := snapshot.ValidateName(name); err != nil {
		return nil, err
	}
	ret := &snapshot.Snapshot{Name: name}
	err := r.submit(ctx, "snapshot", func() (err error) {
		ret.TakenAt = r.clock.Now()
		ret.Policy = r.scheduler.Policy().String()
		ret.Running = r.scheduler.Running()
		ret.Tick = r.scheduler.Ticks()
		ret.Memory = r.scheduler.Memory()
		ret.Stats = r.scheduler.Stats()
		ret.Processes, err = r.scheduler.Processes(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	ctx, span := tracing.StartSpan(ctx, "runtime.SaveSnapshot")
	err = r.snapshots.Save(ctx, ret)
	tracing.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// LoadSnapshot returns a previously saved snapshot.
func (r *Runtime) LoadSnapshot(ctx context.Context, name string) (*snapshot.Snapshot, error) {
	return r.snapshots.Load(ctx, name)
}

// Snapshots lists saved snapshots.
func (r *Runtime) Snapshots(ctx context.Context) ([]*snapshot.Snapshot, error) {
	return r.snapshots.List(ctx)
}

// DroppedEvents returns the number of lifecycle events the event queue rejected.
func (r *Runtime) DroppedEvents() int {
	return r.events.Dropped()
}

// Shutdown stops the scheduler, drains the worker and closes the event listener.
// Subsequent calls return nil; other operations return ErrShutdown.
func (r *Runtime) Shutdown(ctx context.Context) error {
	var err error
	r.once.Do(func() {
		if stopErr := r.Stop(ctx); stopErr != nil && !errors.Is(stopErr, ErrShutdown) {
			r.logger.Warn("failed to stop scheduler", "error", stopErr)
		}
		err = r.processor.Shutdown(ctx)
		r.events.Close()
		if r.tracing {
			if traceErr := tracing.Shutdown(ctx); traceErr != nil {
				r.logger.Warn("failed to flush traces", "error", traceErr)
			}
		}
	})
	return err
}
