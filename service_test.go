package ossim

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/ossim/internal/clock"
	"github.com/viant/ossim/model/process"
	"github.com/viant/ossim/service/dao"
	"github.com/viant/ossim/service/event"
	"github.com/viant/ossim/service/messaging"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newManual(t *testing.T, options ...Option) (*Service, *Runtime) {
	options = append([]Option{
		WithManualClock(),
		WithLogger(quietLogger),
		WithClock(clock.Fixed(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))),
	}, options...)
	srv, err := New(options...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, srv.Runtime()
}

func TestRuntime_Lifecycle(t *testing.T) {
	ctx := context.Background()
	_, rt := newManual(t)

	web, err := rt.CreateProcess(ctx, process.Spec{Name: "web", Priority: process.PriorityLow, MemoryMB: 100, Burst: 2})
	require.NoError(t, err)
	db, err := rt.CreateProcess(ctx, process.Spec{Name: "db", Priority: process.PriorityHigh, MemoryMB: 64, Burst: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, web.ID)
	assert.Equal(t, 2, db.ID)

	require.NoError(t, rt.SetPolicy(ctx, "priority"))
	require.NoError(t, rt.Start(ctx))

	status, err := rt.SystemStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, "priority", status.Policy)
	assert.Equal(t, db.ID, status.CurrentPID)
	assert.Equal(t, 20, status.CPUUsage)
	assert.Equal(t, 164, status.UsedMB)

	fired, err := rt.Step(ctx)
	require.NoError(t, err)
	assert.True(t, fired)

	processes, err := rt.Processes(ctx)
	require.NoError(t, err)
	require.Len(t, processes, 1)
	assert.Equal(t, "web", processes[0].Name)
	assert.Equal(t, process.StateRunning, processes[0].State)

	for i := 0; i < 2; i++ {
		fired, err = rt.Step(ctx)
		require.NoError(t, err)
		assert.True(t, fired)
	}
	fired, err = rt.Step(ctx)
	require.NoError(t, err)
	assert.False(t, fired)

	memory, err := rt.Memory(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, memory.UsedMB)
	assert.Equal(t, 32, memory.FreeBlocks())

	stats, err := rt.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Completed)
	assert.Equal(t, 3, stats.Ticks)
	assert.NoError(t, rt.Verify(ctx))
}

func TestRuntime_CreateProcessGenerated(t *testing.T) {
	ctx := context.Background()
	config := DefaultConfig()
	config.Generator.Seed = 3
	_, rt := newManual(t, WithConfig(config))

	p, err := rt.CreateProcess(ctx, process.Spec{})
	require.NoError(t, err)
	assert.Contains(t, p.Name, "Process_")
	assert.True(t, p.Priority.IsValid())
	assert.GreaterOrEqual(t, p.MemoryMB, 50)
	assert.LessOrEqual(t, p.RemainingBurst, 14)

	p.Name = "mutated"
	processes, err := rt.Processes(ctx, dao.NewParameter("Name", "mutated"))
	require.NoError(t, err)
	assert.Empty(t, processes, "returned processes are copies")
}

func TestRuntime_Errors(t *testing.T) {
	ctx := context.Background()
	srv, rt := newManual(t)

	_, err := rt.CreateProcess(ctx, process.Spec{Name: "huge", MemoryMB: 2048})
	assert.True(t, errors.Is(err, ErrAllocationFailed))
	_, err = rt.CreateProcess(ctx, process.Spec{Name: "negative", MemoryMB: -5})
	assert.True(t, errors.Is(err, ErrInvalidRequest))
	assert.True(t, errors.Is(rt.SetPolicy(ctx, "rr"), ErrUnknownPolicy))
	assert.NoError(t, rt.TerminateProcess(ctx, 99))

	require.NoError(t, srv.Shutdown(ctx))
	require.NoError(t, srv.Shutdown(ctx))
	_, err = rt.CreateProcess(ctx, process.Spec{Name: "late"})
	assert.True(t, errors.Is(err, ErrShutdown))
	_, err = rt.Step(ctx)
	assert.True(t, errors.Is(err, ErrShutdown))
}

func TestRuntime_Snapshot(t *testing.T) {
	ctx := context.Background()
	config := DefaultConfig()
	config.Snapshots.URL = t.TempDir()
	_, rt := newManual(t, WithConfig(config))

	_, err := rt.CreateProcess(ctx, process.Spec{Name: "web", Priority: process.PriorityMedium, MemoryMB: 64, Burst: 3})
	require.NoError(t, err)
	require.NoError(t, rt.Start(ctx))

	saved, err := rt.SaveSnapshot(ctx, "running")
	require.NoError(t, err)
	assert.True(t, saved.Running)
	assert.Equal(t, "fcfs", saved.Policy)

	loaded, err := rt.LoadSnapshot(ctx, "running")
	require.NoError(t, err)
	require.Len(t, loaded.Processes, 1)
	assert.Equal(t, process.StateRunning, loaded.Processes[0].State)
	assert.Equal(t, []int{1, 1}, loaded.Memory.Blocks[:2])

	_, err = rt.SaveSnapshot(ctx, "")
	assert.True(t, errors.Is(err, dao.ErrInvalidID))

	list, err := rt.Snapshots(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRuntime_Events(t *testing.T) {
	ctx := context.Background()
	var mux sync.Mutex
	var kinds []event.Kind
	_, rt := newManual(t, WithEventListener(func(e *event.Event) {
		mux.Lock()
		kinds = append(kinds, e.Kind)
		mux.Unlock()
	}))

	_, err := rt.CreateProcess(ctx, process.Spec{Name: "p", Priority: process.PriorityLow, MemoryMB: 32, Burst: 1})
	require.NoError(t, err)
	require.NoError(t, rt.Start(ctx))
	_, err = rt.Step(ctx)
	require.NoError(t, err)

	expect := []event.Kind{event.KindAdmitted, event.KindStarted, event.KindDispatched, event.KindTerminated, event.KindIdle}
	assert.Eventually(t, func() bool {
		mux.Lock()
		defer mux.Unlock()
		return len(kinds) == len(expect)
	}, time.Second, 10*time.Millisecond)
	mux.Lock()
	assert.Equal(t, expect, kinds)
	mux.Unlock()
}

func TestRuntime_FsEvents(t *testing.T) {
	ctx := context.Background()
	config := DefaultConfig()
	config.Events = event.Config{Vendor: messaging.VendorFS, URL: t.TempDir()}
	var mux sync.Mutex
	var kinds []event.Kind
	_, rt := newManual(t, WithConfig(config), WithEventListener(func(e *event.Event) {
		mux.Lock()
		kinds = append(kinds, e.Kind)
		mux.Unlock()
	}))

	_, err := rt.CreateProcess(ctx, process.Spec{Name: "p", Priority: process.PriorityHigh, MemoryMB: 32, Burst: 3})
	require.NoError(t, err)
	require.NoError(t, rt.Start(ctx))

	expect := []event.Kind{event.KindAdmitted, event.KindStarted, event.KindDispatched}
	assert.Eventually(t, func() bool {
		mux.Lock()
		defer mux.Unlock()
		return len(kinds) == len(expect)
	}, 2*time.Second, 10*time.Millisecond)
	mux.Lock()
	assert.Equal(t, expect, kinds)
	mux.Unlock()
	assert.Equal(t, 0, rt.DroppedEvents())
}

func TestRuntime_EventsWithoutListener(t *testing.T) {
	ctx := context.Background()
	config := DefaultConfig()
	config.Events.Buffer = 1
	_, rt := newManual(t, WithConfig(config))

	_, err := rt.CreateProcess(ctx, process.Spec{Name: "p", Priority: process.PriorityLow, MemoryMB: 32, Burst: 5})
	require.NoError(t, err)
	require.NoError(t, rt.Start(ctx))
	for i := 0; i < 3; i++ {
		_, err = rt.Step(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, rt.DroppedEvents())
}

func TestRuntime_RealTime(t *testing.T) {
	ctx := context.Background()
	config := DefaultConfig()
	config.Scheduler.TickInterval = 5 * time.Millisecond
	srv, err := New(WithConfig(config), WithLogger(quietLogger))
	require.NoError(t, err)
	defer srv.Shutdown(ctx)
	rt := srv.Runtime()

	for _, burst := range []int{2, 3} {
		_, err = rt.CreateProcess(ctx, process.Spec{Name: "rt", Priority: process.PriorityMedium, MemoryMB: 64, Burst: burst})
		require.NoError(t, err)
	}
	require.NoError(t, rt.Start(ctx))

	assert.Eventually(t, func() bool {
		processes, err := rt.Processes(ctx)
		return err == nil && len(processes) == 0
	}, 2*time.Second, 10*time.Millisecond)

	stats, err := rt.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Completed)
	assert.Equal(t, 5, stats.Ticks)
	assert.NoError(t, rt.Verify(ctx))
}

func TestNew_InvalidConfig(t *testing.T) {
	config := DefaultConfig()
	config.Memory.Blocks = 0
	config.Scheduler.Policy = "lottery"
	_, err := New(WithConfig(config), WithManualClock())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownPolicy))
}
