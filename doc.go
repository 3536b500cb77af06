// Package ossim simulates operating-system process scheduling over a flat,
// block-partitioned memory.
//
// A Service owns one simulation engine: a first-fit memory allocator, an
// ordered process registry and a scheduler that dispatches ready processes
// under the fcfs, sjf or priority policy. Every engine operation is executed
// by a single worker goroutine, so the Runtime API is safe for concurrent use.
//
//	srv, _ := ossim.New(ossim.WithManualClock())
//	rt := srv.Runtime()
//	p, _ := rt.CreateProcess(ctx, process.Spec{Name: "web", Priority: process.PriorityHigh, MemoryMB: 64, Burst: 3})
//	_ = rt.Start(ctx)
//	_, _ = rt.Step(ctx)
//	defer srv.Shutdown(ctx)
//
// Without WithManualClock ticks are delivered in real time every
// Config.Scheduler.TickInterval.
package ossim
