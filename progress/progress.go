package progress

import (
	"context"
	"sync"
	"time"
)

// Delta represents an incremental counter change emitted by the scheduler.
type Delta struct {
	Ticks           int
	Dispatches      int
	Preemptions     int
	ContextSwitches int
	Admitted        int
	Rejected        int
	Completed       int
	Killed          int
}

// Stats is a read-only copy of the counters.
type Stats struct {
	StartedAt       time.Time `json:"startedAt" yaml:"startedAt"`
	Ticks           int       `json:"ticks" yaml:"ticks"`
	Dispatches      int       `json:"dispatches" yaml:"dispatches"`
	Preemptions     int       `json:"preemptions" yaml:"preemptions"`
	ContextSwitches int       `json:"contextSwitches" yaml:"contextSwitches"`
	Admitted        int       `json:"admitted" yaml:"admitted"`
	Rejected        int       `json:"rejected" yaml:"rejected"`
	Completed       int       `json:"completed" yaml:"completed"`
	Killed          int       `json:"killed" yaml:"killed"`
}

// Active returns the number of admitted processes that have not finished.
func (s Stats) Active() int {
	return s.Admitted - s.Completed - s.Killed
}

// Tracker accumulates Stats. It is safe for concurrent use.
type Tracker struct {
	stats    Stats
	mu       sync.Mutex
	onChange func(Stats)
}

// NewTracker returns a tracker stamped with startedAt.
func NewTracker(startedAt time.Time) *Tracker {
	return &Tracker{stats: Stats{StartedAt: startedAt}}
}

// Update applies the supplied delta. The onChange callback, if any, runs
// outside the lock with a copy of the updated counters.
func (t *Tracker) Update(d Delta) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.stats.Ticks += d.Ticks
	t.stats.Dispatches += d.Dispatches
	t.stats.Preemptions += d.Preemptions
	t.stats.ContextSwitches += d.ContextSwitches
	t.stats.Admitted += d.Admitted
	t.stats.Rejected += d.Rejected
	t.stats.Completed += d.Completed
	t.stats.Killed += d.Killed
	snapshot := t.stats
	cb := t.onChange
	t.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the counters.
func (t *Tracker) Snapshot() Stats {
	if t == nil {
		return Stats{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// OnChange registers a callback invoked after every Update. Passing nil disables it.
func (t *Tracker) OnChange(cb func(Stats)) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.onChange = cb
	t.mu.Unlock()
}

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithTracker embeds the tracker in a derived context.
func WithTracker(ctx context.Context, tr *Tracker) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, trackerKey, tr)
}

// FromContext extracts the tracker from ctx.
func FromContext(ctx context.Context) (*Tracker, bool) {
	if ctx == nil {
		return nil, false
	}
	tr, ok := ctx.Value(trackerKey).(*Tracker)
	return tr, ok
}

// UpdateCtx looks up the tracker in ctx (if any) and applies the delta.
func UpdateCtx(ctx context.Context, d Delta) {
	if tr, ok := FromContext(ctx); ok {
		tr.Update(d)
	}
}
