package processor

import (
	"context"
	"sync"
	"time"
)

// FireFunc delivers an armed tick.
type FireFunc func(ctx context.Context, epoch uint64) bool

// Timer arms real-time ticks that are posted back to the processor worker
// carrying their epoch.
type Timer struct {
	processor *Service
	interval  time.Duration
	fire      FireFunc
	mu        sync.Mutex
	timer     *time.Timer
}

// NewTimer creates a timer posting to processor every interval after Arm.
func NewTimer(processor *Service, interval time.Duration) *Timer {
	return &Timer{processor: processor, interval: interval}
}

// Bind sets the tick receiver. It must be called before the first Arm.
func (t *Timer) Bind(fire FireFunc) {
	t.mu.Lock()
	t.fire = fire
	t.mu.Unlock()
}

// Arm schedules delivery of epoch after the interval, replacing any armed delivery.
func (t *Timer) Arm(epoch uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	fire := t.fire
	if fire == nil {
		return
	}
	t.timer = time.AfterFunc(t.interval, func() {
		_ = t.processor.Post(context.Background(), "tick", func(ctx context.Context) error {
			fire(ctx, epoch)
			return nil
		})
	})
}

// Cancel stops the armed delivery if it has not fired yet.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
