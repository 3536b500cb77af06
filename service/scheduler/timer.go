package scheduler

// Timer delivers armed ticks. Arm is called at most once per epoch and
// must eventually lead to Service.Fire(ctx, epoch) on the scheduler's
// goroutine. Cancel drops any armed delivery; a delivery that races with
// Cancel is harmless because its epoch is stale.
type Timer interface {
	Arm(epoch uint64)
	Cancel()
}

// ManualTimer never delivers ticks on its own; callers drive the scheduler
// with Service.Tick.
type ManualTimer struct {
	armed  uint64
	active bool
}

func (t *ManualTimer) Arm(epoch uint64) {
	t.armed = epoch
	t.active = true
}

func (t *ManualTimer) Cancel() {
	t.active = false
}

// Armed returns the last armed epoch and whether it is still active.
func (t *ManualTimer) Armed() (uint64, bool) {
	return t.armed, t.active
}
