package process

import "time"

// CPUUsageStep is added to a process's CPU usage every time it is dispatched.
const CPUUsageStep = 20

// Spec describes a process creation request. Zero fields may be filled in by
// a generator before admission.
type Spec struct {
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
	Priority Priority `json:"priority,omitempty" yaml:"priority,omitempty"`
	MemoryMB int      `json:"memoryMB,omitempty" yaml:"memoryMB,omitempty"`
	Burst    int      `json:"burst,omitempty" yaml:"burst,omitempty"`
}

// Process represents a simulated unit of work
type Process struct {
	ID             int       `json:"id" yaml:"id"`
	Name           string    `json:"name" yaml:"name"`
	State          State     `json:"state" yaml:"state"`
	Priority       Priority  `json:"priority" yaml:"priority"`
	CPUUsage       int       `json:"cpuUsage" yaml:"cpuUsage"`
	MemoryMB       int       `json:"memoryMB" yaml:"memoryMB"`
	RemainingBurst int       `json:"remainingBurst" yaml:"remainingBurst"`
	ArrivedAt      time.Time `json:"arrivedAt" yaml:"arrivedAt"`
}

// New creates a ready process from spec.
func New(id int, spec Spec, arrivedAt time.Time) *Process {
	return &Process{
		ID:             id,
		Name:           spec.Name,
		State:          StateReady,
		Priority:       spec.Priority,
		MemoryMB:       spec.MemoryMB,
		RemainingBurst: spec.Burst,
		ArrivedAt:      arrivedAt,
	}
}

// Dispatch moves the process onto the CPU and bumps its CPU usage, capped at 100.
func (p *Process) Dispatch() {
	p.State = StateRunning
	p.CPUUsage = min(100, p.CPUUsage+CPUUsageStep)
}

// Preempt returns a running process to the ready set. Other states are left untouched.
func (p *Process) Preempt() bool {
	if p.State != StateRunning {
		return false
	}
	p.State = StateReady
	return true
}

// Run consumes one unit of burst and reports whether the work is exhausted.
func (p *Process) Run() bool {
	p.RemainingBurst--
	return p.RemainingBurst <= 0
}

// Terminate marks the process as finished.
func (p *Process) Terminate() {
	p.State = StateTerminated
}

// Clone returns a detached copy suitable for read models.
func (p *Process) Clone() *Process {
	if p == nil {
		return nil
	}
	ret := *p
	return &ret
}
