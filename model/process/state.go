package process

// State represents the lifecycle state of a simulated process
type State string

const (
	StateReady      State = "ready"
	StateRunning    State = "running"
	StateTerminated State = "terminated"
)

func (s State) IsReady() bool {
	return s == StateReady
}

func (s State) IsRunning() bool {
	return s == StateRunning
}

func (s State) IsTerminated() bool {
	return s == StateTerminated
}
