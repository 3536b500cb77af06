package event

import (
	"time"

	"github.com/viant/ossim/internal/idgen"
)

// Kind identifies a scheduler lifecycle event.
type Kind string

const (
	KindAdmitted      Kind = "admitted"
	KindRejected      Kind = "rejected"
	KindDispatched    Kind = "dispatched"
	KindPreempted     Kind = "preempted"
	KindTerminated    Kind = "terminated"
	KindKilled        Kind = "killed"
	KindStarted       Kind = "started"
	KindStopped       Kind = "stopped"
	KindPolicyChanged Kind = "policy-changed"
	KindIdle          Kind = "idle"
)

func (k Kind) String() string {
	return string(k)
}

// Event describes something that happened inside the scheduler.
type Event struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	ProcessID int       `json:"processID,omitempty"`
	Tick      uint64    `json:"tick"`
	Policy    string    `json:"policy,omitempty"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewEvent creates an event with a fresh identifier.
func NewEvent(kind Kind, processID int, tick uint64, createdAt time.Time) *Event {
	return &Event{
		ID:        idgen.NewWithPrefix("evt-"),
		Kind:      kind,
		ProcessID: processID,
		Tick:      tick,
		CreatedAt: createdAt,
	}
}
