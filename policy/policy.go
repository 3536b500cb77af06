package policy

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/viant/ossim/model/process"
)

// ErrUnknownPolicy is returned when a policy name is not recognised.
var ErrUnknownPolicy = errors.New("policy: unknown scheduling policy")

// Kind identifies a scheduling policy.
type Kind string

// Scheduling policies recognised by the scheduler.
const (
	FCFS     Kind = "fcfs"     // first come, first served (registry order)
	SJF      Kind = "sjf"      // shortest remaining burst first
	Priority Kind = "priority" // highest priority first
)

// Kinds returns all recognised policies.
func Kinds() []Kind {
	return []Kind{FCFS, SJF, Priority}
}

// Parse converts a case-insensitive policy name into a Kind.
func Parse(name string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(name)))
	if !kind.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
	return kind, nil
}

// IsValid reports whether k is one of the recognised policies.
func (k Kind) IsValid() bool {
	switch k {
	case FCFS, SJF, Priority:
		return true
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}

// Select returns the process to run next among candidates, which must be
// the ready processes in registry order. It returns nil when candidates is
// empty. Ties are always broken by registry order.
func (k Kind) Select(candidates []*process.Process) *process.Process {
	if len(candidates) == 0 {
		return nil
	}
	switch k {
	case FCFS:
		return candidates[0]
	case SJF:
		// MinFunc keeps the first of equal elements
		return slices.MinFunc(candidates, func(a, b *process.Process) int {
			return cmp.Compare(a.RemainingBurst, b.RemainingBurst)
		})
	case Priority:
		return slices.MaxFunc(candidates, func(a, b *process.Process) int {
			return cmp.Compare(a.Priority, b.Priority)
		})
	}
	return nil
}
