// Package snapshot captures the observable state of a simulation so that it
// can be stored through a dao.Service and rendered for humans.
package snapshot

import (
	"fmt"
	"strings"
	"time"

	"github.com/viant/ossim/model/process"
	"github.com/viant/ossim/progress"
	"github.com/viant/ossim/service/allocator"
	"github.com/viant/ossim/service/dao"
	"github.com/viant/ossim/service/dao/store"
	"gopkg.in/yaml.v3"
)

// Snapshot is a point-in-time copy of the engine state.
type Snapshot struct {
	Name      string              `json:"name" yaml:"name"`
	TakenAt   time.Time           `json:"takenAt" yaml:"takenAt"`
	Policy    string              `json:"policy" yaml:"policy"`
	Running   bool                `json:"running" yaml:"running"`
	Tick      uint64              `json:"tick" yaml:"tick"`
	Processes []*process.Process  `json:"processes" yaml:"processes"`
	Memory    *allocator.Snapshot `json:"memory,omitempty" yaml:"memory,omitempty"`
	Stats     progress.Stats      `json:"stats" yaml:"stats"`
}

// Store persists snapshots by name.
type Store = dao.Service[string, Snapshot]

// NewMemoryStore returns an in-memory snapshot store.
func NewMemoryStore() Store {
	return store.NewMemoryStore[string, Snapshot](func(s *Snapshot) string { return s.Name })
}

// ValidateName rejects names that cannot be used as a storage key.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: snapshot name %q", dao.ErrInvalidID, name)
	}
	return nil
}

// YAML renders the snapshot as YAML.
func (s *Snapshot) YAML() ([]byte, error) {
	return yaml.Marshal(s)
}
