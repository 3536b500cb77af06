package memory

import (
	"context"
	"sync"

	"github.com/viant/ossim/model/process"
	"github.com/viant/ossim/service/dao"
	"github.com/viant/ossim/service/dao/criteria"
)

// Service is the process registry: an in-memory, thread-safe store keyed by
// process id that preserves admission order.  The scheduler owns the
// returned records and mutates them in place.
type Service struct {
	processes map[int]*process.Process
	order     []int
	mux       sync.RWMutex
}

var _ dao.Service[int, process.Process] = (*Service)(nil)

// Save admits p at the tail or replaces an existing record in place.
func (s *Service) Save(_ context.Context, p *process.Process) error {
	if p == nil {
		return dao.ErrNilEntity
	}
	if p.ID <= 0 {
		return dao.ErrInvalidID
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	if _, ok := s.processes[p.ID]; !ok {
		s.order = append(s.order, p.ID)
	}
	s.processes[p.ID] = p
	return nil
}

func (s *Service) Load(_ context.Context, id int) (*process.Process, error) {
	if id <= 0 {
		return nil, dao.ErrInvalidID
	}

	s.mux.RLock()
	p, ok := s.processes[id]
	s.mux.RUnlock()

	if !ok {
		return nil, dao.ErrNotFound
	}
	return p, nil
}

func (s *Service) Delete(_ context.Context, id int) error {
	if id <= 0 {
		return dao.ErrInvalidID
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	if _, ok := s.processes[id]; !ok {
		return dao.ErrNotFound
	}
	delete(s.processes, id)
	for i, candidate := range s.order {
		if candidate == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns matching processes in admission order.
func (s *Service) List(_ context.Context, parameters ...*dao.Parameter) ([]*process.Process, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	out := make([]*process.Process, 0, len(s.order))
	for _, id := range s.order {
		p := s.processes[id]
		if !criteria.Matches(p, parameters) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Len returns the number of registered processes.
func (s *Service) Len() int {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return len(s.order)
}

func New() *Service {
	return &Service{processes: map[int]*process.Process{}}
}
