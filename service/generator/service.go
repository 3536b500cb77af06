package generator

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/viant/ossim/model/process"
)

// Service produces random process specs
type Service struct {
	config Config
	rnd    *rand.Rand
	mux    sync.Mutex
}

// New creates a new generator service
func New(config Config) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Service{config: config, rnd: rand.New(rand.NewSource(seed))}, nil
}

// Spec returns a fully random spec.
func (s *Service) Spec() process.Spec {
	return s.Fill(process.Spec{})
}

// Fill returns spec with every zero field replaced by a random value.
func (s *Service) Fill(spec process.Spec) process.Spec {
	s.mux.Lock()
	defer s.mux.Unlock()
	if spec.Name == "" {
		spec.Name = fmt.Sprintf("Process_%d", s.rnd.Intn(1000))
	}
	if spec.Priority == 0 {
		spec.Priority = process.Priorities[s.rnd.Intn(len(process.Priorities))]
	}
	if spec.MemoryMB == 0 {
		spec.MemoryMB = s.between(s.config.MinMemoryMB, s.config.MaxMemoryMB)
	}
	if spec.Burst == 0 {
		spec.Burst = s.between(s.config.MinBurst, s.config.MaxBurst)
	}
	return spec
}

func (s *Service) between(lo, hi int) int {
	return lo + s.rnd.Intn(hi-lo+1)
}
