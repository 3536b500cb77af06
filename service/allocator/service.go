package allocator

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/viant/ossim/model/process"
)

// Service allocates contiguous block runs to processes
type Service struct {
	config Config
	blocks []int
	usedMB int
	// requests tracks the live requested MB per owner, including 0 MB owners.
	requests map[int]int
}

// New creates a new allocator service
func New(config Config) (*Service, error) {
	if config.Accounting == "" {
		config.Accounting = AccountingBlock
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Service{
		config:   config,
		blocks:   make([]int, config.Blocks),
		requests: make(map[int]int),
	}, nil
}

// Config returns the allocator configuration.
func (s *Service) Config() Config {
	return s.config
}

// BlockSizeMB returns the size of a single block.
func (s *Service) BlockSizeMB() float64 {
	return float64(s.config.TotalMB) / float64(s.config.Blocks)
}

// BlocksNeeded returns ceil(memoryMB / blockSize) using integer arithmetic.
func (s *Service) BlocksNeeded(memoryMB int) int {
	if memoryMB <= 0 {
		return 0
	}
	total := s.config.TotalMB
	return (memoryMB*s.config.Blocks + total - 1) / total
}

// Allocate reserves the first contiguous run of free blocks large enough for
// the process, scanning once from the lowest block.
func (s *Service) Allocate(p *process.Process) error {
	if p == nil || p.MemoryMB < 0 {
		return ErrInvalidRequest
	}
	if _, ok := s.requests[p.ID]; ok {
		return fmt.Errorf("%w: %d", ErrAlreadyAllocated, p.ID)
	}
	needed := s.BlocksNeeded(p.MemoryMB)
	if needed == 0 {
		s.requests[p.ID] = 0
		return nil
	}
	start := s.firstFit(needed)
	if start < 0 {
		return fmt.Errorf("%w: process %d needs %d contiguous blocks", ErrAllocationFailed, p.ID, needed)
	}
	for i := start; i < start+needed; i++ {
		s.blocks[i] = p.ID
	}
	s.requests[p.ID] = p.MemoryMB
	s.usedMB += p.MemoryMB
	return nil
}

// firstFit returns the start index of the first free run of length needed or -1.
func (s *Service) firstFit(needed int) int {
	consecutive := 0
	start := -1
	for i, owner := range s.blocks {
		if owner != 0 {
			consecutive = 0
			continue
		}
		if consecutive == 0 {
			start = i
		}
		consecutive++
		if consecutive == needed {
			return start
		}
	}
	return -1
}

// Deallocate clears every block owned by processID. Unknown ids are ignored.
func (s *Service) Deallocate(processID int) {
	requested, ok := s.requests[processID]
	cleared := 0
	for i, owner := range s.blocks {
		if owner == processID {
			s.blocks[i] = 0
			cleared++
		}
	}
	if !ok && cleared == 0 {
		return
	}
	delete(s.requests, processID)
	switch s.config.Accounting {
	case AccountingExact:
		s.usedMB -= requested
	default:
		// an owner without blocks leaves the table, and so the figure, unchanged
		if cleared > 0 {
			s.reconcile()
		}
	}
}

// reconcile recomputes used memory from the proportion of occupied blocks.
func (s *Service) reconcile() {
	occupied := len(s.blocks) - s.freeBlocks()
	s.usedMB = int(math.Round(float64(occupied) / float64(len(s.blocks)) * float64(s.config.TotalMB)))
}

func (s *Service) freeBlocks() int {
	free := 0
	for _, owner := range s.blocks {
		if owner == 0 {
			free++
		}
	}
	return free
}

// UsedMB returns the currently reported used memory.
func (s *Service) UsedMB() int {
	return s.usedMB
}

// Owned returns indexes of blocks owned by processID in ascending order.
func (s *Service) Owned(processID int) []int {
	var ret []int
	for i, owner := range s.blocks {
		if owner == processID {
			ret = append(ret, i)
		}
	}
	return ret
}

// Snapshot returns a copy of the block table and usage figures.
func (s *Service) Snapshot() *Snapshot {
	usage := 0
	if s.config.TotalMB > 0 {
		usage = int(math.Round(float64(s.usedMB) / float64(s.config.TotalMB) * 100))
	}
	return &Snapshot{
		Blocks:       slices.Clone(s.blocks),
		BlockSizeMB:  s.BlockSizeMB(),
		TotalMB:      s.config.TotalMB,
		UsedMB:       s.usedMB,
		FreeMB:       s.config.TotalMB - s.usedMB,
		UsagePercent: usage,
	}
}

// Verify checks the block table against the set of registered process ids:
// every owner must be registered, hold exactly one run and the run must be
// sized for its request.
func (s *Service) Verify(registered []int) error {
	live := make(map[int]bool, len(registered))
	for _, id := range registered {
		live[id] = true
	}
	var errs []error
	for id := range s.requests {
		if !live[id] {
			errs = append(errs, fmt.Errorf("process %d holds memory but is not registered", id))
		}
	}
	for _, id := range registered {
		if _, ok := s.requests[id]; !ok {
			errs = append(errs, fmt.Errorf("process %d is registered without an allocation", id))
		}
	}
	seen := map[int]bool{}
	for i := 0; i < len(s.blocks); {
		owner := s.blocks[i]
		if owner == 0 {
			i++
			continue
		}
		j := i
		for j < len(s.blocks) && s.blocks[j] == owner {
			j++
		}
		if seen[owner] {
			errs = append(errs, fmt.Errorf("process %d owns a non-contiguous run at block %d", owner, i))
		}
		seen[owner] = true
		requested, ok := s.requests[owner]
		if !ok {
			errs = append(errs, fmt.Errorf("block %d tagged with unknown owner %d", i, owner))
		} else if expect := s.BlocksNeeded(requested); expect != j-i {
			errs = append(errs, fmt.Errorf("process %d owns %d blocks, expected %d", owner, j-i, expect))
		}
		i = j
	}
	return errors.Join(errs...)
}
