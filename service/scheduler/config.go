package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/viant/ossim/policy"
)

// Config represents scheduler configuration
type Config struct {
	// Policy is the initial scheduling policy name.
	Policy string `json:"policy" yaml:"policy"`
	// Quantum is the number of consecutive ticks a process may hold the CPU.
	Quantum int `json:"quantum" yaml:"quantum"`
	// TickInterval is the real-time length of one tick.
	TickInterval time.Duration `json:"tickInterval" yaml:"tickInterval"`
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Policy:       policy.FCFS.String(),
		Quantum:      1,
		TickInterval: time.Second,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	var errs []error
	if _, err := policy.Parse(c.Policy); err != nil {
		errs = append(errs, err)
	}
	if c.Quantum < 1 {
		errs = append(errs, fmt.Errorf("scheduler: quantum must be at least 1, got %d", c.Quantum))
	}
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("scheduler: tickInterval must be positive, got %s", c.TickInterval))
	}
	return errors.Join(errs...)
}
