package generator

import (
	"errors"
	"fmt"
)

// Config represents generator configuration. All ranges are inclusive.
type Config struct {
	// Seed initialises the random source; 0 seeds from the current time.
	Seed        int64 `json:"seed" yaml:"seed"`
	MinMemoryMB int   `json:"minMemoryMB" yaml:"minMemoryMB"`
	MaxMemoryMB int   `json:"maxMemoryMB" yaml:"maxMemoryMB"`
	MinBurst    int   `json:"minBurst" yaml:"minBurst"`
	MaxBurst    int   `json:"maxBurst" yaml:"maxBurst"`
}

// DefaultConfig returns the default generator configuration
func DefaultConfig() Config {
	return Config{
		MinMemoryMB: 50,
		MaxMemoryMB: 149,
		MinBurst:    5,
		MaxBurst:    14,
	}
}

// Validate checks the configured ranges.
func (c Config) Validate() error {
	var errs []error
	if c.MinMemoryMB < 0 || c.MinMemoryMB > c.MaxMemoryMB {
		errs = append(errs, fmt.Errorf("generator: invalid memory range [%d,%d]", c.MinMemoryMB, c.MaxMemoryMB))
	}
	if c.MinBurst < 1 || c.MinBurst > c.MaxBurst {
		errs = append(errs, fmt.Errorf("generator: invalid burst range [%d,%d]", c.MinBurst, c.MaxBurst))
	}
	return errors.Join(errs...)
}
