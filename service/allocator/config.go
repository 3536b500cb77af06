package allocator

import (
	"errors"
	"fmt"
)

// Accounting selects how used memory is reported.
type Accounting string

const (
	// AccountingBlock adds requested MB on allocation and reconciles used
	// memory from the number of occupied blocks on every deallocation.
	AccountingBlock Accounting = "block"
	// AccountingExact reports the sum of live requests at all times.
	AccountingExact Accounting = "exact"
)

// Config represents allocator configuration
type Config struct {
	// TotalMB is the simulated memory capacity.
	TotalMB int `json:"totalMB" yaml:"totalMB"`
	// Blocks is the number of equal blocks TotalMB is partitioned into.
	Blocks int `json:"blocks" yaml:"blocks"`
	// Accounting selects the used memory bookkeeping, block by default.
	Accounting Accounting `json:"accounting,omitempty" yaml:"accounting,omitempty"`
}

// DefaultConfig returns the default allocator configuration
func DefaultConfig() Config {
	return Config{
		TotalMB:    1024,
		Blocks:     32,
		Accounting: AccountingBlock,
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c Config) Validate() error {
	var errs []error
	if c.TotalMB <= 0 {
		errs = append(errs, fmt.Errorf("memory.totalMB must be > 0"))
	}
	if c.Blocks <= 0 {
		errs = append(errs, fmt.Errorf("memory.blocks must be > 0"))
	}
	switch c.Accounting {
	case "", AccountingBlock, AccountingExact:
	default:
		errs = append(errs, fmt.Errorf("memory.accounting: unsupported mode %q", c.Accounting))
	}
	return errors.Join(errs...)
}
