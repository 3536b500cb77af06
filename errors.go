package ossim

import (
	"github.com/viant/ossim/policy"
	"github.com/viant/ossim/service/allocator"
	"github.com/viant/ossim/service/processor"
)

var (
	// ErrShutdown is returned by Runtime operations after Shutdown.
	ErrShutdown = processor.ErrShutdown
	// ErrAllocationFailed is returned when no contiguous run of free blocks fits a process.
	ErrAllocationFailed = allocator.ErrAllocationFailed
	// ErrInvalidRequest is returned for negative memory requests.
	ErrInvalidRequest = allocator.ErrInvalidRequest
	// ErrUnknownPolicy is returned for unrecognised policy names.
	ErrUnknownPolicy = policy.ErrUnknownPolicy
)
