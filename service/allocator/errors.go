package allocator

import "errors"

var (
	// ErrAllocationFailed is returned when no contiguous run of free blocks is
	// large enough for the request.
	ErrAllocationFailed = errors.New("allocator: allocation failed")

	// ErrInvalidRequest indicates a negative memory request or a nil process.
	ErrInvalidRequest = errors.New("allocator: invalid request")

	// ErrAlreadyAllocated is returned when the process id already holds memory.
	ErrAlreadyAllocated = errors.New("allocator: process already allocated")
)
