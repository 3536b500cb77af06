// Package allocator owns the simulated memory partition.  Memory is split
// into a fixed number of equal blocks and every admitted process holds one
// contiguous run of them, reserved first-fit and released on termination.
package allocator
