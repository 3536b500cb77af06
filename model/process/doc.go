// Package process defines the simulated process record shared by the
// allocator, the registry and the scheduler.
package process
