// Package idgen wraps the UUID generator so that it can be stubbed in tests.
// Simulation, event and snapshot identifiers are opaque strings; process ids
// are small integers handed out by the scheduler instead.
package idgen
