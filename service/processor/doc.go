// Package processor serialises every engine operation through a single
// worker that consumes commands from a queue. Callers either Submit a command
// and wait for its result or Post it and move on; timer ticks are posted.
package processor
