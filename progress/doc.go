// Package progress keeps aggregated scheduler counters (ticks, dispatches,
// context switches, completions) and notifies an optional observer on every
// change.
package progress
