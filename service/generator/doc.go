// Package generator fills in process specs with random names, priorities,
// memory requests and bursts drawn from configurable inclusive ranges.
package generator
