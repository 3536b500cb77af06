// Package terminal implements the line-oriented command interpreter used by
// the interactive shell: ps, kill, help and clear plus commands that drive
// the simulation engine.
package terminal
