// Package policy provides the scheduling policies a scheduler can select the
// next ready process with. The set is closed: fcfs, sjf and priority.
package policy
