// Package scheduler advances simulated process lifecycles one tick at a time
// under a selectable policy.
//
// A Service is not safe for concurrent use: every call must be made from a
// single goroutine, normally the processor worker. Time is delivered either by
// calling Tick directly or by a Timer that eventually calls Fire with the
// epoch it was armed with. Any tick whose epoch is stale is ignored, which is
// how Stop and SetPolicy cancel an in-flight tick.
package scheduler
