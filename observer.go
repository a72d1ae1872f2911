package sietch

import (
	"sync/atomic"
	"time"
)

// Observer sees the outcome of every permission check made through a
// Checker it is installed on. Implementations must be safe for concurrent
// use and should return quickly; the hook runs on the check path.
//
// The hook replaces ad-hoc debug logging of checks: wire a counter, a
// trace span, or a sampled logger here instead.
type Observer interface {
	ObserveCheck(subject Object, relation Relation, object Object, allowed bool, err error, elapsed time.Duration)
}

// NopObserver discards all observations. It is the default.
type NopObserver struct{}

// ObserveCheck implements Observer.
func (NopObserver) ObserveCheck(Object, Relation, Object, bool, error, time.Duration) {}

// CheckStats is a snapshot of CounterObserver totals.
type CheckStats struct {
	Checks  uint64
	Allowed uint64
	Denied  uint64
	Errors  uint64
}

// CounterObserver counts check outcomes with atomic counters. Denied
// counts (false, nil) results; failed checks count under Errors only.
type CounterObserver struct {
	checks  atomic.Uint64
	allowed atomic.Uint64
	denied  atomic.Uint64
	errors  atomic.Uint64
}

// ObserveCheck implements Observer.
func (o *CounterObserver) ObserveCheck(_ Object, _ Relation, _ Object, allowed bool, err error, _ time.Duration) {
	o.checks.Add(1)
	switch {
	case err != nil:
		o.errors.Add(1)
	case allowed:
		o.allowed.Add(1)
	default:
		o.denied.Add(1)
	}
}

// Stats returns the current totals.
func (o *CounterObserver) Stats() CheckStats {
	return CheckStats{
		Checks:  o.checks.Load(),
		Allowed: o.allowed.Load(),
		Denied:  o.denied.Load(),
		Errors:  o.errors.Load(),
	}
}

var _ Observer = (*CounterObserver)(nil)
