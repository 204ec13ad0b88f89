// Package limiter provides the login pacing gate shared by all bots.
//
// The upstream network tolerates a single login attempt at a time; firing
// several in a burst gets the whole IP throttled. Every bot therefore takes
// the one permit before logging in and schedules its return only after a
// configured cool-down, so consecutive logins are spaced out even when many
// bots start together.
package limiter

import "time"

// Limiter is a counting gate with capacity one and delayed release.
type Limiter struct {
	permit chan struct{}
}

// New creates a Limiter with its single permit free.
func New() *Limiter {
	l := &Limiter{permit: make(chan struct{}, 1)}
	l.permit <- struct{}{}
	return l
}

// Acquire blocks until the permit is free and takes it. The caller is the
// exclusive holder afterwards and must follow up with exactly one
// ReleaseAfter call. There is no ordering guarantee among waiters.
func (l *Limiter) Acquire() {
	<-l.permit
}

// TryAcquire takes the permit if it is free right now and reports whether
// it did, letting a caller notice contention before committing to a
// blocking Acquire.
func (l *Limiter) TryAcquire() bool {
	select {
	case <-l.permit:
		return true
	default:
		return false
	}
}

// ReleaseAfter returns the permit after delay has elapsed. It never blocks
// the caller; the next Acquire completes no earlier than delay from now.
func (l *Limiter) ReleaseAfter(delay time.Duration) {
	if delay <= 0 {
		l.permit <- struct{}{}
		return
	}
	time.AfterFunc(delay, func() {
		l.permit <- struct{}{}
	})
}
