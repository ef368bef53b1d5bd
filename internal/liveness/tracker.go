// Package liveness tracks when the monitored agent last proved it was alive.
package liveness

import (
	"sync/atomic"
	"time"
)

// Tracker holds the time of the most recent heartbeat.
//
// The timestamp is stored as a monotonic offset from the tracker's creation
// time inside an atomic.Int64. Readers never observe a partially written
// value and there is no lock a panicking writer could leave held.
type Tracker struct {
	base time.Time
	now  func() time.Time
	last atomic.Int64 // nanoseconds since base
}

// New returns a Tracker whose last heartbeat is the moment of construction,
// so a freshly started process does not alert immediately.
func New() *Tracker {
	return newTracker(time.Now)
}

func newTracker(now func() time.Time) *Tracker {
	return &Tracker{base: now(), now: now}
}

// Touch records a heartbeat at the current time.
//
// Concurrent callers may race; the stored value only ever moves forward.
func (t *Tracker) Touch() {
	offset := int64(t.now().Sub(t.base))
	for {
		cur := t.last.Load()
		if offset <= cur {
			return
		}
		if t.last.CompareAndSwap(cur, offset) {
			return
		}
	}
}

// Elapsed returns the time since the last heartbeat. It is never negative.
func (t *Tracker) Elapsed() time.Duration {
	d := t.now().Sub(t.base) - time.Duration(t.last.Load())
	if d < 0 {
		return 0
	}
	return d
}

// LastSeen returns the wall-clock time of the last heartbeat.
func (t *Tracker) LastSeen() time.Time {
	return t.base.Add(time.Duration(t.last.Load()))
}
