// Package fswait models the one disciplined yield point the editor core
// has (spec §5, §9): waiting for a collaborator's pending asynchronous
// work to drain before a prefab save or project load proceeds. The
// original busy-waited directly on the file system's has_work(); this
// port exposes an explicit "await until idle" method instead, so the
// core calls a single well-named operation rather than spinning inline.
package fswait

import "time"

// Source reports whether it still has outstanding asynchronous work.
// The concrete file-system / resource-manager collaborator is out of
// this core's scope (spec §1); this interface is the contract the core
// depends on.
type Source interface {
	HasWork() bool
}

// Waiter polls a Source until it goes idle, bounded by a maximum wait.
type Waiter struct {
	pollInterval time.Duration
	maxWait      time.Duration
}

// DefaultPollInterval is how often HasWork is polled absent a
// configured override.
const DefaultPollInterval = time.Millisecond

// DefaultMaxWait bounds how long AwaitIdle will busy-wait before giving
// up, so a stuck collaborator cannot hang the editor loop forever.
const DefaultMaxWait = 5 * time.Second

// New builds a Waiter with the default poll interval and bound.
func New() *Waiter {
	return &Waiter{pollInterval: DefaultPollInterval, maxWait: DefaultMaxWait}
}

// NewWithBounds builds a Waiter with explicit tuning, mainly for tests
// that don't want to wait out the real default bound.
func NewWithBounds(pollInterval, maxWait time.Duration) *Waiter {
	return &Waiter{pollInterval: pollInterval, maxWait: maxWait}
}

// AwaitIdle blocks until src reports no pending work, or until maxWait
// elapses. It returns false if it gave up while work was still pending.
func (w *Waiter) AwaitIdle(src Source) bool {
	deadline := time.Now().Add(w.maxWait)
	for src.HasWork() {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(w.pollInterval)
	}
	return true
}
