// Package sync provides synchronization primitive implementations for spinlocks
// and semaphore.
package sync

import "sync/atomic"

var (
	// yieldFn is installed via SetYieldFn; kept as an indirection here
	// to avoid sync depending on sched. It is nil until a caller
	// installs one.
	yieldFn func()
)

// SetYieldFn installs the function spinlocks call after a bounded number of
// failed acquire attempts, letting another thread run instead of burning
// the whole timeslice busy-waiting. No package in this module calls it.
func SetYieldFn(fn func()) {
	yieldFn = fn
}

// Spinlock implements a lock where each task trying to acquire it busy-waits
// till the lock becomes available.
type Spinlock struct {
	state uint32
}

// Acquire blocks until the lock can be acquired by the currently active task.
// Any attempt to re-acquire a lock already held by the current task will cause
// a deadlock.
func (l *Spinlock) Acquire() {
	archAcquireSpinlock(&l.state, 1)
}

// TryToAcquire attempts to acquire the lock and returns true if the lock could
// be acquired or false otherwise.
func (l *Spinlock) TryToAcquire() bool {
	return atomic.SwapUint32(&l.state, 1) == 0
}

// Release relinquishes a held lock allowing other tasks to acquire it. Calling
// Release while the lock is free has no effect.
func (l *Spinlock) Release() {
	atomic.StoreUint32(&l.state, 0)
}

// archAcquireSpinlock is an arch-specific implementation for acquiring the lock.
func archAcquireSpinlock(state *uint32, attemptsBeforeYielding uint32)
