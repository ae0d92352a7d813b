package sync

import "monokernel/kernel/cpu"

// interruptsEnabledFn and friends are indirected through vars so tests can
// run without real interrupt-control hardware; they default to the real
// arch primitives.
var (
	disableInterruptsFn = cpu.DisableInterrupts
	enableInterruptsFn  = cpu.EnableInterrupts
	interruptsEnabledFn = cpu.InterruptsEnabled
)

// SpinlockIRQSave is a Spinlock that additionally disables interrupts on
// the current core for the duration it is held, and restores whatever
// interrupt-enable state was in effect before Lock was called (rather than
// unconditionally re-enabling) so that nested acquisitions compose
// correctly: an inner Unlock never re-enables interrupts an outer lock is
// still relying on being disabled.
//
// It guards state that may also be touched from interrupt context on the
// same core: the free-chunk trees, the tid map, the IRQ handler table and
// the active page table pointer.
type SpinlockIRQSave struct {
	inner      Spinlock
	wasEnabled bool
}

// Lock disables interrupts (remembering whether they were enabled) and
// acquires the underlying spinlock.
func (l *SpinlockIRQSave) Lock() {
	wasEnabled := interruptsEnabled()
	disableInterruptsFn()
	l.inner.Acquire()
	l.wasEnabled = wasEnabled
}

// Unlock releases the underlying spinlock and restores the pre-Lock
// interrupt-enable state.
func (l *SpinlockIRQSave) Unlock() {
	wasEnabled := l.wasEnabled
	l.inner.Release()
	if wasEnabled {
		enableInterruptsFn()
	}
}

func interruptsEnabled() bool { return interruptsEnabledFn() }
