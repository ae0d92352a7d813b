//go:build arm64

package cpu

// EnableInterrupts enables interrupt handling.
func EnableInterrupts()

// DisableInterrupts disables interrupt handling.
func DisableInterrupts()

// InterruptsEnabled reports whether interrupts are currently enabled on
// this core (the negation of PSTATE.I).
func InterruptsEnabled() bool

// Halt stops instruction execution (wfi).
func Halt()

// FlushTLBEntry invalidates a TLB entry for a particular virtual address.
func FlushTLBEntry(virtAddr uintptr)

// SwitchPDT sets TTBR0_EL1 to point to the specified physical address and
// invalidates the TLB.
func SwitchPDT(pdtPhysAddr uintptr)

// ActivePDT returns the physical address of the currently active
// translation table (TTBR0_EL1).
func ActivePDT() uintptr

// ID returns the contents of MPIDR_EL1, the multiprocessor affinity register.
func ID() uint64

// SwitchToCooperative stores the caller's callee-saved registers and stack
// pointer into *oldSP, switches to newSP and restores the callee-saved
// registers found there.
func SwitchToCooperative(oldSP *uintptr, newSP uintptr)

// ResumeCooperative switches to newSP and restores its callee-saved
// registers, never returning to its caller.
func ResumeCooperative(newSP uintptr)

// PreemptiveResumeTrampolineSP returns the stack pointer of a small
// per-thread trampoline stack primed to re-enter tid's preemptive context
// via a software exception.
func PreemptiveResumeTrampolineSP(tid uintptr) uintptr
