package cpu

var (
	cpuidFn = ID
)

// EnableInterrupts enables interrupt handling.
func EnableInterrupts()

// DisableInterrupts disables interrupt handling.
func DisableInterrupts()

// InterruptsEnabled reports whether interrupts are currently enabled on
// this core (RFLAGS.IF).
func InterruptsEnabled() bool

// Halt stops instruction execution.
func Halt()

// FlushTLBEntry flushes a TLB entry for a particular virtual address.
func FlushTLBEntry(virtAddr uintptr)

// SwitchPDT sets the root page table directory to point to the specified
// physical address and flushes the TLB.
func SwitchPDT(pdtPhysAddr uintptr)

// ActivePDT returns the physical address of the currently active page table.
func ActivePDT() uintptr

// ReadCR2 returns the value stored in the CR2 register.
func ReadCR2() uint64

// SwitchToCooperative stores the caller's callee-saved registers and stack
// pointer into *oldSP, switches the stack pointer to newSP and restores the
// callee-saved registers found there, then returns into whatever called
// the matching SwitchToCooperative (or ResumeCooperative) that originally
// produced newSP. It returns again to the original caller once some other
// thread switches back to *oldSP.
func SwitchToCooperative(oldSP *uintptr, newSP uintptr)

// ResumeCooperative switches to newSP and restores the callee-saved
// registers found there, the same as the second half of
// SwitchToCooperative, but never returns to its caller: it is used when
// abandoning a trap context rather than yielding from an ordinary call.
func ResumeCooperative(newSP uintptr)

// PreemptiveResumeTrampolineSP returns the stack pointer of a small
// per-thread trampoline stack primed to re-enter tid's preemptive context
// via a software trap, for use when a cooperative yield needs to resume a
// thread that was last suspended by a timer interrupt.
func PreemptiveResumeTrampolineSP(tid uintptr) uintptr

// ID returns information about the CPU and its features. It
// is implemented as a CPUID instruction with EAX=leaf and
// returns the values in EAX, EBX, ECX and EDX.
func ID(leaf uint32) (uint32, uint32, uint32, uint32)

// IsIntel returns true if the code is running on an Intel processor.
func IsIntel() bool {
	_, ebx, ecx, edx := cpuidFn(0)
	return ebx == 0x756e6547 && // "Genu"
		edx == 0x49656e69 && // "ineI"
		ecx == 0x6c65746e // "ntel"
}
