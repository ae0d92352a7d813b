//go:build arm64

package irq

import "monokernel/kernel/kfmt"

// Regs contains a snapshot of the general-purpose register values at the
// time a synchronous exception or IRQ occurred.
type Regs struct {
	X [31]uint64 // x0-x30
}

// Print outputs a dump of the register values to the active console.
func (r *Regs) Print() {
	for i := 0; i < len(r.X); i += 2 {
		if i+1 < len(r.X) {
			kfmt.Printf("X%-2d = %16x X%-2d = %16x\n", i, r.X[i], i+1, r.X[i+1])
		} else {
			kfmt.Printf("X%-2d = %16x\n", i, r.X[i])
		}
	}
}

// Frame describes the exception context saved by the vector-table
// prologue: the faulting PC, processor state and stack pointer at the time
// of the exception.
type Frame struct {
	ELR   uint64 // exception link register (return PC)
	SPSR  uint64 // saved processor state
	SP    uint64
	ESR   uint64 // exception syndrome register
	FAR   uint64 // fault address register
}

// Print outputs a dump of the exception frame to the active console.
func (f *Frame) Print() {
	kfmt.Printf("ELR  = %16x SPSR = %16x\n", f.ELR, f.SPSR)
	kfmt.Printf("SP   = %16x ESR  = %16x\n", f.SP, f.ESR)
	kfmt.Printf("FAR  = %16x\n", f.FAR)
}
