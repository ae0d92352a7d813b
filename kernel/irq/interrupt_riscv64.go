//go:build riscv64

package irq

import "monokernel/kernel/kfmt"

// Regs contains a snapshot of the general-purpose register values at the
// time a trap occurred.
type Regs struct {
	X [31]uint64 // x1-x31 (x0 is hardwired zero, not saved)
}

// Print outputs a dump of the register values to the active console.
func (r *Regs) Print() {
	for i := 0; i < len(r.X); i += 2 {
		if i+1 < len(r.X) {
			kfmt.Printf("X%-2d = %16x X%-2d = %16x\n", i+1, r.X[i], i+2, r.X[i+1])
		} else {
			kfmt.Printf("X%-2d = %16x\n", i+1, r.X[i])
		}
	}
}

// Frame describes the trap context saved by the vector-table prologue.
type Frame struct {
	SEPC   uint64 // supervisor exception PC (return address)
	SSTATUS uint64
	SP     uint64
	SCAUSE uint64
	STVAL  uint64
}

// Print outputs a dump of the trap frame to the active console.
func (f *Frame) Print() {
	kfmt.Printf("SEPC = %16x SSTATUS = %16x\n", f.SEPC, f.SSTATUS)
	kfmt.Printf("SP   = %16x SCAUSE  = %16x\n", f.SP, f.SCAUSE)
	kfmt.Printf("STVAL = %16x\n", f.STVAL)
}
