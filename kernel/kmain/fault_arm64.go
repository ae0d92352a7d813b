//go:build arm64

package kmain

import (
	"monokernel/kernel/addr"
	"monokernel/kernel/irq"
)

func installFaultHandlers() {
	irq.HandleException(irq.DataAbort, onDataAbort)
	irq.HandleException(irq.InstructionAbort, fatalTrap("instruction abort"))
}

func onDataAbort(frame *irq.Frame, regs *irq.Regs) {
	faultAddr := addr.NewCanonicalVirtAddr(uintptr(frame.FAR))
	// SPSR's mode field is 0 (EL0t) only when the exception was taken
	// from unprivileged code.
	userMode := frame.SPSR&0xf == 0
	onPageFault(faultAddr, userMode, coreID(), frame, regs)
}
