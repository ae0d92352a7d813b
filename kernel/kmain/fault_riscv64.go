//go:build riscv64

package kmain

import (
	"monokernel/kernel/addr"
	"monokernel/kernel/irq"
)

func installFaultHandlers() {
	irq.HandleException(irq.LoadPageFault, onPageFaultTrap)
	irq.HandleException(irq.StorePageFault, onPageFaultTrap)
	irq.HandleException(irq.InstructionPageFault, onPageFaultTrap)
}

func onPageFaultTrap(frame *irq.Frame, regs *irq.Regs) {
	faultAddr := addr.NewCanonicalVirtAddr(uintptr(frame.STVAL))
	// SSTATUS.SPP (bit 8) is clear only when the trap was taken from
	// user mode.
	userMode := frame.SSTATUS&(1<<8) == 0
	onPageFault(faultAddr, userMode, coreID(), frame, regs)
}
