//go:build amd64

package kmain

import (
	"monokernel/kernel/addr"
	"monokernel/kernel/cpu"
	"monokernel/kernel/irq"
)

func installFaultHandlers() {
	irq.HandleExceptionWithCode(irq.PageFaultException, onPageFaultTrap)
	irq.HandleException(irq.GPFException, fatalTrap("general protection fault"))
	irq.HandleException(irq.DoubleFault, fatalTrap("double fault"))
}

func onPageFaultTrap(_ uint64, frame *irq.Frame, regs *irq.Regs) {
	faultAddr := addr.NewCanonicalVirtAddr(uintptr(cpu.ReadCR2()))
	userMode := frame.CS&0x3 != 0
	onPageFault(faultAddr, userMode, coreID(), frame, regs)
}
