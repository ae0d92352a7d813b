//go:build riscv64

package kmain

import (
	"monokernel/kernel/cpu"
	"monokernel/kernel/irq"
	"monokernel/kernel/sched"
)

// defaultController is the PLIC, this architecture's supported
// InterruptController backend; the timer interrupt itself arrives via the
// SBI timer extension rather than a PLIC-claimed source (see plic_riscv64.go).
var defaultController irq.InterruptController = irq.PLIC{}

// timerIRQ is a sentinel id, never returned by PLIC.Fetch, used to route
// the SBI timer callback through the same HandleIRQ dispatch as every
// other interrupt source.
const timerIRQ irq.IRQNum = 0

// coreID returns this hart's id, masked down to the runqueue's fixed
// core-table size.
func coreID() int {
	return int(cpu.ID()) % sched.MaxCores
}
