//go:build arm64

package kmain

import (
	"monokernel/kernel/cpu"
	"monokernel/kernel/irq"
	"monokernel/kernel/sched"
)

// defaultController is the GICv2 distributor/CPU-interface pair, this
// architecture's supported InterruptController backend.
var defaultController irq.InterruptController = irq.GICv2{}

// timerIRQ is the architected generic timer's PPI number (14), offset into
// the GIC's unified SPI/PPI numbering space.
const timerIRQ irq.IRQNum = 16 + 14

// coreID returns this core's affinity value as reported in MPIDR_EL1,
// masked down to the runqueue's fixed core-table size.
func coreID() int {
	return int(cpu.ID()) % sched.MaxCores
}
