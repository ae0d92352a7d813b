//go:build amd64

package kmain

import (
	"monokernel/kernel/cpu"
	"monokernel/kernel/irq"
	"monokernel/kernel/sched"
)

// defaultController is the local APIC, this architecture's only supported
// InterruptController backend.
var defaultController irq.InterruptController = irq.LocalAPIC{}

// timerIRQ is the local APIC timer's vector, chosen to sit directly after
// the 32 reserved CPU exception vectors.
const timerIRQ irq.IRQNum = 32

// coreID returns this core's local APIC id, read via cpuid leaf 1, masked
// down to the runqueue's fixed core-table size.
func coreID() int {
	_, ebx, _, _ := cpu.ID(1)
	return int(ebx>>24) % sched.MaxCores
}
