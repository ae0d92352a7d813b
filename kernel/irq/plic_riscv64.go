//go:build riscv64

package irq

// plicRead/plicWrite access the PLIC's memory-mapped register window, and
// sbiSetTimer issues the SBI timer extension call used for the one-shot
// timer; all three are bodyless arch primitives implemented in assembly.
func plicRead(reg uint32) uint32
func plicWrite(reg uint32, value uint32)
func sbiSetTimer(deadline uint64)

const (
	plicPriorityBase = 0x0000
	plicEnableBase   = 0x2000
	plicClaimBase    = 0x20_0004
)

// PLIC is the riscv64 InterruptController backend. Platforms without a
// discrete PLIC (pure SBI timer/IPI only) can satisfy the interface with a
// no-op Enable/Disable/Fetch/Finish and rely solely on sbiSetTimer for
// scheduling ticks.
type PLIC struct{}

func (PLIC) Init() error { return nil }

func (PLIC) Enable(irq IRQNum) {
	reg := plicEnableBase + 4*(uint32(irq)/32)
	plicWrite(reg, plicRead(reg)|1<<(uint32(irq)%32))
}

func (PLIC) Disable(irq IRQNum) {
	reg := plicEnableBase + 4*(uint32(irq)/32)
	plicWrite(reg, plicRead(reg)&^(1<<(uint32(irq)%32)))
}

func (PLIC) Fetch() IRQNum {
	return IRQNum(plicRead(plicClaimBase))
}

func (PLIC) Finish(irq IRQNum) {
	plicWrite(plicClaimBase, uint32(irq))
}
