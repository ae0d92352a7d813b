//go:build arm64

package irq

// gicRead/gicWrite access the GICv2 distributor and CPU interface
// memory-mapped registers; bodyless arch primitives implemented in
// assembly alongside the board's MMIO base discovery.
func gicRead(reg uint32) uint32
func gicWrite(reg uint32, value uint32)

const (
	gicdISENABLER = 0x100
	gicdICENABLER = 0x180
	giccIAR       = 0x00c
	giccEOIR      = 0x010
)

// GICv2 is the arm64 InterruptController backend. A GICv3 board instead
// wires its own adapter behind the same interface; neither depends on the
// other.
type GICv2 struct{}

func (GICv2) Init() error { return nil }

func (GICv2) Enable(irq IRQNum) {
	reg := gicdISENABLER + 4*(uint32(irq)/32)
	gicWrite(reg, 1<<(uint32(irq)%32))
}

func (GICv2) Disable(irq IRQNum) {
	reg := gicdICENABLER + 4*(uint32(irq)/32)
	gicWrite(reg, 1<<(uint32(irq)%32))
}

func (GICv2) Fetch() IRQNum {
	return IRQNum(gicRead(giccIAR) & 0x3ff)
}

func (GICv2) Finish(irq IRQNum) {
	gicWrite(giccEOIR, uint32(irq))
}
