package irq

import "monokernel/kernel/sync"

// IRQNum identifies a hardware interrupt line, in whatever numbering the
// active InterruptController uses internally (vector number for APIC,
// SPI/PPI number for GICv2/v3, source ID for PLIC).
type IRQNum uint32

// InterruptController abstracts the platform's interrupt routing hardware:
// local APIC on amd64, GICv2/v3 on arm64, PLIC (with SBI fallback) on
// riscv64. The scheduler and device drivers above this package only ever
// see this interface, never the concrete controller type.
type InterruptController interface {
	// Init brings the controller up: on amd64 this sets the enable bit of
	// the local APIC's spurious-vector register; the arm64 and riscv64
	// backends have nothing to set up and return nil. No backend maps
	// register windows or masks lines here.
	Init() error
	// Enable unmasks irq so that it is delivered to this core.
	Enable(irq IRQNum)
	// Disable masks irq.
	Disable(irq IRQNum)
	// Fetch returns the number of the pending IRQ without waiting for one
	// (the amd64 backend always returns 0). On platforms with a
	// claim/complete protocol (PLIC) this performs the claim half; callers
	// must call Finish with the same number once the handler has run.
	Fetch() IRQNum
	// Finish acknowledges irq, performing the claim protocol's complete
	// half (PLIC) or sending EOI (APIC/GIC).
	Finish(irq IRQNum)
}

// Handler is a registered handler for a hardware IRQ line.
type Handler func(IRQNum)

var (
	handlerTableMu sync.SpinlockIRQSave
	handlerTable   = make(map[IRQNum]Handler)
)

// RegisterHandler installs fn as the handler for irq, replacing any
// previous registration. Safe to call from any context; the handler table
// is guarded by an IRQ-disabling spinlock since it may be read from
// interrupt context on this same core.
func RegisterHandler(irq IRQNum, fn Handler) {
	handlerTableMu.Lock()
	defer handlerTableMu.Unlock()
	handlerTable[irq] = fn
}

// Dispatch looks up and invokes the handler registered for irq, if any. It
// is called by the controller-specific trap epilogue after Fetch returns a
// pending IRQ number.
func Dispatch(irq IRQNum) {
	handlerTableMu.Lock()
	fn, ok := handlerTable[irq]
	handlerTableMu.Unlock()
	if ok {
		fn(irq)
	}
}
