//go:build arm64 || riscv64

package paging

import (
	"monokernel/kernel/addr"
	"monokernel/kernel/cpu"
	"monokernel/kernel/mm/pmm"
)

var (
	allocTableFn     = pmm.Allocate
	invalidatePageFn = func(v addr.VirtAddr) { cpu.FlushTLBEntry(v.Value()) }
)

// LoadActive installs t as the active page table and flushes the TLB.
func (t *Table) LoadActive() {
	cpu.SwitchPDT(t.Root().Value())
}

// Active returns a Table wrapping whatever page table is currently loaded
// in the hardware root register.
func Active() *Table {
	return &Table{root: addr.FrameFromAddr(addr.NewCanonicalPhysAddr(cpu.ActivePDT()))}
}
