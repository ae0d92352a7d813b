package paging

import (
	"monokernel/kernel"
	"monokernel/kernel/addr"
)

// ArchPageTableEntry converts a leaf-level page-table entry between its
// architecture-native raw word encoding and the neutral (PhysAddr,
// EntryAttribute) pair. Each architecture backend provides exactly one
// implementation of this interface; callers never need to branch on arch.
type ArchPageTableEntry interface {
	// Encode packs pa and attr into the raw word stored in the table.
	Encode(pa addr.PhysAddr, attr EntryAttribute) uint64
	// Decode unpacks a raw word previously produced by Encode. present
	// reports whether the entry's valid/present bit is set; when false,
	// pa and attr are meaningless.
	Decode(word uint64) (pa addr.PhysAddr, attr EntryAttribute, present bool)
}

// PageTable is the architecture-neutral page-table interface: every backend
// (amd64 4-level, arm64/riscv64 3-level-plus-2MB-block) implements this set
// of operations against its own native table format.
//
// Implementations perform direct physical-memory-window walks rather than
// relying on a self-referential (recursive) mapping of the table into its
// own address space: a recursive mapping consumes a fixed slot of virtual
// address space and complicates reasoning about concurrent walks from
// multiple cores, so every backend here instead reaches each table's
// physical page through a permanent linear mapping of physical memory at a
// fixed kernel virtual base (physmapBase).
type PageTable interface {
	// Map creates a 4 KiB mapping from page to frame with the given
	// attributes. Returns ErrAddressInUse if page is already mapped.
	Map(page addr.Page, frame addr.Frame, attr EntryAttribute) *kernel.Error
	// Map2MB creates a 2 MiB block mapping. page and frame must both be
	// 2 MiB aligned.
	Map2MB(page addr.Page, frame addr.Frame, attr EntryAttribute) *kernel.Error
	// Unmap removes a 4 KiB mapping, returning the frame it pointed to.
	Unmap(page addr.Page) (addr.Frame, *kernel.Error)
	// Unmap2MB removes a 2 MiB block mapping, returning its base frame.
	Unmap2MB(page addr.Page) (addr.Frame, *kernel.Error)
	// LookupEntry returns the raw (PhysAddr, EntryAttribute) backing page,
	// if it is mapped.
	LookupEntry(page addr.Page) (pa addr.PhysAddr, attr EntryAttribute, ok bool)
	// LookupPage translates a virtual address to its backing physical
	// address, honoring whatever granularity (4 KiB or 2 MiB) maps it.
	LookupPage(v addr.VirtAddr) (addr.PhysAddr, bool)
	// Root returns the physical address of the table's top-level frame,
	// as loaded into the architecture's page-table base register.
	Root() addr.PhysAddr
}
