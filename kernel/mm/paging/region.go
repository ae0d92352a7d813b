package paging

import (
	"fmt"

	"monokernel/kernel"
	"monokernel/kernel/addr"
	"monokernel/kernel/mm/pmm"
	"monokernel/kernel/mm/vmm"
)

// MappedRegion is an RAII-style handle over a run of pages that have been
// both allocated and mapped into an active PageTable. Releasing it unmaps
// the pages and returns the underlying virtual (and, unless the frames were
// borrowed, physical) allocations.
type MappedRegion struct {
	table    PageTable
	pages    *vmm.AllocatedPages
	frames   *pmm.AllocatedFrames // nil if frames are borrowed from elsewhere
	block2MB bool
	released bool
}

// StartAddr returns the virtual address of the first byte of the region.
func (m *MappedRegion) StartAddr() addr.VirtAddr { return m.pages.VirtAddr() }

// SizeInBytes returns the size of the region in bytes.
func (m *MappedRegion) SizeInBytes() uintptr {
	if m.block2MB {
		return m.pages.NumPages() * addr.PageSize2MB
	}
	return m.pages.NumPages() * addr.PageSize
}

func (m *MappedRegion) String() string {
	return fmt.Sprintf("MappedRegion{start: %s, size: %d}", m.StartAddr(), m.SizeInBytes())
}

// Release unmaps every page in the region from its page table and releases
// the underlying virtual page (and, if owned, physical frame) allocations.
func (m *MappedRegion) Release() {
	if m == nil || m.released {
		return
	}
	start := m.pages.Start()
	n := m.pages.NumPages()
	for i := uintptr(0); i < n; i++ {
		page := addr.Page{Number: start.Number + i}
		if m.block2MB {
			_, _ = m.table.Unmap2MB(page)
		} else {
			_, _ = m.table.Unmap(page)
		}
	}
	m.pages.Release()
	if m.frames != nil {
		m.frames.Release()
	}
	m.released = true
}

// MapAllocatedPages maps pages to freshly-allocated physical frames under
// table with the given attributes, taking ownership of both pages and the
// frames it allocates. On error, pages is released and no mapping survives.
func MapAllocatedPages(table PageTable, pages *vmm.AllocatedPages, attr EntryAttribute) (*MappedRegion, *kernel.Error) {
	frames, err := pmm.Allocate(pages.NumPages())
	if err != nil {
		pages.Release()
		return nil, err
	}
	return mapRegion(table, pages, frames, attr, true)
}

// MapAllocatedPagesTo maps pages to the already-allocated frames, taking
// ownership of both. This is the path stack allocation and any other
// caller that pre-allocates physical frames (e.g. for 2 MiB block mappings)
// uses.
func MapAllocatedPagesTo(table PageTable, pages *vmm.AllocatedPages, frames *pmm.AllocatedFrames, attr EntryAttribute) (*MappedRegion, *kernel.Error) {
	return mapRegion(table, pages, frames, attr, true)
}

func mapRegion(table PageTable, pages *vmm.AllocatedPages, frames *pmm.AllocatedFrames, attr EntryAttribute, owned bool) (*MappedRegion, *kernel.Error) {
	if pages.NumPages() != frames.NumFrames() {
		pages.Release()
		frames.Release()
		return nil, &kernel.Error{Module: "paging", Kind: kernel.ErrInvalidInput, Msg: "page/frame count mismatch"}
	}
	start := pages.Start()
	fstart := frames.Start()
	n := pages.NumPages()
	for i := uintptr(0); i < n; i++ {
		page := addr.Page{Number: start.Number + i}
		frame := addr.Frame{Number: fstart.Number + i}
		if err := table.Map(page, frame, attr); err != nil {
			for j := uintptr(0); j < i; j++ {
				_, _ = table.Unmap(addr.Page{Number: start.Number + j})
			}
			pages.Release()
			if owned {
				frames.Release()
			}
			return nil, err
		}
	}
	m := &MappedRegion{table: table, pages: pages}
	if owned {
		m.frames = frames
	}
	return m, nil
}

// Map2MBAllocatedPagesTo is the 2 MiB block-mapping counterpart of
// MapAllocatedPagesTo: pages and frames must both be sized and aligned in
// units of PageSize2MB/PageSize already (callers get this via
// pmm.AllocateAligned with an alignment of PageSize2MB/PageSize frames).
func Map2MBAllocatedPagesTo(table PageTable, pages *vmm.AllocatedPages, frames *pmm.AllocatedFrames, attr EntryAttribute) (*MappedRegion, *kernel.Error) {
	attr.Block = true
	if pages.NumPages() != frames.NumFrames() {
		pages.Release()
		frames.Release()
		return nil, &kernel.Error{Module: "paging", Kind: kernel.ErrInvalidInput, Msg: "page/frame count mismatch"}
	}
	start := pages.Start()
	fstart := frames.Start()
	if verr := validateBlockMapping(start, frames.Start(), attr); verr != nil {
		pages.Release()
		frames.Release()
		return nil, verr
	}
	n := pages.NumPages()
	for i := uintptr(0); i < n; i++ {
		page := addr.Page{Number: start.Number + i}
		frame := addr.Frame{Number: fstart.Number + i}
		if err := table.Map2MB(page, frame, attr); err != nil {
			for j := uintptr(0); j < i; j++ {
				_, _ = table.Unmap2MB(addr.Page{Number: start.Number + j})
			}
			pages.Release()
			frames.Release()
			return nil, err
		}
	}
	return &MappedRegion{table: table, pages: pages, frames: frames, block2MB: true}, nil
}
