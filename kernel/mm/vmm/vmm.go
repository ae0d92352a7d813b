// Package vmm implements the virtual page allocator: the counterpart to
// pmm that hands out ranges of the process's single, shared virtual
// address space rather than physical frames.
//
// The allocator is seeded with one chunk spanning the entire user-virtual
// range at Init time; allocation, alignment and specific-address requests
// all reduce to the same free-chunk tree operations pmm uses, since both
// allocators manage disjoint ranges of a linear index space.
package vmm

import (
	"fmt"

	"monokernel/kernel"
	"monokernel/kernel/addr"
	"monokernel/kernel/mm/chunktree"
	"monokernel/kernel/sync"
)

type pageChunk = chunktree.Chunk[uintptr]

var (
	mu    sync.SpinlockIRQSave
	tree  *chunktree.Tree[uintptr]
	ready bool
)

// Init seeds the page allocator with a single chunk spanning
// [minPage, maxPage], the lowest and highest allowed page numbers of the
// user-addressable virtual range.
func Init(minAddr, maxAddr addr.VirtAddr) *kernel.Error {
	mu.Lock()
	defer mu.Unlock()
	if ready {
		return nil
	}
	minPage := addr.PageFromAddr(minAddr).Number
	maxPage := addr.PageFromAddr(maxAddr).Number
	if maxPage < minPage {
		return &kernel.Error{Module: "vmm", Kind: kernel.ErrInvalidInput, Msg: "empty virtual range"}
	}
	tree = chunktree.NewWithChunk(pageChunk{Start: minPage, End: maxPage})
	ready = true
	return nil
}

// ConvertToHeap migrates the allocator's free-chunk tree to a heap-backed
// representation. Call once, right after the kernel heap becomes usable.
func ConvertToHeap() {
	mu.Lock()
	defer mu.Unlock()
	tree.ConvertToHeapAllocated()
}

// AllocatedPages is an RAII-style handle over a contiguous, as-yet-unmapped
// range of virtual pages. Callers must call Release exactly once when done.
type AllocatedPages struct {
	start    addr.Page
	numPages uintptr
	released bool
}

// Start returns the first page in the allocation.
func (p *AllocatedPages) Start() addr.Page { return p.start }

// NumPages returns the number of contiguous pages allocated.
func (p *AllocatedPages) NumPages() uintptr { return p.numPages }

// VirtAddr returns the virtual address of the first byte of the allocation.
func (p *AllocatedPages) VirtAddr() addr.VirtAddr { return p.start.Addr() }

// Release returns the pages to the allocator. It is the caller's
// responsibility to first unmap any page-table entries referring to this
// range. It is a programming error to use p after calling Release, or to
// call Release twice.
func (p *AllocatedPages) Release() {
	if p == nil || p.released {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	start := p.start.Number
	end := start + p.numPages - 1
	tree.Release(pageChunk{Start: start, End: end})
	p.released = true
}

// Split divides p into two adjacent allocations at page boundary at,
// consuming p. at must lie strictly within p's range; the first half ends
// just before at, which is how stack allocation carves a one-page guard
// off the front of a range (it splits at the second page and keeps the
// first half as the guard).
func (p *AllocatedPages) Split(at addr.Page) (*AllocatedPages, *AllocatedPages, *kernel.Error) {
	if at.Number <= p.start.Number || at.Number >= p.start.Number+p.numPages {
		return nil, nil, &kernel.Error{Module: "vmm", Kind: kernel.ErrInvalidInput, Msg: "split point out of range"}
	}
	lo := &AllocatedPages{start: p.start, numPages: at.Number - p.start.Number}
	hi := &AllocatedPages{start: at, numPages: p.start.Number + p.numPages - at.Number}
	p.released = true
	return lo, hi, nil
}

func (p *AllocatedPages) String() string {
	return fmt.Sprintf("AllocatedPages{start: %s, count: %d}", p.start, p.numPages)
}

// Allocate reserves numPages contiguous pages, with no alignment beyond the
// base page size.
func Allocate(numPages uintptr) (*AllocatedPages, *kernel.Error) {
	return AllocateAligned(numPages, 1)
}

// AllocateAligned reserves numPages contiguous pages whose start page number
// is a multiple of alignPages.
func AllocateAligned(numPages, alignPages uintptr) (*AllocatedPages, *kernel.Error) {
	if numPages == 0 {
		return nil, &kernel.Error{Module: "vmm", Kind: kernel.ErrInvalidInput, Msg: "zero-size allocation"}
	}
	mu.Lock()
	defer mu.Unlock()
	chosen, start, ok := tree.FindAlignmentChunk(numPages, alignPages)
	if !ok {
		return nil, &kernel.Error{Module: "vmm", Kind: kernel.ErrOutOfMemory, Msg: "no aligned chunk large enough"}
	}
	if !tree.SplitChosenChunk(chosen, start, numPages) {
		return nil, &kernel.Error{Module: "vmm", Kind: kernel.ErrInternal, Msg: "array-mode tree exhausted during split"}
	}
	return &AllocatedPages{start: addr.Page{Number: start}, numPages: numPages}, nil
}

// AllocateAt reserves exactly the numPages pages beginning at start, failing
// if any of them are already allocated. This is the path stack allocation
// uses: it first picks a candidate address by bumping a monotonic counter,
// then asks for that exact range (plus one leading guard page) here.
func AllocateAt(start addr.Page, numPages uintptr) (*AllocatedPages, *kernel.Error) {
	mu.Lock()
	defer mu.Unlock()
	chosen, ok := tree.FindSpecificChunk(start.Number, numPages)
	if !ok {
		return nil, &kernel.Error{Module: "vmm", Kind: kernel.ErrAddressInUse, Msg: "requested pages unavailable"}
	}
	if !tree.SplitChosenChunk(chosen, start.Number, numPages) {
		return nil, &kernel.Error{Module: "vmm", Kind: kernel.ErrInternal, Msg: "array-mode tree exhausted during split"}
	}
	return &AllocatedPages{start: start, numPages: numPages}, nil
}

// FreePageCount returns the total number of unallocated pages currently
// tracked, for diagnostics.
func FreePageCount() uintptr {
	mu.Lock()
	defer mu.Unlock()
	var total uintptr
	tree.Ascend(func(c pageChunk) bool {
		total += c.Size()
		return true
	})
	return total
}
