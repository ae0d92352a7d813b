// Package goruntime contains code for bootstrapping Go runtime features such
// as the memory allocator. It hooks the freestanding runtime's own heap
// bootstrap path (sysReserve/sysMap/sysAlloc) into the kernel's virtual and
// physical allocators, so that plain Go heap allocation (new, make, maps,
// interfaces) becomes usable once Init runs.
package goruntime

import (
	"unsafe"

	"monokernel/kernel"
	"monokernel/kernel/addr"
	"monokernel/kernel/mm/paging"
	"monokernel/kernel/mm/pmm"
	"monokernel/kernel/mm/vmm"
)

var (
	reserveRegionFn = reserveRegion
	mapPageFn       = mapPage
	mapZeroPageFn   = mapZeroPage
	mallocInitFn    = mallocInit
	algInitFn       = algInit
	modulesInitFn   = modulesInit
	typeLinksInitFn = typeLinksInit
	itabsInitFn     = itabsInit

	// A seed for the pseudo-random number generator used by getRandomData
	prngSeed = 0xdeadc0de

	// zeroFrame backs every sysMap'd page until the runtime's first
	// write to it faults and a private frame is substituted; see
	// mapZeroPage. Allocated lazily on first use.
	zeroFrame *pmm.AllocatedFrames
)

//go:linkname algInit runtime.alginit
func algInit()

//go:linkname modulesInit runtime.modulesinit
func modulesInit()

//go:linkname typeLinksInit runtime.typelinksinit
func typeLinksInit()

//go:linkname itabsInit runtime.itabsinit
func itabsInit()

//go:linkname mallocInit runtime.mallocinit
func mallocInit()

//go:linkname mSysStatInc runtime.mSysStatInc
func mSysStatInc(*uint64, uintptr)

// runtimeHeap is the attribute set used for every mapping the Go runtime
// establishes for its own heap: writable, not executable, zone 0 (shared),
// since in a single-address-space kernel the runtime's heap is no more
// privileged than the rest of the image.
func runtimeHeap() paging.EntryAttribute {
	return paging.EntryAttribute{Writable: true}
}

func pageCountFor(size uintptr) uintptr {
	return (size + addr.PageSize - 1) / addr.PageSize
}

// reserveRegion carves out numPages of unmapped virtual address space from
// the kernel's page allocator without establishing any mapping.
func reserveRegion(numPages uintptr) (addr.VirtAddr, *kernel.Error) {
	pages, err := vmm.Allocate(numPages)
	if err != nil {
		return 0, err
	}
	return pages.VirtAddr(), nil
}

// mapPage establishes a private, freshly-allocated, writable mapping for a
// single page. Used by sysAlloc, where every page needs its own backing
// frame from the start.
func mapPage(page addr.Page) *kernel.Error {
	frames, err := pmm.Allocate(1)
	if err != nil {
		return err
	}
	if err := paging.Active().Map(page, frames.Start(), runtimeHeap()); err != nil {
		frames.Release()
		return err
	}
	return nil
}

// mapZeroPage maps page onto the single shared, copy-on-write zero frame.
// The first write to it takes a page fault, at which point the fault
// handler (not yet wired to this package) is expected to substitute a
// private frame; until then, every sysMap'd page reads as zero.
func mapZeroPage(page addr.Page) *kernel.Error {
	if zeroFrame == nil {
		f, err := pmm.Allocate(1)
		if err != nil {
			return err
		}
		zeroFrame = f
	}
	attr := runtimeHeap()
	attr.CopyOnWrite = true
	return paging.Active().Map(page, zeroFrame.Start(), attr)
}

// sysReserve reserves address space without allocating any memory or
// establishing any page mappings.
//
// This function replaces runtime.sysReserve and is required for initializing
// the Go allocator.
//
//go:redirect-from runtime.sysReserve
//go:nosplit
func sysReserve(_ unsafe.Pointer, size uintptr, reserved *bool) unsafe.Pointer {
	start, err := reserveRegionFn(pageCountFor(size))
	if err != nil {
		panic(err)
	}
	*reserved = true
	return unsafe.Pointer(start.Value())
}

// sysMap establishes a copy-on-write mapping for a particular memory region
// that has been reserved previously via a call to sysReserve.
//
// This function replaces runtime.sysMap and is required for initializing the
// Go allocator.
//
//go:redirect-from runtime.sysMap
//go:nosplit
func sysMap(virtAddr unsafe.Pointer, size uintptr, reserved bool, sysStat *uint64) unsafe.Pointer {
	if !reserved {
		panic("sysMap should only be called with reserved=true")
	}

	regionStart := addr.PageFromAddr(addr.NewCanonicalVirtAddr(uintptr(virtAddr)))
	pageCount := pageCountFor(size)
	for i := uintptr(0); i < pageCount; i++ {
		page := addr.Page{Number: regionStart.Number + i}
		if err := mapZeroPageFn(page); err != nil {
			return unsafe.Pointer(uintptr(0))
		}
	}

	mSysStatInc(sysStat, pageCount*addr.PageSize)
	return unsafe.Pointer(regionStart.Addr().Value())
}

// sysAlloc reserves enough physical frames to satisfy the allocation request
// and establishes a contiguous virtual page mapping for them, returning the
// pointer to the virtual region start.
//
// This function replaces runtime.sysAlloc and is required for initializing
// the Go allocator.
//
//go:redirect-from runtime.sysAlloc
//go:nosplit
func sysAlloc(size uintptr, sysStat *uint64) unsafe.Pointer {
	pageCount := pageCountFor(size)
	start, err := reserveRegionFn(pageCount)
	if err != nil {
		return unsafe.Pointer(uintptr(0))
	}

	regionStart := addr.PageFromAddr(start)
	for i := uintptr(0); i < pageCount; i++ {
		page := addr.Page{Number: regionStart.Number + i}
		if err := mapPageFn(page); err != nil {
			return unsafe.Pointer(uintptr(0))
		}
	}

	mSysStatInc(sysStat, pageCount*addr.PageSize)
	return unsafe.Pointer(start.Value())
}

// nanotime returns a monotonically increasing clock value. This is a dummy
// implementation and will be replaced when the timekeeper package is
// implemented.
//
// This function replaces runtime.nanotime and is invoked by the Go allocator
// when a span allocation is performed.
//
//go:redirect-from runtime.nanotime
//go:nosplit
func nanotime() uint64 {
	// Use a dummy loop to prevent the compiler from inlining this function.
	for i := 0; i < 100; i++ {
	}
	return 1
}

// getRandomData populates the given slice with random data. The implementation
// is the runtime package reads a random stream from /dev/random but since this
// is not available, we use a prng instead.
//
//go:redirect-from runtime.getRandomData
func getRandomData(r []byte) {
	for i := 0; i < len(r); i++ {
		prngSeed = (prngSeed * 58321) + 11113
		r[i] = byte((prngSeed >> 16) & 255)
	}
}

// Init enables support for various Go runtime features. After a call to init
// the following runtime features become available for use:
//  - heap memory allocation (new, make e.t.c)
//  - map primitives
//  - interfaces
func Init() *kernel.Error {
	mallocInitFn()
	algInitFn()       // setup hash implementation for map keys
	modulesInitFn()   // provides activeModules
	typeLinksInitFn() // uses maps, activeModules
	itabsInitFn()     // uses activeModules

	return nil
}

func init() {
	// sysReserve, sysMap and sysAlloc are reached only through the build's
	// runtime symbol redirection, never from a call site in this package, so
	// without some reference here the compiler is free to discard them.
	// Unlike nanotime and getRandomData, their bodies reach into the
	// kernel's page and frame allocators, which are not yet initialized this
	// early, so they are pinned by reference rather than actually invoked.
	_ = sysReserve
	_ = sysMap
	_ = sysAlloc

	getRandomData(nil)
	_ = nanotime()
}
