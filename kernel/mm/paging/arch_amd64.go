//go:build amd64

package paging

import (
	"unsafe"

	"monokernel/kernel"
	"monokernel/kernel/addr"
)

const (
	entriesPerTable = 512
	tableIndexBits  = 9
	tableIndexMask  = entriesPerTable - 1

	flagPresent  = uint64(1) << 0
	flagWritable = uint64(1) << 1
	flagUser     = uint64(1) << 2
	flagPWT      = uint64(1) << 3 // write-through; set for device mappings
	flagPCD      = uint64(1) << 4 // cache-disable; set for device mappings
	flagHuge     = uint64(1) << 7 // PS bit: 2 MiB block at the PD level
	flagNX       = uint64(1) << 63

	// zoneKeyShift/zoneKeyMask place the 4-bit zone key in entry bits
	// [59:62], the amd64 protection-key field: with protection keys
	// enabled the hardware checks it against PKRU (see kernel/zone), and
	// without them the bits are ignored.
	zoneKeyShift = 59
	zoneKeyMask  = uint64(0xf) << zoneKeyShift

	physAddrMask = uint64(0x000ffffffffff000)
)

// physmapBase is the virtual address at which the entire usable physical
// address space is linearly mapped by the boot stub, so that the kernel
// can read and write any physical page (including page-table pages not
// currently active) without a per-walk temporary mapping or a
// self-referential recursive slot.
var physmapBase = addr.VirtAddr(0xffff_8000_0000_0000)

func physToWindow(pa addr.PhysAddr) addr.VirtAddr {
	return physmapBase.AddSaturating(pa.Value())
}

func tableWindow(frame addr.Frame) *[entriesPerTable]uint64 {
	v := physToWindow(frame.Addr())
	return (*[entriesPerTable]uint64)(unsafe.Pointer(v.Value()))
}

// amd64Entry implements ArchPageTableEntry for the amd64 4-level format.
type amd64Entry struct{}

func (amd64Entry) Encode(pa addr.PhysAddr, attr EntryAttribute) uint64 {
	word := flagPresent | (uint64(pa.Value()) & physAddrMask)
	if attr.Writable {
		word |= flagWritable
	}
	if attr.User {
		word |= flagUser
	}
	if attr.Device {
		word |= flagPWT | flagPCD
	}
	if attr.Block {
		word |= flagHuge
	}
	if !attr.KExecutable && !attr.UExecutable {
		word |= flagNX
	}
	word |= (uint64(attr.ZoneKey) << zoneKeyShift) & zoneKeyMask
	return word
}

func (amd64Entry) Decode(word uint64) (addr.PhysAddr, EntryAttribute, bool) {
	if word&flagPresent == 0 {
		return 0, EntryAttribute{}, false
	}
	pa := addr.NewCanonicalPhysAddr(uintptr(word & physAddrMask))
	attr := EntryAttribute{
		Writable: word&flagWritable != 0,
		User:     word&flagUser != 0,
		Device:   word&flagPWT != 0 && word&flagPCD != 0,
		Block:    word&flagHuge != 0,
		ZoneKey:  uint8((word & zoneKeyMask) >> zoneKeyShift),
	}
	if word&flagNX == 0 {
		attr.UExecutable = attr.User
		attr.KExecutable = !attr.User
	}
	return pa, attr, true
}

var amd64entryCodec amd64Entry

// Table is the amd64 backend's PageTable implementation: a classic 4-level
// PML4 -> PDPT -> PD -> PT radix tree, walked through the linear physmap
// window rather than a recursive self-mapping.
type Table struct {
	root addr.Frame
}

// NewTable wraps an already-allocated, zeroed top-level (PML4) frame as a
// PageTable.
func NewTable(root addr.Frame) *Table {
	return &Table{root: root}
}

func (t *Table) Root() addr.PhysAddr { return t.root.Addr() }

func pageIndices(page addr.Page) (pml4, pdpt, pd, pt int) {
	n := page.Number
	pt = int(n & tableIndexMask)
	n >>= tableIndexBits
	pd = int(n & tableIndexMask)
	n >>= tableIndexBits
	pdpt = int(n & tableIndexMask)
	n >>= tableIndexBits
	pml4 = int(n & tableIndexMask)
	return
}

// walkCreate descends the given number of levels below the root (1 = PDPT, 2 = PD,
// 3 = PT), allocating and zeroing any missing intermediate table.
func (t *Table) walkCreate(idx [4]int, levels int) (*[entriesPerTable]uint64, *kernel.Error) {
	table := tableWindow(t.root)
	for l := 0; l < levels; l++ {
		entry := table[idx[l]]
		var next addr.Frame
		if entry&flagPresent == 0 {
			frames, err := allocTableFn(1)
			if err != nil {
				return nil, err
			}
			next = frames.Start()
			w := tableWindow(next)
			for i := range w {
				w[i] = 0
			}
			table[idx[l]] = flagPresent | flagWritable | flagUser | (uint64(next.Addr().Value()) & physAddrMask)
		} else {
			next = addr.FrameFromAddr(addr.NewCanonicalPhysAddr(uintptr(entry & physAddrMask)))
		}
		table = tableWindow(next)
	}
	return table, nil
}

func (t *Table) walkLookup(idx [4]int, levels int) (*[entriesPerTable]uint64, bool) {
	table := tableWindow(t.root)
	for l := 0; l < levels; l++ {
		entry := table[idx[l]]
		if entry&flagPresent == 0 {
			return nil, false
		}
		next := addr.FrameFromAddr(addr.NewCanonicalPhysAddr(uintptr(entry & physAddrMask)))
		table = tableWindow(next)
	}
	return table, true
}

func (t *Table) Map(page addr.Page, frame addr.Frame, attr EntryAttribute) *kernel.Error {
	pml4, pdpt, pd, pt := pageIndices(page)
	ptTable, err := t.walkCreate([4]int{pml4, pdpt, pd, pt}, 3)
	if err != nil {
		return err
	}
	if ptTable[pt]&flagPresent != 0 {
		return &kernel.Error{Module: "paging", Kind: kernel.ErrAddressInUse, Msg: "page already mapped"}
	}
	ptTable[pt] = amd64entryCodec.Encode(frame.Addr(), attr)
	invalidatePageFn(page.Addr())
	return nil
}

func (t *Table) Map2MB(page addr.Page, frame addr.Frame, attr EntryAttribute) *kernel.Error {
	if verr := validateBlockMapping(page, frame, attr); verr != nil {
		return verr
	}
	pml4, pdpt, pd, _ := pageIndices(page)
	pdTable, err := t.walkCreate([4]int{pml4, pdpt, pd, 0}, 2)
	if err != nil {
		return err
	}
	if pdTable[pd]&flagPresent != 0 {
		return &kernel.Error{Module: "paging", Kind: kernel.ErrAddressInUse, Msg: "block already mapped"}
	}
	pdTable[pd] = amd64entryCodec.Encode(frame.Addr(), attr)
	invalidatePageFn(page.Addr())
	return nil
}

func (t *Table) Unmap(page addr.Page) (addr.Frame, *kernel.Error) {
	pml4, pdpt, pd, pt := pageIndices(page)
	ptTable, ok := t.walkLookup([4]int{pml4, pdpt, pd, pt}, 3)
	if !ok || ptTable[pt]&flagPresent == 0 {
		return addr.Frame{}, &kernel.Error{Module: "paging", Kind: kernel.ErrInvalidInput, Msg: "page not mapped"}
	}
	pa, _, _ := amd64entryCodec.Decode(ptTable[pt])
	ptTable[pt] = 0
	invalidatePageFn(page.Addr())
	return addr.FrameFromAddr(pa), nil
}

func (t *Table) Unmap2MB(page addr.Page) (addr.Frame, *kernel.Error) {
	pml4, pdpt, pd, _ := pageIndices(page)
	pdTable, ok := t.walkLookup([4]int{pml4, pdpt, pd, 0}, 2)
	if !ok || pdTable[pd]&flagPresent == 0 {
		return addr.Frame{}, &kernel.Error{Module: "paging", Kind: kernel.ErrInvalidInput, Msg: "block not mapped"}
	}
	pa, _, _ := amd64entryCodec.Decode(pdTable[pd])
	pdTable[pd] = 0
	invalidatePageFn(page.Addr())
	return addr.FrameFromAddr(pa), nil
}

func (t *Table) LookupEntry(page addr.Page) (addr.PhysAddr, EntryAttribute, bool) {
	pml4, pdpt, pd, pt := pageIndices(page)
	if pdTable, ok := t.walkLookup([4]int{pml4, pdpt, pd, 0}, 2); ok {
		if pdTable[pd]&flagPresent != 0 && pdTable[pd]&flagHuge != 0 {
			return amd64entryCodec.Decode(pdTable[pd])
		}
	}
	ptTable, ok := t.walkLookup([4]int{pml4, pdpt, pd, pt}, 3)
	if !ok {
		return 0, EntryAttribute{}, false
	}
	return amd64entryCodec.Decode(ptTable[pt])
}

func (t *Table) LookupPage(v addr.VirtAddr) (addr.PhysAddr, bool) {
	page := addr.PageFromAddr(v)
	pa, attr, ok := t.LookupEntry(page)
	if !ok {
		return 0, false
	}
	if attr.Block {
		return pa.AddSaturating(v.PageOffset2MB()), true
	}
	return pa.AddSaturating(v.PageOffset()), true
}
