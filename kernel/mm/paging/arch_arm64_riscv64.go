//go:build arm64 || riscv64

package paging

import (
	"unsafe"

	"monokernel/kernel"
	"monokernel/kernel/addr"
)

// arm64 and riscv64 (Sv39) both use a 3-level, 512-entries-per-table radix
// tree with an identical 9/9/9 index split and a block-mapping bit at the
// middle level, so one backend serves both.
const (
	entriesPerTable = 512
	tableIndexBits  = 9
	tableIndexMask  = entriesPerTable - 1

	// Descriptor bit 0 is "valid" on both VMSAv8-64 and Sv39; this
	// resolves the otherwise architecture-ambiguous meaning of bit 0 in
	// favor of the interpretation both architectures actually share.
	flagValid    = uint64(1) << 0
	flagWritable = uint64(1) << 2
	flagUser     = uint64(1) << 6
	flagDevice   = uint64(1) << 7 // software-defined: non-cacheable
	flagNX       = uint64(1) << 8
	flagBlock    = uint64(1) << 9 // software-defined mid-level "this is a block" marker

	zoneKeyShift = 52
	zoneKeyMask  = uint64(0xf) << zoneKeyShift

	physAddrMask = uint64(0x0000fffffffff000)
)

var physmapBase = addr.VirtAddr(0xffff_8000_0000_0000)

func physToWindow(pa addr.PhysAddr) addr.VirtAddr { return physmapBase.AddSaturating(pa.Value()) }

func tableWindow(frame addr.Frame) *[entriesPerTable]uint64 {
	v := physToWindow(frame.Addr())
	return (*[entriesPerTable]uint64)(unsafe.Pointer(v.Value()))
}

type neutralEntry struct{}

func (neutralEntry) Encode(pa addr.PhysAddr, attr EntryAttribute) uint64 {
	word := flagValid | (uint64(pa.Value()) & physAddrMask)
	if attr.Writable {
		word |= flagWritable
	}
	if attr.User {
		word |= flagUser
	}
	if attr.Device {
		word |= flagDevice
	}
	if attr.Block {
		word |= flagBlock
	}
	if !attr.KExecutable && !attr.UExecutable {
		word |= flagNX
	}
	word |= (uint64(attr.ZoneKey) << zoneKeyShift) & zoneKeyMask
	return word
}

func (neutralEntry) Decode(word uint64) (addr.PhysAddr, EntryAttribute, bool) {
	if word&flagValid == 0 {
		return 0, EntryAttribute{}, false
	}
	pa := addr.NewCanonicalPhysAddr(uintptr(word & physAddrMask))
	attr := EntryAttribute{
		Writable: word&flagWritable != 0,
		User:     word&flagUser != 0,
		Device:   word&flagDevice != 0,
		Block:    word&flagBlock != 0,
		ZoneKey:  uint8((word & zoneKeyMask) >> zoneKeyShift),
	}
	if word&flagNX == 0 {
		attr.UExecutable = attr.User
		attr.KExecutable = !attr.User
	}
	return pa, attr, true
}

var entryCodec neutralEntry

// Table is the shared 3-level backend for arm64 and riscv64.
type Table struct {
	root addr.Frame
}

func NewTable(root addr.Frame) *Table { return &Table{root: root} }

func (t *Table) Root() addr.PhysAddr { return t.root.Addr() }

func pageIndices(page addr.Page) (l0, l1, l2 int) {
	n := page.Number
	l2 = int(n & tableIndexMask)
	n >>= tableIndexBits
	l1 = int(n & tableIndexMask)
	n >>= tableIndexBits
	l0 = int(n & tableIndexMask)
	return
}

func (t *Table) walkCreate(idx [3]int, levels int) (*[entriesPerTable]uint64, *kernel.Error) {
	table := tableWindow(t.root)
	for l := 0; l < levels; l++ {
		entry := table[idx[l]]
		var next addr.Frame
		if entry&flagValid == 0 {
			frames, err := allocTableFn(1)
			if err != nil {
				return nil, err
			}
			next = frames.Start()
			w := tableWindow(next)
			for i := range w {
				w[i] = 0
			}
			table[idx[l]] = flagValid | flagWritable | flagUser | (uint64(next.Addr().Value()) & physAddrMask)
		} else {
			next = addr.FrameFromAddr(addr.NewCanonicalPhysAddr(uintptr(entry & physAddrMask)))
		}
		table = tableWindow(next)
	}
	return table, nil
}

func (t *Table) walkLookup(idx [3]int, levels int) (*[entriesPerTable]uint64, bool) {
	table := tableWindow(t.root)
	for l := 0; l < levels; l++ {
		entry := table[idx[l]]
		if entry&flagValid == 0 {
			return nil, false
		}
		next := addr.FrameFromAddr(addr.NewCanonicalPhysAddr(uintptr(entry & physAddrMask)))
		table = tableWindow(next)
	}
	return table, true
}

func (t *Table) Map(page addr.Page, frame addr.Frame, attr EntryAttribute) *kernel.Error {
	l0, l1, l2 := pageIndices(page)
	leaf, err := t.walkCreate([3]int{l0, l1, l2}, 2)
	if err != nil {
		return err
	}
	if leaf[l2]&flagValid != 0 {
		return &kernel.Error{Module: "paging", Kind: kernel.ErrAddressInUse, Msg: "page already mapped"}
	}
	leaf[l2] = entryCodec.Encode(frame.Addr(), attr)
	invalidatePageFn(page.Addr())
	return nil
}

func (t *Table) Map2MB(page addr.Page, frame addr.Frame, attr EntryAttribute) *kernel.Error {
	if verr := validateBlockMapping(page, frame, attr); verr != nil {
		return verr
	}
	l0, l1, _ := pageIndices(page)
	mid, err := t.walkCreate([3]int{l0, l1, 0}, 1)
	if err != nil {
		return err
	}
	if mid[l1]&flagValid != 0 {
		return &kernel.Error{Module: "paging", Kind: kernel.ErrAddressInUse, Msg: "block already mapped"}
	}
	mid[l1] = entryCodec.Encode(frame.Addr(), attr)
	invalidatePageFn(page.Addr())
	return nil
}

func (t *Table) Unmap(page addr.Page) (addr.Frame, *kernel.Error) {
	l0, l1, l2 := pageIndices(page)
	leaf, ok := t.walkLookup([3]int{l0, l1, l2}, 2)
	if !ok || leaf[l2]&flagValid == 0 {
		return addr.Frame{}, &kernel.Error{Module: "paging", Kind: kernel.ErrInvalidInput, Msg: "page not mapped"}
	}
	pa, _, _ := entryCodec.Decode(leaf[l2])
	leaf[l2] = 0
	invalidatePageFn(page.Addr())
	return addr.FrameFromAddr(pa), nil
}

func (t *Table) Unmap2MB(page addr.Page) (addr.Frame, *kernel.Error) {
	l0, l1, _ := pageIndices(page)
	mid, ok := t.walkLookup([3]int{l0, l1, 0}, 1)
	if !ok || mid[l1]&flagValid == 0 {
		return addr.Frame{}, &kernel.Error{Module: "paging", Kind: kernel.ErrInvalidInput, Msg: "block not mapped"}
	}
	pa, _, _ := entryCodec.Decode(mid[l1])
	mid[l1] = 0
	invalidatePageFn(page.Addr())
	return addr.FrameFromAddr(pa), nil
}

func (t *Table) LookupEntry(page addr.Page) (addr.PhysAddr, EntryAttribute, bool) {
	l0, l1, l2 := pageIndices(page)
	if mid, ok := t.walkLookup([3]int{l0, l1, 0}, 1); ok && mid[l1]&flagValid != 0 && mid[l1]&flagBlock != 0 {
		return entryCodec.Decode(mid[l1])
	}
	leaf, ok := t.walkLookup([3]int{l0, l1, l2}, 2)
	if !ok {
		return 0, EntryAttribute{}, false
	}
	return entryCodec.Decode(leaf[l2])
}

func (t *Table) LookupPage(v addr.VirtAddr) (addr.PhysAddr, bool) {
	pa, attr, ok := t.LookupEntry(addr.PageFromAddr(v))
	if !ok {
		return 0, false
	}
	if attr.Block {
		return pa.AddSaturating(v.PageOffset2MB()), true
	}
	return pa.AddSaturating(v.PageOffset()), true
}
