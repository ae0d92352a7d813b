//go:build amd64

package boot

import (
	"unsafe"

	"monokernel/kernel/addr"
)

// This file decodes the multiboot2 information structure an amd64
// bootloader (GRUB, qemu -kernel, ...) leaves behind, reducing its
// tag-list format to a Descriptor. arm64/riscv64 boards hand off via a
// flattened device tree instead; that decoder lives next to its own
// entry stub, outside this module's scope.

type tagType uint32

const (
	tagSectionEnd tagType = iota
	tagBootCmdLine
	tagBootLoaderName
	tagModules
	tagBasicMemoryInfo
	tagBiosBootDevice
	tagMemoryMap
)

type tagHeader struct {
	tagType tagType
	size    uint32
}

// mmapHeader precedes the array of mmapEntry records in a tagMemoryMap tag.
type mmapHeader struct {
	entrySize    uint32
	entryVersion uint32
}

// mmapEntryType is the bootloader's own classification of a memory region,
// not to be confused with this package's RangeType.
type mmapEntryType uint32

const (
	mmapAvailable mmapEntryType = iota + 1
	mmapReserved
	mmapACPIReclaimable
	mmapNVS
)

type mmapEntry struct {
	physAddr uint64
	length   uint64
	// entryType unknown/unlisted values are treated as mmapReserved.
	entryType mmapEntryType
	reserved  uint32
}

// DescriptorFromMultiboot2 decodes the multiboot2 info structure at infoPtr
// (as left in register rbx by the bootloader at kernel entry) into a
// Descriptor. The kernel image and initial page table bounds are not
// carried in the multiboot tags themselves; the entry stub supplies them
// directly since it is the one that built the identity mapping.
func DescriptorFromMultiboot2(infoPtr uintptr, kernelStart, kernelEnd, initialPageTable addr.PhysAddr) Descriptor {
	var ranges []MemoryRange

	curPtr, size := findTag(infoPtr, tagMemoryMap)
	if size != 0 {
		hdr := (*mmapHeader)(unsafe.Pointer(curPtr))
		endPtr := curPtr + uintptr(size)
		curPtr += 8

		for curPtr < endPtr {
			e := (*mmapEntry)(unsafe.Pointer(curPtr))
			rt := RangeDevice
			if e.entryType == mmapAvailable {
				rt = RangeNormal
			}
			ranges = append(ranges, MemoryRange{
				Start:  addr.NewCanonicalPhysAddr(uintptr(e.physAddr)),
				Length: uintptr(e.length),
				Type:   rt,
			})
			curPtr += uintptr(hdr.entrySize)
		}
	}

	return Descriptor{
		Ranges:           ranges,
		InitialPageTable: initialPageTable,
		KernelImageStart: kernelStart,
		KernelImageEnd:   kernelEnd,
	}
}

// BootCmdLine returns the kernel command line the bootloader was given, or
// "" if no such tag is present.
func BootCmdLine(infoPtr uintptr) string {
	return readCString(infoPtr, tagBootCmdLine)
}

func readCString(infoPtr uintptr, tt tagType) string {
	ptr, size := findTag(infoPtr, tt)
	if size == 0 {
		return ""
	}
	buf := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), size)
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}

// findTag scans the multiboot2 tag list looking for tt, returning a pointer
// to its contents (past the 8-byte tag header) and their length, or (0, 0)
// if the tag is absent.
func findTag(infoPtr uintptr, tt tagType) (uintptr, uint32) {
	// The info structure itself starts with an 8-byte header (total size,
	// reserved) before the first tag.
	curPtr := infoPtr + 8
	for {
		hdr := (*tagHeader)(unsafe.Pointer(curPtr))
		if hdr.tagType == tagSectionEnd {
			return 0, 0
		}
		if hdr.tagType == tt {
			return curPtr + 8, hdr.size - 8
		}
		// Tags are 8-byte aligned.
		curPtr += uintptr((int32(hdr.size) + 7) &^ 7)
	}
}
