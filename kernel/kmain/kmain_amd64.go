//go:build amd64

package kmain

import (
	"monokernel/kernel/addr"
	"monokernel/kernel/boot"
)

// KmainMultiboot2 is the entry point a multiboot2-compliant rt0 stub
// (GRUB, qemu -kernel) calls with the address of the bootloader's info
// structure and the kernel image's own physical bounds, as left by the
// stub's identity-mapping setup. It reduces the multiboot2 tag list to a
// Descriptor and hands off to the architecture-neutral Init.
//
//go:noinline
func KmainMultiboot2(multibootInfoPtr, kernelStart, kernelEnd, initialPageTable uintptr) {
	desc := boot.DescriptorFromMultiboot2(
		multibootInfoPtr,
		addr.NewCanonicalPhysAddr(kernelStart),
		addr.NewCanonicalPhysAddr(kernelEnd),
		addr.NewCanonicalPhysAddr(initialPageTable),
	)
	Init(&desc)
}
