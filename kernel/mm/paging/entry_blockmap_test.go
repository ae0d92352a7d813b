package paging

import (
	"testing"

	"monokernel/kernel"
	"monokernel/kernel/addr"
)

func twoMBPage(n uintptr) addr.Page {
	return addr.PageFromAddr(addr.NewCanonicalVirtAddr(n * addr.PageSize2MB))
}

func twoMBFrame(n uintptr) addr.Frame {
	return addr.FrameFromAddr(addr.NewCanonicalPhysAddr(n * addr.PageSize2MB))
}

func TestValidateBlockMappingRequiresBlockAttr(t *testing.T) {
	err := validateBlockMapping(twoMBPage(1), twoMBFrame(1), EntryAttribute{Writable: true})
	if err == nil || err.Kind != kernel.ErrInvalidInput {
		t.Fatalf("validateBlockMapping with attr.Block=false = %v; want ErrInvalidInput", err)
	}
}

func TestValidateBlockMappingRequiresAlignedPage(t *testing.T) {
	misaligned := addr.Page{Number: twoMBPage(1).Number + 1}
	err := validateBlockMapping(misaligned, twoMBFrame(1), EntryAttribute{Block: true})
	if err == nil || err.Kind != kernel.ErrInvalidInput {
		t.Fatalf("validateBlockMapping with misaligned page = %v; want ErrInvalidInput", err)
	}
}

func TestValidateBlockMappingRequiresAlignedFrame(t *testing.T) {
	misaligned := addr.Frame{Number: twoMBFrame(1).Number + 1}
	err := validateBlockMapping(twoMBPage(1), misaligned, EntryAttribute{Block: true})
	if err == nil || err.Kind != kernel.ErrInvalidInput {
		t.Fatalf("validateBlockMapping with misaligned frame = %v; want ErrInvalidInput", err)
	}
}

func TestValidateBlockMappingAcceptsAlignedInputs(t *testing.T) {
	if err := validateBlockMapping(twoMBPage(3), twoMBFrame(3), EntryAttribute{Block: true}); err != nil {
		t.Fatalf("validateBlockMapping with aligned page/frame and attr.Block = %v; want nil", err)
	}
}
