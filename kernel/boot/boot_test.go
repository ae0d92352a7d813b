package boot

import (
	"testing"

	"monokernel/kernel/addr"
)

func TestMemoryRangeEnd(t *testing.T) {
	r := MemoryRange{Start: addr.PhysAddr(0x1000), Length: 0x2000}
	if got, want := r.End(), addr.PhysAddr(0x3000); got != want {
		t.Errorf("End() = %s; want %s", got, want)
	}
}

func TestUsableRanges(t *testing.T) {
	desc := Descriptor{
		Ranges: []MemoryRange{
			{Start: addr.PhysAddr(0), Length: 0x1000, Type: RangeNormal},
			{Start: addr.PhysAddr(0x1000), Length: 0x1000, Type: RangeDevice},
			{Start: addr.PhysAddr(0x2000), Length: 0x1000, Type: RangeNormal},
		},
	}

	got := desc.UsableRanges()
	if len(got) != 2 {
		t.Fatalf("UsableRanges() returned %d ranges; want 2", len(got))
	}
	if got[0].Start != 0 || got[1].Start != addr.PhysAddr(0x2000) {
		t.Errorf("UsableRanges() = %+v; want the two RangeNormal entries in order", got)
	}
}

func TestUsableRangesEmpty(t *testing.T) {
	desc := Descriptor{Ranges: []MemoryRange{{Start: 0, Length: 0x1000, Type: RangeDevice}}}
	if got := desc.UsableRanges(); len(got) != 0 {
		t.Errorf("UsableRanges() = %+v; want empty", got)
	}
}
