package pmm

import (
	"testing"

	"monokernel/kernel/addr"
	"monokernel/kernel/boot"
)

func testDescriptor() *boot.Descriptor {
	return &boot.Descriptor{
		Ranges: []boot.MemoryRange{
			{Start: addr.PhysAddr(0), Length: 16 * addr.PageSize, Type: boot.RangeNormal},
			{Start: addr.PhysAddr(0x10_0000), Length: 4 * addr.PageSize, Type: boot.RangeDevice},
		},
	}
}

// TestPMM exercises Init and the allocation API in sequence against the
// package's single global allocator instance; subtests run in source order
// and share state on purpose, the same way a real boot sequence would.
func TestPMM(t *testing.T) {
	desc := testDescriptor()
	if err := Init(desc); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	// Init must be idempotent: a second call is a harmless no-op.
	if err := Init(desc); err != nil {
		t.Fatalf("second Init call returned an error: %v", err)
	}

	if got := FreeFrameCount(); got != 16 {
		t.Fatalf("FreeFrameCount() after Init = %d; want 16 (device range excluded)", got)
	}

	t.Run("Allocate", func(t *testing.T) {
		before := FreeFrameCount()
		frames, err := Allocate(4)
		if err != nil {
			t.Fatalf("Allocate(4) failed: %v", err)
		}
		if frames.NumFrames() != 4 {
			t.Errorf("NumFrames() = %d; want 4", frames.NumFrames())
		}
		if got := FreeFrameCount(); got != before-4 {
			t.Errorf("FreeFrameCount() after Allocate(4) = %d; want %d", got, before-4)
		}
		frames.Release()
		if got := FreeFrameCount(); got != before {
			t.Errorf("FreeFrameCount() after Release = %d; want %d", got, before)
		}
	})

	t.Run("AllocateAligned", func(t *testing.T) {
		frames, err := AllocateAligned(2, 4)
		if err != nil {
			t.Fatalf("AllocateAligned(2, 4) failed: %v", err)
		}
		defer frames.Release()
		if frames.Start().Number%4 != 0 {
			t.Errorf("Start().Number = %d; want a multiple of 4", frames.Start().Number)
		}
	})

	t.Run("AllocateAt", func(t *testing.T) {
		frames, err := AllocateAt(addr.Frame{Number: 8}, 2)
		if err != nil {
			t.Fatalf("AllocateAt(8, 2) failed: %v", err)
		}
		defer frames.Release()
		if frames.Start().Number != 8 {
			t.Errorf("Start().Number = %d; want 8", frames.Start().Number)
		}

		if _, err := AllocateAt(addr.Frame{Number: 8}, 2); err == nil {
			t.Error("expected a second AllocateAt over the same range to fail")
		}
	})

	t.Run("AllocateByBytes", func(t *testing.T) {
		frames, err := AllocateByBytes(addr.PageSize + 1)
		if err != nil {
			t.Fatalf("AllocateByBytes failed: %v", err)
		}
		defer frames.Release()
		if frames.NumFrames() != 2 {
			t.Errorf("NumFrames() = %d; want 2 (rounded up)", frames.NumFrames())
		}
	})

	t.Run("ZeroSizeRejected", func(t *testing.T) {
		if _, err := Allocate(0); err == nil {
			t.Error("expected Allocate(0) to fail")
		}
	})

	t.Run("SplitAndMerge", func(t *testing.T) {
		frames, err := Allocate(4)
		if err != nil {
			t.Fatalf("Allocate(4) failed: %v", err)
		}
		mid := addr.Frame{Number: frames.Start().Number + 2}
		lo, hi, err := frames.Split(mid)
		if err != nil {
			t.Fatalf("Split failed: %v", err)
		}
		if lo.NumFrames() != 2 || hi.NumFrames() != 2 {
			t.Fatalf("Split halves = %d, %d; want 2, 2", lo.NumFrames(), hi.NumFrames())
		}
		merged, err := lo.Merge(hi)
		if err != nil {
			t.Fatalf("Merge failed: %v", err)
		}
		if merged.NumFrames() != 4 {
			t.Errorf("merged.NumFrames() = %d; want 4", merged.NumFrames())
		}
		merged.Release()
	})

	t.Run("ConvertToHeap", func(t *testing.T) {
		before := FreeFrameCount()
		ConvertToHeap()
		if got := FreeFrameCount(); got != before {
			t.Errorf("FreeFrameCount() changed across ConvertToHeap: %d -> %d", before, got)
		}
		frames, err := Allocate(1)
		if err != nil {
			t.Fatalf("Allocate after ConvertToHeap failed: %v", err)
		}
		frames.Release()
	})
}
