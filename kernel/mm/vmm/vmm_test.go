package vmm

import (
	"testing"

	"monokernel/kernel/addr"
)

const (
	testMinAddr = addr.VirtAddr(0x0000_1000_0000_0000)
	testMaxAddr = addr.VirtAddr(0x0000_1000_000f_ffff)
)

// TestInitRejectsEmptyRange must run before any other test in this package
// establishes the package-global allocator, since Init is a one-time,
// idempotent no-op once ready.
func TestInitRejectsEmptyRange(t *testing.T) {
	if err := Init(addr.VirtAddr(0x2000), addr.VirtAddr(0x1000)); err == nil {
		t.Error("expected Init with max < min to fail")
	}
}

// TestVMM mirrors pmm's test shape: Init followed by a sequence of subtests
// that share the package's single global allocator instance.
func TestVMM(t *testing.T) {
	if err := Init(testMinAddr, testMaxAddr); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := Init(testMinAddr, testMaxAddr); err != nil {
		t.Fatalf("second Init call returned an error: %v", err)
	}

	want := (testMaxAddr.Value() - testMinAddr.Value() + 1) / addr.PageSize
	if got := FreePageCount(); got != want {
		t.Fatalf("FreePageCount() after Init = %d; want %d", got, want)
	}

	t.Run("Allocate", func(t *testing.T) {
		before := FreePageCount()
		pages, err := Allocate(4)
		if err != nil {
			t.Fatalf("Allocate(4) failed: %v", err)
		}
		if pages.NumPages() != 4 {
			t.Errorf("NumPages() = %d; want 4", pages.NumPages())
		}
		if got := FreePageCount(); got != before-4 {
			t.Errorf("FreePageCount() after Allocate(4) = %d; want %d", got, before-4)
		}
		pages.Release()
		if got := FreePageCount(); got != before {
			t.Errorf("FreePageCount() after Release = %d; want %d", got, before)
		}
	})

	t.Run("AllocateAt", func(t *testing.T) {
		start := addr.PageFromAddr(testMinAddr)
		pages, err := AllocateAt(start, 3)
		if err != nil {
			t.Fatalf("AllocateAt failed: %v", err)
		}
		defer pages.Release()
		if pages.VirtAddr() != testMinAddr {
			t.Errorf("VirtAddr() = %s; want %s", pages.VirtAddr(), testMinAddr)
		}
		if _, err := AllocateAt(start, 3); err == nil {
			t.Error("expected a second AllocateAt over the same range to fail")
		}
	})

	t.Run("Split", func(t *testing.T) {
		pages, err := Allocate(4)
		if err != nil {
			t.Fatalf("Allocate(4) failed: %v", err)
		}
		mid := addr.Page{Number: pages.Start().Number + 1}
		lo, hi, err := pages.Split(mid)
		if err != nil {
			t.Fatalf("Split failed: %v", err)
		}
		if lo.NumPages() != 1 || hi.NumPages() != 3 {
			t.Errorf("Split halves = %d, %d; want 1, 3", lo.NumPages(), hi.NumPages())
		}
		lo.Release()
		hi.Release()
	})

	t.Run("ZeroSizeRejected", func(t *testing.T) {
		if _, err := Allocate(0); err == nil {
			t.Error("expected Allocate(0) to fail")
		}
	})

	t.Run("ConvertToHeap", func(t *testing.T) {
		before := FreePageCount()
		ConvertToHeap()
		if got := FreePageCount(); got != before {
			t.Errorf("FreePageCount() changed across ConvertToHeap: %d -> %d", before, got)
		}
		pages, err := Allocate(1)
		if err != nil {
			t.Fatalf("Allocate after ConvertToHeap failed: %v", err)
		}
		pages.Release()
	})
}
