package chunktree

import "testing"

func TestChunkSize(t *testing.T) {
	c := Chunk[uintptr]{Start: 10, End: 19}
	if got := c.Size(); got != 10 {
		t.Errorf("Size() = %d; want 10", got)
	}
}

func TestTreeFindAndSplit(t *testing.T) {
	tr := NewWithChunk(Chunk[uintptr]{Start: 0, End: 99})

	chosen, allocStart, ok := tr.FindAlignmentChunk(10, 16)
	if !ok {
		t.Fatal("expected to find a chunk for an aligned allocation")
	}
	if allocStart%16 != 0 {
		t.Errorf("allocStart = %d; want a multiple of 16", allocStart)
	}

	if !tr.SplitChosenChunk(chosen, allocStart, 10) {
		t.Fatal("SplitChosenChunk failed unexpectedly")
	}

	found, ok := tr.FindSpecificChunk(allocStart, 10)
	if ok {
		t.Errorf("expected the allocated range to no longer be free, found %+v", found)
	}
}

func TestTreeFindAnyChunk(t *testing.T) {
	tr := New[uintptr]()
	if _, ok := tr.FindAnyChunk(1); ok {
		t.Fatal("expected FindAnyChunk on an empty tree to fail")
	}

	tr.Release(Chunk[uintptr]{Start: 0, End: 9})
	tr.Release(Chunk[uintptr]{Start: 20, End: 29})

	chosen, ok := tr.FindAnyChunk(10)
	if !ok || chosen.Size() < 10 {
		t.Fatalf("FindAnyChunk(10) = %+v, %v; want a chunk of size >= 10", chosen, ok)
	}
}

func TestTreeReleaseMergesAdjacentChunks(t *testing.T) {
	tr := New[uintptr]()

	tr.Release(Chunk[uintptr]{Start: 0, End: 9})
	tr.Release(Chunk[uintptr]{Start: 10, End: 19})

	if got := tr.Len(); got != 1 {
		t.Fatalf("Len() after releasing adjacent chunks = %d; want 1 (merged)", got)
	}

	found, ok := tr.FindSpecificChunk(0, 20)
	if !ok || found.End != 19 {
		t.Errorf("expected merged chunk [0,19], got %+v, %v", found, ok)
	}
}

func TestTreeReleaseMergesBothNeighbors(t *testing.T) {
	tr := New[uintptr]()
	tr.Release(Chunk[uintptr]{Start: 0, End: 9})
	tr.Release(Chunk[uintptr]{Start: 20, End: 29})
	tr.Release(Chunk[uintptr]{Start: 10, End: 19})

	if got := tr.Len(); got != 1 {
		t.Fatalf("Len() after releasing the gap between two chunks = %d; want 1", got)
	}
	found, ok := tr.FindSpecificChunk(0, 30)
	if !ok || found.Start != 0 || found.End != 29 {
		t.Errorf("expected fully merged chunk [0,29], got %+v, %v", found, ok)
	}
}

func TestConvertToHeapAllocatedPreservesContents(t *testing.T) {
	tr := New[uintptr]()
	tr.Release(Chunk[uintptr]{Start: 0, End: 9})
	tr.Release(Chunk[uintptr]{Start: 100, End: 199})

	if tr.IsHeapAllocated() {
		t.Fatal("expected a fresh tree to start in array mode")
	}

	tr.ConvertToHeapAllocated()

	if !tr.IsHeapAllocated() {
		t.Fatal("expected ConvertToHeapAllocated to switch to heap mode")
	}
	if got := tr.Len(); got != 2 {
		t.Fatalf("Len() after conversion = %d; want 2", got)
	}

	var starts []uintptr
	tr.Ascend(func(c Chunk[uintptr]) bool {
		starts = append(starts, c.Start)
		return true
	})
	if len(starts) != 2 || starts[0] != 0 || starts[1] != 100 {
		t.Errorf("Ascend order after conversion = %v; want [0 100]", starts)
	}

	// further operations must still work transparently in heap mode.
	chosen, ok := tr.FindAnyChunk(5)
	if !ok {
		t.Fatal("FindAnyChunk failed after conversion to heap mode")
	}
	if !tr.SplitChosenChunk(chosen, chosen.Start, 5) {
		t.Fatal("SplitChosenChunk failed after conversion to heap mode")
	}
}

func TestAlignUp(t *testing.T) {
	specs := []struct {
		v, align, want uintptr
	}{
		{v: 0, align: 16, want: 0},
		{v: 1, align: 16, want: 16},
		{v: 16, align: 16, want: 16},
		{v: 17, align: 16, want: 32},
		{v: 5, align: 0, want: 5},
	}
	for _, spec := range specs {
		if got := alignUp(spec.v, spec.align); got != spec.want {
			t.Errorf("alignUp(%d, %d) = %d; want %d", spec.v, spec.align, got, spec.want)
		}
	}
}
