// Package chunktree implements the free-chunk tree shared by the physical
// frame allocator and the virtual page allocator: a sorted collection of
// disjoint, non-adjacent [Start, End] ranges of a generic index type.
//
// It starts out backed by a small fixed-size array (usable before the heap
// exists, during early boot) and can be converted in place to a
// btree-backed representation once the heap is available, without the
// caller needing to change how it calls the tree.
package chunktree

import (
	"github.com/google/btree"
)

// Index is any unsigned integer-like type usable as a chunk endpoint.
type Index interface {
	~uintptr | ~uint64 | ~uint32
}

// Chunk is an inclusive range [Start, End] of the tree's index type.
type Chunk[T Index] struct {
	Start T
	End   T
}

// Size returns the number of discrete units spanned by the chunk.
func (c Chunk[T]) Size() T { return c.End - c.Start + 1 }

// staticCapacity is the number of chunks the inline array mode can hold
// before ConvertToHeapAllocated must be called.
const staticCapacity = 32

// Tree is a sorted set of disjoint chunks, ordered by Start.
//
// The zero value is an empty tree in array mode, the same tree New returns.
type Tree[T Index] struct {
	array    [staticCapacity]Chunk[T]
	count    int
	heap     *btree.BTreeG[Chunk[T]]
	heapMode bool
}

func less[T Index](a, b Chunk[T]) bool { return a.Start < b.Start }

// New returns an empty tree in array mode.
func New[T Index]() *Tree[T] {
	return &Tree[T]{}
}

// NewWithChunk returns a tree seeded with a single initial chunk, as used to
// bootstrap the virtual page allocator over the full user-virtual range.
func NewWithChunk[T Index](c Chunk[T]) *Tree[T] {
	t := New[T]()
	t.insert(c)
	return t
}

// IsHeapAllocated reports whether the tree has been converted to the
// btree-backed representation.
func (t *Tree[T]) IsHeapAllocated() bool { return t.heapMode }

// ConvertToHeapAllocated migrates the tree from the inline array to a
// btree.BTreeG-backed representation. It is a logic error to call this more
// than once; callers do so exactly once, right after the heap becomes
// available during memory-management init.
func (t *Tree[T]) ConvertToHeapAllocated() {
	if t.heapMode {
		return
	}
	bt := btree.NewG[Chunk[T]](32, less[T])
	for i := 0; i < t.count; i++ {
		bt.ReplaceOrInsert(t.array[i])
	}
	t.heap = bt
	t.heapMode = true
	t.count = 0
}

// Len returns the number of disjoint chunks currently tracked.
func (t *Tree[T]) Len() int {
	if t.heapMode {
		return t.heap.Len()
	}
	return t.count
}

// Ascend calls fn for every chunk in increasing Start order, stopping early
// if fn returns false.
func (t *Tree[T]) Ascend(fn func(Chunk[T]) bool) {
	if t.heapMode {
		t.heap.Ascend(func(c Chunk[T]) bool { return fn(c) })
		return
	}
	for i := 0; i < t.count; i++ {
		if !fn(t.array[i]) {
			return
		}
	}
}

func (t *Tree[T]) insert(c Chunk[T]) bool {
	if t.heapMode {
		t.heap.ReplaceOrInsert(c)
		return true
	}
	if t.count >= staticCapacity {
		return false
	}
	// maintain sorted-by-Start order via insertion sort; array mode only
	// ever holds a handful of chunks so this is not a hot path.
	i := t.count
	for i > 0 && t.array[i-1].Start > c.Start {
		t.array[i] = t.array[i-1]
		i--
	}
	t.array[i] = c
	t.count++
	return true
}

func (t *Tree[T]) remove(c Chunk[T]) {
	if t.heapMode {
		t.heap.Delete(c)
		return
	}
	for i := 0; i < t.count; i++ {
		if t.array[i].Start == c.Start && t.array[i].End == c.End {
			copy(t.array[i:], t.array[i+1:t.count])
			t.count--
			return
		}
	}
}

// FindSpecificChunk locates the unique chunk in the tree that fully contains
// [start, start+size-1], if any.
func (t *Tree[T]) FindSpecificChunk(start T, size T) (Chunk[T], bool) {
	end := start + size - 1
	var found Chunk[T]
	ok := false
	t.Ascend(func(c Chunk[T]) bool {
		if c.Start <= start && end <= c.End {
			found = c
			ok = true
			return false
		}
		return c.End < start
	})
	return found, ok
}

// FindAlignmentChunk locates a chunk with at least size units whose
// allocation start can be rounded up to align, returning the chosen chunk
// and the aligned start within it.
func (t *Tree[T]) FindAlignmentChunk(size T, align T) (chosen Chunk[T], allocStart T, ok bool) {
	t.Ascend(func(c Chunk[T]) bool {
		alignedStart := alignUp(c.Start, align)
		if alignedStart >= c.Start && alignedStart <= c.End && c.End-alignedStart+1 >= size {
			chosen, allocStart, ok = c, alignedStart, true
			return false
		}
		return true
	})
	return
}

// FindAnyChunk locates the first chunk with at least size units,
// unaligned, used as a fallback when alignment is not required.
func (t *Tree[T]) FindAnyChunk(size T) (chosen Chunk[T], ok bool) {
	t.Ascend(func(c Chunk[T]) bool {
		if c.Size() >= size {
			chosen, ok = c, true
			return false
		}
		return true
	})
	return
}

func alignUp[T Index](v, align T) T {
	if align == 0 {
		return v
	}
	rem := v % align
	if rem == 0 {
		return v
	}
	return v + (align - rem)
}

// SplitChosenChunk removes chosen from the tree and re-inserts whatever
// leading and trailing slack remains after allocating [allocStart,
// allocStart+size-1] from it. It returns false if the tree is full in array
// mode and the split would require more slots than are free.
func (t *Tree[T]) SplitChosenChunk(chosen Chunk[T], allocStart T, size T) bool {
	t.remove(chosen)
	allocEnd := allocStart + size - 1
	if chosen.Start < allocStart {
		if !t.insert(Chunk[T]{Start: chosen.Start, End: allocStart - 1}) {
			return false
		}
	}
	if allocEnd < chosen.End {
		if !t.insert(Chunk[T]{Start: allocEnd + 1, End: chosen.End}) {
			return false
		}
	}
	return true
}

// Release returns a chunk to the tree, merging it with an adjacent
// predecessor and/or successor chunk so that the tree never holds two
// mergeable neighbors.
func (t *Tree[T]) Release(c Chunk[T]) bool {
	merged := c
	var toRemove []Chunk[T]
	t.Ascend(func(o Chunk[T]) bool {
		if o.End+1 == merged.Start {
			merged.Start = o.Start
			toRemove = append(toRemove, o)
		} else if merged.End+1 == o.Start {
			merged.End = o.End
			toRemove = append(toRemove, o)
		}
		return true
	})
	for _, o := range toRemove {
		t.remove(o)
	}
	return t.insert(merged)
}
