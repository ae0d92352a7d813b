package sched

import (
	"sync/atomic"

	"monokernel/kernel/addr"
	"monokernel/kernel/mm/paging"
	"monokernel/kernel/mm/pmm"
	"monokernel/kernel/mm/vmm"
)

// stackSizePages is the number of 4 KiB pages given to each thread's stack,
// not counting the guard page.
const stackSizePages = 16

var stackSlot atomic.Uintptr

// Stack is a range of mapped memory used as a thread's stack, with an
// unmapped guard page immediately below it so that a stack overflow
// trips a page fault instead of silently corrupting an adjacent
// allocation.
type Stack struct {
	guardPage *vmm.AllocatedPages
	region    *paging.MappedRegion
}

// TopAddr returns the initial stack pointer value: the address one past the
// last mapped byte, since stacks grow downward.
func (s *Stack) TopAddr() addr.VirtAddr {
	return s.region.StartAddr().AddSaturating(s.region.SizeInBytes())
}

// Release unmaps and frees the stack and its guard page.
func (s *Stack) Release() {
	s.region.Release()
	s.guardPage.Release()
}

// AllocStack allocates and maps a new stack for table, picking its address
// by bumping a monotonic counter upward through the virtual address space,
// one guard-plus-stack slot size at a time, so that concurrent allocations
// never race over the same candidate address.
func AllocStack(table paging.PageTable) (*Stack, error) {
	for {
		slot := stackSlot.Add(2)
		base := addr.VirtAddr(slot * addr.PageSize * (stackSizePages + 1))
		guardAndStack, err := vmm.AllocateAt(addr.PageFromAddr(base), stackSizePages+1)
		if err == nil {
			return finishAllocStack(table, guardAndStack)
		}
		// Address already in use by another thread's stack slot; retry
		// with the next slot rather than failing the whole allocation.
	}
}

func finishAllocStack(table paging.PageTable, pages *vmm.AllocatedPages) (*Stack, error) {
	startOfStack := addr.Page{Number: pages.Start().Number + 1}
	guardPage, stackPages, splitErr := pages.Split(startOfStack)
	if splitErr != nil {
		pages.Release()
		return nil, splitErr
	}

	frames, allocErr := pmm.Allocate(stackPages.NumPages())
	if allocErr != nil {
		guardPage.Release()
		stackPages.Release()
		return nil, allocErr
	}

	region, mapErr := paging.MapAllocatedPagesTo(table, stackPages, frames, paging.UserData())
	if mapErr != nil {
		guardPage.Release()
		return nil, mapErr
	}

	return &Stack{guardPage: guardPage, region: region}, nil
}
