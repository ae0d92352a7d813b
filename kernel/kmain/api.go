package kmain

import (
	"sync/atomic"

	"monokernel/kernel"
	"monokernel/kernel/addr"
	"monokernel/kernel/irq"
	"monokernel/kernel/mm/paging"
	"monokernel/kernel/mm/vmm"
	"monokernel/kernel/sched"
	"monokernel/kernel/zone"
)

// tick counts timer IRQs observed since boot; CurrentCycle and CurrentMs
// are both derived from it.
var tick atomic.Uint64

// ticksPerMs is the timer's tick rate. A board whose timer source runs at
// something other than 1 tick per millisecond calls SetTicksPerMs once
// during its own init, before relying on CurrentMs.
var ticksPerMs atomic.Uint64

func init() { ticksPerMs.Store(1) }

// SetTicksPerMs records the board's timer tick rate.
func SetTicksPerMs(n uint64) { ticksPerMs.Store(n) }

// CurrentCycle returns the number of timer ticks observed since boot.
func CurrentCycle() uint64 { return tick.Load() }

// CurrentMs returns milliseconds elapsed since boot, at whatever
// resolution SetTicksPerMs was configured with (1 tick per ms if never
// called).
func CurrentMs() uint64 {
	rate := ticksPerMs.Load()
	if rate == 0 {
		return 0
	}
	return tick.Load() / rate
}

// Allocate reserves and maps numPages pages of ordinary, shared-zone
// memory on behalf of owner, returning the virtual address of the first
// page. The region is recorded as owned by owner's TCB, so ThreadDestroy
// frees it even if the thread never calls Deallocate itself.
func Allocate(owner sched.Tid, numPages uintptr) (addr.VirtAddr, *kernel.Error) {
	return AllocateZone(owner, numPages, zone.Shared)
}

// AllocateZone is Allocate, tagging the mapping with zoneID so that only
// threads running with zoneID loaded in their key register may access it
// on architectures that enforce zones in hardware; elsewhere the tag is
// advisory only.
func AllocateZone(owner sched.Tid, numPages uintptr, zoneID zone.ID) (addr.VirtAddr, *kernel.Error) {
	t, ok := sched.Lookup(owner)
	if !ok {
		return 0, &kernel.Error{Module: "kmain", Kind: kernel.ErrInvalidInput, Msg: "unknown owner thread"}
	}
	pages, err := vmm.Allocate(numPages)
	if err != nil {
		return 0, err
	}
	attr := paging.UserData().WithZone(uint8(zoneID))
	region, mapErr := paging.MapAllocatedPages(kernelTable, pages, attr)
	if mapErr != nil {
		return 0, mapErr
	}
	start := region.StartAddr()
	t.AddRegion(start, region)
	return start, nil
}

// Deallocate unmaps and frees the region starting at v, if owner's TCB
// still owns it. It is a no-op if owner is unknown or v is not the start
// of one of owner's live allocations.
func Deallocate(owner sched.Tid, v addr.VirtAddr) {
	t, ok := sched.Lookup(owner)
	if !ok {
		return
	}
	region, ok := t.RemoveRegion(v)
	if !ok {
		return
	}
	region.Release()
}

// ThreadAlloc creates a new thread in zoneID, owned by parent (0 for none),
// to be resumed at entry once ThreadWake is called on it.
func ThreadAlloc(parent sched.Tid, zoneID zone.ID, entry irq.Frame) (sched.Tid, *kernel.Error) {
	t, err := sched.Alloc(parent, zoneID, kernelTable, entry)
	if err != nil {
		return 0, err
	}
	return t.Tid, nil
}

// ThreadWake marks tid Runnable. It returns false if tid does not name a
// live thread.
func ThreadWake(tid sched.Tid) bool { return sched.WakeByTid(tid) }

// ThreadYield cooperatively yields the calling core's current thread to
// the next runnable one.
func ThreadYield(coreID int) { sched.YieldCooperative(coreID) }

// ThreadDestroy tears down tid's stack and removes it from the thread
// table. It returns false if tid does not name a live thread.
func ThreadDestroy(tid sched.Tid) bool {
	t, ok := sched.Lookup(tid)
	if !ok {
		return false
	}
	sched.Destroy(t)
	return true
}

// ThreadSleepMs blocks tid (which must be Runnable or already Sleep) until
// durationMs milliseconds have elapsed, implementing
// thread_block_current_with_timeout: tid is guaranteed to be woken by the
// next timer tick past its deadline even if nothing else ever wakes it.
// It is a no-op if tid does not name a live thread.
func ThreadSleepMs(tid sched.Tid, durationMs uint64) {
	t, ok := sched.Lookup(tid)
	if !ok {
		return
	}
	deadline := tick.Load() + durationMs*ticksPerMs.Load()
	sched.SleepUntil(t, deadline)
}

// CurrentThreadID returns the tid running on coreID, or 0 if none has been
// scheduled there yet.
func CurrentThreadID(coreID int) sched.Tid { return sched.CurrentTid(coreID) }
