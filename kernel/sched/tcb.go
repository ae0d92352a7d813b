// Package sched implements the thread control block, runqueue and
// cooperative/preemptive yield paths that make up the scheduling core. The
// runqueue is a single global FIFO shared by every core; there are no
// per-core runqueues.
package sched

import (
	stdsync "sync"
	"sync/atomic"

	"monokernel/kernel/addr"
	"monokernel/kernel/irq"
	"monokernel/kernel/mm/paging"
	"monokernel/kernel/sync"
	"monokernel/kernel/zone"
)

// Tid identifies a thread. Tid 0 is never assigned to a real thread; it is
// used as the sentinel "no running thread" value.
type Tid uintptr

// Status describes what a thread is doing and, by extension, whether the
// scheduler may run it.
type Status uint8

const (
	// Runnable threads are eligible to be picked off a runqueue.
	Runnable Status = iota
	// Sleep threads are waiting for a timer deadline (see timerqueue.go).
	Sleep
	// Blocked threads are waiting on an arbitrary external condition and
	// must be explicitly woken by Wake.
	Blocked
	// WaitForEvent, WaitForReply and WaitForRequest are the three
	// rendezvous-style wait states used by the zone/IPC layer above this
	// package; they are distinguished from Blocked so that a waking party
	// can confirm it is unblocking the expected kind of wait before
	// mutating thread state.
	WaitForEvent
	WaitForReply
	WaitForRequest
)

var tidAllocator atomic.Uintptr

func init() {
	// tid 100 matches this codebase's convention of reserving low tids
	// for statically-known threads (the idle thread, early boot thread).
	tidAllocator.Store(100)
}

func newTid() Tid {
	return Tid(tidAllocator.Add(1))
}

// TCB is a thread control block. Fields set at creation time (Tid, Parent,
// ZoneID, Stack) are never mutated afterwards and may be read without
// locking; everything else is guarded by mu.
type TCB struct {
	Tid    Tid
	Parent Tid
	ZoneID zone.ID
	Stack  *Stack

	mu      stdsync.Mutex
	status  Status
	kind    savedKind
	coopSP  uintptr
	context irq.Frame
	regs    irq.Regs
	regions map[addr.VirtAddr]*paging.MappedRegion
}

// NewTCB constructs a TCB in Sleep status with the given initial trap
// frame; the caller wakes it via Wake once it should actually run.
func NewTCB(parent Tid, zoneID zone.ID, stack *Stack, initial irq.Frame) *TCB {
	return &TCB{
		Tid:     newTid(),
		Parent:  parent,
		ZoneID:  zoneID,
		Stack:   stack,
		status:  Sleep,
		kind:    savedPreemptive,
		context: initial,
		regions: make(map[addr.VirtAddr]*paging.MappedRegion),
	}
}

// Status returns the thread's current status.
func (t *TCB) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// SetStatus sets the thread's status directly. Callers outside this package
// should prefer the Wake/Sleep/Block free functions, which
// also manage runqueue membership; SetStatus exists for the scheduler's own
// internal bookkeeping.
func (t *TCB) SetStatus(s Status) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}

// Context returns a copy of the thread's saved trap frame.
func (t *TCB) Context() irq.Frame {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.context
}

// SetContext overwrites the thread's saved trap frame, e.g. right before a
// preemptive yield restores it onto the CPU.
func (t *TCB) SetContext(f irq.Frame) {
	t.mu.Lock()
	t.context = f
	t.mu.Unlock()
}

// AddRegion records that the thread owns region, mapped starting at start,
// so that Destroy (via releaseRegions) unmaps and frees it along with every
// other region this thread owns.
func (t *TCB) AddRegion(start addr.VirtAddr, region *paging.MappedRegion) {
	t.mu.Lock()
	t.regions[start] = region
	t.mu.Unlock()
}

// RemoveRegion forgets a previously-recorded region, returning it (and true)
// if start was a region this thread owned.
func (t *TCB) RemoveRegion(start addr.VirtAddr) (*paging.MappedRegion, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	region, ok := t.regions[start]
	if ok {
		delete(t.regions, start)
	}
	return region, ok
}

// releaseRegions unmaps and releases every region this thread still owns,
// clearing the set. Called once, by Destroy.
func (t *TCB) releaseRegions() {
	t.mu.Lock()
	owned := t.regions
	t.regions = make(map[addr.VirtAddr]*paging.MappedRegion)
	t.mu.Unlock()

	for _, region := range owned {
		region.Release()
	}
}

var (
	threadMapMu sync.SpinlockIRQSave
	threadMap   = make(map[Tid]*TCB)
)

func registerThread(t *TCB) {
	threadMapMu.Lock()
	threadMap[t.Tid] = t
	threadMapMu.Unlock()
}

// Lookup returns the TCB for tid, if it is still alive.
func Lookup(tid Tid) (*TCB, bool) {
	threadMapMu.Lock()
	defer threadMapMu.Unlock()
	t, ok := threadMap[tid]
	return t, ok
}

func forgetThread(tid Tid) {
	threadMapMu.Lock()
	delete(threadMap, tid)
	threadMapMu.Unlock()
}
