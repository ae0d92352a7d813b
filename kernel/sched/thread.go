package sched

import (
	"monokernel/kernel/irq"
	"monokernel/kernel/mm/paging"
	"monokernel/kernel/zone"
)

// Alloc creates a new thread in Sleep status, owned by parent (0 for none),
// running in zoneID, with the given entry trap frame. The caller must call
// Wake once it is ready to run.
func Alloc(parent Tid, zoneID zone.ID, table paging.PageTable, initial irq.Frame) (*TCB, error) {
	stack, err := AllocStack(table)
	if err != nil {
		return nil, err
	}
	t := NewTCB(parent, zoneID, stack, initial)
	registerThread(t)
	return t, nil
}

// Wake marks t Runnable and appends it to the back of the global runqueue.
func Wake(t *TCB) {
	t.SetStatus(Runnable)
	rq.Add(t)
}

// WakeByTid looks up tid and wakes it, returning false if the tid is
// unknown (already destroyed, or never existed).
func WakeByTid(tid Tid) bool {
	t, ok := Lookup(tid)
	if !ok {
		return false
	}
	Wake(t)
	return true
}

// WakeToFront marks t Runnable and pushes it to the front of the runqueue,
// giving it the very next turn. Used by the rendezvous wait states
// (WaitForReply/WaitForRequest) so the woken party gets a low-latency
// response instead of waiting behind the rest of the runqueue.
func WakeToFront(t *TCB) {
	t.SetStatus(Runnable)
	rq.AddFront(t)
}

// Block marks the current thread on coreID as Blocked. The caller is
// responsible for calling Yield afterwards to actually stop running it;
// Block only updates status so that a concurrent Wake observes the right
// state.
func Block(coreID int) {
	t := Current(coreID)
	if t == nil {
		return
	}
	t.SetStatus(Blocked)
}

// Sleep marks t with the given non-Runnable status. If t is the thread
// currently running on coreID, the caller must follow with a yield.
func Sleep(t *TCB, status Status) {
	t.SetStatus(status)
}

// Destroy removes t from the thread table and releases its owned regions
// and its stack. If t is the thread currently running on any core, that
// core's "current" pointer is cleared first so a subsequent Yield does not
// try to save context back into freed memory.
func Destroy(t *TCB) {
	for c := 0; c < MaxCores; c++ {
		if Current(c) == t {
			setCurrent(c, nil)
		}
	}
	forgetThread(t.Tid)
	t.releaseRegions()
	t.Stack.Release()
}
