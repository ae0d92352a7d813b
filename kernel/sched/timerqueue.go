package sched

import (
	"container/heap"

	"monokernel/kernel/sync"
)

// timerEntry associates a wake deadline (in timer ticks, see kernel/hal's
// timer source) with the thread waiting on it.
type timerEntry struct {
	deadline uint64
	thread   *TCB
	index    int
}

type timerHeap []*timerEntry

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].deadline < h[j].deadline }
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *timerHeap) Push(x any) {
	e := x.(*timerEntry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

var (
	timerMu sync.SpinlockIRQSave
	timers  timerHeap
)

// SleepUntil blocks the given thread (Status Sleep) until currentTicks()
// reaches deadline, implementing thread_block_current_with_timeout: unlike
// a bare Block, the thread is guaranteed to be woken even if nothing else
// ever wakes it explicitly, by the next call to TickTimers once the
// deadline passes.
func SleepUntil(t *TCB, deadline uint64) {
	t.SetStatus(Sleep)
	timerMu.Lock()
	heap.Push(&timers, &timerEntry{deadline: deadline, thread: t})
	timerMu.Unlock()
}

// TickTimers wakes every thread whose deadline is at or before now. It is
// called from the timer IRQ handler on each tick.
func TickTimers(now uint64) {
	for {
		timerMu.Lock()
		if len(timers) == 0 || timers[0].deadline > now {
			timerMu.Unlock()
			return
		}
		e := heap.Pop(&timers).(*timerEntry)
		timerMu.Unlock()
		if e.thread.Status() == Sleep {
			Wake(e.thread)
		}
	}
}

// CancelSleep removes t's pending timer entry, if any, without waking it.
// Used when a thread sleeping with a timeout is instead woken by an
// explicit event before its deadline.
func CancelSleep(t *TCB) {
	timerMu.Lock()
	defer timerMu.Unlock()
	for i, e := range timers {
		if e.thread == t {
			heap.Remove(&timers, i)
			return
		}
	}
}
