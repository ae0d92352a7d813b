package sched

import "monokernel/kernel/sync"

// runQueue is a single global FIFO runqueue shared by every core, matching
// this codebase's preference for a single well-understood lock over
// per-core queues with a separate load-balancing pass.
type runQueue struct {
	mu    sync.SpinlockIRQSave
	items []*TCB
}

var rq runQueue

// Add appends t to the back of the runqueue.
func (q *runQueue) Add(t *TCB) {
	q.mu.Lock()
	q.items = append(q.items, t)
	q.mu.Unlock()
}

// AddFront pushes t to the front of the runqueue, so it is the very next
// thread scheduled. Used for rendezvous wakeups (WaitForReply/WaitForRequest)
// where the waking thread should get a low-latency turn.
func (q *runQueue) AddFront(t *TCB) {
	q.mu.Lock()
	q.items = append([]*TCB{t}, q.items...)
	q.mu.Unlock()
}

// Pop removes and returns the thread at the front of the runqueue, or nil
// if it is empty.
func (q *runQueue) Pop() *TCB {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	t := q.items[0]
	q.items = q.items[1:]
	return t
}

// Len reports the number of runnable threads currently queued.
func (q *runQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
