package sched

import "sync"

// perCore holds the scheduling state specific to one core: which thread it
// is currently running, and an idle TCB to fall back to when the runqueue
// is empty.
type perCore struct {
	mu      sync.Mutex
	current *TCB
	idle    *TCB
}

// MaxCores bounds the per-core state array so it can live in a plain,
// fixed-size array rather than a map indexed by core ID.
const MaxCores = 64

var cores [MaxCores]perCore

// SetIdleThread installs t as the thread a core runs when its runqueue is
// empty. Must be called once per core during scheduler init.
func SetIdleThread(coreID int, t *TCB) {
	cores[coreID].mu.Lock()
	cores[coreID].idle = t
	cores[coreID].mu.Unlock()
}

// Current returns the TCB running on coreID, or nil if nothing has been
// scheduled there yet.
func Current(coreID int) *TCB {
	cores[coreID].mu.Lock()
	defer cores[coreID].mu.Unlock()
	return cores[coreID].current
}

// CurrentTid returns the tid of the thread running on coreID, or 0 if none.
func CurrentTid(coreID int) Tid {
	t := Current(coreID)
	if t == nil {
		return 0
	}
	return t.Tid
}

func setCurrent(coreID int, t *TCB) {
	cores[coreID].mu.Lock()
	cores[coreID].current = t
	cores[coreID].mu.Unlock()
}

// pickNext returns the next thread coreID should run: the head of the
// global runqueue, or that core's idle thread if the runqueue is empty.
func pickNext(coreID int) *TCB {
	if t := rq.Pop(); t != nil {
		return t
	}
	cores[coreID].mu.Lock()
	defer cores[coreID].mu.Unlock()
	return cores[coreID].idle
}
