package sched

import (
	"monokernel/kernel/cpu"
	"monokernel/kernel/irq"
)

// savedKind records which of the two mutually-exclusive shapes a TCB's
// suspended context is stored in. A thread's saved context is always
// exactly one of these; the two resume paths below are kept as separate
// functions rather than a single routine branching on this flag, so that
// each can be reasoned about (and, on the asm side, implemented) against
// one fixed stack layout only.
type savedKind uint8

const (
	savedNone savedKind = iota
	savedCooperative
	savedPreemptive
)

// cooperative yield suspends the caller by storing only its callee-saved
// registers and stack pointer, since it is an ordinary function call: the
// compiler has already spilled anything live in caller-saved registers.
// Preemptive yield suspends a thread that was running arbitrary code when a
// timer tick interrupted it, so it must save the full architectural state
// the trap entry stub captured.
func (t *TCB) setCooperative(sp uintptr) {
	t.mu.Lock()
	t.kind = savedCooperative
	t.coopSP = sp
	t.mu.Unlock()
}

func (t *TCB) setPreemptive(frame irq.Frame, regs irq.Regs) {
	t.mu.Lock()
	t.kind = savedPreemptive
	t.context = frame
	t.regs = regs
	t.mu.Unlock()
}

func (t *TCB) saved() (savedKind, uintptr, irq.Frame, irq.Regs) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.kind, t.coopSP, t.context, t.regs
}

// schedule implements the fairness policy shared by both yield paths: if
// self is still Runnable, it is re-added to the tail of the runqueue
// before the next thread is picked, so a busy-looping or preempted thread
// gets another turn instead of being dropped from scheduling entirely.
// It has no hardware dependency, so it is the part of yielding that is
// actually unit-tested; the two callers below only add the context
// save/resume machinery around it.
func schedule(coreID int, self *TCB) *TCB {
	if self != nil && self.Status() == Runnable {
		rq.Add(self)
	}
	next := pickNext(coreID)
	if next == nil || next == self {
		return self
	}
	setCurrent(coreID, next)
	return next
}

// YieldCooperative is called directly by a thread that is voluntarily
// giving up its timeslice (e.g. it is about to block on a lock). It saves
// only callee-saved state, picks the next thread to run, and resumes it
// in place, returning here once this thread is scheduled again.
func YieldCooperative(coreID int) {
	self := Current(coreID)
	next := schedule(coreID, self)
	if next == nil || next == self {
		return
	}

	var selfSP uintptr
	kind, sp, _, _ := next.saved()
	switch kind {
	case savedCooperative, savedNone:
		// A never-yet-run thread starts with coopSP pointing at a stack
		// frame its allocator primed to look like a fresh call into its
		// entry point, so savedNone and savedCooperative resume the same
		// way.
		cpu.SwitchToCooperative(&selfSP, sp)
	case savedPreemptive:
		// The target can only be resumed through the trap-return path,
		// which this call stack is not on; bounce through a trampoline
		// that re-enters via a software trap instead of returning.
		cpu.SwitchToCooperative(&selfSP, cpu.PreemptiveResumeTrampolineSP(uintptr(next.Tid)))
	}
	if self != nil {
		self.setCooperative(selfSP)
	}
}

// YieldFromInterrupt is called by the timer-tick exception handler with
// pointers to the trap frame and registers the trap entry stub already
// pushed onto the current kernel stack. Unlike YieldCooperative, this
// function does not itself transfer control: it overwrites *frame/*regs in
// place when the next thread resumes through the same shape, and diverges
// (via a call that does not return) when it does not.
func YieldFromInterrupt(coreID int, frame *irq.Frame, regs *irq.Regs) {
	self := Current(coreID)
	if self != nil {
		self.setPreemptive(*frame, *regs)
	}
	next := schedule(coreID, self)
	if next == nil || next == self {
		return
	}

	kind, sp, nframe, nregs := next.saved()
	switch kind {
	case savedPreemptive:
		*frame = nframe
		*regs = nregs
	case savedCooperative, savedNone:
		// Diverges: resumes next directly and never returns to the
		// caller's trap epilogue.
		cpu.ResumeCooperative(sp)
	}
}
