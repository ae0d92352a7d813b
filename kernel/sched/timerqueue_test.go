package sched

import "testing"

func TestSleepUntilAndTickTimers(t *testing.T) {
	tcb := newTestTCB(t)
	tcb.SetStatus(Sleep)

	SleepUntil(tcb, 100)
	if got := tcb.Status(); got != Sleep {
		t.Fatalf("Status() right after SleepUntil = %v; want Sleep", got)
	}

	// Before the deadline, ticking must not wake the thread.
	TickTimers(50)
	if got := tcb.Status(); got != Sleep {
		t.Fatalf("Status() before the deadline = %v; want Sleep", got)
	}

	// At (or past) the deadline, TickTimers must wake it via Wake, which
	// also enqueues it on the runqueue.
	TickTimers(100)
	if got := tcb.Status(); got != Runnable {
		t.Fatalf("Status() at the deadline = %v; want Runnable", got)
	}

	found := false
	for rq.Len() > 0 {
		if rq.Pop() == tcb {
			found = true
		}
	}
	if !found {
		t.Error("expected the woken thread to have been enqueued on the runqueue")
	}
}

func TestCancelSleep(t *testing.T) {
	tcb := newTestTCB(t)
	tcb.SetStatus(Sleep)

	SleepUntil(tcb, 1000)
	CancelSleep(tcb)

	TickTimers(1000)
	if got := tcb.Status(); got != Sleep {
		t.Errorf("Status() after CancelSleep and a later tick = %v; want Sleep (never woken)", got)
	}
}

func TestTickTimersIgnoresAlreadyWokenThread(t *testing.T) {
	tcb := newTestTCB(t)
	tcb.SetStatus(Sleep)
	SleepUntil(tcb, 10)

	// Something else wakes the thread before its timer fires.
	tcb.SetStatus(Runnable)

	TickTimers(10)
	if got := tcb.Status(); got != Runnable {
		t.Errorf("Status() = %v; want Runnable (TickTimers must not re-process an already-woken thread)", got)
	}
}
