package irq

import "testing"

func TestRegisterHandlerAndDispatch(t *testing.T) {
	var got IRQNum
	called := false
	RegisterHandler(IRQNum(7), func(n IRQNum) {
		called = true
		got = n
	})

	Dispatch(IRQNum(7))
	if !called {
		t.Fatal("expected the registered handler to be invoked")
	}
	if got != 7 {
		t.Errorf("handler received IRQNum %d; want 7", got)
	}
}

func TestDispatchUnregisteredIsNoop(t *testing.T) {
	// Dispatching an id with nothing registered must not panic.
	Dispatch(IRQNum(999))
}

func TestRegisterHandlerReplacesPrevious(t *testing.T) {
	calls := 0
	RegisterHandler(IRQNum(8), func(IRQNum) { calls++ })
	RegisterHandler(IRQNum(8), func(IRQNum) { calls += 10 })

	Dispatch(IRQNum(8))
	if calls != 10 {
		t.Errorf("calls = %d; want 10 (only the replacement handler should run)", calls)
	}
}
