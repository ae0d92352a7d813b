//go:build riscv64

package irq

// ExceptionNum defines a trap cause, keyed by scause's exception-code
// field, that can be passed to HandleException.
type ExceptionNum uint8

const (
	// InstructionPageFault is raised on an instruction-fetch translation
	// fault.
	InstructionPageFault = ExceptionNum(12)
	// LoadPageFault is raised on a load translation fault.
	LoadPageFault = ExceptionNum(13)
	// StorePageFault is raised on a store/AMO translation fault.
	StorePageFault = ExceptionNum(15)
	// EnvironmentCallFromUMode is raised by the ecall instruction from
	// user mode (syscall entry).
	EnvironmentCallFromUMode = ExceptionNum(8)
)

// ExceptionHandler is a function that handles a trap. If the handler
// returns, any modifications to the supplied Frame and/or Regs pointers are
// propagated back to the location where the trap occurred.
type ExceptionHandler func(*Frame, *Regs)

// ExceptionHandlerWithCode handles a trap whose stval carries additional
// sub-classifying information, passed as code.
type ExceptionHandlerWithCode func(code uint64, frame *Frame, regs *Regs)

// HandleException registers a trap handler for the given exception code.
func HandleException(exceptionNum ExceptionNum, handler ExceptionHandler)

// HandleExceptionWithCode registers a trap handler that also receives stval.
func HandleExceptionWithCode(exceptionNum ExceptionNum, handler ExceptionHandlerWithCode)
