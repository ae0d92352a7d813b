//go:build arm64

package irq

// ExceptionNum defines a synchronous exception class, keyed by ESR_EL1's
// exception class (EC) field, that can be passed to HandleException.
type ExceptionNum uint8

const (
	// DataAbort is raised on a data access permission or translation
	// fault from a lower exception level.
	DataAbort = ExceptionNum(0x24)
	// InstructionAbort is raised on an instruction-fetch permission or
	// translation fault.
	InstructionAbort = ExceptionNum(0x20)
	// SVCException is raised by the svc instruction (syscall entry).
	SVCException = ExceptionNum(0x15)
)

// ExceptionHandler is a function that handles a synchronous exception. If
// the handler returns, any modifications to the supplied Frame and/or Regs
// pointers are propagated back to the location where the exception
// occurred.
type ExceptionHandler func(*Frame, *Regs)

// ExceptionHandlerWithCode handles an exception class whose ESR carries a
// sub-classifying instruction-specific syndrome, passed as code.
type ExceptionHandlerWithCode func(code uint64, frame *Frame, regs *Regs)

// HandleException registers an exception handler for the given exception
// class.
func HandleException(exceptionNum ExceptionNum, handler ExceptionHandler)

// HandleExceptionWithCode registers an exception handler that also receives
// the ESR's instruction-specific syndrome bits.
func HandleExceptionWithCode(exceptionNum ExceptionNum, handler ExceptionHandlerWithCode)
