// Package kmain assembles every other component package into the single
// application-facing surface the rest of a hypothetical repository calls:
// Init brings memory management, the Go heap, trap/IRQ dispatch and the
// idle thread up from a board's boot descriptor, and the exported
// Allocate/ThreadAlloc/... functions in api.go are the only things a
// caller outside this module ever needs to know about.
package kmain

import (
	"monokernel/kernel"
	"monokernel/kernel/addr"
	"monokernel/kernel/boot"
	"monokernel/kernel/cpu"
	"monokernel/kernel/goruntime"
	"monokernel/kernel/hal"
	"monokernel/kernel/irq"
	"monokernel/kernel/kfmt"
	"monokernel/kernel/mm/paging"
	"monokernel/kernel/mm/pmm"
	"monokernel/kernel/mm/vmm"
	"monokernel/kernel/sched"
	"monokernel/kernel/zone"
)

// userSpaceStart/userSpaceEnd bound the virtual range the page allocator
// hands out: comfortably above the kernel image's own mappings and the
// physmap window, and below the architectures' canonical-address split.
const (
	userSpaceStart = addr.VirtAddr(0x0000_1000_0000_0000)
	userSpaceEnd   = addr.VirtAddr(0x0000_7fff_ffff_ffff)
)

var kernelTable *paging.Table

var errInitReturned = &kernel.Error{Module: "kmain", Msg: "Init returned"}

// Init brings up the core from a board's boot descriptor and falls into
// the idle loop: with interrupts enabled it halts the CPU over and over,
// waking only to service interrupts. It never returns.
func Init(desc *boot.Descriptor) {
	var err *kernel.Error
	if err = pmm.Init(desc); err != nil {
		kfmt.Panic(err)
	}
	if err = vmm.Init(userSpaceStart, userSpaceEnd); err != nil {
		kfmt.Panic(err)
	}

	kernelTable = paging.NewTable(addr.FrameFromAddr(desc.InitialPageTable))
	kernelTable.LoadActive()

	if err = goruntime.Init(); err != nil {
		kfmt.Panic(err)
	}
	pmm.ConvertToHeap()
	vmm.ConvertToHeap()

	installFaultHandlers()

	if ctrlErr := defaultController.Init(); ctrlErr != nil {
		kfmt.Panic(&kernel.Error{Module: "kmain", Kind: kernel.ErrInternal, Msg: ctrlErr.Error()})
	}
	hal.SetInterruptController(defaultController)
	defaultController.Enable(timerIRQ)

	idle, allocErr := sched.Alloc(0, zone.Shared, kernelTable, irq.Frame{})
	if allocErr != nil {
		kfmt.Panic(allocErr)
	}
	sched.SetIdleThread(0, idle)

	cpu.EnableInterrupts()

	for {
		cpu.Halt()
	}
}

// HandleIRQ is the Go-level counterpart of spec.md's "dispatch on id" IRQ
// path: invoked by the IRQ vector's trap epilogue once the controller's
// pending id has been fetched, on the given core, with pointers to the
// trap frame and registers the epilogue already pushed.
func HandleIRQ(coreID int, id irq.IRQNum, frame *irq.Frame, regs *irq.Regs) {
	switch {
	case id == timerIRQ:
		tick.Add(1)
		sched.TickTimers(tick.Load())
		sched.YieldFromInterrupt(coreID, frame, regs)
	case id >= 32:
		irq.Dispatch(id)
	default:
		kfmt.Printf("warning: spurious low IRQ %d\n", id)
	}
	defaultController.Finish(id)
}

// onPageFault implements the two-way split spec.md's handler section
// describes: a fault from privileged code is fatal, a fault from
// unprivileged code destroys only the offending thread and resumes
// scheduling.
func onPageFault(faultAddr addr.VirtAddr, userMode bool, coreID int, frame *irq.Frame, regs *irq.Regs) {
	if !userMode {
		kfmt.Printf("page fault in privileged code @ %s\n", faultAddr)
		frame.Print()
		regs.Print()
		kfmt.Panic(&kernel.Error{Module: "kmain", Kind: kernel.ErrInternal, Msg: "page fault in privileged code"})
	}

	t := sched.Current(coreID)
	if t == nil {
		kfmt.Panic(&kernel.Error{Module: "kmain", Kind: kernel.ErrInternal, Msg: "page fault with no current thread"})
	}
	kfmt.Printf("tid %d: page fault @ %s, destroying thread\n", t.Tid, faultAddr)
	sched.Destroy(t)
	sched.YieldFromInterrupt(coreID, frame, regs)
}

// fatalTrap builds a handler for exception classes this core treats as
// always fatal regardless of which mode raised them (double fault, general
// protection fault, ...).
func fatalTrap(reason string) irq.ExceptionHandler {
	return func(frame *irq.Frame, regs *irq.Regs) {
		kfmt.Printf("fatal trap: %s\n", reason)
		frame.Print()
		regs.Print()
		kfmt.Panic(&kernel.Error{Module: "kmain", Kind: kernel.ErrInternal, Msg: reason})
	}
}
