// Package hal is the hardware abstraction layer: the thin capability
// interfaces that let the rest of the kernel issue block and network I/O
// and register a per-board interrupt controller without depending on any
// particular device driver.
//
// Concrete drivers are out of scope for this module; hal only defines the
// capability surface and a small registry that a board's init code
// populates once, at boot.
package hal

import (
	"monokernel/kernel/irq"
)

// BlkIO is the capability interface a block storage device exposes.
type BlkIO interface {
	// ReadBlocks reads len(buf)/BlockSize() blocks starting at lba into
	// buf.
	ReadBlocks(lba uint64, buf []byte) error
	// WriteBlocks writes len(buf)/BlockSize() blocks starting at lba
	// from buf.
	WriteBlocks(lba uint64, buf []byte) error
	// BlockSize returns the device's native block size in bytes.
	BlockSize() uint32
	// NumBlocks returns the total addressable block count.
	NumBlocks() uint64
}

// NetIO is the capability interface a network device exposes.
type NetIO interface {
	// Send transmits a single frame.
	Send(frame []byte) error
	// Recv copies the next received frame into buf, returning the number
	// of bytes written, or 0 if none is pending.
	Recv(buf []byte) (int, error)
	// MAC returns the device's hardware address.
	MAC() [6]byte
}

// TimerSource is the capability interface a board's timer hardware
// exposes: a free-running tick counter and a way to arm the next
// scheduler-tick interrupt.
type TimerSource interface {
	// Now returns the current tick count.
	Now() uint64
	// ArmNext schedules the next tick interrupt at ticks from now.
	ArmNext(ticks uint64)
}

// registry holds whatever capabilities the board's init code has
// registered. A capability left nil is simply unavailable.
type registry struct {
	controller irq.InterruptController
	blk        BlkIO
	net        NetIO
	timer      TimerSource
}

var devices registry

// SetInterruptController registers the board's interrupt controller. Must
// be called once, before interrupts are enabled.
func SetInterruptController(c irq.InterruptController) { devices.controller = c }

// InterruptController returns the registered interrupt controller, or nil
// if none has been registered yet.
func InterruptController() irq.InterruptController { return devices.controller }

// SetBlkIO registers the active block device.
func SetBlkIO(b BlkIO) { devices.blk = b }

// Blk returns the registered block device, or nil.
func Blk() BlkIO { return devices.blk }

// SetNetIO registers the active network device.
func SetNetIO(n NetIO) { devices.net = n }

// Net returns the registered network device, or nil.
func Net() NetIO { return devices.net }

// SetTimerSource registers the board's timer hardware.
func SetTimerSource(t TimerSource) { devices.timer = t }

// Timer returns the registered timer source, or nil.
func Timer() TimerSource { return devices.timer }
