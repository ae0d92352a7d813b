// Package zone implements the intra-address-space isolation domains: a
// small integer key attached to page-table entries and, where the hardware
// supports it, loaded into a per-core protection-key register so that a
// thread running with the wrong key trips a fault on access rather than a
// full page-table switch being required to isolate it.
//
// Zone 0 is always the shared zone: every thread's key register permits
// access to it, matching the architecture-neutral behaviour callers get on
// platforms where KeyRegister is a no-op.
package zone

import "fmt"

// ID identifies a zone. Only the low 4 bits are significant, matching the
// width of the zone-key field packed into a page-table entry.
type ID uint8

// Shared is the zone every thread can always access.
const Shared ID = 0

// MaxZones is the number of distinct zones representable in the 4-bit key
// field.
const MaxZones = 16

func (z ID) String() string { return fmt.Sprintf("zone(%d)", uint8(z)) }

// KeyRegister abstracts the per-core hardware register (or lack of one)
// that grants or denies access to each zone for the currently-running
// thread. Load installs a thread's zone so that its memory accesses are
// checked against the right key; the scheduler's context-switch paths in
// this module do not call Load, so the register keeps whatever zone was
// last loaded explicitly. Architectures without a protection-key mechanism
// implement this as a no-op, keeping the zone API stable even though
// isolation there is advisory only.
type KeyRegister interface {
	// Load installs id as the active zone for the current core, so that
	// subsequent memory accesses are checked against it.
	Load(id ID)
	// Active returns the zone last installed via Load on this core.
	Active() ID
	// Enforced reports whether this architecture actually enforces zone
	// isolation in hardware, as opposed to treating it as an advisory tag.
	Enforced() bool
}

// Default is the KeyRegister implementation for the running architecture,
// selected at build time: a real MPK-backed implementation on amd64
// (zone_amd64.go), an advisory no-op elsewhere (zone_noop.go).
var Default KeyRegister = defaultKeyRegister()
