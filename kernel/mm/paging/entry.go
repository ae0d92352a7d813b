// Package paging provides the architecture-neutral page-table abstraction:
// entry attribute bits, the PageTable/ArchPageTableEntry interfaces every
// architecture backend implements, and the MappedRegion RAII handle
// returned by a successful mapping.
//
// Per-architecture encoders live in arch_amd64.go and the shared
// arch_arm64_riscv64.go, selected at build time via Go build tags rather than
// dynamic dispatch, so the raw page-table-word format never needs a type
// switch at translation time.
package paging

import (
	"monokernel/kernel"
	"monokernel/kernel/addr"
)

// EntryAttribute bundles the permission and classification bits attached to
// a page-table entry, independent of how any particular architecture
// encodes them into its native word format.
type EntryAttribute struct {
	Writable     bool
	User         bool
	Device       bool
	KExecutable  bool
	UExecutable  bool
	CopyOnWrite  bool
	Shared       bool
	Block        bool
	ZoneKey      uint8 // low 4 bits significant; see kernel/zone
}

// Filter strips kernel-only bits (device, kernel-exec, block, zone) and
// forces User, producing the attribute set that a child mapping inherits
// when it is made visible to user-mode code via a shared region.
func (a EntryAttribute) Filter() EntryAttribute {
	return EntryAttribute{
		Writable:    a.Writable,
		User:        true,
		UExecutable: a.UExecutable,
		CopyOnWrite: a.CopyOnWrite,
		Shared:      a.Shared,
	}
}

// WithZone returns a copy of a with its zone key set to id (masked to 4
// bits). Zone 0 is the shared, unrestricted zone.
func (a EntryAttribute) WithZone(id uint8) EntryAttribute {
	a.ZoneKey = id & 0xf
	return a
}

// KernelDevice returns the attribute set for kernel-only MMIO mappings:
// writable, non-executable, device (non-cacheable), not user-accessible.
func KernelDevice() EntryAttribute {
	return EntryAttribute{Writable: true, Device: true}
}

// UserDefault returns the attribute set for an ordinary, freshly-mapped
// user page: writable, user-executable, cacheable.
func UserDefault() EntryAttribute {
	return EntryAttribute{Writable: true, User: true, UExecutable: true}
}

// User2MB is UserDefault mapped as a 2 MiB block instead of a 4 KiB leaf.
func User2MB() EntryAttribute {
	a := UserDefault()
	a.Block = true
	return a
}

// UserReadonly returns the attribute set for read-only user data, e.g. a
// mapped and already-initialized .rodata section.
func UserReadonly() EntryAttribute {
	return EntryAttribute{User: true}
}

// UserExecutable returns the attribute set for a read-only, user-executable
// text mapping.
func UserExecutable() EntryAttribute {
	return EntryAttribute{User: true, UExecutable: true}
}

// UserData returns the attribute set for writable, non-executable user
// data (the common case for heap and stack mappings).
func UserData() EntryAttribute {
	return EntryAttribute{Writable: true, User: true}
}

// UserDevice returns the attribute set for a user-accessible MMIO mapping.
func UserDevice() EntryAttribute {
	return EntryAttribute{Writable: true, User: true, Device: true}
}

// validateBlockMapping enforces map_2mb's preconditions: the caller must
// already have attr.Block set, and both the virtual page and the physical
// frame must start on a 2 MiB boundary. Every Table.Map2MB implementation
// calls this before touching any page-table state.
func validateBlockMapping(page addr.Page, frame addr.Frame, attr EntryAttribute) *kernel.Error {
	if !attr.Block {
		return &kernel.Error{Module: "paging", Kind: kernel.ErrInvalidInput, Msg: "map_2mb requires attr.Block"}
	}
	if page.Addr().Value()%addr.PageSize2MB != 0 {
		return &kernel.Error{Module: "paging", Kind: kernel.ErrInvalidInput, Msg: "page not 2 MiB aligned"}
	}
	if frame.Addr().Value()%addr.PageSize2MB != 0 {
		return &kernel.Error{Module: "paging", Kind: kernel.ErrInvalidInput, Msg: "frame not 2 MiB aligned"}
	}
	return nil
}
