package paging

import "testing"

func TestEntryAttributeFilter(t *testing.T) {
	a := EntryAttribute{
		Writable:    true,
		User:        false,
		Device:      true,
		KExecutable: true,
		UExecutable: true,
		CopyOnWrite: true,
		Shared:      true,
		Block:       true,
		ZoneKey:     5,
	}

	got := a.Filter()
	want := EntryAttribute{
		Writable:    true,
		User:        true,
		UExecutable: true,
		CopyOnWrite: true,
		Shared:      true,
	}
	if got != want {
		t.Errorf("Filter() = %+v; want %+v", got, want)
	}
}

func TestEntryAttributeWithZone(t *testing.T) {
	a := UserData()
	got := a.WithZone(0xff)
	if got.ZoneKey != 0xf {
		t.Errorf("WithZone(0xff).ZoneKey = %#x; want 0xf (masked to 4 bits)", got.ZoneKey)
	}
	// WithZone must not mutate the other fields of the attribute set.
	if !got.Writable || !got.User {
		t.Errorf("WithZone() = %+v; want Writable and User preserved from UserData()", got)
	}
}

func TestAttributePresets(t *testing.T) {
	if got := KernelDevice(); !got.Writable || !got.Device || got.User {
		t.Errorf("KernelDevice() = %+v; want Writable+Device, not User", got)
	}
	if got := UserDefault(); !got.Writable || !got.User || !got.UExecutable {
		t.Errorf("UserDefault() = %+v; want Writable+User+UExecutable", got)
	}
	if got := User2MB(); !got.Block {
		t.Errorf("User2MB() = %+v; want Block set", got)
	}
	if got := UserReadonly(); got.Writable || !got.User {
		t.Errorf("UserReadonly() = %+v; want User but not Writable", got)
	}
	if got := UserExecutable(); got.Writable || !got.UExecutable {
		t.Errorf("UserExecutable() = %+v; want UExecutable but not Writable", got)
	}
	if got := UserData(); !got.Writable || got.UExecutable {
		t.Errorf("UserData() = %+v; want Writable but not UExecutable", got)
	}
	if got := UserDevice(); !got.Writable || !got.Device {
		t.Errorf("UserDevice() = %+v; want Writable+Device", got)
	}
}
