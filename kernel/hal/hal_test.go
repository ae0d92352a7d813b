package hal

import "testing"

type fakeBlkIO struct{}

func (fakeBlkIO) ReadBlocks(lba uint64, buf []byte) error  { return nil }
func (fakeBlkIO) WriteBlocks(lba uint64, buf []byte) error { return nil }
func (fakeBlkIO) BlockSize() uint32                        { return 512 }
func (fakeBlkIO) NumBlocks() uint64                        { return 1024 }

type fakeNetIO struct{}

func (fakeNetIO) Send(frame []byte) error      { return nil }
func (fakeNetIO) Recv(buf []byte) (int, error) { return 0, nil }
func (fakeNetIO) MAC() [6]byte                 { return [6]byte{1, 2, 3, 4, 5, 6} }

type fakeTimerSource struct{}

func (fakeTimerSource) Now() uint64     { return 42 }
func (fakeTimerSource) ArmNext(n uint64) {}

func TestRegistryStartsEmpty(t *testing.T) {
	var empty registry
	devices = empty

	if Blk() != nil {
		t.Error("expected Blk() to be nil before SetBlkIO is called")
	}
	if Net() != nil {
		t.Error("expected Net() to be nil before SetNetIO is called")
	}
	if Timer() != nil {
		t.Error("expected Timer() to be nil before SetTimerSource is called")
	}
	if InterruptController() != nil {
		t.Error("expected InterruptController() to be nil before SetInterruptController is called")
	}
}

func TestSettersAndGetters(t *testing.T) {
	var empty registry
	devices = empty
	t.Cleanup(func() { devices = empty })

	blk := fakeBlkIO{}
	SetBlkIO(blk)
	if got := Blk(); got != blk {
		t.Errorf("Blk() = %v; want %v", got, blk)
	}

	net := fakeNetIO{}
	SetNetIO(net)
	if got := Net(); got != net {
		t.Errorf("Net() = %v; want %v", got, net)
	}

	timer := fakeTimerSource{}
	SetTimerSource(timer)
	if got := Timer(); got != timer {
		t.Errorf("Timer() = %v; want %v", got, timer)
	}
}
