package driver

import (
	"math"
	"sync/atomic"
)

// FrameData is the state of one frame-in-flight slot.
type FrameData struct {
	slot      int
	device    Device
	pools     [NumQueueKinds]*CommandPools
	timelines [NumQueueKinds]SemaphoreHandle
	// values holds the last timeline value submitted per kind.
	values      [NumQueueKinds]atomic.Uint64
	outstanding atomic.Int64
	// epoch counts resets; buffers from an older epoch are stale.
	epoch atomic.Uint64
}

func newFrameData(device Device, slot int, families [NumQueueKinds]uint32, cfg Config) (*FrameData, error) {
	f := &FrameData{slot: slot, device: device}
	for _, kind := range queueKinds {
		pools, err := newCommandPools(device, kind, families[kind], cfg.Threads, cfg.AllocationBatch)
		if err != nil {
			f.Destroy()
			return nil, err
		}
		f.pools[kind] = pools

		sem, err := device.CreateTimelineSemaphore(0)
		if err != nil {
			f.Destroy()
			return nil, ResourceError{Op: "create " + kind.String() + " timeline", Err: err}
		}
		f.timelines[kind] = sem
	}
	return f, nil
}

// Reset waits until every piece of GPU work tagged with this slot has retired,
// then resets the slot's command pools. The wait has no timeout. Callers that
// submit from other goroutines must exclude those submits around retire instead.
func (f *FrameData) Reset() error {
	return f.reset(f.retire())
}

// retire makes every outstanding buffer of the slot stale and returns the
// timeline values a reset has to wait for.
func (f *FrameData) retire() [NumQueueKinds]uint64 {
	f.epoch.Add(1)
	var values [NumQueueKinds]uint64
	for i := range values {
		values[i] = f.values[i].Load()
	}
	return values
}

func (f *FrameData) reset(values [NumQueueKinds]uint64) error {
	if err := f.device.WaitSemaphores(f.timelines[:], values[:], math.MaxUint64); err != nil {
		return ResourceError{Op: "wait frame timelines", Err: err}
	}
	for _, pools := range f.pools {
		if err := pools.reset(f.device); err != nil {
			return err
		}
	}
	f.outstanding.Store(0)
	return nil
}

// Destroy releases the slot's device objects. It does not wait.
func (f *FrameData) Destroy() {
	for i, pools := range f.pools {
		if pools != nil {
			pools.destroy(f.device)
			f.pools[i] = nil
		}
	}
	for i, sem := range f.timelines {
		if sem != 0 {
			f.device.DestroySemaphore(sem)
			f.timelines[i] = 0
		}
	}
}

func (f *FrameData) Slot() int {
	return f.slot
}

// Outstanding returns the number of buffers requested from this slot and not yet submitted.
func (f *FrameData) Outstanding() int64 {
	return f.outstanding.Load()
}

func (f *FrameData) Pools(kind QueueKind) *CommandPools {
	return f.pools[kind]
}

// Timeline returns the kind's semaphore and the last value submitted against it.
func (f *FrameData) Timeline(kind QueueKind) (SemaphoreHandle, uint64) {
	return f.timelines[kind], f.values[kind].Load()
}

// signal returns the timeline value the next submission of kind should signal.
// The caller holds the kind's submit lock and calls commit once the device accepts it.
func (f *FrameData) signal(kind QueueKind) uint64 {
	return f.values[kind].Load() + 1
}

func (f *FrameData) commit(kind QueueKind, value uint64) {
	f.values[kind].Store(value)
}
