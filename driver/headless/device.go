// Package headless provides in-memory Device, Platform and Surface
// implementations for running the frame pipeline without a GPU.
//
// Submitted work retires immediately: Submit signals the timeline to the
// requested value before it returns.
package headless

import (
	"errors"
	"fmt"
	"sync"

	"github.com/TheBitDrifter/snowflake/driver"
)

// ErrWouldBlock is returned by WaitSemaphores when a value was never signalled.
// A real device would block forever.
var ErrWouldBlock = errors.New("headless: wait on a value that is never signalled")

type pool struct {
	family  uint32
	buffers map[driver.CommandBufferHandle]struct{}
	resets  int
}

type bufferState uint8

const (
	bufferInitial bufferState = iota
	bufferRecording
	bufferExecutable
)

// Device is a thread-safe fake device. Set the Fail fields to inject errors.
type Device struct {
	mu sync.Mutex

	// Families maps each queue kind to a family index. Missing kinds have no queue.
	Families map[driver.QueueKind]uint32

	FailCreatePool error
	FailAllocate   error
	FailSemaphore  error
	FailSubmit     error
	FailWait       error

	// AfterEnd, when set, runs after EndCommandBuffer succeeds and outside the device lock.
	AfterEnd func(driver.CommandBufferHandle)

	next       uintptr
	pools      map[driver.CommandPoolHandle]*pool
	owner      map[driver.CommandBufferHandle]driver.CommandPoolHandle
	state      map[driver.CommandBufferHandle]bufferState
	semaphores map[driver.SemaphoreHandle]uint64

	allocations int
	submissions [driver.NumQueueKinds]int
	waits       int
}

// NewDevice returns a device with one family per queue kind.
func NewDevice() *Device {
	return &Device{
		Families: map[driver.QueueKind]uint32{
			driver.Graphics: 0,
			driver.Compute:  1,
			driver.Transfer: 2,
		},
		pools:      make(map[driver.CommandPoolHandle]*pool),
		owner:      make(map[driver.CommandBufferHandle]driver.CommandPoolHandle),
		state:      make(map[driver.CommandBufferHandle]bufferState),
		semaphores: make(map[driver.SemaphoreHandle]uint64),
	}
}

func (d *Device) handle() uintptr {
	d.next++
	return d.next
}

func (d *Device) QueueFamily(kind driver.QueueKind) (uint32, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	family, ok := d.Families[kind]
	return family, ok
}

func (d *Device) CreateCommandPool(family uint32) (driver.CommandPoolHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailCreatePool != nil {
		return 0, d.FailCreatePool
	}
	h := driver.CommandPoolHandle(d.handle())
	d.pools[h] = &pool{family: family, buffers: make(map[driver.CommandBufferHandle]struct{})}
	return h, nil
}

func (d *Device) DestroyCommandPool(h driver.CommandPoolHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.pools[h]
	if !ok {
		return
	}
	for b := range p.buffers {
		delete(d.owner, b)
		delete(d.state, b)
	}
	delete(d.pools, h)
}

func (d *Device) ResetCommandPool(h driver.CommandPoolHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.pools[h]
	if !ok {
		return fmt.Errorf("headless: unknown command pool %d", h)
	}
	for b := range p.buffers {
		d.state[b] = bufferInitial
	}
	p.resets++
	return nil
}

func (d *Device) AllocateCommandBuffers(h driver.CommandPoolHandle, count int) ([]driver.CommandBufferHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailAllocate != nil {
		return nil, d.FailAllocate
	}
	p, ok := d.pools[h]
	if !ok {
		return nil, fmt.Errorf("headless: unknown command pool %d", h)
	}
	buffers := make([]driver.CommandBufferHandle, count)
	for i := range buffers {
		b := driver.CommandBufferHandle(d.handle())
		p.buffers[b] = struct{}{}
		d.owner[b] = h
		d.state[b] = bufferInitial
		buffers[i] = b
	}
	d.allocations += count
	return buffers, nil
}

func (d *Device) FreeCommandBuffers(h driver.CommandPoolHandle, buffers []driver.CommandBufferHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.pools[h]
	if !ok {
		return
	}
	for _, b := range buffers {
		delete(p.buffers, b)
		delete(d.owner, b)
		delete(d.state, b)
	}
}

func (d *Device) BeginCommandBuffer(b driver.CommandBufferHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if st, ok := d.state[b]; !ok || st != bufferInitial {
		return fmt.Errorf("headless: begin on buffer %d in state %d", b, st)
	}
	d.state[b] = bufferRecording
	return nil
}

func (d *Device) EndCommandBuffer(b driver.CommandBufferHandle) error {
	d.mu.Lock()
	if st := d.state[b]; st != bufferRecording {
		d.mu.Unlock()
		return fmt.Errorf("headless: end on buffer %d in state %d", b, st)
	}
	d.state[b] = bufferExecutable
	hook := d.AfterEnd
	d.mu.Unlock()

	if hook != nil {
		hook(b)
	}
	return nil
}

func (d *Device) CreateTimelineSemaphore(initial uint64) (driver.SemaphoreHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailSemaphore != nil {
		return 0, d.FailSemaphore
	}
	h := driver.SemaphoreHandle(d.handle())
	d.semaphores[h] = initial
	return h, nil
}

func (d *Device) DestroySemaphore(h driver.SemaphoreHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.semaphores, h)
}

func (d *Device) WaitSemaphores(semaphores []driver.SemaphoreHandle, values []uint64, _ uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.waits++
	if d.FailWait != nil {
		return d.FailWait
	}
	for i, h := range semaphores {
		current, ok := d.semaphores[h]
		if !ok {
			return fmt.Errorf("headless: unknown semaphore %d", h)
		}
		if current < values[i] {
			return ErrWouldBlock
		}
	}
	return nil
}

func (d *Device) Submit(kind driver.QueueKind, b driver.CommandBufferHandle, sem driver.SemaphoreHandle, value uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailSubmit != nil {
		return d.FailSubmit
	}
	if st := d.state[b]; st != bufferExecutable {
		return fmt.Errorf("headless: submit of buffer %d in state %d", b, st)
	}
	current, ok := d.semaphores[sem]
	if !ok {
		return fmt.Errorf("headless: unknown semaphore %d", sem)
	}
	if value <= current {
		return fmt.Errorf("headless: timeline %d must increase past %d, got %d", sem, current, value)
	}
	d.semaphores[sem] = value
	d.submissions[kind]++
	return nil
}

func (d *Device) WaitIdle() error {
	return nil
}

// Pools returns the number of live command pools.
func (d *Device) Pools() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pools)
}

// Semaphores returns the number of live semaphores.
func (d *Device) Semaphores() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.semaphores)
}

// Buffers returns the number of live command buffers.
func (d *Device) Buffers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.owner)
}

// Allocations counts every buffer ever allocated.
func (d *Device) Allocations() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.allocations
}

func (d *Device) Submissions(kind driver.QueueKind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.submissions[kind]
}

func (d *Device) Waits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.waits
}

// PoolFamilies counts live pools per queue family.
func (d *Device) PoolFamilies() map[uint32]int {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[uint32]int)
	for _, p := range d.pools {
		out[p.family]++
	}
	return out
}
