package driver

import (
	"sync"
	"sync/atomic"
)

// HandleAllocator recycles CommandBuffer objects. It serves from a fixed slab
// first and falls back to a sync.Pool heap once the slab is exhausted.
type HandleAllocator struct {
	mu   sync.Mutex
	slab []CommandBuffer
	free []*CommandBuffer

	heap      sync.Pool
	fallbacks atomic.Int64
}

func NewHandleAllocator(slabSize int) *HandleAllocator {
	a := &HandleAllocator{
		slab: make([]CommandBuffer, slabSize),
		free: make([]*CommandBuffer, 0, slabSize),
	}
	for i := range a.slab {
		a.slab[i].slabbed = true
		a.free = append(a.free, &a.slab[i])
	}
	a.heap.New = func() any {
		return &CommandBuffer{}
	}
	return a
}

// Get returns a cleared CommandBuffer with a zero reference count.
func (a *HandleAllocator) Get() *CommandBuffer {
	a.mu.Lock()
	if n := len(a.free); n > 0 {
		cb := a.free[n-1]
		a.free = a.free[:n-1]
		a.mu.Unlock()
		return cb
	}
	a.mu.Unlock()

	a.fallbacks.Add(1)
	return a.heap.Get().(*CommandBuffer)
}

// Put returns cb to the allocator. It is the deleter of every Ref the driver hands out.
func (a *HandleAllocator) Put(cb *CommandBuffer) {
	cb.clear()
	if !cb.slabbed {
		a.heap.Put(cb)
		return
	}
	a.mu.Lock()
	a.free = append(a.free, cb)
	a.mu.Unlock()
}

// Available returns the number of free slab objects.
func (a *HandleAllocator) Available() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.free)
}

func (a *HandleAllocator) SlabSize() int {
	return len(a.slab)
}

// Fallbacks counts Get calls served by the heap.
func (a *HandleAllocator) Fallbacks() int64 {
	return a.fallbacks.Load()
}
