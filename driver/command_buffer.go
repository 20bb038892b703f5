package driver

import (
	"sync/atomic"

	"github.com/TheBitDrifter/snowflake/rc"
)

// CommandBuffer is a recording handle shared through rc.Ref. Releasing the last
// reference returns the object to its HandleAllocator; the device buffer itself
// is reclaimed when its frame slot is reset.
type CommandBuffer struct {
	rc.MultiThreaded

	handle    CommandBufferHandle
	kind      QueueKind
	thread    int
	frame     *FrameData
	epoch     uint64
	submitted atomic.Bool
	slabbed   bool
}

func (cb *CommandBuffer) Handle() CommandBufferHandle {
	return cb.handle
}

func (cb *CommandBuffer) Kind() QueueKind {
	return cb.kind
}

// Thread returns the index of the recording thread whose pool produced the buffer.
func (cb *CommandBuffer) Thread() int {
	return cb.thread
}

// Slot returns the frame slot the buffer belongs to.
func (cb *CommandBuffer) Slot() int {
	return cb.frame.slot
}

func (cb *CommandBuffer) stale() bool {
	return cb.frame.epoch.Load() != cb.epoch
}

func (cb *CommandBuffer) clear() {
	cb.handle = 0
	cb.kind = 0
	cb.thread = 0
	cb.frame = nil
	cb.epoch = 0
	cb.submitted.Store(false)
}
