package driver

// threadPool is one device command pool used by a single recording thread.
// Buffers below used are handed out for the current rotation; the rest are
// reset buffers waiting for reuse.
type threadPool struct {
	handle  CommandPoolHandle
	buffers []CommandBufferHandle
	used    int
	batch   int
}

func (p *threadPool) request(device Device) (CommandBufferHandle, error) {
	if p.used == len(p.buffers) {
		allocated, err := device.AllocateCommandBuffers(p.handle, p.batch)
		if err != nil {
			return 0, ResourceError{Op: "allocate command buffers", Err: err}
		}
		p.buffers = append(p.buffers, allocated...)
	}
	buffer := p.buffers[p.used]
	p.used++
	return buffer, nil
}

func (p *threadPool) reset(device Device) error {
	if p.used == 0 {
		return nil
	}
	if err := device.ResetCommandPool(p.handle); err != nil {
		return ResourceError{Op: "reset command pool", Err: err}
	}
	p.used = 0
	return nil
}

func (p *threadPool) destroy(device Device) {
	if len(p.buffers) > 0 {
		device.FreeCommandBuffers(p.handle, p.buffers)
	}
	device.DestroyCommandPool(p.handle)
	p.buffers = nil
	p.used = 0
}

// CommandPools holds the per-thread pools of one queue kind within a frame slot.
type CommandPools struct {
	kind  QueueKind
	pools []threadPool
}

func newCommandPools(device Device, kind QueueKind, family uint32, threads, batch int) (*CommandPools, error) {
	cp := &CommandPools{
		kind:  kind,
		pools: make([]threadPool, 0, threads),
	}
	for i := 0; i < threads; i++ {
		handle, err := device.CreateCommandPool(family)
		if err != nil {
			cp.destroy(device)
			return nil, ResourceError{Op: "create " + kind.String() + " command pool", Err: err}
		}
		cp.pools = append(cp.pools, threadPool{handle: handle, batch: batch})
	}
	return cp, nil
}

// request hands out a buffer from thread's pool, allocating when it is exhausted.
// Different threads may call it concurrently.
func (cp *CommandPools) request(device Device, thread int) (CommandBufferHandle, error) {
	return cp.pools[thread].request(device)
}

func (cp *CommandPools) reset(device Device) error {
	for i := range cp.pools {
		if err := cp.pools[i].reset(device); err != nil {
			return err
		}
	}
	return nil
}

func (cp *CommandPools) destroy(device Device) {
	for i := range cp.pools {
		cp.pools[i].destroy(device)
	}
	cp.pools = nil
}

func (cp *CommandPools) Kind() QueueKind {
	return cp.kind
}

func (cp *CommandPools) Threads() int {
	return len(cp.pools)
}

// Allocated returns how many device buffers the pools own in total.
func (cp *CommandPools) Allocated() int {
	n := 0
	for i := range cp.pools {
		n += len(cp.pools[i].buffers)
	}
	return n
}

// InUse returns how many buffers were handed out since the last reset.
func (cp *CommandPools) InUse() int {
	n := 0
	for i := range cp.pools {
		n += cp.pools[i].used
	}
	return n
}
