package driver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/TheBitDrifter/snowflake/internal/log"
	"github.com/TheBitDrifter/snowflake/rc"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type Option func(*Driver)

func WithLogger(logger log.Log) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

// WithAllocator shares one HandleAllocator between drivers.
func WithAllocator(allocator *HandleAllocator) Option {
	return func(d *Driver) {
		d.allocator = allocator
	}
}

// Driver rotates FrameData slots and hands out command buffers for the current one.
//
// BeginFrame, EndFrame and Close belong to the frame loop's goroutine.
// RequestCommandBuffer, Submit and Discard may be called from recording threads,
// each thread using its own thread index.
type Driver struct {
	id       uuid.UUID
	cfg      Config
	device   Device
	platform Platform
	surface  Surface
	logger   log.Log

	frames     []*FrameData
	frameIndex int
	image      uint32
	acquired   bool
	closed     bool

	allocator *HandleAllocator
	submitMu  [NumQueueKinds]sync.Mutex
}

// New builds the frame slots. A device without a graphics queue is an error;
// missing compute or transfer queues fall back to the graphics family.
func New(cfg Config, device Device, platform Platform, surface Surface, opts ...Option) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Driver{
		id:       uuid.New(),
		cfg:      cfg,
		device:   device,
		platform: platform,
		surface:  surface,
		logger:   log.Provide(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With(log.String("driver", d.id.String()))
	if d.allocator == nil {
		d.allocator = NewHandleAllocator(cfg.HandleSlab)
	}

	families, err := d.resolveFamilies()
	if err != nil {
		return nil, err
	}

	d.frames = make([]*FrameData, 0, cfg.FrameContexts)
	for slot := 0; slot < cfg.FrameContexts; slot++ {
		frame, err := newFrameData(device, slot, families, cfg)
		if err != nil {
			d.destroyFrames()
			return nil, fmt.Errorf("frame slot %d: %w", slot, err)
		}
		d.frames = append(d.frames, frame)
	}
	// The first BeginFrame advances onto slot 0.
	d.frameIndex = cfg.FrameContexts - 1

	d.logger.Info("driver ready",
		log.Int("frame_contexts", cfg.FrameContexts),
		log.Int("threads", cfg.Threads),
	)
	return d, nil
}

func (d *Driver) resolveFamilies() ([NumQueueKinds]uint32, error) {
	var families [NumQueueKinds]uint32
	graphics, ok := d.device.QueueFamily(Graphics)
	if !ok {
		return families, QueueFamilyError{Kind: Graphics}
	}
	for _, kind := range queueKinds {
		family, ok := d.device.QueueFamily(kind)
		if !ok {
			d.logger.Debug("queue kind shares the graphics family", log.Stringer("kind", kind))
			family = graphics
		}
		families[kind] = family
	}
	return families, nil
}

// BeginFrame moves to the next frame slot and acquires a swapchain image.
// It returns false when the frame must be skipped: the platform is gone, the
// slot could not be reset, or no image could be acquired.
func (d *Driver) BeginFrame() bool {
	if d.closed {
		return false
	}
	if d.acquired {
		d.logger.Warn("begin frame without end frame", log.Int("frame", d.frameIndex))
		d.acquired = false
	}

	d.frameIndex = (d.frameIndex + 1) % len(d.frames)
	frame := d.frames[d.frameIndex]
	if n := frame.Outstanding(); n > 0 {
		d.logger.Warn("frame slot reset with unsubmitted command buffers",
			log.Int("frame", d.frameIndex),
			log.Int64("outstanding", n),
		)
	}
	d.lockQueues()
	values := frame.retire()
	d.unlockQueues()
	if err := frame.reset(values); err != nil {
		d.logger.Error("frame slot reset failed", log.Int("frame", d.frameIndex), log.Error(err))
		return false
	}

	d.platform.PollInput()
	if !d.platform.IsAlive() {
		return false
	}

	image, err := d.acquire()
	if err != nil {
		d.logger.Warn("skipping frame", log.Int("frame", d.frameIndex), log.Error(err))
		return false
	}
	d.image = image
	d.acquired = true
	return true
}

func (d *Driver) acquire() (uint32, error) {
	for attempt := 0; ; attempt++ {
		image, err := d.surface.AcquireNextImage()
		if err == nil {
			return image, nil
		}
		if !errors.Is(err, ErrOutOfDate) {
			return 0, fmt.Errorf("acquire image: %w", err)
		}
		if attempt >= d.cfg.MaxAcquireRetries {
			return 0, AcquireRetryError{Attempts: attempt}
		}
		d.logger.Info("swapchain out of date, reinitialising", log.Int("attempt", attempt+1))
		if err := d.surface.Reinitialize(); err != nil {
			return 0, fmt.Errorf("reinitialise swapchain: %w", err)
		}
	}
}

// RequestCommandBuffer begins recording a buffer from thread's pool of kind in
// the current frame slot. The returned reference must be passed to Submit or Discard.
func (d *Driver) RequestCommandBuffer(kind QueueKind, thread int) (rc.Ref[*CommandBuffer], error) {
	if d.closed {
		return rc.Ref[*CommandBuffer]{}, ErrClosed
	}
	if !kind.Valid() {
		return rc.Ref[*CommandBuffer]{}, fmt.Errorf("request command buffer: unknown %s", kind)
	}
	if thread < 0 || thread >= d.cfg.Threads {
		return rc.Ref[*CommandBuffer]{}, InvalidThreadError{Thread: thread, Threads: d.cfg.Threads}
	}

	frame := d.frames[d.frameIndex]
	handle, err := frame.pools[kind].request(d.device, thread)
	if err != nil {
		return rc.Ref[*CommandBuffer]{}, err
	}
	if err := d.device.BeginCommandBuffer(handle); err != nil {
		return rc.Ref[*CommandBuffer]{}, ResourceError{Op: "begin command buffer", Err: err}
	}
	frame.outstanding.Add(1)

	cb := d.allocator.Get()
	cb.handle = handle
	cb.kind = kind
	cb.thread = thread
	cb.frame = frame
	cb.epoch = frame.epoch.Load()
	return rc.New(cb, d.allocator.Put), nil
}

// Submit ends recording and submits the buffer, signalling its frame slot's
// timeline. It always releases ref, even on failure.
func (d *Driver) Submit(ref *rc.Ref[*CommandBuffer]) error {
	cb, err := d.settle(ref)
	if err != nil {
		return err
	}
	defer ref.Release()

	if err := d.device.EndCommandBuffer(cb.handle); err != nil {
		return ResourceError{Op: "end command buffer", Err: err}
	}

	frame := cb.frame
	d.submitMu[cb.kind].Lock()
	defer d.submitMu[cb.kind].Unlock()
	// The slot may have been retired since settle; its reset wait no longer covers us.
	if cb.stale() {
		return StaleCommandBufferError{Slot: frame.slot}
	}
	value := frame.signal(cb.kind)
	if err := d.device.Submit(cb.kind, cb.handle, frame.timelines[cb.kind], value); err != nil {
		return ResourceError{Op: "submit " + cb.kind.String(), Err: err}
	}
	frame.commit(cb.kind, value)
	return nil
}

// Discard ends recording without submitting and releases ref.
func (d *Driver) Discard(ref *rc.Ref[*CommandBuffer]) error {
	cb, err := d.settle(ref)
	if err != nil {
		return err
	}
	defer ref.Release()

	if err := d.device.EndCommandBuffer(cb.handle); err != nil {
		return ResourceError{Op: "end command buffer", Err: err}
	}
	return nil
}

// settle marks the buffer as no longer outstanding.
func (d *Driver) settle(ref *rc.Ref[*CommandBuffer]) (*CommandBuffer, error) {
	if ref == nil || !ref.Valid() {
		return nil, ErrInvalidHandle
	}
	cb := ref.Get()
	if cb.stale() {
		slot := cb.frame.slot
		ref.Release()
		return nil, StaleCommandBufferError{Slot: slot}
	}
	// Clones of one ref may race here; exactly one caller claims the buffer.
	if !cb.submitted.CompareAndSwap(false, true) {
		ref.Release()
		return nil, ErrAlreadySubmitted
	}
	cb.frame.outstanding.Add(-1)
	return cb, nil
}

func (d *Driver) lockQueues() {
	for i := range d.submitMu {
		d.submitMu[i].Lock()
	}
}

func (d *Driver) unlockQueues() {
	for i := range d.submitMu {
		d.submitMu[i].Unlock()
	}
}

// RecordFunc records into cb on behalf of one thread.
type RecordFunc func(ctx context.Context, thread int, cb *CommandBuffer) error

// Record fans recording out over every thread, one buffer of kind per thread,
// and submits each buffer whose RecordFunc succeeds. It returns the first error.
func (d *Driver) Record(ctx context.Context, kind QueueKind, fn RecordFunc) error {
	g, ctx := errgroup.WithContext(ctx)
	for thread := 0; thread < d.cfg.Threads; thread++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ref, err := d.RequestCommandBuffer(kind, thread)
			if err != nil {
				return err
			}
			if err := fn(ctx, thread, ref.Get()); err != nil {
				if derr := d.Discard(&ref); derr != nil {
					d.logger.Warn("discard failed", log.Int("thread", thread), log.Error(derr))
				}
				return fmt.Errorf("record thread %d: %w", thread, err)
			}
			return d.Submit(&ref)
		})
	}
	return g.Wait()
}

// EndFrame presents the image acquired by BeginFrame. An out-of-date swapchain is
// reinitialised and still counts as success.
func (d *Driver) EndFrame() bool {
	if !d.acquired {
		return false
	}
	d.acquired = false

	err := d.surface.Present(d.image)
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrOutOfDate):
		d.logger.Info("swapchain out of date at present, reinitialising")
		if err := d.surface.Reinitialize(); err != nil {
			d.logger.Error("swapchain reinitialisation failed", log.Error(err))
			return false
		}
		return true
	default:
		d.logger.Error("present failed", log.Int("frame", d.frameIndex), log.Error(err))
		return false
	}
}

// Close waits for the device to go idle and destroys every frame slot.
func (d *Driver) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	err := d.device.WaitIdle()
	d.destroyFrames()
	d.logger.Info("driver closed")
	if err != nil {
		return ResourceError{Op: "wait idle", Err: err}
	}
	return nil
}

func (d *Driver) destroyFrames() {
	for _, frame := range d.frames {
		frame.Destroy()
	}
	d.frames = nil
}

func (d *Driver) ID() uuid.UUID {
	return d.id
}

func (d *Driver) Config() Config {
	return d.cfg
}

func (d *Driver) FrameIndex() int {
	return d.frameIndex
}

func (d *Driver) FrameContexts() int {
	return len(d.frames)
}

// Current returns the frame slot BeginFrame last moved to.
func (d *Driver) Current() *FrameData {
	return d.frames[d.frameIndex]
}

// Image returns the swapchain image acquired by the last successful BeginFrame.
func (d *Driver) Image() uint32 {
	return d.image
}

// Outstanding sums unsubmitted buffers across every frame slot.
func (d *Driver) Outstanding() int64 {
	var n int64
	for _, frame := range d.frames {
		n += frame.Outstanding()
	}
	return n
}

func (d *Driver) Allocator() *HandleAllocator {
	return d.allocator
}

func (d *Driver) Platform() Platform {
	return d.platform
}
