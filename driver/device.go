package driver

import "errors"

// Opaque handles owned by the device implementation.
type (
	CommandPoolHandle   uintptr
	CommandBufferHandle uintptr
	SemaphoreHandle     uintptr
)

// Device is the slice of a graphics device the frame pipeline depends on.
// Calls for different pools may arrive from different goroutines at once;
// Submit calls for one queue kind are serialised by the driver.
type Device interface {
	// QueueFamily returns the queue family serving kind, if the device has one.
	QueueFamily(kind QueueKind) (uint32, bool)

	CreateCommandPool(family uint32) (CommandPoolHandle, error)
	DestroyCommandPool(pool CommandPoolHandle)
	ResetCommandPool(pool CommandPoolHandle) error
	AllocateCommandBuffers(pool CommandPoolHandle, count int) ([]CommandBufferHandle, error)
	FreeCommandBuffers(pool CommandPoolHandle, buffers []CommandBufferHandle)

	BeginCommandBuffer(buffer CommandBufferHandle) error
	EndCommandBuffer(buffer CommandBufferHandle) error

	CreateTimelineSemaphore(initial uint64) (SemaphoreHandle, error)
	DestroySemaphore(semaphore SemaphoreHandle)
	// WaitSemaphores blocks until every semaphore reaches its value or timeout
	// nanoseconds pass.
	WaitSemaphores(semaphores []SemaphoreHandle, values []uint64, timeout uint64) error

	// Submit queues buffer on the kind's queue and signals semaphore to value
	// once the GPU work retires.
	Submit(kind QueueKind, buffer CommandBufferHandle, semaphore SemaphoreHandle, value uint64) error
	WaitIdle() error
}

// Platform is the window and input provider.
type Platform interface {
	IsAlive() bool
	// PollInput drains pending events. It may flip IsAlive to false.
	PollInput()
	Resize(width, height int)
	SetTitle(title string)
}

// Surface is the presentation layer owning the swapchain.
type Surface interface {
	AcquireNextImage() (uint32, error)
	Present(image uint32) error
	Reinitialize() error
}

// ErrOutOfDate is returned by a Surface whose swapchain no longer matches the window.
var ErrOutOfDate = errors.New("swapchain out of date")
