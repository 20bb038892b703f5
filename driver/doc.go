/*
Package driver implements the frame-in-flight command buffer pipeline.

A Driver keeps N FrameData slots in a ring. Each slot owns one command pool per
queue kind per worker thread and one timeline semaphore per queue kind.

	BeginFrame  advance the ring, wait for the slot's GPU work, reset its pools,
	            poll input, acquire a swapchain image
	RequestCommandBuffer(kind, thread)
	            take a buffer from the thread's pool and begin recording
	Submit      end recording and submit, tagged with the slot's timeline
	EndFrame    present the acquired image

Command buffers are handed out as rc.Ref values. The CommandBuffer objects come
from a HandleAllocator, so running out of GPU buffers and running out of handle
objects are independent events. GPU buffers go back to their pool only when the
owning slot is reset, after its timelines have been waited on.

The graphics API itself stays behind the Device, Platform and Surface interfaces.
Package headless provides in-memory implementations.

BeginFrame and EndFrame report failure as false: the caller skips that frame.
The semaphore wait inside a reset has no timeout, so a stalled queue stalls the
calling goroutine.
*/
package driver
