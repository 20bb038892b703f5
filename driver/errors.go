package driver

import (
	"errors"
	"fmt"
)

var (
	ErrClosed           = errors.New("driver closed")
	ErrInvalidHandle    = errors.New("invalid command buffer reference")
	ErrAlreadySubmitted = errors.New("command buffer already submitted")
)

// QueueFamilyError is returned by New when the device has no graphics queue.
type QueueFamilyError struct {
	Kind QueueKind
}

func (e QueueFamilyError) Error() string {
	return fmt.Sprintf("no queue family for %s queue", e.Kind)
}

// ResourceError wraps a failed device call.
type ResourceError struct {
	Op  string
	Err error
}

func (e ResourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e ResourceError) Unwrap() error {
	return e.Err
}

type ConfigError struct {
	Field  string
	Reason string
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}

type InvalidThreadError struct {
	Thread  int
	Threads int
}

func (e InvalidThreadError) Error() string {
	return fmt.Sprintf("thread index %d out of range [0, %d)", e.Thread, e.Threads)
}

// StaleCommandBufferError is returned when a buffer outlives the frame slot
// reset that reclaimed its pool.
type StaleCommandBufferError struct {
	Slot int
}

func (e StaleCommandBufferError) Error() string {
	return fmt.Sprintf("command buffer from frame slot %d was reclaimed by a reset", e.Slot)
}

// AcquireRetryError is returned when the swapchain stays out of date after
// every allowed reinitialisation.
type AcquireRetryError struct {
	Attempts int
}

func (e AcquireRetryError) Error() string {
	return fmt.Sprintf("swapchain still out of date after %d reinitialisations", e.Attempts)
}

func (e AcquireRetryError) Unwrap() error {
	return ErrOutOfDate
}
