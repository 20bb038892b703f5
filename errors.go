package snowflake

import (
	"fmt"
	"reflect"
)

type LockedManagerError struct{}

func (e LockedManagerError) Error() string {
	return "entity manager is currently locked"
}

// ContractViolationError is raised, only in snowflakedebug builds, when a caller breaks
// a precondition of a hot-path operation.
type ContractViolationError struct {
	Op     string
	Entity Entity
	Reason string
}

func (e ContractViolationError) Error() string {
	return fmt.Sprintf("%s(%v): %s", e.Op, e.Entity, e.Reason)
}

type InvalidPageSizeError struct {
	Size int
}

func (e InvalidPageSizeError) Error() string {
	return fmt.Sprintf("page size must be a positive power of two, got %d", e.Size)
}

type ComponentNotFoundError struct {
	Component reflect.Type
	Entity    Entity
}

func (e ComponentNotFoundError) Error() string {
	return fmt.Sprintf("component does not exist on entity %v: %v", e.Entity, e.Component)
}

type CacheCapacityError struct {
	Limit int
}

func (e CacheCapacityError) Error() string {
	return fmt.Sprintf("cache at maximum capacity (%d)", e.Limit)
}

type StaticIDRangeError struct {
	Component reflect.Type
	ID        ComponentID
}

func (e StaticIDRangeError) Error() string {
	return fmt.Sprintf("static id %d of %v exceeds MaxStaticComponents (%d)", e.ID, e.Component, MaxStaticComponents)
}

type PoolTypeError struct {
	ID   ComponentID
	Want reflect.Type
	Got  reflect.Type
}

func (e PoolTypeError) Error() string {
	return fmt.Sprintf("pool %d holds %v, not %v", e.ID, e.Got, e.Want)
}
