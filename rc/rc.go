// Package rc provides intrusive reference counting.
//
// An object opts in by embedding a tracker, SingleThreaded when every Retain and
// Release happens on one goroutine, MultiThreaded otherwise. A Ref owns one count
// on the object and runs its deleter exactly once, after the final Release.
//
// MultiThreaded uses sync/atomic, whose operations are sequentially consistent.
// The decrement that observes zero therefore happens after every earlier
// decrement, and the deleter, which runs on that goroutine, never overlaps a
// concurrent final drop.
package rc

import (
	"fmt"
	"sync/atomic"
)

// Tracker counts references to the object that embeds it.
type Tracker interface {
	Retain()
	// Release drops one reference and reports whether it was the last.
	Release() bool
	Count() int64
}

// SingleThreaded is a plain counter. It must not be shared across goroutines.
type SingleThreaded struct {
	count int64
}

func (t *SingleThreaded) Retain() {
	t.count++
}

func (t *SingleThreaded) Release() bool {
	t.count--
	if t.count < 0 {
		panic(fmt.Sprintf("rc: release of unretained object (count %d)", t.count))
	}
	return t.count == 0
}

func (t *SingleThreaded) Count() int64 {
	return t.count
}

// MultiThreaded is an atomic counter, safe for concurrent Retain and Release.
type MultiThreaded struct {
	count atomic.Int64
}

func (t *MultiThreaded) Retain() {
	t.count.Add(1)
}

func (t *MultiThreaded) Release() bool {
	n := t.count.Add(-1)
	if n < 0 {
		panic(fmt.Sprintf("rc: release of unretained object (count %d)", n))
	}
	return n == 0
}

func (t *MultiThreaded) Count() int64 {
	return t.count.Load()
}

// Ref is an owning handle on a tracked object. Copying a Ref does not retain;
// use Clone for a second owner.
type Ref[T Tracker] struct {
	obj     T
	deleter func(T)
	valid   bool
}

// New takes the first reference on obj. deleter may be nil.
func New[T Tracker](obj T, deleter func(T)) Ref[T] {
	obj.Retain()
	return Ref[T]{obj: obj, deleter: deleter, valid: true}
}

// Clone retains the object and returns a second owner.
func (r Ref[T]) Clone() Ref[T] {
	if !r.valid {
		return Ref[T]{}
	}
	r.obj.Retain()
	return r
}

// Release drops this reference and invalidates r. Releasing an invalid Ref is a no-op.
func (r *Ref[T]) Release() {
	if !r.valid {
		return
	}
	obj, deleter := r.obj, r.deleter
	*r = Ref[T]{}
	if obj.Release() && deleter != nil {
		deleter(obj)
	}
}

// Get returns the referenced object. The result is the zero T for an invalid Ref.
func (r Ref[T]) Get() T {
	return r.obj
}

func (r Ref[T]) Valid() bool {
	return r.valid
}
