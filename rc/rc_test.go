package rc

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sharedObject struct {
	MultiThreaded
	payload int
}

type localObject struct {
	SingleThreaded
}

func TestRefLifetime(t *testing.T) {
	var deleted int
	obj := &localObject{}

	ref := New(obj, func(*localObject) { deleted++ })
	require.True(t, ref.Valid())
	assert.EqualValues(t, 1, obj.Count())

	clone := ref.Clone()
	assert.EqualValues(t, 2, obj.Count())
	assert.Same(t, obj, clone.Get())

	ref.Release()
	assert.False(t, ref.Valid())
	assert.Zero(t, deleted)

	ref.Release()
	assert.EqualValues(t, 1, obj.Count(), "second release of an invalid ref must be a no-op")

	clone.Release()
	assert.Equal(t, 1, deleted)
	assert.Zero(t, obj.Count())
}

func TestZeroRef(t *testing.T) {
	var ref Ref[*sharedObject]
	assert.False(t, ref.Valid())
	assert.Nil(t, ref.Get())
	assert.False(t, ref.Clone().Valid())
	assert.NotPanics(t, ref.Release)
}

func TestReleaseUnretainedPanics(t *testing.T) {
	assert.Panics(t, func() { (&MultiThreaded{}).Release() })
	assert.Panics(t, func() { (&SingleThreaded{}).Release() })
}

// TestConcurrentRefs clones one handle across many goroutines and drops all but
// one reference, then checks the deleter runs exactly once on the final drop.
func TestConcurrentRefs(t *testing.T) {
	const goroutines = 64
	const rounds = 1000

	var deleted atomic.Int32
	obj := &sharedObject{payload: 42}
	root := New(obj, func(o *sharedObject) {
		assert.Zero(t, o.Count())
		deleted.Add(1)
	})

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < goroutines; i++ {
		clone := root.Clone()
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for j := 0; j < rounds; j++ {
				extra := clone.Clone()
				_ = extra.Get().payload
				extra.Release()
			}
			clone.Release()
		}()
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, 1, obj.Count())
	assert.Zero(t, deleted.Load())

	root.Release()
	assert.EqualValues(t, 1, deleted.Load())
}

// TestConcurrentFinalDrop races the last references against each other.
func TestConcurrentFinalDrop(t *testing.T) {
	const goroutines = 32

	for round := 0; round < 200; round++ {
		var deleted atomic.Int32
		root := New(&sharedObject{}, func(*sharedObject) { deleted.Add(1) })

		refs := make([]Ref[*sharedObject], goroutines)
		for i := range refs {
			refs[i] = root.Clone()
		}
		root.Release()

		var wg sync.WaitGroup
		for i := range refs {
			wg.Add(1)
			go func(r *Ref[*sharedObject]) {
				defer wg.Done()
				r.Release()
			}(&refs[i])
		}
		wg.Wait()

		require.EqualValues(t, 1, deleted.Load(), "round %d", round)
	}
}
