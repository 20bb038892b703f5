package headless

import (
	"errors"
	"testing"

	"github.com/TheBitDrifter/snowflake/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceBufferStates(t *testing.T) {
	d := NewDevice()
	pool, err := d.CreateCommandPool(0)
	require.NoError(t, err)
	sem, err := d.CreateTimelineSemaphore(0)
	require.NoError(t, err)

	buffers, err := d.AllocateCommandBuffers(pool, 2)
	require.NoError(t, err)
	require.Len(t, buffers, 2)
	b := buffers[0]

	assert.Error(t, d.EndCommandBuffer(b), "end before begin")
	assert.Error(t, d.Submit(driver.Graphics, b, sem, 1), "submit before end")

	require.NoError(t, d.BeginCommandBuffer(b))
	assert.Error(t, d.BeginCommandBuffer(b), "begin twice")
	require.NoError(t, d.EndCommandBuffer(b))
	require.NoError(t, d.Submit(driver.Graphics, b, sem, 1))

	assert.Error(t, d.BeginCommandBuffer(b), "begin before pool reset")
	require.NoError(t, d.ResetCommandPool(pool))
	assert.NoError(t, d.BeginCommandBuffer(b))
}

func TestDeviceTimelines(t *testing.T) {
	d := NewDevice()
	pool, _ := d.CreateCommandPool(0)
	sem, _ := d.CreateTimelineSemaphore(0)
	buffers, _ := d.AllocateCommandBuffers(pool, 1)
	b := buffers[0]

	assert.NoError(t, d.WaitSemaphores([]driver.SemaphoreHandle{sem}, []uint64{0}, 0))
	assert.ErrorIs(t, d.WaitSemaphores([]driver.SemaphoreHandle{sem}, []uint64{1}, 0), ErrWouldBlock)

	require.NoError(t, d.BeginCommandBuffer(b))
	require.NoError(t, d.EndCommandBuffer(b))
	require.NoError(t, d.Submit(driver.Compute, b, sem, 2))
	assert.NoError(t, d.WaitSemaphores([]driver.SemaphoreHandle{sem}, []uint64{2}, 0))

	require.NoError(t, d.ResetCommandPool(pool))
	require.NoError(t, d.BeginCommandBuffer(b))
	require.NoError(t, d.EndCommandBuffer(b))
	assert.Error(t, d.Submit(driver.Compute, b, sem, 2), "timeline values must increase")
	assert.Equal(t, 1, d.Submissions(driver.Compute))
}

func TestDeviceTeardown(t *testing.T) {
	d := NewDevice()
	pool, _ := d.CreateCommandPool(3)
	buffers, _ := d.AllocateCommandBuffers(pool, 4)
	assert.Equal(t, 4, d.Buffers())
	assert.Equal(t, map[uint32]int{3: 1}, d.PoolFamilies())

	d.FreeCommandBuffers(pool, buffers[:2])
	assert.Equal(t, 2, d.Buffers())
	d.DestroyCommandPool(pool)
	assert.Zero(t, d.Buffers())
	assert.Zero(t, d.Pools())
	assert.Equal(t, 4, d.Allocations())

	d.FailCreatePool = errors.New("no pools")
	_, err := d.CreateCommandPool(0)
	assert.ErrorIs(t, err, d.FailCreatePool)
}

func TestPlatformBudget(t *testing.T) {
	p := NewPlatform(640, 480, 1)
	p.PollInput()
	assert.True(t, p.IsAlive())
	p.PollInput()
	assert.False(t, p.IsAlive())

	p.Resize(1280, 720)
	p.SetTitle("glow")
	w, h := p.Size()
	assert.Equal(t, 1280, w)
	assert.Equal(t, 720, h)
	assert.Equal(t, "glow", p.Title())

	forever := NewPlatform(1, 1, -1)
	for i := 0; i < 100; i++ {
		forever.PollInput()
	}
	assert.True(t, forever.IsAlive())
	forever.Close()
	assert.False(t, forever.IsAlive())
}

func TestSurface(t *testing.T) {
	s := NewSurface(2)
	s.StaleAcquires = 1

	_, err := s.AcquireNextImage()
	assert.ErrorIs(t, err, driver.ErrOutOfDate)

	for _, want := range []uint32{0, 1, 0} {
		image, err := s.AcquireNextImage()
		require.NoError(t, err)
		assert.Equal(t, want, image)
		require.NoError(t, s.Present(image))
	}
	assert.Equal(t, []uint32{0, 1, 0}, s.Presented())

	require.NoError(t, s.Reinitialize())
	image, _ := s.AcquireNextImage()
	assert.Zero(t, image)
	assert.Equal(t, 1, s.Reinitializations())
}
