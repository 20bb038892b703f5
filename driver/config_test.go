package driver

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(`
frame_contexts: 2
threads: 4
max_acquire_retries: 1
`))
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.FrameContexts)
	assert.Equal(t, 4, cfg.Threads)
	assert.Equal(t, 1, cfg.MaxAcquireRetries)
	assert.Equal(t, DefaultConfig().AllocationBatch, cfg.AllocationBatch, "unset keys keep their defaults")
	assert.Equal(t, DefaultConfig().HandleSlab, cfg.HandleSlab)
}

func TestLoadConfigEmpty(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigUnknownKey(t *testing.T) {
	_, err := LoadConfig(strings.NewReader("frame_context: 2\n"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"no frames", func(c *Config) { c.FrameContexts = 0 }, "frame_contexts"},
		{"no threads", func(c *Config) { c.Threads = 0 }, "threads"},
		{"negative retries", func(c *Config) { c.MaxAcquireRetries = -1 }, "max_acquire_retries"},
		{"empty batch", func(c *Config) { c.AllocationBatch = 0 }, "allocation_batch"},
		{"negative slab", func(c *Config) { c.HandleSlab = -1 }, "handle_slab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			var cfgErr ConfigError
			require.True(t, errors.As(cfg.Validate(), &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)

			_, err := LoadConfig(strings.NewReader(tt.field + ": -5\n"))
			assert.Error(t, err)
		})
	}

	assert.NoError(t, DefaultConfig().Validate())
}

func TestQueueKindString(t *testing.T) {
	assert.Equal(t, "graphics", Graphics.String())
	assert.Equal(t, "compute", Compute.String())
	assert.Equal(t, "transfer", Transfer.String())
	assert.Equal(t, "QueueKind(7)", QueueKind(7).String())
	assert.False(t, QueueKind(3).Valid())
}

func TestHandleAllocator(t *testing.T) {
	a := NewHandleAllocator(2)
	require.Equal(t, 2, a.Available())

	first := a.Get()
	second := a.Get()
	third := a.Get()

	assert.True(t, first.slabbed)
	assert.True(t, second.slabbed)
	assert.False(t, third.slabbed)
	assert.Zero(t, a.Available())
	assert.EqualValues(t, 1, a.Fallbacks())

	first.handle = 9
	first.submitted.Store(true)
	a.Put(first)
	a.Put(second)
	a.Put(third)

	assert.Equal(t, 2, a.Available())
	again := a.Get()
	assert.Same(t, second, again, "slab objects are reused last in, first out")
	assert.Zero(t, first.handle)
	assert.False(t, first.submitted.Load())
}
