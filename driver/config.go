package driver

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config sizes the frame pipeline.
type Config struct {
	// FrameContexts is the number of frames in flight.
	FrameContexts int `yaml:"frame_contexts"`
	// Threads is the number of recording threads; each gets its own pool per queue kind.
	Threads int `yaml:"threads"`
	// MaxAcquireRetries bounds swapchain reinitialisations inside one BeginFrame.
	MaxAcquireRetries int `yaml:"max_acquire_retries"`
	// AllocationBatch is how many buffers a pool allocates when it runs dry.
	AllocationBatch int `yaml:"allocation_batch"`
	// HandleSlab is the number of preallocated CommandBuffer objects.
	HandleSlab int `yaml:"handle_slab"`
}

func DefaultConfig() Config {
	return Config{
		FrameContexts:     3,
		Threads:           runtime.NumCPU(),
		MaxAcquireRetries: 4,
		AllocationBatch:   4,
		HandleSlab:        256,
	}
}

// LoadConfig decodes yaml over DefaultConfig and validates the result.
// Unknown keys are rejected.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode driver config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.FrameContexts < 1:
		return ConfigError{Field: "frame_contexts", Reason: "must be at least 1"}
	case c.Threads < 1:
		return ConfigError{Field: "threads", Reason: "must be at least 1"}
	case c.MaxAcquireRetries < 0:
		return ConfigError{Field: "max_acquire_retries", Reason: "must not be negative"}
	case c.AllocationBatch < 1:
		return ConfigError{Field: "allocation_batch", Reason: "must be at least 1"}
	case c.HandleSlab < 0:
		return ConfigError{Field: "handle_slab", Reason: "must not be negative"}
	}
	return nil
}
