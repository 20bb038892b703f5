package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/TheBitDrifter/snowflake/driver"
	"gopkg.in/yaml.v3"
)

type SceneConfig struct {
	// Entities is the population spawned before the first frame.
	Entities int `yaml:"entities"`
	// SpawnPerFrame replaces expired entities.
	SpawnPerFrame int `yaml:"spawn_per_frame"`
	// Lifetime is how many frames an entity lives.
	Lifetime int `yaml:"lifetime"`
	// Seed makes spawning deterministic.
	Seed uint64 `yaml:"seed"`
}

type Config struct {
	LogLevel string        `yaml:"log_level"`
	Frames   int           `yaml:"frames"`
	Width    int           `yaml:"width"`
	Height   int           `yaml:"height"`
	Scene    SceneConfig   `yaml:"scene"`
	Driver   driver.Config `yaml:"driver"`
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Frames:   600,
		Width:    1280,
		Height:   720,
		Scene: SceneConfig{
			Entities:      2048,
			SpawnPerFrame: 16,
			Lifetime:      240,
			Seed:          1,
		},
		Driver: driver.DefaultConfig(),
	}
}

func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadConfigFile(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return LoadConfig(f)
}

func (c Config) Validate() error {
	switch {
	case c.Frames < 0:
		return fmt.Errorf("frames must not be negative, got %d", c.Frames)
	case c.Scene.Entities < 0 || c.Scene.SpawnPerFrame < 0:
		return errors.New("scene population must not be negative")
	case c.Scene.Lifetime < 1:
		return fmt.Errorf("scene lifetime must be at least 1, got %d", c.Scene.Lifetime)
	}
	return c.Driver.Validate()
}
