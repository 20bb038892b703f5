package main

import (
	"context"
	"strings"
	"testing"

	"github.com/TheBitDrifter/snowflake/internal/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSceneConfig() SceneConfig {
	return SceneConfig{Entities: 64, SpawnPerFrame: 0, Lifetime: 10, Seed: 7}
}

func TestSceneSpawn(t *testing.T) {
	scene := NewScene(testSceneConfig())

	assert.Equal(t, 64, scene.Active())
	assert.Len(t, scene.Drawables(), 64)
	assert.Equal(t, 32, scene.spin.Storage(scene.manager).Size())
}

func TestSceneUpdateMoves(t *testing.T) {
	scene := NewScene(testSceneConfig())
	e := scene.Drawables()[0]
	scene.lifetime.Get(scene.manager, e).Remaining = 100
	before := scene.transform.Get(scene.manager, e).Position
	velocity := scene.velocity.Get(scene.manager, e).Linear

	scene.Update(0.5)

	after := scene.transform.Get(scene.manager, e).Position
	assert.True(t, after.ApproxEqual(before.Add(velocity.Mul(0.5))), "got %v", after)
}

// TestSceneLifetime runs past the longest lifetime; every entity expires and
// is destroyed across all of its pools.
func TestSceneLifetime(t *testing.T) {
	cfg := testSceneConfig()
	scene := NewScene(cfg)

	for i := 0; i < cfg.Lifetime; i++ {
		scene.Update(1.0 / 60)
	}

	assert.Zero(t, scene.Active())
	assert.Equal(t, cfg.Entities, scene.Expired())
	assert.Zero(t, scene.transform.Storage(scene.manager).Size())
	assert.Zero(t, scene.renderable.Storage(scene.manager).Size())
	assert.Empty(t, scene.Drawables())
}

func TestSceneReplacesExpired(t *testing.T) {
	cfg := testSceneConfig()
	cfg.SpawnPerFrame = 4
	scene := NewScene(cfg)

	scene.Update(0)

	assert.Equal(t, cfg.Entities-scene.Expired()+4, scene.Active())
}

func TestTransformModel(t *testing.T) {
	tr := Transform{
		Position: mgl32.Vec3{1, 2, 3},
		Rotation: mgl32.QuatIdent(),
		Scale:    2,
	}
	origin := tr.Model().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	unit := tr.Model().Mul4x1(mgl32.Vec4{1, 0, 0, 1})

	assert.True(t, origin.Vec3().ApproxEqual(mgl32.Vec3{1, 2, 3}))
	assert.True(t, unit.Vec3().ApproxEqual(mgl32.Vec3{3, 2, 3}))
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(`
frames: 12
scene:
  entities: 10
  lifetime: 3
driver:
  threads: 2
`))
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Frames)
	assert.Equal(t, 10, cfg.Scene.Entities)
	assert.Equal(t, DefaultConfig().Scene.SpawnPerFrame, cfg.Scene.SpawnPerFrame)
	assert.Equal(t, 2, cfg.Driver.Threads)
	assert.Equal(t, 3, cfg.Driver.FrameContexts)

	_, err = LoadConfig(strings.NewReader("driver:\n  threads: 0\n"))
	assert.Error(t, err)
	_, err = LoadConfig(strings.NewReader("scene:\n  lifetime: 0\n"))
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Frames = 5
	cfg.Scene = testSceneConfig()
	cfg.Scene.SpawnPerFrame = 2
	cfg.Driver.Threads = 3

	require.NoError(t, run(context.Background(), cfg, log.Nop()))
}
