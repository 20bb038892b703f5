package main

import (
	"math/rand/v2"

	"github.com/TheBitDrifter/snowflake"
	"github.com/go-gl/mathgl/mgl32"
)

type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    float32
}

// Model returns the transform's model matrix.
func (t Transform) Model() mgl32.Mat4 {
	return mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(t.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(t.Scale, t.Scale, t.Scale))
}

type Velocity struct {
	Linear mgl32.Vec3
}

type Spin struct {
	Axis mgl32.Vec3
	Rate float32
}

type Lifetime struct {
	Remaining int
}

// Renderable marks entities the render pass draws. It is a static component.
type Renderable struct {
	Mesh uint32
}

func (Renderable) StaticComponentID() snowflake.ComponentID { return 0 }

// Scene owns the entity manager and the systems run every frame.
type Scene struct {
	cfg     SceneConfig
	manager *snowflake.EntityManager
	rng     *rand.Rand

	transform  snowflake.ComponentType[Transform]
	velocity   snowflake.ComponentType[Velocity]
	spin       snowflake.ComponentType[Spin]
	lifetime   snowflake.ComponentType[Lifetime]
	renderable snowflake.ComponentType[Renderable]

	moving    snowflake.QueryNode
	spinning  snowflake.QueryNode
	mortal    snowflake.QueryNode
	drawables snowflake.QueryNode

	expired int
}

func NewScene(cfg SceneConfig) *Scene {
	s := &Scene{
		cfg:        cfg,
		manager:    snowflake.Factory.NewEntityManager(),
		rng:        rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		transform:  snowflake.FactoryNewComponent[Transform](),
		velocity:   snowflake.FactoryNewComponent[Velocity](),
		spin:       snowflake.FactoryNewComponent[Spin](),
		lifetime:   snowflake.FactoryNewComponent[Lifetime](),
		renderable: snowflake.FactoryNewComponent[Renderable](),
	}
	query := snowflake.Factory.NewQuery()
	s.moving = query.And(s.transform, s.velocity)
	s.spinning = query.And(s.transform, s.spin)
	s.mortal = query.And(s.lifetime)
	s.drawables = query.And(s.renderable, s.transform)

	s.Spawn(cfg.Entities)
	return s
}

// Spawn creates n entities. Every entity moves and draws; half of them also spin.
func (s *Scene) Spawn(n int) {
	for i := 0; i < n; i++ {
		e := s.manager.Create()
		s.transform.Emplace(s.manager, e, Transform{
			Position: mgl32.Vec3{s.rng.Float32()*20 - 10, s.rng.Float32()*20 - 10, 0},
			Rotation: mgl32.QuatIdent(),
			Scale:    0.5 + s.rng.Float32(),
		})
		s.velocity.Emplace(s.manager, e, Velocity{
			Linear: mgl32.Vec3{s.rng.Float32() - 0.5, s.rng.Float32() - 0.5, 0},
		})
		if i%2 == 0 {
			s.spin.Emplace(s.manager, e, Spin{Axis: mgl32.Vec3{0, 0, 1}, Rate: s.rng.Float32() * 2})
		}
		s.lifetime.Emplace(s.manager, e, Lifetime{Remaining: 1 + s.rng.IntN(s.cfg.Lifetime)})
		s.renderable.Emplace(s.manager, e, Renderable{Mesh: uint32(i % 4)})
	}
}

// Update advances every system by dt seconds.
func (s *Scene) Update(dt float32) {
	cursor := snowflake.Factory.NewCursor(s.moving, s.manager)
	for cursor.Next() {
		t := s.transform.GetFromCursor(cursor)
		v := s.velocity.GetFromCursor(cursor)
		t.Position = t.Position.Add(v.Linear.Mul(dt))
	}

	cursor = snowflake.Factory.NewCursor(s.spinning, s.manager)
	for cursor.Next() {
		t := s.transform.GetFromCursor(cursor)
		sp := s.spin.GetFromCursor(cursor)
		t.Rotation = mgl32.QuatRotate(sp.Rate*dt, sp.Axis).Mul(t.Rotation).Normalize()
	}

	cursor = snowflake.Factory.NewCursor(s.mortal, s.manager)
	for e := range cursor.Entities() {
		l := s.lifetime.GetFromCursor(cursor)
		l.Remaining--
		if l.Remaining <= 0 {
			s.manager.EnqueueDestroy(e)
			s.expired++
		}
	}

	s.Spawn(s.cfg.SpawnPerFrame)
}

// Drawables returns the entities the render pass should draw this frame.
func (s *Scene) Drawables() []snowflake.Entity {
	cursor := snowflake.Factory.NewCursor(s.drawables, s.manager)
	out := make([]snowflake.Entity, 0, cursor.TotalMatched())
	for e := range cursor.Entities() {
		out = append(out, e)
	}
	return out
}

// ModelMatrix reads e's transform. It is safe to call from several goroutines
// while nothing mutates the scene.
func (s *Scene) ModelMatrix(e snowflake.Entity) mgl32.Mat4 {
	return s.transform.Get(s.manager, e).Model()
}

func (s *Scene) Active() int {
	return s.manager.EntitiesActive()
}

func (s *Scene) Expired() int {
	return s.expired
}
