package path

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/memmaker/voxelnav/engine/util"
	"github.com/memmaker/voxelnav/engine/voxel"
)

const DefaultSeaLevel int32 = 63

// Terrain answers block queries by integer coordinate.
type Terrain interface {
	Block(x, y, z int32) voxel.Block
	MinY() int32
}

// Collider answers whether a box overlaps solid geometry.
type Collider interface {
	Collides(box util.AABB) bool
}

// World is the usual combination of both collaborators, as implemented by
// voxel.Map.
type World interface {
	Terrain
	Collider
}

// ChangeNotifier is implemented by block stores that report changes.
type ChangeNotifier interface {
	AddChangeListener(listener voxel.ChangeListener)
}

// Capabilities are the movement abilities of a mob.
type Capabilities struct {
	PassDoors      bool
	OpenDoors      bool
	Float          bool
	WalkOverFences bool
}

// Mob is the read side of an agent that the evaluators need.
type Mob interface {
	Position() mgl64.Vec3
	BoundingBox() util.AABB
	Width() float32
	Height() float32
	StepHeight() float32
	MaxFallDistance() int32
	OnGround() bool
	InWater() bool
	CanStandOnFluid(fluid voxel.Fluid) bool
	Malus(t PathType) float32
	Capabilities() Capabilities
}

// Environment is the shared snapshot searches run against. It owns the path
// type cache; an Environment must not be used by concurrent searches unless it
// was created WithoutCache.
type Environment struct {
	terrain  Terrain
	collider Collider
	cache    *PathTypeCache
	seaLevel int32
}

type EnvironmentOption func(*Environment)

func WithCacheSize(size int) EnvironmentOption {
	return func(e *Environment) {
		e.cache = NewPathTypeCache(size)
	}
}

func WithoutCache() EnvironmentOption {
	return func(e *Environment) {
		e.cache = nil
	}
}

func WithSeaLevel(seaLevel int32) EnvironmentOption {
	return func(e *Environment) {
		e.seaLevel = seaLevel
	}
}

func NewEnvironment(world World, opts ...EnvironmentOption) *Environment {
	return NewEnvironmentFrom(world, world, opts...)
}

func NewEnvironmentFrom(terrain Terrain, collider Collider, opts ...EnvironmentOption) *Environment {
	e := &Environment{
		terrain:  terrain,
		collider: collider,
		cache:    NewPathTypeCache(DefaultCacheSize),
		seaLevel: DefaultSeaLevel,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Invalidate must be called whenever the block at pos changes.
func (e *Environment) Invalidate(pos voxel.Int3) {
	if e.cache != nil {
		e.cache.Invalidate(pos)
	}
}

// Watch subscribes the environment to block changes of source.
func (e *Environment) Watch(source ChangeNotifier) {
	source.AddChangeListener(func(pos voxel.Int3, _, _ voxel.Block) {
		e.Invalidate(pos)
	})
}

func (e *Environment) Cache() *PathTypeCache {
	return e.cache
}

func (e *Environment) SeaLevel() int32 {
	return e.seaLevel
}

func (e *Environment) Terrain() Terrain {
	return e.terrain
}

// Context is the per search view of an Environment for one mob. It carries
// the malus overrides an evaluator installs for the duration of a search.
type Context struct {
	env          *Environment
	mob          Mob
	mobPos       voxel.Int3
	caps         Capabilities
	entityWidth  int32
	entityHeight int32
	overrides    [pathTypeCount]float32
	overridden   PathTypeSet
}

func NewContext(env *Environment, mob Mob) *Context {
	pos := mob.Position()
	return &Context{
		env: env,
		mob: mob,
		mobPos: voxel.Int3{
			X: util.FloorInt(pos.X()),
			Y: util.FloorInt(pos.Y()),
			Z: util.FloorInt(pos.Z()),
		},
		caps:         mob.Capabilities(),
		entityWidth:  int32(math.Floor(float64(mob.Width() + 1))),
		entityHeight: int32(math.Floor(float64(mob.Height() + 1))),
	}
}

func (c *Context) Environment() *Environment {
	return c.env
}

func (c *Context) Mob() Mob {
	return c.mob
}

func (c *Context) Block(x, y, z int32) voxel.Block {
	return c.env.terrain.Block(x, y, z)
}

// RawType is the block's own path type, served from the environment cache
// when there is one.
func (c *Context) RawType(x, y, z int32) PathType {
	if c.env.cache == nil {
		return RawPathType(c.env.terrain.Block(x, y, z))
	}
	return c.env.cache.GetOrCompute(c.env.terrain, x, y, z)
}

func (c *Context) Collides(box util.AABB) bool {
	return c.env.collider.Collides(box)
}

// MobBlockPos is the block the mob stood in when the context was created.
func (c *Context) MobBlockPos() voxel.Int3 {
	return c.mobPos
}

func (c *Context) MinY() int32 {
	return c.env.terrain.MinY()
}

func (c *Context) SeaLevel() int32 {
	return c.env.seaLevel
}

func (c *Context) Capabilities() Capabilities {
	return c.caps
}

// Malus is the mob's malus for t, unless an override is installed.
func (c *Context) Malus(t PathType) float32 {
	if c.overridden.Has(t) {
		return c.overrides[t]
	}
	return c.mob.Malus(t)
}

func (c *Context) OverrideMalus(t PathType, malus float32) {
	c.overrides[t] = malus
	c.overridden = c.overridden.With(t)
}

func (c *Context) ClearOverrides() {
	c.overridden = 0
}
