package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/memmaker/voxelnav/engine/path"
	"github.com/memmaker/voxelnav/engine/util"
	"github.com/memmaker/voxelnav/engine/voxel"
)

const groundProbe = 0.01

// Mob is an agent standing in a voxel map. On-ground and in-water state are
// derived from the map at its current position.
type Mob struct {
	Name     string
	profile  MobProfile
	voxelMap *voxel.Map
	position mgl64.Vec3
	malus    map[path.PathType]float32
	caps     path.Capabilities
}

// NewMob places a mob of profile at the feet position pos.
func NewMob(name string, profile MobProfile, voxelMap *voxel.Map, pos mgl64.Vec3) (*Mob, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	malus, err := profile.MalusTable()
	if err != nil {
		return nil, err
	}
	return &Mob{
		Name:     name,
		profile:  profile,
		voxelMap: voxelMap,
		position: pos,
		malus:    malus,
		caps:     profile.Capabilities(),
	}, nil
}

func (m *Mob) Profile() MobProfile {
	return m.profile
}

func (m *Mob) Position() mgl64.Vec3 {
	return m.position
}

func (m *Mob) SetPosition(pos mgl64.Vec3) {
	m.position = pos
}

func (m *Mob) BlockPosition() voxel.Int3 {
	return voxel.ToGridInt3(m.position)
}

func (m *Mob) BoundingBox() util.AABB {
	return util.NewFootAABB(m.position, float64(m.profile.Width), float64(m.profile.Height))
}

func (m *Mob) Width() float32 {
	return m.profile.Width
}

func (m *Mob) Height() float32 {
	return m.profile.Height
}

func (m *Mob) StepHeight() float32 {
	return m.profile.StepHeight
}

func (m *Mob) MaxFallDistance() int32 {
	return m.profile.MaxFallDistance
}

// OnGround is true when lowering the mob by a hair would make it collide.
func (m *Mob) OnGround() bool {
	box := m.BoundingBox()
	if m.voxelMap.Collides(box) {
		return false
	}
	return m.voxelMap.Collides(box.Move(mgl64.Vec3{0, -groundProbe, 0}))
}

// InWater is true when any cell the mob's box touches holds water.
func (m *Mob) InWater() bool {
	box := m.BoundingBox()
	lo, hi := box.Min(), box.Max()
	for x := util.FloorInt(lo.X()); x <= util.FloorInt(math.Nextafter(hi.X(), lo.X())); x++ {
		for y := util.FloorInt(lo.Y()); y <= util.FloorInt(math.Nextafter(hi.Y(), lo.Y())); y++ {
			for z := util.FloorInt(lo.Z()); z <= util.FloorInt(math.Nextafter(hi.Z(), lo.Z())); z++ {
				if m.voxelMap.Block(x, y, z).Fluid() == voxel.FluidWater {
					return true
				}
			}
		}
	}
	return false
}

func (m *Mob) CanStandOnFluid(fluid voxel.Fluid) bool {
	return fluid == voxel.FluidLava && m.profile.StandsOnLava
}

func (m *Mob) Malus(t path.PathType) float32 {
	if malus, ok := m.malus[t]; ok {
		return malus
	}
	return t.DefaultMalus()
}

func (m *Mob) SetMalus(t path.PathType, malus float32) {
	m.malus[t] = malus
}

func (m *Mob) Capabilities() path.Capabilities {
	return m.caps
}

// NewEvaluator creates the node evaluator matching the movement mode of
// profile.
func NewEvaluator(profile MobProfile) (path.NodeEvaluator, error) {
	mode, err := profile.MovementMode()
	if err != nil {
		return nil, err
	}
	switch mode {
	case path.ModeFly:
		return path.NewFlyNodeEvaluator(), nil
	case path.ModeSwim:
		return path.NewSwimNodeEvaluator(profile.AllowBreaching), nil
	case path.ModeAmphibious:
		return path.NewAmphibiousNodeEvaluator(profile.PrefersShallowSwimming), nil
	}
	return path.NewWalkNodeEvaluator(), nil
}
