package path

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/memmaker/voxelnav/engine/util"
	"github.com/memmaker/voxelnav/engine/voxel"
)

type testMob struct {
	pos         mgl64.Vec3
	width       float32
	height      float32
	step        float32
	maxFall     int32
	onGround    bool
	inWater     bool
	standOnLava bool
	malus       map[PathType]float32
	caps        Capabilities
}

// newWalker is a zombie sized mob standing on the floor of cell x, y, z.
func newWalker(x, y, z int32) *testMob {
	return &testMob{
		pos:      voxel.Int3{X: x, Y: y, Z: z}.ToBlockCenterVec3(),
		width:    0.6,
		height:   1.95,
		step:     0.6,
		maxFall:  3,
		onGround: true,
		malus:    make(map[PathType]float32),
	}
}

func (m *testMob) Position() mgl64.Vec3 { return m.pos }
func (m *testMob) BoundingBox() util.AABB {
	return util.NewFootAABB(m.pos, float64(m.width), float64(m.height))
}
func (m *testMob) Width() float32             { return m.width }
func (m *testMob) Height() float32            { return m.height }
func (m *testMob) StepHeight() float32        { return m.step }
func (m *testMob) MaxFallDistance() int32     { return m.maxFall }
func (m *testMob) OnGround() bool             { return m.onGround }
func (m *testMob) InWater() bool              { return m.inWater }
func (m *testMob) Capabilities() Capabilities { return m.caps }
func (m *testMob) CanStandOnFluid(fluid voxel.Fluid) bool {
	return fluid == voxel.FluidLava && m.standOnLava
}
func (m *testMob) Malus(t PathType) float32 {
	if v, ok := m.malus[t]; ok {
		return v
	}
	return t.DefaultMalus()
}

func flatFloor() *voxel.Map {
	m := voxel.NewMap(-16, 64)
	m.Fill(voxel.Int3{X: -10, Y: -1, Z: -10}, voxel.Int3{X: 10, Y: -1, Z: 10}, voxel.Stone)
	return m
}

// walledCorridor is a corridor along x at z -1..1 under a ceiling, closed at
// x=-4 and cut by a one block high wall at x=2.
func walledCorridor() *voxel.Map {
	m := voxel.NewMap(-16, 64)
	m.Fill(voxel.Int3{X: -4, Y: -1, Z: -2}, voxel.Int3{X: 8, Y: -1, Z: 2}, voxel.Stone)
	m.Fill(voxel.Int3{X: -4, Y: 0, Z: -2}, voxel.Int3{X: 8, Y: 1, Z: -2}, voxel.Stone)
	m.Fill(voxel.Int3{X: -4, Y: 0, Z: 2}, voxel.Int3{X: 8, Y: 1, Z: 2}, voxel.Stone)
	m.Fill(voxel.Int3{X: -4, Y: 0, Z: -1}, voxel.Int3{X: -4, Y: 1, Z: 1}, voxel.Stone)
	m.Fill(voxel.Int3{X: -4, Y: 2, Z: -2}, voxel.Int3{X: 8, Y: 2, Z: 2}, voxel.Stone)
	m.Fill(voxel.Int3{X: 2, Y: 0, Z: -1}, voxel.Int3{X: 2, Y: 0, Z: 1}, voxel.Stone)
	return m
}

func positions(p *Path) []voxel.Int3 {
	result := make([]voxel.Int3, p.NodeCount())
	for i := range result {
		result[i] = p.NodePos(i)
	}
	return result
}

func hasNodeAt(nodes []*Node, x, y, z int32) bool {
	for _, n := range nodes {
		if n.X == x && n.Y == y && n.Z == z {
			return true
		}
	}
	return false
}

func neighborsOf(e NodeEvaluator, n *Node) []*Node {
	out := make([]*Node, MaxNeighbors)
	count := e.Neighbors(out, n)
	return out[:count]
}
