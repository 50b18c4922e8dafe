package path

import (
	"math"
	"sort"

	"github.com/memmaker/voxelnav/engine/util"
	"github.com/memmaker/voxelnav/engine/voxel"
)

const (
	// SmallMobStartBoxWidth is the edge length a small flying mob's box is
	// grown to when looking for an alternative start cell.
	SmallMobStartBoxWidth = 1.5
	MaxStartCandidates    = 10
)

// FlyNodeEvaluator moves a mob freely through open cells in all 26
// directions. It reuses the ground evaluator's footprint rules.
type FlyNodeEvaluator struct {
	WalkNodeEvaluator
}

func NewFlyNodeEvaluator() *FlyNodeEvaluator {
	e := &FlyNodeEvaluator{WalkNodeEvaluator: *NewWalkNodeEvaluator()}
	e.cellType = e.PathType
	e.mobType = e.MobPathType
	return e
}

func (e *FlyNodeEvaluator) Mode() Mode {
	return ModeFly
}

func (e *FlyNodeEvaluator) Start() *Node {
	pos := e.mob.Position()
	var y int32
	if e.caps.Float && e.mob.InWater() {
		bx, bz := util.FloorInt(pos.X()), util.FloorInt(pos.Z())
		y = util.FloorInt(pos.Y())
		for e.ctx.Block(bx, y, bz).Fluid() == voxel.FluidWater {
			y++
		}
	} else {
		y = util.FloorInt(pos.Y() + 0.5)
	}
	x, z := util.FloorInt(pos.X()), util.FloorInt(pos.Z())
	if e.canStartAt(x, y, z) {
		return e.startNode(x, y, z)
	}
	for _, c := range e.startCandidates() {
		if e.canStartAt(c.X, c.Y, c.Z) {
			return e.startNode(c.X, c.Y, c.Z)
		}
	}
	util.LogPathDebug("no start node", "mode", e.Mode().String(), "x", x, "y", y, "z", z)
	return nil
}

func (e *FlyNodeEvaluator) canStartAt(x, y, z int32) bool {
	return e.malus(e.cachedType(x, y, z)) >= 0
}

// startCandidates are the corners of a large mob's box, or for a small mob
// the cells of its grown box ordered by distance to the mob.
func (e *FlyNodeEvaluator) startCandidates() []voxel.Int3 {
	box := e.mob.BoundingBox()
	pos := e.mob.Position()
	blockY := util.FloorInt(pos.Y())
	if box.Size() >= 1 {
		return []voxel.Int3{
			{X: util.FloorInt(box.Min().X()), Y: blockY, Z: util.FloorInt(box.Min().Z())},
			{X: util.FloorInt(box.Min().X()), Y: blockY, Z: util.FloorInt(box.Max().Z())},
			{X: util.FloorInt(box.Max().X()), Y: blockY, Z: util.FloorInt(box.Min().Z())},
			{X: util.FloorInt(box.Max().X()), Y: blockY, Z: util.FloorInt(box.Max().Z())},
		}
	}
	grown := box.Inflate(
		math.Max(0, SmallMobStartBoxWidth-box.XSize())/2,
		math.Max(0, SmallMobStartBoxWidth-box.YSize())/2,
		math.Max(0, SmallMobStartBoxWidth-box.ZSize())/2,
	)
	lo, hi := grown.Min(), grown.Max()
	var cells []voxel.Int3
	for x := util.FloorInt(lo.X()); x <= util.FloorInt(hi.X()); x++ {
		for y := util.FloorInt(lo.Y()); y <= util.FloorInt(hi.Y()); y++ {
			for z := util.FloorInt(lo.Z()); z <= util.FloorInt(hi.Z()); z++ {
				cells = append(cells, voxel.Int3{X: x, Y: y, Z: z})
			}
		}
	}
	distance := func(c voxel.Int3) float64 {
		return c.ToBlockCenterVec3().Sub(pos).LenSqr()
	}
	sort.SliceStable(cells, func(i, j int) bool {
		return distance(cells[i]) < distance(cells[j])
	})
	if len(cells) > MaxStartCandidates {
		cells = cells[:MaxStartCandidates]
	}
	return cells
}

func (e *FlyNodeEvaluator) Target(x, y, z float64) *Target {
	return e.targetAt(x, y, z)
}

var flyOffsets = [...]direction{
	{0, 0, 1}, {-1, 0, 0}, {1, 0, 0}, {0, 0, -1}, {0, 1, 0}, {0, -1, 0},
}

func (e *FlyNodeEvaluator) Neighbors(out []*Node, node *Node) int {
	count := 0
	add := func(n *Node, requires ...*Node) {
		if !isOpen(n) {
			return
		}
		for _, r := range requires {
			if !hasMalus(r) {
				return
			}
		}
		out[count] = n
		count++
	}
	at := func(dx, dy, dz int32) *Node {
		return e.findAcceptedNode(node.X+dx, node.Y+dy, node.Z+dz)
	}

	var axis [len(flyOffsets)]*Node
	for i, d := range flyOffsets {
		axis[i] = at(d.dx, d.dy, d.dz)
		add(axis[i])
	}
	south, west, east, north, above, below := axis[0], axis[1], axis[2], axis[3], axis[4], axis[5]

	southUp := at(0, 1, 1)
	add(southUp, south, above)
	westUp := at(-1, 1, 0)
	add(westUp, west, above)
	eastUp := at(1, 1, 0)
	add(eastUp, east, above)
	northUp := at(0, 1, -1)
	add(northUp, north, above)
	southDown := at(0, -1, 1)
	add(southDown, south, below)
	westDown := at(-1, -1, 0)
	add(westDown, west, below)
	eastDown := at(1, -1, 0)
	add(eastDown, east, below)
	northDown := at(0, -1, -1)
	add(northDown, north, below)

	northEast := at(1, 0, -1)
	add(northEast, north, east)
	southEast := at(1, 0, 1)
	add(southEast, south, east)
	northWest := at(-1, 0, -1)
	add(northWest, north, west)
	southWest := at(-1, 0, 1)
	add(southWest, south, west)

	add(at(1, 1, -1), northEast, north, east, above, northUp, eastUp)
	add(at(1, 1, 1), southEast, south, east, above, southUp, eastUp)
	add(at(-1, 1, -1), northWest, north, west, above, northUp, westUp)
	add(at(-1, 1, 1), southWest, south, west, above, southUp, westUp)
	add(at(1, -1, -1), northEast, north, east, below, northDown, eastDown)
	add(at(1, -1, 1), southEast, south, east, below, southDown, eastDown)
	add(at(-1, -1, -1), northWest, north, west, below, northDown, westDown)
	add(at(-1, -1, 1), southWest, south, west, below, southDown, westDown)
	return count
}

// findAcceptedNode penalises cells a flyer would have to land on by one over
// their malus.
func (e *FlyNodeEvaluator) findAcceptedNode(x, y, z int32) *Node {
	t := e.cachedType(x, y, z)
	m := e.malus(t)
	if m < 0 {
		return nil
	}
	if t == Walkable {
		m++
	}
	return e.nodeWithMaxCost(x, y, z, t, m)
}

// PathType treats the cell above any solid block as walkable, except the
// fence the mob itself is perched on.
func (e *FlyNodeEvaluator) PathType(ctx *Context, x, y, z int32) PathType {
	t := ctx.RawType(x, y, z)
	if t == Open && y >= ctx.MinY()+1 {
		switch below := ctx.RawType(x, y-1, z); below {
		case DamageFire, Lava:
			t = DamageFire
		case DamageOther:
			t = DamageOther
		case Cocoa:
			t = Cocoa
		case Fence:
			if (voxel.Int3{X: x, Y: y - 1, Z: z}) != ctx.MobBlockPos() {
				t = Fence
			}
		case Walkable, Open, Water:
			t = Open
		default:
			t = Walkable
		}
	}
	if t == Walkable || t == Open {
		t = checkNeighbourBlocks(ctx, x, y, z, t)
	}
	return t
}

func (e *FlyNodeEvaluator) MobPathType(ctx *Context, x, y, z int32) PathType {
	return e.footprintPathType(ctx, x, y, z)
}
