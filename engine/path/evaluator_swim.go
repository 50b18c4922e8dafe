package path

import (
	"github.com/memmaker/voxelnav/engine/util"
	"github.com/memmaker/voxelnav/engine/voxel"
)

// DryWaterPenalty is added to a swim node whose cell holds no fluid.
const DryWaterPenalty = 8

// swimDirections follows the order down, up, north, south, west, east.
var swimDirections = [6]direction{down, up, north, south, west, east}

// SwimNodeEvaluator moves a mob through water. With breaching allowed it may
// also surface into air directly above the water.
type SwimNodeEvaluator struct {
	baseEvaluator
	AllowBreaching bool
}

func NewSwimNodeEvaluator(allowBreaching bool) *SwimNodeEvaluator {
	e := &SwimNodeEvaluator{
		baseEvaluator:  newBaseEvaluator(),
		AllowBreaching: allowBreaching,
	}
	e.cellType = e.PathType
	e.mobType = e.MobPathType
	return e
}

func (e *SwimNodeEvaluator) Mode() Mode {
	return ModeSwim
}

func (e *SwimNodeEvaluator) Prepare(env *Environment, mob Mob) {
	e.prepare(env, mob)
}

func (e *SwimNodeEvaluator) Done() {
	e.done()
}

// Start never fails: a swimmer always starts from the cell at the low corner
// of its box.
func (e *SwimNodeEvaluator) Start() *Node {
	box := e.mob.BoundingBox()
	x := util.FloorInt(box.Min().X())
	y := util.FloorInt(box.Min().Y() + 0.5)
	z := util.FloorInt(box.Min().Z())
	n := e.node(x, y, z)
	n.Type = e.cachedType(x, y, z)
	n.CostMalus = e.malus(n.Type)
	return n
}

func (e *SwimNodeEvaluator) Target(x, y, z float64) *Target {
	return e.targetAt(x, y+0.5, z)
}

func (e *SwimNodeEvaluator) Neighbors(out []*Node, node *Node) int {
	count := 0
	var byDir [len(swimDirections)]*Node
	for i, dir := range swimDirections {
		n := e.findAcceptedNode(node.X+dir.dx, node.Y+dir.dy, node.Z+dir.dz)
		byDir[i] = n
		if isOpen(n) {
			out[count] = n
			count++
		}
	}
	horizontal := func(d direction) *Node {
		for i, dir := range swimDirections {
			if dir == d {
				return byDir[i]
			}
		}
		return nil
	}
	for i, dir := range horizontalDirections {
		clockwise := horizontalDirections[(i+1)%len(horizontalDirections)]
		if !hasMalus(horizontal(dir)) || !hasMalus(horizontal(clockwise)) {
			continue
		}
		n := e.findAcceptedNode(node.X+dir.dx+clockwise.dx, node.Y, node.Z+dir.dz+clockwise.dz)
		if isOpen(n) {
			out[count] = n
			count++
		}
	}
	return count
}

func (e *SwimNodeEvaluator) findAcceptedNode(x, y, z int32) *Node {
	t := e.cachedType(x, y, z)
	if t != Water && !(e.AllowBreaching && t == Breach) {
		return nil
	}
	m := e.malus(t)
	if m < 0 {
		return nil
	}
	if e.ctx.Block(x, y, z).Fluid() == voxel.FluidNone {
		m += DryWaterPenalty
	}
	n := e.node(x, y, z)
	n.Type = t
	n.CostMalus = util.Max32(n.CostMalus, m)
	return n
}

func (e *SwimNodeEvaluator) PathType(ctx *Context, x, y, z int32) PathType {
	return e.MobPathType(ctx, x, y, z)
}

// MobPathType is Water when every cell of the footprint holds water, Breach as
// soon as one of them is plain air, and Blocked otherwise.
func (e *SwimNodeEvaluator) MobPathType(ctx *Context, x, y, z int32) PathType {
	for i := x; i < x+ctx.entityWidth; i++ {
		for j := y; j < y+ctx.entityHeight; j++ {
			for k := z; k < z+ctx.entityWidth; k++ {
				b := ctx.Block(i, j, k)
				fluid := b.Fluid()
				if fluid == voxel.FluidNone && b.IsAir() {
					return Breach
				}
				if fluid != voxel.FluidWater {
					return Blocked
				}
			}
		}
	}
	last := ctx.Block(x+ctx.entityWidth-1, y+ctx.entityHeight-1, z+ctx.entityWidth-1)
	if last.Pathfindable(voxel.TraversalWater) {
		return Water
	}
	return Blocked
}
