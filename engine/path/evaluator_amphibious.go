package path

import (
	"github.com/memmaker/voxelnav/engine/util"
)

// Malus values an amphibious evaluator installs for the duration of a search.
const (
	AmphibiousWaterMalus       float32 = 0
	AmphibiousWalkableMalus    float32 = 6
	AmphibiousWaterBorderMalus float32 = 4
)

// DeepWaterDepth is how far below sea level water counts as deep for mobs
// that prefer shallow swimming.
const DeepWaterDepth = 10

// AmphibiousNodeEvaluator walks on land and swims through water, including
// straight up and down inside water columns.
type AmphibiousNodeEvaluator struct {
	WalkNodeEvaluator
	PrefersShallowSwimming bool
	deepPenalised          map[int64]bool
}

func NewAmphibiousNodeEvaluator(prefersShallow bool) *AmphibiousNodeEvaluator {
	e := &AmphibiousNodeEvaluator{
		WalkNodeEvaluator:      *NewWalkNodeEvaluator(),
		PrefersShallowSwimming: prefersShallow,
		deepPenalised:          make(map[int64]bool),
	}
	e.amphibious = true
	e.cellType = e.PathType
	e.mobType = e.MobPathType
	return e
}

func (e *AmphibiousNodeEvaluator) Mode() Mode {
	return ModeAmphibious
}

func (e *AmphibiousNodeEvaluator) Prepare(env *Environment, mob Mob) {
	e.WalkNodeEvaluator.Prepare(env, mob)
	clear(e.deepPenalised)
	e.ctx.OverrideMalus(Water, AmphibiousWaterMalus)
	e.ctx.OverrideMalus(Walkable, AmphibiousWalkableMalus)
	e.ctx.OverrideMalus(WaterBorder, AmphibiousWaterBorderMalus)
}

func (e *AmphibiousNodeEvaluator) Done() {
	clear(e.deepPenalised)
	e.WalkNodeEvaluator.Done()
}

func (e *AmphibiousNodeEvaluator) Start() *Node {
	if !e.mob.InWater() {
		return e.WalkNodeEvaluator.Start()
	}
	box := e.mob.BoundingBox()
	return e.startNode(
		util.FloorInt(box.Min().X()),
		util.FloorInt(box.Min().Y()+0.5),
		util.FloorInt(box.Min().Z()),
	)
}

func (e *AmphibiousNodeEvaluator) Target(x, y, z float64) *Target {
	return e.targetAt(x, y+0.5, z)
}

func (e *AmphibiousNodeEvaluator) Neighbors(out []*Node, node *Node) int {
	count := e.WalkNodeEvaluator.Neighbors(out, node)
	typeHere := e.cachedType(node.X, node.Y, node.Z)
	stepLimit := e.stepLimit(node)
	floor := e.floorLevel(node.X, node.Y, node.Z)

	above := e.findAcceptedNode(node.X, node.Y+1, node.Z, max(0, stepLimit-1), floor, up, typeHere)
	below := e.findAcceptedNode(node.X, node.Y-1, node.Z, stepLimit, floor, down, typeHere)
	if isVerticalNeighborValid(above, node) {
		out[count] = above
		count++
	}
	if isVerticalNeighborValid(below, node) && typeHere != Trapdoor {
		out[count] = below
		count++
	}

	if e.PrefersShallowSwimming {
		for _, n := range out[:count] {
			if n.Type == Water && IsDeepWater(e.ctx.SeaLevel(), n.Y) && !e.deepPenalised[n.hash] {
				e.deepPenalised[n.hash] = true
				n.CostMalus++
			}
		}
	}
	return count
}

func isVerticalNeighborValid(neighbor, node *Node) bool {
	return isNeighborValid(neighbor, node) && neighbor.Type == Water
}

// PathType marks water touching a solid block as a water border; everything
// else classifies like ground.
func (e *AmphibiousNodeEvaluator) PathType(ctx *Context, x, y, z int32) PathType {
	if ctx.RawType(x, y, z) != Water {
		return StaticPathType(ctx, x, y, z)
	}
	for _, d := range swimDirections {
		if ctx.RawType(x+d.dx, y+d.dy, z+d.dz) == Blocked {
			return WaterBorder
		}
	}
	return Water
}

func (e *AmphibiousNodeEvaluator) MobPathType(ctx *Context, x, y, z int32) PathType {
	return e.footprintPathType(ctx, x, y, z)
}

// IsDeepWater reports whether y lies deep enough below sea level for the
// shallow swimming penalty.
func IsDeepWater(seaLevel, y int32) bool {
	return y < seaLevel-DeepWaterDepth
}
