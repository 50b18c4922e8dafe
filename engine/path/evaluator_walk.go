package path

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/memmaker/voxelnav/engine/util"
	"github.com/memmaker/voxelnav/engine/voxel"
)

// MobJumpHeight is the lowest height difference between two floors that a
// walking mob can always climb.
const MobJumpHeight = 1.125

type direction struct {
	dx, dy, dz int32
}

var (
	north = direction{0, 0, -1}
	east  = direction{1, 0, 0}
	south = direction{0, 0, 1}
	west  = direction{-1, 0, 0}
	up    = direction{0, 1, 0}
	down  = direction{0, -1, 0}
)

// horizontalDirections are ordered clockwise; the direction at i+1 is the
// clockwise neighbour of the one at i.
var horizontalDirections = [4]direction{north, east, south, west}

// WalkNodeEvaluator moves a mob over ground: cardinal and diagonal steps,
// stepping up to its jump height and dropping down up to its max fall
// distance.
type WalkNodeEvaluator struct {
	baseEvaluator
	amphibious     bool
	collisionCache map[util.AABB]bool
	reusable       [len(horizontalDirections)]*Node
}

func NewWalkNodeEvaluator() *WalkNodeEvaluator {
	e := &WalkNodeEvaluator{
		baseEvaluator:  newBaseEvaluator(),
		collisionCache: make(map[util.AABB]bool),
	}
	e.cellType = e.PathType
	e.mobType = e.MobPathType
	return e
}

func (e *WalkNodeEvaluator) Mode() Mode {
	return ModeWalk
}

func (e *WalkNodeEvaluator) Prepare(env *Environment, mob Mob) {
	e.prepare(env, mob)
	clear(e.collisionCache)
}

func (e *WalkNodeEvaluator) Done() {
	clear(e.collisionCache)
	e.reusable = [len(horizontalDirections)]*Node{}
	e.done()
}

func (e *WalkNodeEvaluator) Start() *Node {
	pos := e.mob.Position()
	bx, bz := util.FloorInt(pos.X()), util.FloorInt(pos.Z())
	y := util.FloorInt(pos.Y())
	block := e.ctx.Block(bx, y, bz)
	if fluid := block.Fluid(); fluid != voxel.FluidNone && e.mob.CanStandOnFluid(fluid) {
		for block.Fluid() != voxel.FluidNone && e.mob.CanStandOnFluid(block.Fluid()) {
			y++
			block = e.ctx.Block(bx, y, bz)
		}
		y--
	} else if e.caps.Float && e.mob.InWater() {
		for block.Fluid() == voxel.FluidWater {
			y++
			block = e.ctx.Block(bx, y, bz)
		}
		y--
	} else if e.mob.OnGround() {
		y = util.FloorInt(pos.Y() + 0.5)
	} else {
		cursor := util.FloorInt(pos.Y() + 1)
		for cursor > e.ctx.MinY() {
			y = cursor
			cursor--
			below := e.ctx.Block(bx, cursor, bz)
			if !below.IsAir() && !below.Pathfindable(voxel.TraversalLand) {
				break
			}
		}
	}

	if e.canStartAt(bx, y, bz) {
		return e.startNode(bx, y, bz)
	}
	box := e.mob.BoundingBox()
	corners := [4][2]float64{
		{box.Min().X(), box.Min().Z()},
		{box.Min().X(), box.Max().Z()},
		{box.Max().X(), box.Min().Z()},
		{box.Max().X(), box.Max().Z()},
	}
	for _, corner := range corners {
		cx, cz := util.FloorInt(corner[0]), util.FloorInt(corner[1])
		if e.canStartAt(cx, y, cz) {
			return e.startNode(cx, y, cz)
		}
	}
	util.LogPathDebug("no start node", "mode", e.Mode().String(), "x", bx, "y", y, "z", bz)
	return nil
}

func (e *WalkNodeEvaluator) startNode(x, y, z int32) *Node {
	n := e.node(x, y, z)
	n.Type = e.cachedType(x, y, z)
	n.CostMalus = e.malus(n.Type)
	return n
}

func (e *WalkNodeEvaluator) canStartAt(x, y, z int32) bool {
	t := e.cachedType(x, y, z)
	return t != Open && e.malus(t) >= 0
}

func (e *WalkNodeEvaluator) Target(x, y, z float64) *Target {
	return e.targetAt(x, y, z)
}

func (e *WalkNodeEvaluator) Neighbors(out []*Node, node *Node) int {
	count := 0
	stepLimit := e.stepLimit(node)
	typeHere := e.cachedType(node.X, node.Y, node.Z)
	floor := e.floorLevel(node.X, node.Y, node.Z)
	for i, dir := range horizontalDirections {
		n := e.findAcceptedNode(node.X+dir.dx, node.Y, node.Z+dir.dz, stepLimit, floor, dir, typeHere)
		e.reusable[i] = n
		if isNeighborValid(n, node) {
			out[count] = n
			count++
		}
	}
	for i, dir := range horizontalDirections {
		cw := (i + 1) % len(horizontalDirections)
		clockwise := horizontalDirections[cw]
		if !e.isDiagonalValid(node, e.reusable[i], e.reusable[cw]) {
			continue
		}
		n := e.findAcceptedNode(node.X+dir.dx+clockwise.dx, node.Y, node.Z+dir.dz+clockwise.dz, stepLimit, floor, dir, typeHere)
		if isDiagonalNodeValid(n) {
			out[count] = n
			count++
		}
	}
	return count
}

// stepLimit is how many blocks the mob may climb from node: none when its
// head would be blocked or it is stuck in honey.
func (e *WalkNodeEvaluator) stepLimit(node *Node) int32 {
	typeAbove := e.cachedType(node.X, node.Y+1, node.Z)
	typeHere := e.cachedType(node.X, node.Y, node.Z)
	if e.malus(typeAbove) >= 0 && typeHere != StickyHoney {
		return util.FloorInt(math.Max(1, float64(e.mob.StepHeight())))
	}
	return 0
}

func (e *WalkNodeEvaluator) isDiagonalValid(root, xNode, zNode *Node) bool {
	if zNode == nil || xNode == nil || zNode.Y > root.Y || xNode.Y > root.Y {
		return false
	}
	if xNode.Type == WalkableDoor || zNode.Type == WalkableDoor {
		return false
	}
	thinFences := zNode.Type == Fence && xNode.Type == Fence && e.mob.Width() < 0.5
	return (zNode.Y < root.Y || zNode.CostMalus >= 0 || thinFences) &&
		(xNode.Y < root.Y || xNode.CostMalus >= 0 || thinFences)
}

func isDiagonalNodeValid(n *Node) bool {
	if n == nil || n.closed || n.Type == WalkableDoor {
		return false
	}
	return n.CostMalus >= 0
}

func hasPartialCollision(t PathType) bool {
	return t == Fence || t == DoorWoodClosed || t == DoorIronClosed
}

// canReachWithoutCollision sweeps the mob's box towards node in steps of at
// most its own size.
func (e *WalkNodeEvaluator) canReachWithoutCollision(n *Node) bool {
	box := e.mob.BoundingBox()
	pos := e.mob.Position()
	delta := mgl64.Vec3{
		float64(n.X) - pos.X() + box.XSize()/2,
		float64(n.Y) - pos.Y() + box.YSize()/2,
		float64(n.Z) - pos.Z() + box.ZSize()/2,
	}
	steps := int(math.Ceil(delta.Len() / box.Size()))
	if steps <= 0 {
		return true
	}
	delta = delta.Mul(1 / float64(steps))
	for i := 1; i <= steps; i++ {
		box = box.Move(delta)
		if e.hasCollisions(box) {
			return false
		}
	}
	return true
}

func (e *WalkNodeEvaluator) floorLevel(x, y, z int32) float64 {
	if (e.caps.Float || e.amphibious) && e.ctx.Block(x, y, z).Fluid() == voxel.FluidWater {
		return float64(y) + 0.5
	}
	return FloorLevel(e.ctx.Environment().Terrain(), x, y, z)
}

// FloorLevel is the height a mob standing in cell x, y, z rests on: the top
// of the collision shape below it.
func FloorLevel(terrain Terrain, x, y, z int32) float64 {
	return float64(y-1) + terrain.Block(x, y-1, z).CollisionHeight()
}

func (e *WalkNodeEvaluator) jumpHeight() float64 {
	return math.Max(MobJumpHeight, float64(e.mob.StepHeight()))
}

func (e *WalkNodeEvaluator) findAcceptedNode(x, y, z, stepLimit int32, nodeFloor float64, dir direction, typeHere PathType) *Node {
	if e.floorLevel(x, y, z)-nodeFloor > e.jumpHeight() {
		return nil
	}
	var n *Node
	t := e.cachedType(x, y, z)
	m := e.malus(t)
	if m >= 0 {
		n = e.nodeWithMaxCost(x, y, z, t, m)
	}
	if hasPartialCollision(typeHere) && n != nil && n.CostMalus >= 0 && !e.canReachWithoutCollision(n) {
		n = nil
	}
	if t == Walkable || (e.amphibious && t == Water) {
		return n
	}
	switch {
	case (n == nil || n.CostMalus < 0) && stepLimit > 0 &&
		(t != Fence || e.caps.WalkOverFences) && t != UnpassableRail && t != Trapdoor && t != PowderSnow:
		n = e.tryJumpOn(x, y, z, stepLimit, nodeFloor, dir, typeHere)
	case !e.amphibious && t == Water && !e.caps.Float:
		n = e.tryFindFirstNonWaterBelow(x, y, z, n)
	case t == Open:
		n = e.tryFindFirstGroundNodeBelow(x, y, z)
	case hasPartialCollision(t) && n == nil:
		n = e.closedNode(x, y, z, t)
	}
	return n
}

func (e *WalkNodeEvaluator) nodeWithMaxCost(x, y, z int32, t PathType, malus float32) *Node {
	n := e.node(x, y, z)
	n.Type = t
	n.CostMalus = util.Max32(n.CostMalus, malus)
	return n
}

func (e *WalkNodeEvaluator) blockedNode(x, y, z int32) *Node {
	n := e.node(x, y, z)
	n.Type = Blocked
	n.CostMalus = -1
	return n
}

func (e *WalkNodeEvaluator) closedNode(x, y, z int32, t PathType) *Node {
	n := e.node(x, y, z)
	n.closed = true
	n.Type = t
	n.CostMalus = t.DefaultMalus()
	return n
}

// tryJumpOn probes one block up. Narrow mobs additionally need head room for
// the jump arc above the cell they jump from.
func (e *WalkNodeEvaluator) tryJumpOn(x, y, z, stepLimit int32, nodeFloor float64, dir direction, typeHere PathType) *Node {
	n := e.findAcceptedNode(x, y+1, z, stepLimit-1, nodeFloor, dir, typeHere)
	if n == nil {
		return nil
	}
	width := float64(e.mob.Width())
	if width >= 1 || (n.Type != Open && n.Type != Walkable) {
		return n
	}
	fromX, fromZ := x-dir.dx, z-dir.dz
	cx, cz := float64(fromX)+0.5, float64(fromZ)+0.5
	half := width / 2
	jumpBox := util.NewAABBFromBounds(
		mgl64.Vec3{cx - half, e.floorLevel(fromX, y+1, fromZ) + 0.001, cz - half},
		mgl64.Vec3{cx + half, float64(e.mob.Height()) + e.floorLevel(n.X, n.Y, n.Z) - 0.002, cz + half},
	)
	if e.hasCollisions(jumpBox) {
		return nil
	}
	return n
}

func (e *WalkNodeEvaluator) tryFindFirstNonWaterBelow(x, y, z int32, n *Node) *Node {
	for y--; y > e.ctx.MinY(); y-- {
		t := e.cachedType(x, y, z)
		if t != Water {
			return n
		}
		n = e.nodeWithMaxCost(x, y, z, t, e.malus(t))
	}
	return n
}

func (e *WalkNodeEvaluator) tryFindFirstGroundNodeBelow(x, y, z int32) *Node {
	maxFall := e.mob.MaxFallDistance()
	for i := y - 1; i >= e.ctx.MinY(); i-- {
		if y-i > maxFall {
			return e.blockedNode(x, i, z)
		}
		t := e.cachedType(x, i, z)
		m := e.malus(t)
		if t != Open {
			if m >= 0 {
				return e.nodeWithMaxCost(x, i, z, t, m)
			}
			return e.blockedNode(x, i, z)
		}
	}
	return e.blockedNode(x, y, z)
}

func (e *WalkNodeEvaluator) hasCollisions(box util.AABB) bool {
	if hit, ok := e.collisionCache[box]; ok {
		return hit
	}
	hit := e.ctx.Collides(box)
	e.collisionCache[box] = hit
	return hit
}

func (e *WalkNodeEvaluator) PathType(ctx *Context, x, y, z int32) PathType {
	return StaticPathType(ctx, x, y, z)
}

func (e *WalkNodeEvaluator) MobPathType(ctx *Context, x, y, z int32) PathType {
	return e.footprintPathType(ctx, x, y, z)
}
