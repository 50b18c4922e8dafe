package game

import (
	"math"

	"github.com/memmaker/voxelnav/engine/path"
	"github.com/memmaker/voxelnav/engine/util"
	"github.com/memmaker/voxelnav/engine/voxel"
	"github.com/pkg/errors"
)

// Navigation steers one mob along a path and recomputes it periodically so
// the mob reacts to a changing map.
type Navigation struct {
	mob     *Mob
	env     *path.Environment
	finder  *path.PathFinder
	cfg     PathfindingConfig
	path    *path.Path
	targets []voxel.Int3

	tick         int
	lastRepath   int
	forceRepath  bool
	repathCount  int
	swappedPaths int
}

func NewNavigation(mob *Mob, env *path.Environment, cfg PathfindingConfig, opts ...path.FinderOption) (*Navigation, error) {
	evaluator, err := NewEvaluator(mob.Profile())
	if err != nil {
		return nil, err
	}
	return &Navigation{
		mob:    mob,
		env:    env,
		finder: path.NewPathFinder(evaluator, cfg.MaxVisitedNodes, opts...),
		cfg:    cfg,
	}, nil
}

func (n *Navigation) Finder() *path.PathFinder {
	return n.finder
}

// Path is the path currently followed, nil when idle.
func (n *Navigation) Path() *path.Path {
	return n.path
}

func (n *Navigation) IsDone() bool {
	return n.path == nil || n.path.IsDone()
}

// MoveTo searches a path to the closest of targets and starts following it.
func (n *Navigation) MoveTo(targets ...voxel.Int3) error {
	n.targets = append(n.targets[:0], targets...)
	p := n.search()
	if p == nil {
		n.path = nil
		return errors.Wrapf(ErrNoPath, "%s at %s", n.mob.Name, n.mob.BlockPosition())
	}
	n.path = p
	n.lastRepath = n.tick
	n.forceRepath = false
	return nil
}

func (n *Navigation) search() *path.Path {
	return n.finder.FindPath(n.env, n.mob, n.targets, n.cfg.MaxRange, n.cfg.ReachRange, n.cfg.VisitedNodeMultiplier)
}

// Tick advances the cursor past every node the mob has arrived at, and
// repaths once the repath interval elapsed or a patch invalidated the path.
// A finished or stopped path is only recomputed after a patch.
func (n *Navigation) Tick() {
	n.tick++
	if n.path == nil {
		return
	}
	if n.shouldRepath() {
		n.repath()
	}
	for !n.path.IsDone() && n.arrivedAtNext() {
		n.path.Advance()
	}
}

func (n *Navigation) shouldRepath() bool {
	if len(n.targets) == 0 {
		return false
	}
	if n.forceRepath {
		return true
	}
	return !n.path.IsDone() && n.tick-n.lastRepath >= n.cfg.RepathInterval
}

func (n *Navigation) repath() {
	n.lastRepath = n.tick
	n.forceRepath = false
	n.repathCount++
	fresh := n.search()
	if fresh == nil {
		util.LogNavigationDebug("repath found no start", "mob", n.mob.Name)
		return
	}
	if fresh.SameAs(n.path) {
		return
	}
	n.swappedPaths++
	util.LogNavigationDebug("swapped path", "mob", n.mob.Name, "old", n.path.String(), "new", fresh.String())
	n.path = fresh
}

// maxDistanceToWaypoint is how close the mob's feet must get to a node
// horizontally to count as arrived.
func (n *Navigation) maxDistanceToWaypoint() float64 {
	width := float64(n.mob.Width())
	if width > 0.75 {
		return width / 2
	}
	return 0.75 - width/2
}

func (n *Navigation) arrivedAtNext() bool {
	target := n.path.NextEntityPos(n.mob)
	pos := n.mob.Position()
	dx, dz := target.X()-pos.X(), target.Z()-pos.Z()
	return math.Hypot(dx, dz) < n.maxDistanceToWaypoint() && math.Abs(target.Y()-pos.Y()) < 1
}

// PatchNode reacts to a block change at pos on the remaining path. A node
// whose cell became solid is lifted by one when the mob fits above it;
// otherwise the path is cut before the node and a repath is scheduled. It
// reports whether the path changed.
func (n *Navigation) PatchNode(pos voxel.Int3) bool {
	if n.path == nil {
		return false
	}
	for i := n.path.NextNodeIndex(); i < n.path.NodeCount(); i++ {
		node := n.path.Node(i)
		if node.Pos() != pos {
			continue
		}
		if n.mob.voxelMap.Block(pos.X, pos.Y, pos.Z).Pathfindable(voxel.TraversalLand) {
			return false
		}
		if n.fitsAt(pos.Above()) {
			n.path.ReplaceNode(i, node.CloneAndMove(node.X, node.Y+1, node.Z))
		} else {
			n.path.TruncateNodes(i)
			n.forceRepath = true
		}
		return true
	}
	return false
}

func (n *Navigation) fitsAt(pos voxel.Int3) bool {
	box := n.mob.BoundingBox()
	feet := pos.ToBlockCenterVec3()
	feet[1] = path.FloorLevel(n.env.Terrain(), pos.X, pos.Y, pos.Z)
	moved := util.NewFootAABB(feet, box.XSize(), box.YSize())
	return !n.mob.voxelMap.Collides(moved)
}

// Watch patches the followed path whenever a block of m changes.
func (n *Navigation) Watch(m *voxel.Map) {
	m.AddChangeListener(func(pos voxel.Int3, _, _ voxel.Block) {
		n.PatchNode(pos)
	})
}

// Stop ends the current movement: the path keeps the nodes already walked
// and the targets are forgotten, so no later tick resumes the movement.
func (n *Navigation) Stop() {
	n.targets = n.targets[:0]
	n.forceRepath = false
	if n.path == nil {
		return
	}
	n.path.TruncateNodes(n.path.NextNodeIndex())
}

// RepathStats returns how often the path was recomputed and how often the
// recomputed path replaced the followed one.
func (n *Navigation) RepathStats() (repaths, swapped int) {
	return n.repathCount, n.swappedPaths
}
