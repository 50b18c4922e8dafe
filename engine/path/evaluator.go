package path

import (
	"strings"

	"github.com/memmaker/voxelnav/engine/util"
	"github.com/memmaker/voxelnav/engine/voxel"
	"github.com/pkg/errors"
)

// MaxNeighbors bounds the neighbour array handed to NodeEvaluator.Neighbors.
const MaxNeighbors = 32

// NodeEvaluator defines the search graph for one movement mode. A search
// calls Prepare, then Start, Target and Neighbors any number of times, and
// always finishes with Done. An evaluator serves one search at a time.
type NodeEvaluator interface {
	Mode() Mode
	Prepare(env *Environment, mob Mob)
	// Start returns the node the mob starts from, or nil when it cannot
	// start anywhere around its position.
	Start() *Node
	Target(x, y, z float64) *Target
	// Neighbors fills out from index 0 and returns the count. Entries beyond
	// the count are stale.
	Neighbors(out []*Node, node *Node) int
	// PathType classifies a single cell for this mode.
	PathType(ctx *Context, x, y, z int32) PathType
	// MobPathType classifies the whole volume the mob's box covers when
	// standing at x, y, z.
	MobPathType(ctx *Context, x, y, z int32) PathType
	Done()
	// Context is the live search context, nil outside of Prepare/Done.
	Context() *Context
}

type Mode uint8

const (
	ModeWalk Mode = iota
	ModeFly
	ModeSwim
	ModeAmphibious
)

func (m Mode) String() string {
	switch m {
	case ModeWalk:
		return "walk"
	case ModeFly:
		return "fly"
	case ModeSwim:
		return "swim"
	case ModeAmphibious:
		return "amphibious"
	}
	return "unknown"
}

func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "walk", "ground", "":
		return ModeWalk, nil
	case "fly", "flying":
		return ModeFly, nil
	case "swim":
		return ModeSwim, nil
	case "amphibious":
		return ModeAmphibious, nil
	}
	return ModeWalk, errors.Wrapf(ErrUnknownMode, "%q", name)
}

const nodeSlabSize = 256

// nodeTable owns the nodes of one search. Nodes live in fixed size slabs so
// pointers stay valid while the table grows; reset recycles the slabs.
type nodeTable struct {
	nodes map[int64]*Node
	slabs [][]Node
	slab  int
	used  int
}

func newNodeTable() nodeTable {
	return nodeTable{nodes: make(map[int64]*Node)}
}

func (t *nodeTable) get(x, y, z int32) *Node {
	key := voxel.PackKey(x, y, z)
	if n, ok := t.nodes[key]; ok {
		return n
	}
	if t.slab == len(t.slabs) {
		t.slabs = append(t.slabs, make([]Node, nodeSlabSize))
	}
	n := &t.slabs[t.slab][t.used]
	t.used++
	if t.used == nodeSlabSize {
		t.slab++
		t.used = 0
	}
	n.init(x, y, z)
	t.nodes[key] = n
	return n
}

func (t *nodeTable) len() int {
	return len(t.nodes)
}

func (t *nodeTable) reset() {
	clear(t.nodes)
	t.slab = 0
	t.used = 0
}

// baseEvaluator carries the state all modes share. Variants plug their own
// cell classification into cellType and mobType.
type baseEvaluator struct {
	ctx   *Context
	mob   Mob
	caps  Capabilities
	table nodeTable

	typeMemo map[int64]PathType

	cellType func(ctx *Context, x, y, z int32) PathType
	mobType  func(ctx *Context, x, y, z int32) PathType
}

func newBaseEvaluator() baseEvaluator {
	return baseEvaluator{
		table:    newNodeTable(),
		typeMemo: make(map[int64]PathType),
	}
}

func (b *baseEvaluator) prepare(env *Environment, mob Mob) {
	b.ctx = NewContext(env, mob)
	b.mob = mob
	b.caps = mob.Capabilities()
	b.table.reset()
	clear(b.typeMemo)
}

func (b *baseEvaluator) done() {
	if b.ctx != nil {
		b.ctx.ClearOverrides()
	}
	clear(b.typeMemo)
	b.ctx = nil
	b.mob = nil
}

func (b *baseEvaluator) Context() *Context {
	return b.ctx
}

// NodeCount is the number of nodes the current search has touched.
func (b *baseEvaluator) NodeCount() int {
	return b.table.len()
}

func (b *baseEvaluator) node(x, y, z int32) *Node {
	return b.table.get(x, y, z)
}

func (b *baseEvaluator) targetAt(x, y, z float64) *Target {
	n := b.node(util.FloorInt(x), util.FloorInt(y), util.FloorInt(z))
	return NewTargetFromNode(n)
}

// cachedType memoises the mob footprint type per coordinate for one search.
func (b *baseEvaluator) cachedType(x, y, z int32) PathType {
	key := voxel.PackKey(x, y, z)
	if t, ok := b.typeMemo[key]; ok {
		return t
	}
	t := b.mobType(b.ctx, x, y, z)
	b.typeMemo[key] = t
	return t
}

func (b *baseEvaluator) malus(t PathType) float32 {
	return b.ctx.Malus(t)
}

// typesWithinMobBB collects the cell types of every block the mob's box would
// occupy at x, y, z, adjusted for the mob's door and rail abilities.
func (b *baseEvaluator) typesWithinMobBB(ctx *Context, x, y, z int32) PathTypeSet {
	var set PathTypeSet
	caps := ctx.Capabilities()
	mobPos := ctx.MobBlockPos()
	for i := int32(0); i < ctx.entityWidth; i++ {
		for j := int32(0); j < ctx.entityHeight; j++ {
			for k := int32(0); k < ctx.entityWidth; k++ {
				t := b.cellType(ctx, x+i, y+j, z+k)
				if t == DoorWoodClosed && caps.OpenDoors && caps.PassDoors {
					t = WalkableDoor
				}
				if t == DoorOpen && !caps.PassDoors {
					t = Blocked
				}
				if t == Rail &&
					b.cellType(ctx, mobPos.X, mobPos.Y, mobPos.Z) != Rail &&
					b.cellType(ctx, mobPos.X, mobPos.Y-1, mobPos.Z) != Rail {
					t = UnpassableRail
				}
				set = set.With(t)
			}
		}
	}
	return set
}

// footprintPathType reduces the footprint to a single type. Fences and
// unpassable rails win outright, then any impassable type, then the type with
// the highest malus, later types winning ties.
func (b *baseEvaluator) footprintPathType(ctx *Context, x, y, z int32) PathType {
	set := b.typesWithinMobBB(ctx, x, y, z)
	if set.Has(Fence) {
		return Fence
	}
	if set.Has(UnpassableRail) {
		return UnpassableRail
	}
	result := Blocked
	for _, t := range set.Types() {
		m := ctx.Malus(t)
		if m < 0 {
			return t
		}
		if m >= ctx.Malus(result) {
			result = t
		}
	}
	if ctx.entityWidth <= 1 && result != Open && ctx.Malus(result) == 0 && b.cellType(ctx, x, y, z) == Open {
		return Open
	}
	return result
}

func isNeighborValid(neighbor, node *Node) bool {
	return neighbor != nil && !neighbor.closed && (neighbor.CostMalus >= 0 || node.CostMalus < 0)
}

func hasMalus(n *Node) bool {
	return n != nil && n.CostMalus >= 0
}

func isOpen(n *Node) bool {
	return n != nil && !n.closed
}

// NewEvaluator creates the evaluator for mode.
func NewEvaluator(mode Mode) NodeEvaluator {
	switch mode {
	case ModeFly:
		return NewFlyNodeEvaluator()
	case ModeSwim:
		return NewSwimNodeEvaluator(false)
	case ModeAmphibious:
		return NewAmphibiousNodeEvaluator(false)
	}
	return NewWalkNodeEvaluator()
}
