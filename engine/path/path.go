package path

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/memmaker/voxelnav/engine/voxel"
	"github.com/pkg/errors"
)

// Path is the result of a search: the nodes from start to end plus a cursor
// pointing at the next node to walk to. The cursor stays within
// [0, NodeCount()]; the path is done when it equals NodeCount().
type Path struct {
	nodes         []*Node
	target        voxel.Int3
	distToTarget  float32
	reached       bool
	nextNodeIndex int
}

// NewPath takes ownership of nodes.
func NewPath(nodes []*Node, target voxel.Int3, reached bool) *Path {
	p := &Path{
		nodes:        nodes,
		target:       target,
		reached:      reached,
		distToTarget: math.MaxFloat32,
	}
	if len(nodes) > 0 {
		p.distToTarget = nodes[len(nodes)-1].DistanceManhattanTo(target)
	}
	return p
}

func (p *Path) Advance() {
	p.SetNextNodeIndex(p.nextNodeIndex + 1)
}

func (p *Path) NotStarted() bool {
	return p.nextNodeIndex <= 0
}

func (p *Path) IsDone() bool {
	return p.nextNodeIndex >= len(p.nodes)
}

// EndNode is the last node, or nil for an empty path.
func (p *Path) EndNode() *Node {
	if len(p.nodes) == 0 {
		return nil
	}
	return p.nodes[len(p.nodes)-1]
}

func (p *Path) EndNodePos() voxel.Int3 {
	if end := p.EndNode(); end != nil {
		return end.Pos()
	}
	return p.target
}

func (p *Path) Node(i int) *Node {
	p.checkIndex(i)
	return p.nodes[i]
}

func (p *Path) NodePos(i int) voxel.Int3 {
	return p.Node(i).Pos()
}

// Nodes returns a copy of the node list.
func (p *Path) Nodes() []*Node {
	result := make([]*Node, len(p.nodes))
	copy(result, p.nodes)
	return result
}

func (p *Path) NodeCount() int {
	return len(p.nodes)
}

func (p *Path) NextNodeIndex() int {
	return p.nextNodeIndex
}

func (p *Path) SetNextNodeIndex(i int) {
	if i < 0 || i > len(p.nodes) {
		panic(errors.Wrapf(ErrCursorOutOfRange, "index %d, length %d", i, len(p.nodes)))
	}
	p.nextNodeIndex = i
}

func (p *Path) NextNode() *Node {
	return p.Node(p.nextNodeIndex)
}

func (p *Path) NextNodePos() voxel.Int3 {
	return p.NextNode().Pos()
}

// PreviousNode is the node the mob last passed.
func (p *Path) PreviousNode() *Node {
	return p.Node(p.nextNodeIndex - 1)
}

// TruncateNodes drops every node from index i on.
func (p *Path) TruncateNodes(i int) {
	if i < 0 {
		panic(errors.Wrapf(ErrCursorOutOfRange, "truncate at %d", i))
	}
	if i < len(p.nodes) {
		clear(p.nodes[i:])
		p.nodes = p.nodes[:i]
	}
	if p.nextNodeIndex > len(p.nodes) {
		p.nextNodeIndex = len(p.nodes)
	}
}

// ReplaceNode puts n at index i and relinks the predecessor chain around it.
func (p *Path) ReplaceNode(i int, n *Node) {
	p.checkIndex(i)
	n.cameFrom = nil
	if i > 0 {
		n.cameFrom = p.nodes[i-1]
	}
	if i+1 < len(p.nodes) {
		p.nodes[i+1].cameFrom = n
	}
	p.nodes[i] = n
}

// SameAs compares the node sequences only; cursors may differ.
func (p *Path) SameAs(other *Path) bool {
	if other == nil || len(other.nodes) != len(p.nodes) {
		return false
	}
	for i, n := range p.nodes {
		o := other.nodes[i]
		if n.X != o.X || n.Y != o.Y || n.Z != o.Z {
			return false
		}
	}
	return true
}

// CanReach tells whether the search reached the target, rather than only
// approaching it.
func (p *Path) CanReach() bool {
	return p.reached
}

func (p *Path) Target() voxel.Int3 {
	return p.target
}

func (p *Path) DistToTarget() float32 {
	return p.distToTarget
}

// EntityPosAtNode is where the mob's feet are when it stands centered on the
// node at index i.
func (p *Path) EntityPosAtNode(mob Mob, i int) mgl64.Vec3 {
	n := p.Node(i)
	offset := float64(int(mob.Width()+1)) * 0.5
	return mgl64.Vec3{float64(n.X) + offset, float64(n.Y), float64(n.Z) + offset}
}

func (p *Path) NextEntityPos(mob Mob) mgl64.Vec3 {
	return p.EntityPosAtNode(mob, p.nextNodeIndex)
}

func (p *Path) String() string {
	return fmt.Sprintf("Path(length=%d)", len(p.nodes))
}

func (p *Path) checkIndex(i int) {
	if i < 0 || i >= len(p.nodes) {
		panic(errors.Wrapf(ErrCursorOutOfRange, "node %d of %d", i, len(p.nodes)))
	}
}
