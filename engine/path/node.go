package path

import (
	"fmt"
	"math"

	"github.com/memmaker/voxelnav/engine/voxel"
)

// Node is a vertex of the search graph. Its identity is the coordinate; the
// remaining fields are search state owned by the evaluator's node table for
// the duration of one search.
type Node struct {
	X, Y, Z int32

	// CostMalus is the penalty for entering the node; negative means
	// impassable.
	CostMalus float32
	Type      PathType

	hash           int64
	heapIdx        int
	g, h, f        float32
	cameFrom       *Node
	closed         bool
	walkedDistance float32
}

func NewNode(x, y, z int32) *Node {
	n := &Node{}
	n.init(x, y, z)
	return n
}

func (n *Node) init(x, y, z int32) {
	*n = Node{
		X:       x,
		Y:       y,
		Z:       z,
		Type:    Blocked,
		hash:    voxel.PackKey(x, y, z),
		heapIdx: -1,
	}
}

// CloneAndMove copies the search state of n onto a fresh node at x, y, z.
// The copy is not queued.
func (n *Node) CloneAndMove(x, y, z int32) *Node {
	clone := *n
	clone.X, clone.Y, clone.Z = x, y, z
	clone.hash = voxel.PackKey(x, y, z)
	clone.heapIdx = -1
	return &clone
}

func (n *Node) Hash() int64 {
	return n.hash
}

func (n *Node) Equals(other *Node) bool {
	if other == nil {
		return false
	}
	return n.X == other.X && n.Y == other.Y && n.Z == other.Z
}

func (n *Node) Pos() voxel.Int3 {
	return voxel.Int3{X: n.X, Y: n.Y, Z: n.Z}
}

func (n *Node) DistanceTo(other *Node) float32 {
	return float32(math.Sqrt(float64(n.DistanceToSqr(other))))
}

func (n *Node) DistanceToPos(pos voxel.Int3) float32 {
	dx := float32(pos.X - n.X)
	dy := float32(pos.Y - n.Y)
	dz := float32(pos.Z - n.Z)
	return float32(math.Sqrt(float64(dx*dx + dy*dy + dz*dz)))
}

func (n *Node) DistanceToXZ(other *Node) float32 {
	dx := float32(other.X - n.X)
	dz := float32(other.Z - n.Z)
	return float32(math.Sqrt(float64(dx*dx + dz*dz)))
}

func (n *Node) DistanceToSqr(other *Node) float32 {
	dx := float32(other.X - n.X)
	dy := float32(other.Y - n.Y)
	dz := float32(other.Z - n.Z)
	return dx*dx + dy*dy + dz*dz
}

func (n *Node) DistanceManhattan(other *Node) float32 {
	return float32(voxel.ManhattanDistance3(n.Pos(), other.Pos()))
}

func (n *Node) DistanceManhattanTo(pos voxel.Int3) float32 {
	return float32(voxel.ManhattanDistance3(n.Pos(), pos))
}

// InOpenSet reports whether the node currently sits in a heap.
func (n *Node) InOpenSet() bool {
	return n.heapIdx >= 0
}

func (n *Node) Closed() bool {
	return n.closed
}

func (n *Node) G() float32 { return n.g }
func (n *Node) H() float32 { return n.h }
func (n *Node) F() float32 { return n.f }

func (n *Node) WalkedDistance() float32 {
	return n.walkedDistance
}

func (n *Node) CameFrom() *Node {
	return n.cameFrom
}

func (n *Node) String() string {
	return fmt.Sprintf("Node{x=%d, y=%d, z=%d}", n.X, n.Y, n.Z)
}
