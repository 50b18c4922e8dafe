package path

import "math"

// Target is a goal vertex. It remembers the node with the lowest heuristic
// that the search has expanded so far, which becomes the end of a best effort
// path when the goal is never reached.
type Target struct {
	Node
	bestHeuristic float32
	bestNode      *Node
	reached       bool
}

func NewTarget(x, y, z int32) *Target {
	t := &Target{bestHeuristic: math.MaxFloat32}
	t.Node.init(x, y, z)
	return t
}

func NewTargetFromNode(n *Node) *Target {
	return NewTarget(n.X, n.Y, n.Z)
}

// UpdateBest records n if h beats the best heuristic seen so far.
func (t *Target) UpdateBest(h float32, n *Node) {
	if h < t.bestHeuristic {
		t.bestHeuristic = h
		t.bestNode = n
	}
}

// SetReached marks the goal as reached by n; n becomes the path end.
func (t *Target) SetReached(n *Node) {
	t.reached = true
	if n != nil {
		t.bestNode = n
		t.bestHeuristic = n.DistanceTo(&t.Node)
	}
}

func (t *Target) IsReached() bool {
	return t.reached
}

func (t *Target) BestNode() *Node {
	return t.bestNode
}

func (t *Target) BestHeuristic() float32 {
	return t.bestHeuristic
}
