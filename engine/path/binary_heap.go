package path

import (
	"math"

	"github.com/pkg/errors"
)

const initialHeapCapacity = 128

// BinaryHeap is a min heap of nodes ordered by F. Every queued node stores its
// slot in heapIdx, so removal and re-prioritisation need no search. Nodes
// outside of any heap carry heapIdx -1.
type BinaryHeap struct {
	heap []*Node
	size int
}

func NewBinaryHeap() *BinaryHeap {
	return &BinaryHeap{heap: make([]*Node, initialHeapCapacity)}
}

// Insert adds a node. It panics if the node is already queued.
func (h *BinaryHeap) Insert(node *Node) *Node {
	if node.heapIdx >= 0 {
		panic(errors.Wrapf(ErrNodeQueued, "insert %s at slot %d", node, node.heapIdx))
	}
	if h.size == len(h.heap) {
		grown := make([]*Node, max(initialHeapCapacity, h.size<<1))
		copy(grown, h.heap[:h.size])
		h.heap = grown
	}
	h.heap[h.size] = node
	node.heapIdx = h.size
	h.upHeap(h.size)
	h.size++
	return node
}

// Clear empties the heap and detaches all queued nodes.
func (h *BinaryHeap) Clear() {
	for i := 0; i < h.size; i++ {
		h.heap[i].heapIdx = -1
		h.heap[i] = nil
	}
	h.size = 0
}

func (h *BinaryHeap) Peek() *Node {
	if h.size == 0 {
		panic(errors.WithStack(ErrEmptyHeap))
	}
	return h.heap[0]
}

// Pop removes and returns the node with the lowest F.
func (h *BinaryHeap) Pop() *Node {
	if h.size == 0 {
		panic(errors.WithStack(ErrEmptyHeap))
	}
	node := h.heap[0]
	h.size--
	h.heap[0] = h.heap[h.size]
	h.heap[h.size] = nil
	if h.size > 0 {
		h.downHeap(0)
	}
	node.heapIdx = -1
	return node
}

// Remove takes an arbitrary queued node out of the heap.
func (h *BinaryHeap) Remove(node *Node) {
	idx := node.heapIdx
	if idx < 0 || idx >= h.size || h.heap[idx] != node {
		panic(errors.Wrapf(ErrNodeNotQueued, "remove %s", node))
	}
	h.size--
	h.heap[idx] = h.heap[h.size]
	h.heap[h.size] = nil
	if h.size > idx {
		if h.heap[idx].f < node.f {
			h.upHeap(idx)
		} else {
			h.downHeap(idx)
		}
	}
	node.heapIdx = -1
}

// ChangeCost sets a new F for a queued node and restores the heap order.
func (h *BinaryHeap) ChangeCost(node *Node, cost float32) {
	idx := node.heapIdx
	if idx < 0 || idx >= h.size || h.heap[idx] != node {
		panic(errors.Wrapf(ErrNodeNotQueued, "change cost of %s", node))
	}
	old := node.f
	node.f = cost
	if cost < old {
		h.upHeap(idx)
	} else {
		h.downHeap(idx)
	}
}

func (h *BinaryHeap) Size() int {
	return h.size
}

func (h *BinaryHeap) IsEmpty() bool {
	return h.size == 0
}

// Nodes returns a copy of the heap array in slot order.
func (h *BinaryHeap) Nodes() []*Node {
	result := make([]*Node, h.size)
	copy(result, h.heap[:h.size])
	return result
}

func (h *BinaryHeap) upHeap(idx int) {
	node := h.heap[idx]
	f := node.f
	for idx > 0 {
		parentIdx := (idx - 1) >> 1
		parent := h.heap[parentIdx]
		if !(f < parent.f) {
			break
		}
		h.heap[idx] = parent
		parent.heapIdx = idx
		idx = parentIdx
	}
	h.heap[idx] = node
	node.heapIdx = idx
}

func (h *BinaryHeap) downHeap(idx int) {
	node := h.heap[idx]
	f := node.f
	for {
		leftIdx := 1 + (idx << 1)
		rightIdx := leftIdx + 1
		if leftIdx >= h.size {
			break
		}
		left := h.heap[leftIdx]
		leftF := left.f
		var right *Node
		rightF := float32(math.Inf(1))
		if rightIdx < h.size {
			right = h.heap[rightIdx]
			rightF = right.f
		}
		if leftF < rightF {
			if !(leftF < f) {
				break
			}
			h.heap[idx] = left
			left.heapIdx = idx
			idx = leftIdx
		} else {
			if !(rightF < f) {
				break
			}
			h.heap[idx] = right
			right.heapIdx = idx
			idx = rightIdx
		}
	}
	h.heap[idx] = node
	node.heapIdx = idx
}
