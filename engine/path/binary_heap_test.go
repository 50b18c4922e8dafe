package path

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nodeWithF(x int32, f float32) *Node {
	n := NewNode(x, 0, 0)
	n.f = f
	return n
}

func checkHeap(t *testing.T, h *BinaryHeap) {
	t.Helper()
	for i := 0; i < h.size; i++ {
		require.Equal(t, i, h.heap[i].heapIdx, "slot %d holds a node with a stale index", i)
		if i > 0 {
			parent := h.heap[(i-1)>>1]
			require.LessOrEqual(t, parent.f, h.heap[i].f, "slot %d is smaller than its parent", i)
		}
	}
}

func TestBinaryHeapPopsInOrder(t *testing.T) {
	h := NewBinaryHeap()
	for i, f := range []float32{5, 3, 8, 1, 9, 2, 7} {
		h.Insert(nodeWithF(int32(i), f))
	}
	checkHeap(t, h)
	assert.Equal(t, float32(1), h.Peek().F())

	var got []float32
	for !h.IsEmpty() {
		n := h.Pop()
		assert.False(t, n.InOpenSet())
		got = append(got, n.F())
	}
	assert.Equal(t, []float32{1, 2, 3, 5, 7, 8, 9}, got)
}

func TestBinaryHeapChangeCostAndRemove(t *testing.T) {
	h := NewBinaryHeap()
	nodes := make([]*Node, 10)
	for i := range nodes {
		nodes[i] = h.Insert(nodeWithF(int32(i), float32(10+i)))
	}

	h.ChangeCost(nodes[9], 1)
	checkHeap(t, h)
	assert.Same(t, nodes[9], h.Peek())

	h.ChangeCost(nodes[9], 50)
	checkHeap(t, h)
	assert.Same(t, nodes[0], h.Peek())

	h.Remove(nodes[4])
	checkHeap(t, h)
	assert.Equal(t, 9, h.Size())
	assert.False(t, nodes[4].InOpenSet())
	assert.NotContains(t, h.Nodes(), nodes[4])
}

func TestBinaryHeapRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	h := NewBinaryHeap()
	var queued []*Node
	for step := 0; step < 2000; step++ {
		switch op := rng.Intn(4); {
		case op == 0 || len(queued) == 0:
			n := h.Insert(nodeWithF(int32(step), rng.Float32()*100))
			queued = append(queued, n)
		case op == 1:
			n := h.Pop()
			for _, q := range queued {
				assert.LessOrEqual(t, n.F(), q.F())
			}
			queued = removeNode(queued, n)
		case op == 2:
			n := queued[rng.Intn(len(queued))]
			h.ChangeCost(n, rng.Float32()*100)
		default:
			n := queued[rng.Intn(len(queued))]
			h.Remove(n)
			queued = removeNode(queued, n)
		}
		require.Equal(t, len(queued), h.Size())
		checkHeap(t, h)
	}
}

func removeNode(nodes []*Node, n *Node) []*Node {
	for i, q := range nodes {
		if q == n {
			return append(nodes[:i], nodes[i+1:]...)
		}
	}
	return nodes
}

func TestBinaryHeapClearDetachesNodes(t *testing.T) {
	h := NewBinaryHeap()
	a := h.Insert(nodeWithF(1, 1))
	b := h.Insert(nodeWithF(2, 2))

	h.Clear()

	assert.True(t, h.IsEmpty())
	assert.False(t, a.InOpenSet())
	assert.False(t, b.InOpenSet())
	h.Insert(a)
	assert.Equal(t, 1, h.Size())
}

func TestBinaryHeapGrows(t *testing.T) {
	h := NewBinaryHeap()
	for i := 0; i < initialHeapCapacity*3; i++ {
		h.Insert(nodeWithF(int32(i), float32(initialHeapCapacity*3-i)))
	}
	checkHeap(t, h)
	assert.Equal(t, float32(1), h.Pop().F())
}

func TestBinaryHeapPanics(t *testing.T) {
	h := NewBinaryHeap()
	recovered := func(f func()) (err error) {
		defer func() {
			err, _ = recover().(error)
		}()
		f()
		return nil
	}

	assert.True(t, errors.Is(recovered(func() { h.Pop() }), ErrEmptyHeap))
	assert.True(t, errors.Is(recovered(func() { h.Peek() }), ErrEmptyHeap))

	n := h.Insert(nodeWithF(1, 1))
	assert.True(t, errors.Is(recovered(func() { h.Insert(n) }), ErrNodeQueued))

	stray := nodeWithF(2, 2)
	assert.True(t, errors.Is(recovered(func() { h.Remove(stray) }), ErrNodeNotQueued))
	assert.True(t, errors.Is(recovered(func() { h.ChangeCost(stray, 0) }), ErrNodeNotQueued))

	other := NewBinaryHeap()
	assert.True(t, errors.Is(recovered(func() { other.Remove(n) }), ErrNodeNotQueued),
		"a node queued in another heap is not part of this one")
}
