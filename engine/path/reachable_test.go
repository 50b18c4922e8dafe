package path

import (
	"testing"

	"github.com/memmaker/voxelnav/engine/voxel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindReachableWithinBudget(t *testing.T) {
	e := NewWalkNodeEvaluator()

	r := FindReachable(e, NewEnvironment(flatFloor()), newWalker(0, 0, 0), 2, 1000)

	require.NotNil(t, r)
	assert.Len(t, r.Cost, 13, "start, four cardinals, four diagonals, four straight two steps")
	assert.True(t, r.Contains(voxel.Int3{X: 2}))
	assert.True(t, r.Contains(voxel.Int3{X: 1, Z: 1}))
	assert.False(t, r.Contains(voxel.Int3{X: 2, Z: 1}))
	assert.InDelta(t, 1.414, r.Cost[voxel.Int3{X: -1, Z: -1}], 0.001)
	assert.Equal(t, []voxel.Int3{{}, {X: 1}, {X: 2}}, r.PathTo(voxel.Int3{X: 2}))
	assert.Nil(t, r.PathTo(voxel.Int3{X: 5}))
	assert.Nil(t, e.Context())

	positions := r.Positions()
	assert.Equal(t, voxel.Int3{}, positions[0])
	assert.Equal(t, []voxel.Int3{{X: -1}, {Z: -1}, {Z: 1}, {X: 1}}, positions[1:5])
}

func TestFindReachableAvoidsExpensiveCells(t *testing.T) {
	m := flatFloor()
	m.Fill(voxel.Int3{X: 1, Y: -1, Z: -10}, voxel.Int3{X: 1, Y: -1, Z: 10}, voxel.NewBlock(voxel.KindMagma))

	r := FindReachable(NewWalkNodeEvaluator(), NewEnvironment(m), newWalker(0, 0, 0), 4, 1000)

	require.NotNil(t, r)
	assert.False(t, r.Contains(voxel.Int3{X: 1}), "a burning floor costs more than the whole budget")
	assert.True(t, r.Contains(voxel.Int3{X: -3}))
}

func TestFindReachableWithoutStart(t *testing.T) {
	m := voxel.NewMap(-16, 64)
	m.Fill(voxel.Int3{X: -1, Y: -1, Z: -1}, voxel.Int3{X: 1, Y: 3, Z: 1}, voxel.Stone)
	mob := newWalker(0, 0, 0)
	mob.onGround = false

	assert.Nil(t, FindReachable(NewWalkNodeEvaluator(), NewEnvironment(m), mob, 5, 100))
}
