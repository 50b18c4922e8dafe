package game

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/memmaker/voxelnav/engine/voxel"
	"github.com/stretchr/testify/require"
)

func floorMap() *voxel.Map {
	m := voxel.NewMap(-16, 64)
	m.Fill(voxel.Int3{X: -10, Y: -1, Z: -10}, voxel.Int3{X: 10, Y: -1, Z: 10}, voxel.Stone)
	return m
}

func spawn(t *testing.T, name string, m *voxel.Map, pos mgl64.Vec3) *Mob {
	t.Helper()
	profile, err := DefaultConfig().Profile(name)
	require.NoError(t, err)
	mob, err := NewMob(name, profile, m, pos)
	require.NoError(t, err)
	return mob
}

func cellCenter(x, y, z int32) mgl64.Vec3 {
	return voxel.Int3{X: x, Y: y, Z: z}.ToBlockCenterVec3()
}
