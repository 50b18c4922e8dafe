package path

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/memmaker/voxelnav/engine/voxel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// prepared runs Prepare and Start for mob and registers Done as cleanup.
func prepared(t *testing.T, e NodeEvaluator, m *voxel.Map, mob Mob, opts ...EnvironmentOption) *Node {
	t.Helper()
	e.Prepare(NewEnvironment(m, opts...), mob)
	t.Cleanup(e.Done)
	start := e.Start()
	require.NotNil(t, start)
	return start
}

func TestWalkStepsUpOneBlock(t *testing.T) {
	m := flatFloor()
	m.SetBlock(1, 0, 0, voxel.Stone)
	e := NewWalkNodeEvaluator()
	start := prepared(t, e, m, newWalker(0, 0, 0))

	got := neighborsOf(e, start)

	assert.True(t, hasNodeAt(got, 1, 1, 0))
	assert.False(t, hasNodeAt(got, 1, 0, 0))
	assert.False(t, hasNodeAt(got, 1, 1, 1), "no diagonal next to a raised cardinal")
	assert.True(t, hasNodeAt(got, -1, 0, 0))
}

func TestWalkDoesNotClimbTwoBlocks(t *testing.T) {
	m := flatFloor()
	m.Fill(voxel.Int3{X: 1}, voxel.Int3{X: 1, Y: 1}, voxel.Stone)
	e := NewWalkNodeEvaluator()
	start := prepared(t, e, m, newWalker(0, 0, 0))

	for _, n := range neighborsOf(e, start) {
		assert.NotEqual(t, int32(1), n.X, "unexpected neighbour %s", n)
	}
}

func TestWalkFallDistance(t *testing.T) {
	cliff := func(drop int32) *voxel.Map {
		m := voxel.NewMap(-16, 64)
		m.Fill(voxel.Int3{X: -2, Y: -1, Z: -2}, voxel.Int3{X: 0, Y: -1, Z: 2}, voxel.Stone)
		m.Fill(voxel.Int3{X: 1, Y: -1 - drop, Z: -2}, voxel.Int3{X: 3, Y: -1 - drop, Z: 2}, voxel.Stone)
		return m
	}

	t.Run("within max fall", func(t *testing.T) {
		e := NewWalkNodeEvaluator()
		start := prepared(t, e, cliff(2), newWalker(0, 0, 0))
		assert.True(t, hasNodeAt(neighborsOf(e, start), 1, -2, 0))
	})
	t.Run("beyond max fall", func(t *testing.T) {
		e := NewWalkNodeEvaluator()
		start := prepared(t, e, cliff(5), newWalker(0, 0, 0))
		for _, n := range neighborsOf(e, start) {
			assert.False(t, n.X == 1 && n.Z == 0, "unexpected neighbour %s", n)
		}
	})
}

func TestWalkNoDiagonalPastWall(t *testing.T) {
	m := flatFloor()
	m.Fill(voxel.Int3{X: 1}, voxel.Int3{X: 1, Y: 1}, voxel.Stone)
	e := NewWalkNodeEvaluator()
	start := prepared(t, e, m, newWalker(0, 0, 0))

	got := neighborsOf(e, start)

	for _, z := range []int32{-1, 1} {
		for y := int32(-1); y <= 1; y++ {
			assert.False(t, hasNodeAt(got, 1, y, z))
		}
	}
	assert.True(t, hasNodeAt(got, -1, 0, 1))
	assert.Len(t, got, 5, "three cardinals and the two western diagonals")
}

func TestWalkFenceBlocks(t *testing.T) {
	m := flatFloor()
	m.SetBlock(1, 0, 0, voxel.NewBlock(voxel.KindFence))
	e := NewWalkNodeEvaluator()
	start := prepared(t, e, m, newWalker(0, 0, 0))

	for _, n := range neighborsOf(e, start) {
		assert.False(t, n.X == 1 && n.Z == 0, "unexpected neighbour %s", n)
	}
}

func TestWalkDoors(t *testing.T) {
	withDoor := func() *voxel.Map {
		m := flatFloor()
		m.Fill(voxel.Int3{X: 1}, voxel.Int3{X: 1, Y: 1}, voxel.NewBlock(voxel.KindWoodDoor))
		return m
	}

	t.Run("closed door without abilities", func(t *testing.T) {
		e := NewWalkNodeEvaluator()
		start := prepared(t, e, withDoor(), newWalker(0, 0, 0))
		got := neighborsOf(e, start)
		assert.False(t, hasNodeAt(got, 1, 0, 0))
		assert.False(t, hasNodeAt(got, 1, 1, 0))
	})
	t.Run("mob that opens doors", func(t *testing.T) {
		mob := newWalker(0, 0, 0)
		mob.caps = Capabilities{PassDoors: true, OpenDoors: true}
		e := NewWalkNodeEvaluator()
		start := prepared(t, e, withDoor(), mob)
		got := neighborsOf(e, start)
		require.True(t, hasNodeAt(got, 1, 0, 0))
		for _, n := range got {
			if n.X == 1 && n.Z == 0 {
				assert.Equal(t, WalkableDoor, n.Type)
			}
		}
		assert.False(t, hasNodeAt(got, 1, 0, 1), "never cut diagonally through a doorway")
	})
}

func TestWalkMobMalusOverridesDefault(t *testing.T) {
	m := flatFloor()
	m.Fill(voxel.Int3{X: 1, Y: -1, Z: -10}, voxel.Int3{X: 1, Y: -1, Z: 10}, voxel.NewBlock(voxel.KindMagma))
	malusAt := func(mob *testMob) (float32, bool) {
		e := NewWalkNodeEvaluator()
		start := prepared(t, e, m, mob)
		for _, n := range neighborsOf(e, start) {
			if n.Pos() == (voxel.Int3{X: 1}) {
				return n.CostMalus, true
			}
		}
		return 0, false
	}
	mob := newWalker(0, 0, 0)

	malus, ok := malusAt(mob)
	require.True(t, ok)
	assert.Equal(t, DamageFire.DefaultMalus(), malus)

	mob.malus[DamageFire] = 2
	malus, ok = malusAt(mob)
	require.True(t, ok)
	assert.Equal(t, float32(2), malus)

	mob.malus[DamageFire] = -1
	_, ok = malusAt(mob)
	assert.False(t, ok)
}

func newFlyer(x, y, z int32) *testMob {
	mob := newWalker(x, y, z)
	mob.width, mob.height = 0.7, 0.6
	mob.onGround = false
	return mob
}

func TestFlyNeighborsInOpenAir(t *testing.T) {
	e := NewFlyNodeEvaluator()
	start := prepared(t, e, voxel.NewMap(-16, 64), newFlyer(0, 10, 0))

	assert.Equal(t, voxel.Int3{Y: 10}, start.Pos())
	assert.Len(t, neighborsOf(e, start), 26)
}

func TestFlyWalkableCostsOneMore(t *testing.T) {
	m := voxel.NewMap(-16, 64)
	m.Fill(voxel.Int3{X: -3, Y: 9, Z: -3}, voxel.Int3{X: 3, Y: 9, Z: 3}, voxel.Stone)
	e := NewFlyNodeEvaluator()
	start := prepared(t, e, m, newFlyer(0, 10, 0))

	got := neighborsOf(e, start)

	assert.Len(t, got, 17, "nothing below the floor level")
	for _, n := range got {
		switch n.Y {
		case 10:
			assert.Equal(t, Walkable, n.Type)
			assert.Equal(t, float32(1), n.CostMalus)
		case 11:
			assert.Equal(t, float32(0), n.CostMalus)
		}
	}
	neighborsOf(e, start)
	for _, n := range got {
		if n.Y == 10 {
			assert.Equal(t, float32(1), n.CostMalus, "the landing penalty does not accumulate")
		}
	}
}

func TestFlyStartsNextToBlockedCell(t *testing.T) {
	m := voxel.NewMap(-16, 64)
	m.SetBlock(0, 10, 0, voxel.Stone)
	mob := newFlyer(0, 10, 0)
	mob.pos[0] = 0.9
	mob.pos[2] = 0.5
	e := NewFlyNodeEvaluator()
	start := prepared(t, e, m, mob)

	assert.NotEqual(t, voxel.Int3{Y: 10}, start.Pos())
	assert.LessOrEqual(t, voxel.ManhattanDistance3(start.Pos(), voxel.Int3{Y: 10}), int32(2))
}

func newFish(x, y, z int32) *testMob {
	mob := newWalker(x, y, z)
	mob.width, mob.height = 0.5, 0.3
	mob.onGround = false
	mob.inWater = true
	return mob
}

func TestSwimNeighborsInWater(t *testing.T) {
	m := voxel.NewMap(-16, 64)
	m.Fill(voxel.Int3{X: -3, Y: -3, Z: -3}, voxel.Int3{X: 3, Y: 3, Z: 3}, voxel.Water)
	e := NewSwimNodeEvaluator(false)
	start := prepared(t, e, m, newFish(0, 0, 0))

	got := neighborsOf(e, start)

	assert.Len(t, got, 10, "six axis neighbours and four horizontal diagonals")
	for _, n := range got {
		assert.Equal(t, Water, n.Type)
		assert.Equal(t, float32(8), n.CostMalus)
	}
	assert.False(t, hasNodeAt(got, 1, 1, 0), "no vertical diagonals")
}

func TestSwimBreaching(t *testing.T) {
	m := voxel.NewMap(-16, 64)
	m.Fill(voxel.Int3{X: -3, Y: -5, Z: -3}, voxel.Int3{X: 3, Y: -1, Z: 3}, voxel.Water)

	t.Run("not allowed", func(t *testing.T) {
		e := NewSwimNodeEvaluator(false)
		start := prepared(t, e, m, newFish(0, -1, 0))
		got := neighborsOf(e, start)
		assert.Len(t, got, 9)
		assert.False(t, hasNodeAt(got, 0, 0, 0))
	})
	t.Run("allowed", func(t *testing.T) {
		e := NewSwimNodeEvaluator(true)
		start := prepared(t, e, m, newFish(0, -1, 0))
		got := neighborsOf(e, start)
		require.Len(t, got, 10)
		for _, n := range got {
			if n.Pos() == (voxel.Int3{}) {
				assert.Equal(t, Breach, n.Type)
				assert.Equal(t, float32(4+DryWaterPenalty), n.CostMalus)
			}
		}
	})
}

func TestSwimTargetIsRaisedHalfABlock(t *testing.T) {
	e := NewSwimNodeEvaluator(false)
	prepared(t, e, voxel.NewMap(-16, 64), newFish(0, 0, 0))

	assert.Equal(t, voxel.Int3{X: 1, Y: 3, Z: 1}, e.Target(1.2, 2.6, 1.9).Pos())
}

func newFrog(x, y, z int32) *testMob {
	mob := newWalker(x, y, z)
	mob.width, mob.height = 0.5, 0.5
	mob.onGround = false
	mob.inWater = true
	return mob
}

func waterColumn() *voxel.Map {
	m := voxel.NewMap(-16, 64)
	m.Fill(voxel.Int3{X: -2, Y: -5, Z: -2}, voxel.Int3{X: 2, Y: -1, Z: 2}, voxel.Water)
	return m
}

func TestAmphibiousMalusOverridesAreScopedToSearch(t *testing.T) {
	mob := newFrog(0, -3, 0)
	e := NewAmphibiousNodeEvaluator(false)

	e.Prepare(NewEnvironment(waterColumn()), mob)
	ctx := e.Context()
	require.NotNil(t, ctx)
	assert.Equal(t, AmphibiousWaterMalus, ctx.Malus(Water))
	assert.Equal(t, AmphibiousWalkableMalus, ctx.Malus(Walkable))
	assert.Equal(t, AmphibiousWaterBorderMalus, ctx.Malus(WaterBorder))
	e.Done()

	assert.Nil(t, e.Context())
	assert.Equal(t, Walkable.DefaultMalus(), mob.Malus(Walkable), "the mob's own table is untouched")
	assert.Equal(t, float32(0), ctx.Malus(Walkable), "a finished context falls back to the mob")
}

func TestAmphibiousSwimsVertically(t *testing.T) {
	e := NewAmphibiousNodeEvaluator(false)
	start := prepared(t, e, waterColumn(), newFrog(0, -3, 0))
	require.Equal(t, voxel.Int3{Y: -3}, start.Pos())

	got := neighborsOf(e, start)

	assert.True(t, hasNodeAt(got, 0, -2, 0))
	assert.True(t, hasNodeAt(got, 0, -4, 0))
	assert.Len(t, got, 10)
	for _, n := range got {
		assert.Equal(t, Water, n.Type)
		assert.Equal(t, AmphibiousWaterMalus, n.CostMalus)
	}
}

func TestAmphibiousDeepWaterPenaltyAppliedOnce(t *testing.T) {
	e := NewAmphibiousNodeEvaluator(true)
	start := prepared(t, e, waterColumn(), newFrog(0, -3, 0), WithSeaLevel(20))

	got := neighborsOf(e, start)
	neighborsOf(e, start)

	require.NotEmpty(t, got)
	for _, n := range got {
		assert.Equal(t, float32(1), n.CostMalus, "node %s", n)
	}
}

func TestAmphibiousShallowWaterHasNoPenalty(t *testing.T) {
	e := NewAmphibiousNodeEvaluator(true)
	start := prepared(t, e, waterColumn(), newFrog(0, -3, 0), WithSeaLevel(-10))

	for _, n := range neighborsOf(e, start) {
		assert.Zero(t, n.CostMalus, "node %s", n)
	}
}

func TestIsDeepWater(t *testing.T) {
	assert.True(t, IsDeepWater(63, 52))
	assert.False(t, IsDeepWater(63, 53))
	assert.False(t, IsDeepWater(63, 70))
}

func TestParseModeAndNewEvaluator(t *testing.T) {
	cases := map[string]Mode{
		"walk":       ModeWalk,
		"":           ModeWalk,
		"Fly":        ModeFly,
		"swim":       ModeSwim,
		"amphibious": ModeAmphibious,
	}
	for name, want := range cases {
		got, err := ParseMode(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got)
		assert.Equal(t, want, NewEvaluator(got).Mode())
	}
	_, err := ParseMode("burrow")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestWalkFootprintOfWideMob(t *testing.T) {
	cases := []struct {
		name   string
		blocks map[voxel.Int3]voxel.Block
		wide   PathType
		narrow PathType
	}{
		{
			name: "fence wins over damage",
			blocks: map[voxel.Int3]voxel.Block{
				{X: 1}:             voxel.NewBlock(voxel.KindCactus),
				{X: 2, Y: 0, Z: 1}: voxel.NewBlock(voxel.KindFence),
			},
			wide:   Fence,
			narrow: DamageOther,
		},
		{
			name:   "one blocked cell blocks the footprint",
			blocks: map[voxel.Int3]voxel.Block{{X: 2, Y: 1, Z: 1}: voxel.Stone},
			wide:   Blocked,
			narrow: Walkable,
		},
		{
			name:   "highest malus wins",
			blocks: map[voxel.Int3]voxel.Block{{X: 3}: voxel.NewBlock(voxel.KindCactus)},
			wide:   DangerOther,
			narrow: Walkable,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m := flatFloor()
			for pos, b := range c.blocks {
				m.Set(pos, b)
			}

			wide := newWalker(-4, 0, 0)
			wide.width = 1.4
			e := NewWalkNodeEvaluator()
			prepared(t, e, m, wide)
			assert.Equal(t, c.wide, e.MobPathType(e.Context(), 1, 0, 0))

			narrowEval := NewWalkNodeEvaluator()
			prepared(t, narrowEval, m, newWalker(-4, 0, 0))
			assert.Equal(t, c.narrow, narrowEval.MobPathType(narrowEval.Context(), 1, 0, 0))
		})
	}
}

func TestWalkRailIsOnlyPassableFromRail(t *testing.T) {
	m := flatFloor()
	m.SetBlock(1, 0, 0, voxel.NewBlock(voxel.KindRail))
	m.SetBlock(2, 0, 0, voxel.NewBlock(voxel.KindRail))

	t.Run("next to the track", func(t *testing.T) {
		e := NewWalkNodeEvaluator()
		start := prepared(t, e, m, newWalker(0, 0, 0))

		assert.Equal(t, UnpassableRail, e.MobPathType(e.Context(), 1, 0, 0))
		got := neighborsOf(e, start)
		assert.False(t, hasNodeAt(got, 1, 0, 0))
		assert.False(t, hasNodeAt(got, 1, 1, 0), "no jumping onto a rail")
	})
	t.Run("on the track", func(t *testing.T) {
		e := NewWalkNodeEvaluator()
		start := prepared(t, e, m, newWalker(1, 0, 0))

		assert.Equal(t, Rail, start.Type)
		assert.Equal(t, Rail, e.MobPathType(e.Context(), 2, 0, 0))
		assert.True(t, hasNodeAt(neighborsOf(e, start), 2, 0, 0))
	})
}

func TestWalkLeavingFenceCellSweepsTheBox(t *testing.T) {
	// The sweep from a fence cell towards -x rises through y 2 above the
	// neighbour, so a block there only matters when leaving a fence.
	cases := []struct {
		name     string
		fence    bool
		ceiling  bool
		expected bool
	}{
		{"plain floor under a ceiling block", false, true, true},
		{"fence cell in the open", true, false, true},
		{"fence cell under a ceiling block", true, true, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m := flatFloor()
			mob := newWalker(0, 0, 0)
			if c.fence {
				m.SetBlock(0, 0, 0, voxel.NewBlock(voxel.KindFence))
				mob.malus[Fence] = 0
			}
			if c.ceiling {
				m.SetBlock(-1, 2, 0, voxel.Stone)
			}
			e := NewWalkNodeEvaluator()
			start := prepared(t, e, m, mob)
			if c.fence {
				require.Equal(t, Fence, start.Type)
			}

			assert.Equal(t, c.expected, hasNodeAt(neighborsOf(e, start), -1, 0, 0))
		})
	}
}

func TestFlyDropsNeighborsBehindBlockedCell(t *testing.T) {
	cases := []struct {
		name    string
		blocked voxel.Int3
		absent  []voxel.Int3
		present []voxel.Int3
	}{
		{
			name:    "north",
			blocked: voxel.Int3{Y: 10, Z: -1},
			absent:  []voxel.Int3{{Y: 11, Z: -1}, {X: 1, Y: 10, Z: -1}, {X: 1, Y: 11, Z: -1}, {X: -1, Y: 9, Z: -1}},
			present: []voxel.Int3{{X: 1, Y: 10}, {X: 1, Y: 11, Z: 1}, {Y: 11}},
		},
		{
			name:    "above",
			blocked: voxel.Int3{Y: 11},
			absent:  []voxel.Int3{{X: 1, Y: 11}, {Y: 11, Z: 1}, {X: 1, Y: 11, Z: 1}, {X: -1, Y: 11, Z: -1}},
			present: []voxel.Int3{{X: 1, Y: 9, Z: 1}, {X: 1, Y: 10, Z: 1}, {Y: 9}},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m := voxel.NewMap(-16, 64)
			m.Set(c.blocked, voxel.Stone)
			e := NewFlyNodeEvaluator()
			start := prepared(t, e, m, newFlyer(0, 10, 0))

			got := neighborsOf(e, start)

			assert.Len(t, got, 17, "the blocked cell and the eight cells that need it are dropped")
			assert.False(t, hasNodeAt(got, c.blocked.X, c.blocked.Y, c.blocked.Z))
			for _, pos := range c.absent {
				assert.False(t, hasNodeAt(got, pos.X, pos.Y, pos.Z), "unexpected neighbour %s", pos)
			}
			for _, pos := range c.present {
				assert.True(t, hasNodeAt(got, pos.X, pos.Y, pos.Z), "missing neighbour %s", pos)
			}
		})
	}
}

func TestFlyStartCandidatesStayInGrownBox(t *testing.T) {
	mob := newFlyer(0, 0, 0)
	mob.pos = mgl64.Vec3{1, 9.7, 1}
	e := NewFlyNodeEvaluator()
	prepared(t, e, voxel.NewMap(-16, 64), mob)

	cells := e.startCandidates()

	require.Len(t, cells, 8, "a box grown to 1.5 around the mob spans two cells per axis")
	assert.Equal(t, voxel.Int3{X: 0, Y: 10, Z: 0}, cells[0])
	for _, c := range cells {
		assert.True(t, c.X >= 0 && c.X <= 1 && c.Y >= 9 && c.Y <= 10 && c.Z >= 0 && c.Z <= 1, "candidate %s", c)
	}
}
