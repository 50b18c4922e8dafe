package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/memmaker/voxelnav/engine/path"
	"github.com/memmaker/voxelnav/engine/voxel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"bee", "cod", "dolphin", "frog", "spider", "strider", "zombie"}, cfg.MobNames())

	for _, name := range cfg.MobNames() {
		profile, err := cfg.Profile(name)
		require.NoError(t, err)
		_, err = NewEvaluator(profile)
		assert.NoError(t, err, name)
	}
}

func TestParseConfigOverridesDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
pathfinding:
  maxVisitedNodes: 512
  reachRange: 0
mobs:
  goat:
    width: 0.9
    height: 1.3
    stepHeight: 1
    maxFallDistance: 10
    malus:
      powder_snow: -1
  zombie:
    width: 0.6
    height: 1.95
    mode: walk
`))
	require.NoError(t, err)

	assert.Equal(t, 512, cfg.Pathfinding.MaxVisitedNodes)
	assert.Equal(t, 0, cfg.Pathfinding.ReachRange)
	assert.Equal(t, float32(16), cfg.Pathfinding.MaxRange, "unset keys keep their default")
	assert.Contains(t, cfg.Mobs, "bee")

	goat, err := cfg.Profile("goat")
	require.NoError(t, err)
	table, err := goat.MalusTable()
	require.NoError(t, err)
	assert.Equal(t, map[path.PathType]float32{path.PowderSnow: -1}, table)
	mode, err := goat.MovementMode()
	require.NoError(t, err)
	assert.Equal(t, path.ModeWalk, mode)

	zombie, err := cfg.Profile("zombie")
	require.NoError(t, err)
	assert.False(t, zombie.CanPassDoors, "a profile in the document replaces the default one")
}

func TestParseConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"budget":     "pathfinding: {maxVisitedNodes: 0}",
		"multiplier": "pathfinding: {visitedNodeMultiplier: -1}",
		"range":      "pathfinding: {maxRange: 0}",
		"reach":      "pathfinding: {reachRange: -2}",
		"repath":     "pathfinding: {repathInterval: 0}",
		"cache":      "pathfinding: {cacheSize: -1}",
		"size":       "mobs: {blob: {width: 0, height: 1}}",
		"step":       "mobs: {blob: {width: 1, height: 1, stepHeight: -1}}",
		"mode":       "mobs: {blob: {width: 1, height: 1, mode: burrow}}",
		"malus":      "mobs: {blob: {width: 1, height: 1, malus: {LAVA_LAKE: 1}}}",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := ParseConfig([]byte("pathfinding: [1, 2"))
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "nav.yaml")
	require.NoError(t, os.WriteFile(file, []byte("pathfinding: {seaLevel: 40}\n"), 0o644))
	cfg, err = LoadConfig(file)
	require.NoError(t, err)
	assert.Equal(t, int32(40), cfg.Pathfinding.SeaLevel)
}

func TestProfileUnknownMob(t *testing.T) {
	_, err := DefaultConfig().Profile("ghast")
	assert.ErrorIs(t, err, ErrUnknownMob)
}

func TestEnvironmentOptions(t *testing.T) {
	m := voxel.NewMap(-16, 64)
	p := DefaultConfig().Pathfinding
	p.SeaLevel = 12
	p.CacheSize = 1000

	env := path.NewEnvironment(m, p.EnvironmentOptions()...)
	require.NotNil(t, env.Cache())
	assert.Equal(t, 1024, env.Cache().Capacity())
	assert.Equal(t, int32(12), env.SeaLevel())

	p.CacheSize = 0
	assert.Nil(t, path.NewEnvironment(m, p.EnvironmentOptions()...).Cache())
}
