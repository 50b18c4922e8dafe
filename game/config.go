package game

import (
	"os"
	"sort"

	"github.com/memmaker/voxelnav/engine/path"
	"github.com/memmaker/voxelnav/engine/util"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config bundles the search tuning with the mob profiles known to a world.
type Config struct {
	Pathfinding PathfindingConfig     `yaml:"pathfinding"`
	Mobs        map[string]MobProfile `yaml:"mobs"`
}

type PathfindingConfig struct {
	MaxVisitedNodes       int     `yaml:"maxVisitedNodes"`
	VisitedNodeMultiplier float32 `yaml:"visitedNodeMultiplier"`
	MaxRange              float32 `yaml:"maxRange"`
	ReachRange            int     `yaml:"reachRange"`
	RepathInterval        int     `yaml:"repathInterval"` // in ticks
	CacheSize             int     `yaml:"cacheSize"`      // 0 disables the path type cache
	SeaLevel              int32   `yaml:"seaLevel"`
}

// MobProfile describes the body and movement abilities of a kind of mob.
type MobProfile struct {
	Width           float32 `yaml:"width"`
	Height          float32 `yaml:"height"`
	StepHeight      float32 `yaml:"stepHeight"`
	MaxFallDistance int32   `yaml:"maxFallDistance"`
	Mode            string  `yaml:"mode"`

	CanPassDoors      bool `yaml:"canPassDoors"`
	CanOpenDoors      bool `yaml:"canOpenDoors"`
	CanFloat          bool `yaml:"canFloat"`
	CanWalkOverFences bool `yaml:"canWalkOverFences"`
	StandsOnLava      bool `yaml:"standsOnLava"`

	PrefersShallowSwimming bool `yaml:"prefersShallowSwimming"`
	AllowBreaching         bool `yaml:"allowBreaching"`

	// Malus overrides path type defaults, keyed by type name (e.g. WATER).
	Malus map[string]float32 `yaml:"malus"`
}

func (p MobProfile) Capabilities() path.Capabilities {
	return path.Capabilities{
		PassDoors:      p.CanPassDoors,
		OpenDoors:      p.CanOpenDoors,
		Float:          p.CanFloat,
		WalkOverFences: p.CanWalkOverFences,
	}
}

func (p MobProfile) MovementMode() (path.Mode, error) {
	return path.ParseMode(p.Mode)
}

// MalusTable resolves the type names of Malus.
func (p MobProfile) MalusTable() (map[path.PathType]float32, error) {
	table := make(map[path.PathType]float32, len(p.Malus))
	for name, malus := range p.Malus {
		t, err := path.ParsePathType(name)
		if err != nil {
			return nil, err
		}
		table[t] = malus
	}
	return table, nil
}

func (p MobProfile) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return errors.Errorf("mob size %gx%g must be positive", p.Width, p.Height)
	}
	if p.StepHeight < 0 {
		return errors.Errorf("negative step height %g", p.StepHeight)
	}
	if p.MaxFallDistance < 0 {
		return errors.Errorf("negative max fall distance %d", p.MaxFallDistance)
	}
	if _, err := p.MovementMode(); err != nil {
		return err
	}
	if _, err := p.MalusTable(); err != nil {
		return err
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Pathfinding: PathfindingConfig{
			MaxVisitedNodes:       256,
			VisitedNodeMultiplier: 1,
			MaxRange:              16,
			ReachRange:            1,
			RepathInterval:        20,
			CacheSize:             path.DefaultCacheSize,
			SeaLevel:              path.DefaultSeaLevel,
		},
		Mobs: map[string]MobProfile{
			"zombie": {
				Width: 0.6, Height: 1.95, StepHeight: 0.6, MaxFallDistance: 3,
				Mode:         "walk",
				CanPassDoors: true,
				CanFloat:     true,
			},
			"spider": {
				Width: 1.4, Height: 0.9, StepHeight: 0.6, MaxFallDistance: 3,
				Mode: "walk",
			},
			"bee": {
				Width: 0.7, Height: 0.6, StepHeight: 0.6, MaxFallDistance: 3,
				Mode:     "fly",
				CanFloat: true,
				Malus: map[string]float32{
					"DANGER_FIRE":  -1,
					"WATER":        -1,
					"WATER_BORDER": 16,
					"COCOA":        -1,
					"FENCE":        -1,
				},
			},
			"dolphin": {
				Width: 0.9, Height: 0.6, StepHeight: 0.6, MaxFallDistance: 3,
				Mode:           "swim",
				AllowBreaching: true,
				Malus:          map[string]float32{"WATER": 0},
			},
			"cod": {
				Width: 0.5, Height: 0.3, StepHeight: 0.6, MaxFallDistance: 3,
				Mode:  "swim",
				Malus: map[string]float32{"WATER": 0},
			},
			"frog": {
				Width: 0.5, Height: 0.5, StepHeight: 1, MaxFallDistance: 3,
				Mode:                   "amphibious",
				PrefersShallowSwimming: true,
				Malus: map[string]float32{
					"WATER":       4,
					"TRAPDOOR":    -1,
					"POWDER_SNOW": -1,
				},
			},
			"strider": {
				Width: 0.9, Height: 1.7, StepHeight: 0.6, MaxFallDistance: 3,
				Mode:         "walk",
				StandsOnLava: true,
				Malus: map[string]float32{
					"LAVA":        0,
					"DANGER_FIRE": 0,
					"DAMAGE_FIRE": 0,
					"WATER":       -1,
				},
			},
		},
	}
}

// LoadConfig reads a YAML config on top of DefaultConfig. An empty filename
// returns the defaults.
func LoadConfig(filename string) (*Config, error) {
	if filename == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", filename)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, errors.Wrapf(err, "load config %s", filename)
	}
	util.LogConfigInfo("loaded config", "file", filename, "mobs", len(cfg.Mobs))
	return cfg, nil
}

// ParseConfig decodes YAML on top of DefaultConfig and validates the result.
// Mob profiles of the document replace default profiles of the same name.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	p := c.Pathfinding
	if p.MaxVisitedNodes <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "maxVisitedNodes must be positive, got %d", p.MaxVisitedNodes)
	}
	if p.VisitedNodeMultiplier <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "visitedNodeMultiplier must be positive, got %g", p.VisitedNodeMultiplier)
	}
	if p.MaxRange <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "maxRange must be positive, got %g", p.MaxRange)
	}
	if p.ReachRange < 0 {
		return errors.Wrapf(ErrInvalidConfig, "reachRange must not be negative, got %d", p.ReachRange)
	}
	if p.RepathInterval <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "repathInterval must be positive, got %d", p.RepathInterval)
	}
	if p.CacheSize < 0 {
		return errors.Wrapf(ErrInvalidConfig, "cacheSize must not be negative, got %d", p.CacheSize)
	}
	for _, name := range c.MobNames() {
		if err := c.Mobs[name].Validate(); err != nil {
			return errors.Wrapf(ErrInvalidConfig, "mob %s: %v", name, err)
		}
	}
	return nil
}

// MobNames lists the profile names in sorted order.
func (c *Config) MobNames() []string {
	names := make([]string, 0, len(c.Mobs))
	for name := range c.Mobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Config) Profile(name string) (MobProfile, error) {
	profile, ok := c.Mobs[name]
	if !ok {
		return MobProfile{}, errors.Wrapf(ErrUnknownMob, "%q", name)
	}
	return profile, nil
}

// EnvironmentOptions turns the cache and sea level settings into options for
// path.NewEnvironment.
func (p PathfindingConfig) EnvironmentOptions() []path.EnvironmentOption {
	opts := []path.EnvironmentOption{path.WithSeaLevel(p.SeaLevel)}
	if p.CacheSize == 0 {
		return append(opts, path.WithoutCache())
	}
	return append(opts, path.WithCacheSize(p.CacheSize))
}
