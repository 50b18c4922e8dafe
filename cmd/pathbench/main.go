package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/memmaker/voxelnav/engine/path"
	"github.com/memmaker/voxelnav/engine/util"
	"github.com/memmaker/voxelnav/engine/voxel"
	"github.com/memmaker/voxelnav/game"
	"github.com/pkg/errors"
)

func main() {
	var (
		mapFile          = flag.String("map", "", "voxel map (gzip NBT) to search in; empty uses a built-in arena")
		constructionFile = flag.String("construction", "", "Amulet .construction file to search in")
		configFile       = flag.String("config", "", "YAML config with pathfinding settings and mob profiles")
		mobName          = flag.String("mob", "zombie", "mob profile to search for")
		fromFlag         = flag.String("from", "0,0,0", "start cell x,y,z")
		toFlag           = flag.String("to", "5,0,0", "target cells x,y,z separated by ';'")
		runs             = flag.Int("runs", 100, "number of timed searches")
		moveBudget       = flag.Float64("range", 0, "print the movement range for this cost budget instead of searching")
		render           = flag.Bool("render", false, "draw the layer of the start cell with the path as ASCII")
		snap             = flag.Bool("snap", true, "move the start cell down onto the ground below it")
		outFile          = flag.String("out", "", "write the last path as NBT to this file")
		debug            = flag.Bool("debug", false, "log every search")
	)
	flag.Parse()

	if *debug {
		util.GLOBAL_LOG_LEVEL = util.LogLevelDebug
		util.GLOBAL_LOG_CATEGORIES |= util.LogNavigation
		util.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	if err := run(options{
		mapFile:          *mapFile,
		constructionFile: *constructionFile,
		configFile:       *configFile,
		mobName:          *mobName,
		from:             *fromFlag,
		to:               *toFlag,
		runs:             *runs,
		moveBudget:       float32(*moveBudget),
		render:           *render,
		snap:             *snap,
		outFile:          *outFile,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "pathbench: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	mapFile          string
	constructionFile string
	configFile       string
	mobName          string
	from             string
	to               string
	runs             int
	moveBudget       float32
	render           bool
	snap             bool
	outFile          string
}

func run(opts options) error {
	if opts.runs <= 0 {
		return errors.New("runs must be positive")
	}
	cfg, err := game.LoadConfig(opts.configFile)
	if err != nil {
		return err
	}
	profile, err := cfg.Profile(opts.mobName)
	if err != nil {
		return err
	}
	voxelMap, err := loadMap(opts.mapFile, opts.constructionFile)
	if err != nil {
		return err
	}
	start, err := parseInt3(opts.from)
	if err != nil {
		return errors.Wrap(err, "from")
	}
	if opts.snap {
		start = voxelMap.GetGroundPosition(start)
	}
	var targets []voxel.Int3
	for _, part := range strings.Split(opts.to, ";") {
		target, err := parseInt3(part)
		if err != nil {
			return errors.Wrap(err, "to")
		}
		targets = append(targets, target)
	}

	env := path.NewEnvironment(voxelMap, cfg.Pathfinding.EnvironmentOptions()...)
	env.Watch(voxelMap)
	mob, err := game.NewMob(opts.mobName, profile, voxelMap, start.ToBlockCenterVec3())
	if err != nil {
		return err
	}

	if opts.moveBudget > 0 {
		return printMovementRange(env, mob, voxelMap, opts.moveBudget, cfg.Pathfinding.MaxVisitedNodes)
	}

	evaluator, err := game.NewEvaluator(profile)
	if err != nil {
		return err
	}
	metrics := &path.SearchMetrics{}
	finder := path.NewPathFinder(evaluator, cfg.Pathfinding.MaxVisitedNodes, path.WithProfiler(metrics.Profiler()))
	timer := util.NewTimer()
	var result *path.Path
	for i := 0; i < opts.runs; i++ {
		stop := timer.Start("search")
		result = finder.FindPath(env, mob, targets, cfg.Pathfinding.MaxRange, cfg.Pathfinding.ReachRange, cfg.Pathfinding.VisitedNodeMultiplier)
		stop()
	}

	fmt.Print(timer.String())
	fmt.Println(finder.LastStats())
	snapshot := metrics.Snapshot()
	fmt.Printf("searches: %d reached: %d partial: %d no start: %d avg neighbours: %.2f\n",
		snapshot.Searches, snapshot.Reached, snapshot.Partial, snapshot.NoStart, snapshot.AverageNeighbors())
	if hits, misses := cacheStats(env); hits+misses > 0 {
		fmt.Printf("path type cache: %d hits, %d misses (%.1f%% hit rate)\n", hits, misses, 100*float64(hits)/float64(hits+misses))
	}
	if err := printRegistry(); err != nil {
		return err
	}

	if result == nil {
		fmt.Println("no path: mob cannot start at", start)
		return nil
	}
	fmt.Printf("%s reached=%v end=%s dist=%.0f\n", result, result.CanReach(), result.EndNodePos(), result.DistToTarget())
	for i := 0; i < result.NodeCount(); i++ {
		n := result.Node(i)
		fmt.Printf("  %s %s malus=%.0f\n", n.Pos(), n.Type, n.CostMalus)
	}
	if opts.render {
		overlay := make(map[voxel.Int3]rune)
		for i := 0; i < result.NodeCount(); i++ {
			overlay[result.NodePos(i)] = '*'
		}
		overlay[start] = 'S'
		for _, target := range targets {
			overlay[target] = 'T'
		}
		fmt.Print(renderAround(voxelMap, start, targets, overlay))
	}
	if opts.outFile != "" {
		data, err := result.MarshalNBT()
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.outFile, data, 0o644); err != nil {
			util.LogIOError("could not write path", "file", opts.outFile, "err", err)
			return errors.Wrapf(err, "write %s", opts.outFile)
		}
		util.LogIOInfo("wrote path", "file", opts.outFile, "nodes", result.NodeCount())
	}
	return nil
}

func loadMap(mapFile, constructionFile string) (*voxel.Map, error) {
	switch {
	case mapFile != "":
		return voxel.LoadMapFromFile(mapFile)
	case constructionFile != "":
		construction, err := voxel.LoadConstruction(constructionFile)
		if err != nil {
			return nil, err
		}
		return voxel.NewMapFromConstruction(construction, voxel.Int3{}), nil
	}
	return arena(), nil
}

// arena is a walled 16x16 floor with a wall segment, a pond and a fence.
func arena() *voxel.Map {
	m := voxel.NewMap(voxel.DefaultMinY, voxel.DefaultMaxY)
	m.Fill(voxel.Int3{X: -8, Y: -1, Z: -8}, voxel.Int3{X: 8, Y: -1, Z: 8}, voxel.Stone)
	m.Fill(voxel.Int3{X: -8, Y: 0, Z: -8}, voxel.Int3{X: 8, Y: 1, Z: -8}, voxel.Stone)
	m.Fill(voxel.Int3{X: -8, Y: 0, Z: 8}, voxel.Int3{X: 8, Y: 1, Z: 8}, voxel.Stone)
	m.Fill(voxel.Int3{X: -8, Y: 0, Z: -8}, voxel.Int3{X: -8, Y: 1, Z: 8}, voxel.Stone)
	m.Fill(voxel.Int3{X: 8, Y: 0, Z: -8}, voxel.Int3{X: 8, Y: 1, Z: 8}, voxel.Stone)
	m.Fill(voxel.Int3{X: 2, Y: 0, Z: -3}, voxel.Int3{X: 2, Y: 1, Z: 3}, voxel.Stone)
	m.Fill(voxel.Int3{X: -5, Y: -3, Z: 3}, voxel.Int3{X: -2, Y: -1, Z: 6}, voxel.Water)
	m.Fill(voxel.Int3{X: 4, Y: 0, Z: 4}, voxel.Int3{X: 6, Y: 0, Z: 4}, voxel.NewBlock(voxel.KindFence))
	return m
}

func printMovementRange(env *path.Environment, mob *game.Mob, voxelMap *voxel.Map, budget float32, maxVisited int) error {
	movementRange, err := game.NewMovementRange(env, mob, budget, maxVisited)
	if err != nil {
		return err
	}
	targets := movementRange.ValidTargets()
	fmt.Printf("%d cells within %.1f\n", len(targets), budget)
	overlay := make(map[voxel.Int3]rune, len(targets))
	for _, pos := range targets {
		overlay[pos] = '+'
	}
	start := mob.BlockPosition()
	overlay[start] = 'S'
	fmt.Print(renderAround(voxelMap, start, targets, overlay))
	return nil
}

func renderAround(voxelMap *voxel.Map, center voxel.Int3, extra []voxel.Int3, overlay map[voxel.Int3]rune) string {
	minX, maxX, minZ, maxZ := center.X-2, center.X+2, center.Z-2, center.Z+2
	for _, p := range extra {
		minX, maxX = min(minX, p.X-2), max(maxX, p.X+2)
		minZ, maxZ = min(minZ, p.Z-2), max(maxZ, p.Z+2)
	}
	layer := make(map[voxel.Int3]rune)
	for pos, r := range overlay {
		layer[voxel.Int3{X: pos.X, Y: center.Y, Z: pos.Z}] = r
	}
	return voxelMap.Render2D(center.Y, minX, maxX, minZ, maxZ, layer)
}

func cacheStats(env *path.Environment) (uint64, uint64) {
	if env.Cache() == nil {
		return 0, 0
	}
	return env.Cache().Stats()
}

func printRegistry() error {
	families, err := path.MetricsRegistry.Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			var labels []string
			for _, pair := range metric.GetLabel() {
				labels = append(labels, pair.GetName()+"="+pair.GetValue())
			}
			switch {
			case metric.GetCounter() != nil:
				fmt.Printf("%s{%s} %.0f\n", family.GetName(), strings.Join(labels, ","), metric.GetCounter().GetValue())
			case metric.GetHistogram() != nil:
				h := metric.GetHistogram()
				fmt.Printf("%s{%s} count=%d sum=%g\n", family.GetName(), strings.Join(labels, ","), h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
	return nil
}

func parseInt3(s string) (voxel.Int3, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 3 {
		return voxel.Int3{}, errors.Errorf("expected x,y,z, got %q", s)
	}
	var coords [3]int32
	for i, part := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(part), 10, 32)
		if err != nil {
			return voxel.Int3{}, errors.Wrapf(err, "coordinate %q", part)
		}
		coords[i] = int32(v)
	}
	return voxel.Int3{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}
