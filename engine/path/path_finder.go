package path

import (
	"fmt"
	"math"
	"time"

	"github.com/memmaker/voxelnav/engine/voxel"
	"github.com/pkg/errors"
)

// HeuristicInflation scales the heuristic of every expanded neighbour. Values
// above one trade optimality for fewer expanded nodes.
const HeuristicInflation float32 = 1.5

type SearchState uint8

const (
	StateIdle SearchState = iota
	StatePrepared
	StateSearching
	StateTerminated
)

func (s SearchState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePrepared:
		return "prepared"
	case StateSearching:
		return "searching"
	case StateTerminated:
		return "terminated"
	}
	return "unknown"
}

type Outcome uint8

const (
	OutcomeNoStart Outcome = iota
	OutcomeReached
	OutcomePartial
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoStart:
		return "no_start"
	case OutcomeReached:
		return "reached"
	case OutcomePartial:
		return "partial"
	}
	return "unknown"
}

// SearchStats describe the last FindPath call of a PathFinder.
type SearchStats struct {
	Mode     Mode
	Targets  int
	Budget   int
	Visited  int
	Expanded int
	Nodes    int
	Duration time.Duration
	Outcome  Outcome
}

func (s SearchStats) String() string {
	return fmt.Sprintf("%s search: %s after %d/%d pops, %d neighbours, %d nodes in %s",
		s.Mode, s.Outcome, s.Visited, s.Budget, s.Expanded, s.Nodes, s.Duration)
}

// PathFinder runs a budgeted multi target A* over the graph of a
// NodeEvaluator. A PathFinder is not safe for concurrent use; give every
// worker its own.
type PathFinder struct {
	evaluator       NodeEvaluator
	maxVisitedNodes int
	open            *BinaryHeap
	neighbors       [MaxNeighbors]*Node
	state           SearchState
	stats           SearchStats
	profiler        SearchProfiler
}

type FinderOption func(*PathFinder)

// WithProfiler reports search internals to p.
func WithProfiler(p SearchProfiler) FinderOption {
	return func(f *PathFinder) {
		f.profiler = p
	}
}

func NewPathFinder(evaluator NodeEvaluator, maxVisitedNodes int, opts ...FinderOption) *PathFinder {
	f := &PathFinder{
		evaluator:       evaluator,
		maxVisitedNodes: maxVisitedNodes,
		open:            NewBinaryHeap(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *PathFinder) Evaluator() NodeEvaluator {
	return f.evaluator
}

func (f *PathFinder) MaxVisitedNodes() int {
	return f.maxVisitedNodes
}

func (f *PathFinder) SetMaxVisitedNodes(n int) {
	f.maxVisitedNodes = n
}

func (f *PathFinder) State() SearchState {
	return f.state
}

func (f *PathFinder) LastStats() SearchStats {
	return f.stats
}

type goal struct {
	target *Target
	pos    voxel.Int3
}

// FindPath searches from the mob's position towards every target at once.
// Nodes farther than maxRange walked distance from the start are not
// expanded; a target counts as reached once a popped node lies within
// reachRange manhattan distance. The first reached target ends the search.
// When no target is reached, the path towards the closest approach is
// returned with CanReach false. FindPath returns nil only when the mob has no
// start node.
func (f *PathFinder) FindPath(env *Environment, mob Mob, targets []voxel.Int3, maxRange float32, reachRange int, multiplier float32) *Path {
	began := time.Now()
	var hits, misses uint64
	if env.Cache() != nil {
		hits, misses = env.Cache().Stats()
	}
	f.open.Clear()
	f.stats = SearchStats{Mode: f.evaluator.Mode()}
	f.evaluator.Prepare(env, mob)
	f.state = StatePrepared
	defer func() {
		f.evaluator.Done()
		f.state = StateTerminated
		f.stats.Duration = time.Since(began)
		if env.Cache() != nil {
			h, m := env.Cache().Stats()
			recordCacheStats(h-hits, m-misses)
		}
		recordSearch(f.stats)
		if f.profiler != nil {
			f.profiler.RecordSearch(f.stats)
		}
		logSearch(f.stats)
	}()

	start := f.evaluator.Start()
	if start == nil {
		f.stats.Outcome = OutcomeNoStart
		return nil
	}
	goals := f.goals(targets)
	f.stats.Targets = len(goals)
	if len(goals) == 0 {
		f.stats.Outcome = OutcomeNoStart
		return nil
	}
	f.state = StateSearching
	return f.search(start, goals, maxRange, reachRange, multiplier)
}

// goals converts the target coordinates in input order, dropping duplicates.
func (f *PathFinder) goals(targets []voxel.Int3) []goal {
	seen := make(map[voxel.Int3]bool, len(targets))
	result := make([]goal, 0, len(targets))
	for _, pos := range targets {
		if seen[pos] {
			continue
		}
		seen[pos] = true
		t := f.evaluator.Target(float64(pos.X), float64(pos.Y), float64(pos.Z))
		result = append(result, goal{target: t, pos: pos})
	}
	return result
}

func (f *PathFinder) search(start *Node, goals []goal, maxRange float32, reachRange int, multiplier float32) *Path {
	start.g = 0
	start.h = f.bestHeuristic(start, goals)
	start.f = start.h
	f.open.Insert(start)

	budget := int(math.Floor(float64(f.maxVisitedNodes) * float64(multiplier)))
	f.stats.Budget = budget
	var reached []goal
	for !f.open.IsEmpty() {
		if f.stats.Visited >= budget {
			break
		}
		current := f.open.Pop()
		f.stats.Visited++
		current.closed = true
		f.bestHeuristic(current, goals)
		for _, g := range goals {
			if current.DistanceManhattan(&g.target.Node) <= float32(reachRange) {
				g.target.SetReached(current)
				reached = append(reached, g)
			}
		}
		if len(reached) > 0 {
			break
		}
		if current.DistanceTo(start) >= maxRange {
			continue
		}
		f.expand(current, goals, maxRange)
	}
	if counter, ok := f.evaluator.(interface{ NodeCount() int }); ok {
		f.stats.Nodes = counter.NodeCount()
	}
	f.open.Clear()

	var best *Path
	if len(reached) > 0 {
		for _, g := range reached {
			p := reconstructPath(g.target.BestNode(), g.pos, true)
			if best == nil || p.NodeCount() < best.NodeCount() {
				best = p
			}
		}
		f.stats.Outcome = OutcomeReached
		return best
	}
	for _, g := range goals {
		if g.target.BestNode() == nil {
			continue
		}
		p := reconstructPath(g.target.BestNode(), g.pos, false)
		if best == nil || p.DistToTarget() < best.DistToTarget() ||
			(p.DistToTarget() == best.DistToTarget() && p.NodeCount() < best.NodeCount()) {
			best = p
		}
	}
	f.stats.Outcome = OutcomePartial
	return best
}

func (f *PathFinder) expand(current *Node, goals []goal, maxRange float32) {
	count := f.evaluator.Neighbors(f.neighbors[:], current)
	if count < 0 || count > len(f.neighbors) {
		panic(errors.Errorf("evaluator %s returned %d neighbours", f.evaluator.Mode(), count))
	}
	f.stats.Expanded += count
	if f.profiler != nil {
		f.profiler.RecordNodeExpanded()
		f.profiler.RecordNeighborGeneration(count)
	}
	for _, neighbor := range f.neighbors[:count] {
		step := current.DistanceTo(neighbor)
		neighbor.walkedDistance = current.walkedDistance + step
		g := current.g + step + neighbor.CostMalus
		if neighbor.walkedDistance >= maxRange || (neighbor.InOpenSet() && g >= neighbor.g) {
			continue
		}
		neighbor.cameFrom = current
		neighbor.g = g
		neighbor.h = f.heuristic(neighbor, goals) * HeuristicInflation
		if neighbor.InOpenSet() {
			f.open.ChangeCost(neighbor, neighbor.g+neighbor.h)
		} else {
			neighbor.f = neighbor.g + neighbor.h
			f.open.Insert(neighbor)
		}
	}
}

func (f *PathFinder) heuristic(n *Node, goals []goal) float32 {
	if f.profiler != nil {
		f.profiler.RecordHeuristicEvaluation()
	}
	h := float32(math.MaxFloat32)
	for _, g := range goals {
		h = min(h, n.DistanceTo(&g.target.Node))
	}
	return h
}

// bestHeuristic is the heuristic of n that also records n as the best node
// of every target it is closest to so far.
func (f *PathFinder) bestHeuristic(n *Node, goals []goal) float32 {
	h := float32(math.MaxFloat32)
	for _, g := range goals {
		d := n.DistanceTo(&g.target.Node)
		g.target.UpdateBest(d, n)
		h = min(h, d)
	}
	return h
}

func reconstructPath(end *Node, target voxel.Int3, reached bool) *Path {
	var reversed []*Node
	for n := end; n != nil; n = n.cameFrom {
		reversed = append(reversed, n)
	}
	nodes := make([]*Node, len(reversed))
	for i, n := range reversed {
		nodes[len(reversed)-1-i] = n.CloneAndMove(n.X, n.Y, n.Z)
	}
	for i := 1; i < len(nodes); i++ {
		nodes[i].cameFrom = nodes[i-1]
	}
	if len(nodes) > 0 {
		nodes[0].cameFrom = nil
	}
	return NewPath(nodes, target, reached)
}
