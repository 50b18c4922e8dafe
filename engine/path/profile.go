package path

import (
	"sync/atomic"
	"time"

	"github.com/memmaker/voxelnav/engine/util"
)

// SearchProfiler captures instrumentation hooks of a PathFinder.
type SearchProfiler interface {
	RecordHeuristicEvaluation()
	RecordNodeExpanded()
	RecordNeighborGeneration(count int)
	RecordSearch(stats SearchStats)
}

// SearchMetrics accumulates profiling counters across searches. It may be
// shared by finders running on different goroutines.
type SearchMetrics struct {
	searches             atomic.Int64
	reached              atomic.Int64
	partial              atomic.Int64
	noStart              atomic.Int64
	searchTime           atomic.Int64
	visited              atomic.Int64
	heuristicEvaluations atomic.Int64
	nodesExpanded        atomic.Int64
	neighborGenerations  atomic.Int64
	neighborCount        atomic.Int64
}

// MetricsSnapshot is a point in time copy of SearchMetrics.
type MetricsSnapshot struct {
	Searches             int64
	Reached              int64
	Partial              int64
	NoStart              int64
	SearchTime           time.Duration
	Visited              int64
	HeuristicEvaluations int64
	NodesExpanded        int64
	NeighborGenerations  int64
	NeighborCount        int64
}

// AverageNeighbors is the mean neighbour count per expanded node.
func (s MetricsSnapshot) AverageNeighbors() float64 {
	if s.NeighborGenerations == 0 {
		return 0
	}
	return float64(s.NeighborCount) / float64(s.NeighborGenerations)
}

// Profiler returns a SearchProfiler backed by this metric set.
func (m *SearchMetrics) Profiler() SearchProfiler {
	if m == nil {
		return nil
	}
	return (*metricsProfiler)(m)
}

func (m *SearchMetrics) Reset() {
	if m == nil {
		return
	}
	m.searches.Store(0)
	m.reached.Store(0)
	m.partial.Store(0)
	m.noStart.Store(0)
	m.searchTime.Store(0)
	m.visited.Store(0)
	m.heuristicEvaluations.Store(0)
	m.nodesExpanded.Store(0)
	m.neighborGenerations.Store(0)
	m.neighborCount.Store(0)
}

func (m *SearchMetrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		Searches:             m.searches.Load(),
		Reached:              m.reached.Load(),
		Partial:              m.partial.Load(),
		NoStart:              m.noStart.Load(),
		SearchTime:           time.Duration(m.searchTime.Load()),
		Visited:              m.visited.Load(),
		HeuristicEvaluations: m.heuristicEvaluations.Load(),
		NodesExpanded:        m.nodesExpanded.Load(),
		NeighborGenerations:  m.neighborGenerations.Load(),
		NeighborCount:        m.neighborCount.Load(),
	}
}

type metricsProfiler SearchMetrics

func (m *metricsProfiler) RecordHeuristicEvaluation() {
	(*SearchMetrics)(m).heuristicEvaluations.Add(1)
}

func (m *metricsProfiler) RecordNodeExpanded() {
	(*SearchMetrics)(m).nodesExpanded.Add(1)
}

func (m *metricsProfiler) RecordNeighborGeneration(count int) {
	metrics := (*SearchMetrics)(m)
	metrics.neighborGenerations.Add(1)
	metrics.neighborCount.Add(int64(count))
}

func (m *metricsProfiler) RecordSearch(stats SearchStats) {
	metrics := (*SearchMetrics)(m)
	metrics.searches.Add(1)
	metrics.searchTime.Add(stats.Duration.Nanoseconds())
	metrics.visited.Add(int64(stats.Visited))
	switch stats.Outcome {
	case OutcomeReached:
		metrics.reached.Add(1)
	case OutcomePartial:
		metrics.partial.Add(1)
	case OutcomeNoStart:
		metrics.noStart.Add(1)
	}
}

func logSearch(stats SearchStats) {
	util.LogPathDebug("search finished",
		"mode", stats.Mode.String(),
		"outcome", stats.Outcome.String(),
		"visited", stats.Visited,
		"budget", stats.Budget,
		"expanded", stats.Expanded,
		"nodes", stats.Nodes,
		"duration", stats.Duration,
	)
	if stats.Outcome == OutcomePartial && stats.Budget > 0 && stats.Visited >= stats.Budget {
		util.LogPathWarning("search budget exhausted", "mode", stats.Mode.String(), "budget", stats.Budget)
	}
}
