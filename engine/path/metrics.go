package path

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds the search metrics. Embedding applications mount it
// next to their own registry, e.g. with promhttp.HandlerFor.
var MetricsRegistry = prometheus.NewRegistry()

var (
	searchTotal = promauto.With(MetricsRegistry).NewCounterVec(prometheus.CounterOpts{
		Name: "voxelnav_path_searches_total",
		Help: "Completed path searches by movement mode and outcome",
	}, []string{"mode", "outcome"})

	searchDuration = promauto.With(MetricsRegistry).NewHistogramVec(prometheus.HistogramOpts{
		Name:    "voxelnav_path_search_duration_seconds",
		Help:    "Wall time of a single path search",
		Buckets: prometheus.ExponentialBuckets(0.00005, 2, 14),
	}, []string{"mode"})

	searchVisited = promauto.With(MetricsRegistry).NewHistogramVec(prometheus.HistogramOpts{
		Name:    "voxelnav_path_search_visited_nodes",
		Help:    "Nodes popped from the open set per search",
		Buckets: prometheus.ExponentialBuckets(8, 2, 10),
	}, []string{"mode"})

	pathTypeCacheHits = promauto.With(MetricsRegistry).NewCounter(prometheus.CounterOpts{
		Name: "voxelnav_path_type_cache_hits_total",
		Help: "Path type lookups answered from the environment cache",
	})

	pathTypeCacheMisses = promauto.With(MetricsRegistry).NewCounter(prometheus.CounterOpts{
		Name: "voxelnav_path_type_cache_misses_total",
		Help: "Path type lookups that had to classify the block",
	})
)

func recordSearch(stats SearchStats) {
	mode := stats.Mode.String()
	searchTotal.WithLabelValues(mode, stats.Outcome.String()).Inc()
	if stats.Outcome == OutcomeNoStart {
		return
	}
	searchDuration.WithLabelValues(mode).Observe(stats.Duration.Seconds())
	searchVisited.WithLabelValues(mode).Observe(float64(stats.Visited))
}

func recordCacheStats(hits, misses uint64) {
	pathTypeCacheHits.Add(float64(hits))
	pathTypeCacheMisses.Add(float64(misses))
}
