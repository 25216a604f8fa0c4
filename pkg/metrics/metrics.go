package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Remote fetch latency (seconds)
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "milestones_fetch_duration_seconds",
			Help:    "Remote data fetch duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		},
		[]string{"operation", "status"},
	)

	// Fallback data served instead of remote data
	FallbackCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "milestones_fallback_total",
			Help: "Total number of times fallback data was served",
		},
		[]string{"source"}, // source: projects, issues, changelog
	)

	// Cache lookups by outcome
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "milestones_cache_lookups_total",
			Help: "Total number of cache lookups",
		},
		[]string{"cache", "result"}, // result: hit, miss
	)

	// Changelog entries produced per build
	ChangelogEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "milestones_changelog_entries",
			Help: "Number of entries in the last assembled changelog",
		},
	)
)

// RecordFetch records the duration of a remote fetch.
func RecordFetch(operation string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	FetchDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

// RecordFallback counts a fallback for the given data source.
func RecordFallback(source string) {
	FallbackCount.WithLabelValues(source).Inc()
}

// RecordCacheLookup counts a cache hit or miss.
func RecordCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(cache, result).Inc()
}
