package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stockdex",
			Name:      "search_requests_total",
			Help:      "Total number of search requests",
		},
		[]string{"sort", "outcome"}, // outcome: ok, empty, validation, configuration, timeout, error
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stockdex",
			Name:      "search_duration_seconds",
			Help:      "Search pipeline duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"fallback"},
	)

	SearchCandidates = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stockdex",
			Name:      "search_candidates",
			Help:      "Candidate rows per pipeline stage",
			Buckets:   []float64{0, 1, 5, 10, 50, 100, 250, 500, 1200, 2500},
		},
		[]string{"stage"}, // primary, fallback_window, fallback_kept, filtered
	)

	SearchFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stockdex",
			Name:      "search_fallback_total",
			Help:      "Fuzzy fallback activations by result",
		},
		[]string{"result"}, // "hit" / "miss" / "no_seed"
	)

	AliasReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stockdex",
			Name:      "alias_reloads_total",
			Help:      "Brand alias map reloads",
		},
		[]string{"status"}, // "ok" / "error"
	)

	AliasGroups = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "stockdex",
			Name:      "alias_groups",
			Help:      "Canonical brand groups in the active alias map",
		},
	)

	ResultCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stockdex",
			Name:      "result_cache_total",
			Help:      "Search result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchCandidates)
	prometheus.MustRegister(SearchFallbackTotal)
	prometheus.MustRegister(AliasReloadsTotal)
	prometheus.MustRegister(AliasGroups)
	prometheus.MustRegister(ResultCacheTotal)
	searchMetricsRegistered = true
}
