package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search and semantic-ranking Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "markstash",
			Name:      "search_requests_total",
			Help:      "Total number of search requests",
		},
		[]string{"mode", "status"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "markstash",
			Name:      "search_duration_seconds",
			Help:      "Search execution duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"mode"},
	)

	SearchFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "markstash",
			Name:      "search_fallbacks_total",
			Help:      "Semantic searches that fell back to local ranking",
		},
	)

	SearchSuggestionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "markstash",
			Name:      "search_suggestions_total",
			Help:      "Searches that produced a spelling suggestion",
		},
	)

	SemanticRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "markstash",
			Name:      "semantic_requests_total",
			Help:      "Total number of semantic ranking requests",
		},
		[]string{"provider", "model", "status"},
	)

	SemanticRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "markstash",
			Name:      "semantic_request_duration_seconds",
			Help:      "Semantic ranking request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	SemanticTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "markstash",
			Name:      "semantic_tokens_total",
			Help:      "Total semantic ranking tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	SemanticCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "markstash",
			Name:      "semantic_cache_total",
			Help:      "Semantic ranking cache hits and misses",
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
	prometheus.MustRegister(SearchFallbacksTotal)
	prometheus.MustRegister(SearchSuggestionsTotal)
	prometheus.MustRegister(SemanticRequestsTotal)
	prometheus.MustRegister(SemanticRequestDuration)
	prometheus.MustRegister(SemanticTokensTotal)
	prometheus.MustRegister(SemanticCacheTotal)
	searchMetricsRegistered = true
}
