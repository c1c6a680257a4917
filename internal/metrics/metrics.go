// Package metrics exposes Prometheus instrumentation for the discovery
// pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	// EngineCalls counts engine invocations by engine and outcome
	// ("ok", "error", "cached").
	EngineCalls = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "prospector_engine_calls_total",
		Help: "Discovery engine calls by engine and outcome.",
	}, []string{"engine", "outcome"})

	// EngineCallSeconds observes engine call latency.
	EngineCallSeconds = promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
		Name:    "prospector_engine_call_seconds",
		Help:    "Discovery engine call duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"engine"})

	// CacheHits counts searches served from cache.
	CacheHits = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "prospector_cache_hits_total",
		Help: "Searches served from the cache.",
	})

	// Searches counts orchestrated searches by query kind.
	Searches = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "prospector_searches_total",
		Help: "Orchestrated searches by query kind.",
	}, []string{"kind"})
)

// Handler serves the package registry for scraping.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
