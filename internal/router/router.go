// Package router decides which discovery engine serves a request, tracking
// rolling per-engine usage against configured budgets.
package router

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/metrics"
)

// Engine identifies an external discovery provider.
type Engine string

const (
	// EngineExa is the relevance-ranked neural search engine. It is the
	// most rate-limited tier and serves only as a reserve fallback.
	EngineExa Engine = "exa"
	// EngineSerper is the web-search-style engine.
	EngineSerper Engine = "serper"
	// EngineApollo is the cohort-discovery engine.
	EngineApollo Engine = "apollo"
)

// Engines lists all routable engines.
var Engines = []Engine{EngineExa, EngineSerper, EngineApollo}

// Budgets holds the configured calls-per-window ceiling for each engine.
// A zero budget means the engine is never routed to.
type Budgets struct {
	Exa    int64
	Serper int64
	Apollo int64
}

// Usage is a read-only view of one engine's rolling counter.
type Usage struct {
	Count   int64   `json:"count"`
	Budget  int64   `json:"budget"`
	PctUsed float64 `json:"pct_used"`
}

// Router picks engines per request based on the rolling usage counters.
// It is shared across concurrent requests; counters are atomic so two
// requests never corrupt a count, though a request may borrow the last
// slot another request was about to take. That race is tolerated: budgets
// bound provider load, they are not billing records.
//
// Routers are injected, never package globals, so tests get a fresh
// instance per case.
type Router struct {
	budgets Budgets

	exaCount    atomic.Int64
	serperCount atomic.Int64
	apolloCount atomic.Int64
}

// New creates a Router with the given budgets and zeroed counters.
func New(budgets Budgets) *Router {
	return &Router{budgets: budgets}
}

// PickDiscoveryEngine selects the engine for a descriptive cohort query.
// Apollo is preferred; when its budget is exhausted we degrade to Serper.
func (r *Router) PickDiscoveryEngine() Engine {
	if r.hasHeadroom(EngineApollo) {
		return EngineApollo
	}
	zap.L().Debug("router: apollo budget exhausted, degrading to serper")
	return EngineSerper
}

// PickNameEngine selects the engine for a specific company-name lookup.
// Serper is preferred for name lookups; Apollo is the degraded tier.
func (r *Router) PickNameEngine() Engine {
	if r.hasHeadroom(EngineSerper) {
		return EngineSerper
	}
	zap.L().Debug("router: serper budget exhausted, degrading to apollo")
	return EngineApollo
}

// ExaFallbackAllowed gates the reserve engine: true only while Exa's usage
// remains below its budget.
func (r *Router) ExaFallbackAllowed() bool {
	return r.hasHeadroom(EngineExa)
}

// RecordUsage increments the rolling counter for an engine. Callers must
// skip this for cache-served results: cache hits consume no budget.
func (r *Router) RecordUsage(engine Engine) {
	if c := r.counter(engine); c != nil {
		c.Add(1)
	}
}

// UsageSummary returns a snapshot of every engine's counter for operators
// and tests.
func (r *Router) UsageSummary() map[Engine]Usage {
	out := make(map[Engine]Usage, len(Engines))
	for _, e := range Engines {
		count := r.counter(e).Load()
		budget := r.budget(e)
		u := Usage{Count: count, Budget: budget}
		if budget > 0 {
			u.PctUsed = float64(count) / float64(budget) * 100
		}
		out[e] = u
	}
	return out
}

// ResetWindow zeroes all counters. It is the hook invoked on a rolling
// window boundary by whatever scheduler owns the window.
func (r *Router) ResetWindow() {
	r.exaCount.Store(0)
	r.serperCount.Store(0)
	r.apolloCount.Store(0)
	zap.L().Info("router: usage window reset")
}

func (r *Router) hasHeadroom(engine Engine) bool {
	return r.counter(engine).Load() < r.budget(engine)
}

func (r *Router) counter(engine Engine) *atomic.Int64 {
	switch engine {
	case EngineExa:
		return &r.exaCount
	case EngineSerper:
		return &r.serperCount
	case EngineApollo:
		return &r.apolloCount
	default:
		return nil
	}
}

func (r *Router) budget(engine Engine) int64 {
	switch engine {
	case EngineExa:
		return r.budgets.Exa
	case EngineSerper:
		return r.budgets.Serper
	case EngineApollo:
		return r.budgets.Apollo
	default:
		return 0
	}
}

// ObserveCall records an engine call outcome in the Prometheus counters.
func ObserveCall(engine Engine, outcome string) {
	metrics.EngineCalls.WithLabelValues(string(engine), outcome).Inc()
}
