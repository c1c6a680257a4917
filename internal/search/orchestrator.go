// Package search runs the prospect discovery pipeline: classify the query,
// check the cache, route to a discovery engine with budget-aware fallback,
// then enrich, merge, and score the results.
package search

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/cache"
	"github.com/sells-group/prospector/internal/classify"
	"github.com/sells-group/prospector/internal/dedupe"
	"github.com/sells-group/prospector/internal/engine"
	"github.com/sells-group/prospector/internal/enrich"
	"github.com/sells-group/prospector/internal/icp"
	"github.com/sells-group/prospector/internal/metrics"
	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/resilience"
	"github.com/sells-group/prospector/internal/router"
	"github.com/sells-group/prospector/internal/store"
)

// Thresholds tune when a result set is strong enough to stop the fallback
// cascade, and how responses are cached. A result is weak, and the cascade
// continues, only when it misses MinResults and RelevanceFloor at once.
type Thresholds struct {
	// MinResults is the record count at which a result is strong
	// regardless of relevance.
	MinResults int

	// RelevanceFloor is the average engine-reported relevance at which
	// a result is strong regardless of size. Zero disables the floor.
	RelevanceFloor float64

	// CacheTTL bounds how long a response is served from cache.
	CacheTTL time.Duration

	// DefaultLimit applies when a request does not set one.
	DefaultLimit int
}

// DefaultThresholds returns the production defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinResults:     3,
		RelevanceFloor: 0.25,
		CacheTTL:       15 * time.Minute,
		DefaultLimit:   25,
	}
}

// Params wires an Orchestrator. Engines and Router are required; every
// other dependency is optional and skipped when nil.
type Params struct {
	Engines      map[router.Engine]engine.Engine
	Router       *router.Router
	Reformulator classify.Reformulator
	Cache        cache.Cache
	Enricher     *enrich.Enricher
	SearchLog    store.SearchLog
	Weights      icp.Weights
	Thresholds   Thresholds
	Retry        resilience.RetryPolicy
}

// Orchestrator executes searches end to end.
type Orchestrator struct {
	p        Params
	breakers map[router.Engine]*resilience.CircuitBreaker
	now      func() time.Time // injectable for testing
}

// New creates an Orchestrator from Params. A fully zero Thresholds struct is
// replaced with DefaultThresholds; a partially set one is used verbatim, so
// an explicit RelevanceFloor of 0 disables the floor. Each engine gets its
// own circuit breaker so one failing provider does not block the others.
func New(p Params) *Orchestrator {
	if p.Thresholds == (Thresholds{}) {
		p.Thresholds = DefaultThresholds()
	}
	if p.Weights == (icp.Weights{}) {
		p.Weights = icp.DefaultWeights()
	}
	breakers := make(map[router.Engine]*resilience.CircuitBreaker, len(p.Engines))
	for name := range p.Engines {
		cfg := resilience.DefaultCircuitBreakerConfig()
		cfg.ShouldTrip = resilience.DefaultRetryOn
		cfg.OnStateChange = func(from, to resilience.CircuitState) {
			zap.L().Warn("search: engine circuit state changed",
				zap.String("engine", string(name)),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		}
		breakers[name] = resilience.NewCircuitBreaker(cfg)
	}
	return &Orchestrator{p: p, breakers: breakers, now: time.Now}
}

// fallbackStep is one tier of the engine cascade. A nil precondition means
// the tier is always eligible.
type fallbackStep struct {
	engine  router.Engine
	allowed func() bool
}

// Run executes one search request through the full pipeline. On total
// engine failure it degrades to an empty result set and returns a
// *model.SearchError beside it; it never panics on provider failure.
func (o *Orchestrator) Run(ctx context.Context, req model.SearchRequest) (*model.SearchResponse, error) {
	start := o.now()
	limit := req.Limit
	if limit <= 0 {
		limit = o.p.Thresholds.DefaultLimit
	}

	kind := model.QueryKind(classify.Kind(req.FreeText))
	metrics.Searches.WithLabelValues(string(kind)).Inc()

	meta := model.SearchMeta{
		RequestID: uuid.NewString(),
		QueryKind: kind,
	}

	// The cache key is derived from the raw request, so the lookup runs
	// before any reformulation call is spent.
	key := cache.Key(req.FreeText, req.Filters)
	if o.p.Cache != nil {
		records, ok, err := o.p.Cache.Get(ctx, key)
		switch {
		case err != nil:
			zap.L().Warn("search: cache get failed", zap.Error(err))
		case ok:
			metrics.CacheHits.Inc()
			meta.CacheHit = true
			meta.TotalDuration = o.now().Sub(start)
			resp := &model.SearchResponse{Companies: records, Meta: meta}
			o.logSearch(ctx, req, resp)
			return resp, nil
		}
	}

	queries := o.buildQueries(ctx, kind, req)

	collected, callMeta := o.cascade(ctx, kind, queries, limit)
	meta.EngineUsed = callMeta.EngineUsed
	meta.EnginesCalled = callMeta.EnginesCalled

	if len(collected.records) == 0 {
		meta.TotalDuration = o.now().Sub(start)
		resp := &model.SearchResponse{Companies: []model.CompanyRecord{}, Meta: meta}
		o.logSearch(ctx, req, resp)
		return resp, degradeError(collected.lastErr, meta.EnginesCalled)
	}

	if o.p.Enricher != nil {
		meta.EnrichedCount = o.p.Enricher.Enrich(ctx, collected.records)
	}

	companies := dedupe.Deduplicate(collected.records)
	if req.Filters.ExcludeExisting {
		companies = dropExisting(companies)
	}
	for i := range companies {
		companies[i].ICPScore = icp.Score(companies[i], o.p.Weights, req.Filters).Score
	}
	sort.SliceStable(companies, func(i, j int) bool {
		return companies[i].ICPScore > companies[j].ICPScore
	})
	if limit > 0 && len(companies) > limit {
		companies = companies[:limit]
	}

	if o.p.Cache != nil && len(companies) > 0 && o.p.Thresholds.CacheTTL > 0 {
		if err := o.p.Cache.Set(ctx, key, companies, o.p.Thresholds.CacheTTL); err != nil {
			zap.L().Warn("search: cache set failed", zap.Error(err))
		}
	}

	meta.TotalDuration = o.now().Sub(start)
	resp := &model.SearchResponse{Companies: companies, Meta: meta}
	o.logSearch(ctx, req, resp)
	return resp, nil
}

// buildQueries expands cohort requests through the reformulator. Name
// lookups and reformulator failures fall back to the raw text.
func (o *Orchestrator) buildQueries(ctx context.Context, kind model.QueryKind, req model.SearchRequest) []string {
	if kind != model.QueryKindCohort || o.p.Reformulator == nil {
		return []string{req.FreeText}
	}
	ref, err := o.p.Reformulator.Reformulate(ctx, req.FreeText, req.Filters)
	if err != nil {
		zap.L().Warn("search: reformulation failed, using raw text",
			zap.String("query", req.FreeText),
			zap.Error(err),
		)
		return []string{req.FreeText}
	}
	if len(ref.Queries) == 0 {
		return []string{req.FreeText}
	}
	return ref.Queries
}

// collectedResults accumulates engine output across fallback tiers.
type collectedResults struct {
	records []model.CompanyRecord
	lastErr error
}

// cascade walks the fallback plan until a tier returns a strong result.
// Weak tiers contribute their records and the cascade continues.
func (o *Orchestrator) cascade(ctx context.Context, kind model.QueryKind, queries []string, limit int) (collectedResults, model.SearchMeta) {
	var (
		collected collectedResults
		meta      model.SearchMeta
	)

	for _, step := range o.fallbackPlan(kind) {
		if step.allowed != nil && !step.allowed() {
			continue
		}
		eng, ok := o.p.Engines[step.engine]
		if !ok {
			continue
		}

		callStart := o.now()
		res, err := resilience.ExecuteVal(ctx, o.breakers[step.engine], func(ctx context.Context) (*engine.Result, error) {
			return o.callEngine(ctx, eng, queries, limit)
		})
		if eris.Is(err, resilience.ErrCircuitOpen) {
			// No provider call happened: no usage, no call record.
			collected.lastErr = err
			zap.L().Warn("search: engine circuit open, skipping tier",
				zap.String("engine", string(step.engine)),
			)
			continue
		}
		meta.EnginesCalled = append(meta.EnginesCalled, string(step.engine))
		metrics.EngineCallSeconds.WithLabelValues(string(step.engine)).Observe(o.now().Sub(callStart).Seconds())
		if err != nil {
			o.p.Router.RecordUsage(step.engine)
			router.ObserveCall(step.engine, "error")
			collected.lastErr = err
			zap.L().Warn("search: engine failed, trying next tier",
				zap.String("engine", string(step.engine)),
				zap.Error(err),
			)
			continue
		}

		if res.CacheHit {
			router.ObserveCall(step.engine, "cached")
		} else {
			o.p.Router.RecordUsage(step.engine)
			router.ObserveCall(step.engine, "ok")
		}

		collected.records = append(collected.records, res.Records...)
		if meta.EngineUsed == "" && len(res.Records) > 0 {
			meta.EngineUsed = string(step.engine)
		}

		// A result is weak only when it is both small and low-relevance.
		// A single high-relevance hit is a legitimate answer for a name
		// lookup and must not trigger another engine call. Empty results
		// always fall through.
		strong := len(res.Records) > 0 &&
			(len(res.Records) >= o.p.Thresholds.MinResults ||
				res.AvgRelevance >= o.p.Thresholds.RelevanceFloor)
		if strong {
			meta.EngineUsed = string(step.engine)
			break
		}
	}

	return collected, meta
}

// fallbackPlan orders the two-tier cascade for a query kind: the routed
// default first, then the reserve engine, gated on remaining reserve budget.
func (o *Orchestrator) fallbackPlan(kind model.QueryKind) []fallbackStep {
	var primary router.Engine
	if kind == model.QueryKindName {
		primary = o.p.Router.PickNameEngine()
	} else {
		primary = o.p.Router.PickDiscoveryEngine()
	}

	return []fallbackStep{
		{engine: primary},
		{engine: router.EngineExa, allowed: o.p.Router.ExaFallbackAllowed},
	}
}

// callEngine runs every reformulated query through one engine with retry,
// merging partial successes. It fails only when every query fails.
func (o *Orchestrator) callEngine(ctx context.Context, eng engine.Engine, queries []string, limit int) (*engine.Result, error) {
	policy := o.p.Retry
	policy.OnRetry = resilience.RetryLogger(string(eng.Name()), "search")

	merged := &engine.Result{CacheHit: true}
	var (
		relevanceSum float64
		succeeded    int
		lastErr      error
	)
	for _, q := range queries {
		res, err := resilience.DoVal(ctx, policy, func(ctx context.Context) (*engine.Result, error) {
			return eng.Search(ctx, q, limit)
		})
		if err != nil {
			lastErr = err
			continue
		}
		succeeded++
		merged.Records = append(merged.Records, res.Records...)
		merged.CacheHit = merged.CacheHit && res.CacheHit
		relevanceSum += res.AvgRelevance
	}
	if succeeded == 0 {
		return nil, lastErr
	}
	merged.AvgRelevance = relevanceSum / float64(succeeded)
	return merged, nil
}

// dropExisting removes companies already matched in a connected CRM.
func dropExisting(records []model.CompanyRecord) []model.CompanyRecord {
	kept := records[:0]
	for _, r := range records {
		if len(r.CRMStatuses) == 0 {
			kept = append(kept, r)
		}
	}
	return kept
}

// degradeError builds the structured error for a fully exhausted cascade.
func degradeError(lastErr error, enginesCalled []string) *model.SearchError {
	if lastErr == nil {
		return &model.SearchError{
			Message:         "no companies matched the search",
			Retryable:       false,
			SuggestedAction: "broaden the query or remove filters",
		}
	}

	serr := &model.SearchError{
		Message: "all discovery engines failed: " + lastErr.Error(),
	}
	if len(enginesCalled) > 0 {
		serr.Engine = enginesCalled[len(enginesCalled)-1]
	}
	switch {
	case resilience.IsExhausted(lastErr), eris.Is(lastErr, resilience.ErrCircuitOpen):
		serr.Retryable = true
		serr.SuggestedAction = "retry in a few minutes"
	default:
		serr.SuggestedAction = "check engine credentials and configuration"
	}
	return serr
}

// logSearch writes a SearchLog entry when a log is configured. Failures
// are logged and swallowed.
func (o *Orchestrator) logSearch(ctx context.Context, req model.SearchRequest, resp *model.SearchResponse) {
	if o.p.SearchLog == nil {
		return
	}
	entry := store.Entry{
		ID:            resp.Meta.RequestID,
		Query:         req.FreeText,
		QueryKind:     resp.Meta.QueryKind,
		EngineUsed:    resp.Meta.EngineUsed,
		EnginesCalled: resp.Meta.EnginesCalled,
		CacheHit:      resp.Meta.CacheHit,
		ResultCount:   len(resp.Companies),
		Duration:      resp.Meta.TotalDuration,
		ExecutedAt:    o.now().UTC(),
	}
	if err := o.p.SearchLog.Record(ctx, entry); err != nil {
		zap.L().Warn("search: log write failed", zap.Error(err))
	}
}
