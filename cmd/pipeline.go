package main

import (
	"context"
	"os"
	"time"

	salesforce "github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/prospector/internal/cache"
	"github.com/sells-group/prospector/internal/classify"
	"github.com/sells-group/prospector/internal/config"
	"github.com/sells-group/prospector/internal/engine"
	"github.com/sells-group/prospector/internal/enrich"
	"github.com/sells-group/prospector/internal/icp"
	"github.com/sells-group/prospector/internal/resilience"
	"github.com/sells-group/prospector/internal/router"
	"github.com/sells-group/prospector/internal/search"
	"github.com/sells-group/prospector/internal/store"
	"github.com/sells-group/prospector/pkg/apollo"
	"github.com/sells-group/prospector/pkg/exa"
	"github.com/sells-group/prospector/pkg/hubspot"
	"github.com/sells-group/prospector/pkg/serper"
	"github.com/sells-group/prospector/pkg/sfdc"
)

// pipelineEnv holds the wired pipeline plus the resources to release on
// shutdown. Callers should defer env.Close().
type pipelineEnv struct {
	Orchestrator *search.Orchestrator
	Router       *router.Router
	SearchLog    store.SearchLog

	closers []func() error
}

func (e *pipelineEnv) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			zap.L().Warn("close pipeline resource", zap.Error(err))
		}
	}
}

// initPipeline builds the engine adapters, cache, enricher, and search log
// from config and wires them into an Orchestrator.
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	env := &pipelineEnv{}

	engines := buildEngines()
	if len(engines) == 0 {
		return nil, eris.New("no discovery engine configured: set at least one of PROSPECTOR_ENGINES_EXA_KEY, PROSPECTOR_ENGINES_SERPER_KEY, PROSPECTOR_ENGINES_APOLLO_KEY")
	}

	env.Router = router.New(router.Budgets{
		Exa:    cfg.Engines.Exa.Budget,
		Serper: cfg.Engines.Serper.Budget,
		Apollo: cfg.Engines.Apollo.Budget,
	})

	respCache, err := buildCache()
	if err != nil {
		return nil, err
	}
	if closer, ok := respCache.(interface{ Close() error }); ok {
		env.closers = append(env.closers, closer.Close)
	}

	weights, err := icp.LoadWeights(cfg.ICP.WeightsPath)
	if err != nil {
		return nil, eris.Wrap(err, "load scoring weights")
	}

	searchLog, err := buildSearchLog(ctx)
	if err != nil {
		return nil, err
	}
	if searchLog != nil {
		env.SearchLog = searchLog
		env.closers = append(env.closers, searchLog.Close)
	}

	var reformulator classify.Reformulator
	if cfg.LLM.Anthropic.Key != "" {
		reformulator = classify.NewAnthropicReformulator(cfg.LLM.Anthropic.Key, cfg.LLM.Anthropic.Model)
	} else {
		zap.L().Debug("PROSPECTOR_LLM_ANTHROPIC_KEY not set, cohort queries use raw text")
	}

	retry := resilience.DefaultRetryPolicy()
	retry.MaxRetries = cfg.Search.MaxRetries

	env.Orchestrator = search.New(search.Params{
		Engines:      engines,
		Router:       env.Router,
		Reformulator: reformulator,
		Cache:        respCache,
		Enricher:     buildEnricher(),
		SearchLog:    searchLog,
		Weights:      weights,
		Thresholds: search.Thresholds{
			MinResults:     cfg.Search.MinResults,
			RelevanceFloor: cfg.Search.RelevanceFloor,
			CacheTTL:       time.Duration(cfg.Search.CacheTTLMins) * time.Minute,
			DefaultLimit:   cfg.Search.DefaultLimit,
		},
		Retry: retry,
	})

	return env, nil
}

// buildEngines creates an adapter for every provider with a key configured.
func buildEngines() map[router.Engine]engine.Engine {
	engines := make(map[router.Engine]engine.Engine)

	if c := cfg.Engines.Exa; c.Key != "" {
		client := exa.NewClient(c.Key, exa.WithBaseURL(c.BaseURL))
		engines[router.EngineExa] = engine.NewExa(client, engineOptions(c))
	}
	if c := cfg.Engines.Serper; c.Key != "" {
		client := serper.NewClient(c.Key, serper.WithBaseURL(c.BaseURL))
		engines[router.EngineSerper] = engine.NewSerper(client, engineOptions(c))
	}
	if c := cfg.Engines.Apollo; c.Key != "" {
		client := apollo.NewClient(c.Key, apollo.WithBaseURL(c.BaseURL))
		engines[router.EngineApollo] = engine.NewApollo(client, engineOptions(c))
	}

	for name := range engines {
		zap.L().Info("discovery engine enabled", zap.String("engine", string(name)))
	}
	return engines
}

func engineOptions(c config.EngineConfig) engine.Options {
	opts := engine.Options{Timeout: time.Duration(c.TimeoutSecs) * time.Second}
	if c.RatePerSec > 0 {
		opts.Limiter = rate.NewLimiter(rate.Limit(c.RatePerSec), 1)
	}
	return opts
}

func buildCache() (cache.Cache, error) {
	switch cfg.Cache.Driver {
	case "redis":
		rc, err := cache.NewRedis(cfg.Cache.RedisURL)
		if err != nil {
			return nil, eris.Wrap(err, "init redis cache")
		}
		return rc, nil
	case "memory", "":
		return cache.NewMemory(), nil
	case "none":
		return nil, nil
	default:
		return nil, eris.Errorf("unknown cache driver %q", cfg.Cache.Driver)
	}
}

func buildSearchLog(ctx context.Context) (store.SearchLog, error) {
	dsn := cfg.Store.DatabaseURL
	if cfg.Store.Driver == "sqlite" {
		dsn = cfg.Store.Path
	}
	poolCfg := &store.PoolConfig{MaxConns: cfg.Store.MaxConns, MinConns: cfg.Store.MinConns}

	log, err := store.Open(ctx, cfg.Store.Driver, dsn, poolCfg)
	if err != nil {
		return nil, eris.Wrap(err, "open search log")
	}
	return log, nil
}

// buildEnricher wires whichever CRM connections are configured. Returns nil
// when neither is, so enrichment is skipped entirely.
func buildEnricher() *enrich.Enricher {
	var hs hubspot.Client
	if cfg.CRM.HubSpot.Key != "" {
		hs = hubspot.NewClient(cfg.CRM.HubSpot.Key, hubspot.WithBaseURL(cfg.CRM.HubSpot.BaseURL))
		zap.L().Info("hubspot enrichment enabled")
	}

	var sf sfdc.Client
	if cfg.CRM.Salesforce.ClientID != "" {
		client, err := initSalesforce()
		if err != nil {
			zap.L().Warn("salesforce init failed, enrichment disabled", zap.Error(err))
		} else {
			sf = client
			zap.L().Info("salesforce enrichment enabled")
		}
	}

	if hs == nil && sf == nil {
		return nil
	}
	return enrich.New(hs, sf)
}

func initSalesforce() (sfdc.Client, error) {
	pemData, err := os.ReadFile(cfg.CRM.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.CRM.Salesforce.LoginURL,
		Username:       cfg.CRM.Salesforce.Username,
		ConsumerKey:    cfg.CRM.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfdc.NewClient(sf), nil
}
