// Package engine adapts external discovery providers to one uniform search
// contract. Provider response shapes are normalized into model.CompanyRecord
// here and never leak further into the pipeline.
package engine

import (
	"context"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/router"
)

// Result is the uniform output of every engine adapter.
type Result struct {
	Records []model.CompanyRecord

	// CacheHit reports a provider-side cache hit. Cache-served results
	// must not consume routing budget.
	CacheHit bool

	// AvgRelevance is the mean engine-reported relevance across Records,
	// in [0, 1]. Engines that do not rank report 1 for non-empty results.
	AvgRelevance float64
}

// Engine is a single discovery provider behind the uniform contract.
type Engine interface {
	Name() router.Engine
	Search(ctx context.Context, query string, limit int) (*Result, error)
}

// Options tune an adapter independently of its provider client.
type Options struct {
	// Timeout bounds a single provider call. Zero means the client's own
	// timeout applies.
	Timeout time.Duration

	// Limiter is the client-side rate limiter for this provider. Nil
	// means unlimited.
	Limiter *rate.Limiter
}

// acquire waits for rate-limit headroom and applies the per-call timeout.
// The returned cancel must be called even on the error path.
func (o Options) acquire(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if o.Limiter != nil {
		if err := o.Limiter.Wait(ctx); err != nil {
			return ctx, func() {}, err
		}
	}
	if o.Timeout > 0 {
		ctx, cancel := context.WithTimeout(ctx, o.Timeout)
		return ctx, cancel, nil
	}
	return ctx, func() {}, nil
}

// domainOf extracts the bare registrable host from a URL or host string:
// lowercased, no scheme, no path, no leading "www.".
func domainOf(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" {
		return ""
	}
	if strings.Contains(s, "://") {
		if u, err := url.Parse(s); err == nil && u.Host != "" {
			s = u.Host
		}
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, ":"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimPrefix(s, "www.")
}
