package engine

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/router"
	"github.com/sells-group/prospector/pkg/serper"
)

// SerperEngine adapts the Serper web search API. Results arrive as organic
// hits ranked by position; relevance is derived as 1/position so the first
// hit scores 1.0.
type SerperEngine struct {
	client serper.Client
	opts   Options
}

// NewSerper creates the Serper adapter.
func NewSerper(client serper.Client, opts Options) *SerperEngine {
	return &SerperEngine{client: client, opts: opts}
}

// Name implements Engine.
func (e *SerperEngine) Name() router.Engine {
	return router.EngineSerper
}

// Search implements Engine.
func (e *SerperEngine) Search(ctx context.Context, query string, limit int) (*Result, error) {
	ctx, cancel, err := e.opts.acquire(ctx)
	defer cancel()
	if err != nil {
		return nil, eris.Wrap(err, "serper engine: rate limit wait")
	}

	resp, err := e.client.Search(ctx, serper.SearchRequest{Query: query, Num: limit})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	seen := make(map[string]bool)
	records := make([]model.CompanyRecord, 0, len(resp.Organic))
	var relevanceSum float64
	for _, hit := range resp.Organic {
		domain := domainOf(hit.Link)
		if domain == "" || seen[domain] {
			// Multiple pages of one site collapse to the first hit.
			continue
		}
		seen[domain] = true

		relevance := 1.0
		if hit.Position > 0 {
			relevance = 1.0 / float64(hit.Position)
		}

		records = append(records, model.CompanyRecord{
			Domain:        domain,
			Name:          hit.Title,
			Description:   hit.Snippet,
			Sources:       []string{string(router.EngineSerper)},
			Relevance:     relevance,
			LastRefreshed: now,
		})
		relevanceSum += relevance
	}

	result := &Result{Records: records}
	if len(records) > 0 {
		result.AvgRelevance = relevanceSum / float64(len(records))
	}
	return result, nil
}
