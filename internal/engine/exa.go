package engine

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/router"
	"github.com/sells-group/prospector/pkg/exa"
)

// ExaEngine adapts the Exa neural search API. It is the reserve tier:
// relevance-ranked full-text results, tight rate limits.
type ExaEngine struct {
	client exa.Client
	opts   Options
}

// NewExa creates the Exa adapter.
func NewExa(client exa.Client, opts Options) *ExaEngine {
	return &ExaEngine{client: client, opts: opts}
}

// Name implements Engine.
func (e *ExaEngine) Name() router.Engine {
	return router.EngineExa
}

// Search implements Engine.
func (e *ExaEngine) Search(ctx context.Context, query string, limit int) (*Result, error) {
	ctx, cancel, err := e.opts.acquire(ctx)
	defer cancel()
	if err != nil {
		return nil, eris.Wrap(err, "exa engine: rate limit wait")
	}

	resp, err := e.client.Search(ctx, exa.SearchRequest{
		Query:      query,
		NumResults: limit,
		Type:       "neural",
		Category:   "company",
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	records := make([]model.CompanyRecord, 0, len(resp.Results))
	var relevanceSum float64
	for _, hit := range resp.Results {
		domain := domainOf(hit.URL)
		if domain == "" {
			continue
		}

		refreshed := now
		if hit.PublishedDate != "" {
			if ts, perr := time.Parse(time.RFC3339, hit.PublishedDate); perr == nil {
				refreshed = ts
			}
		}

		records = append(records, model.CompanyRecord{
			Domain:        domain,
			Name:          hit.Title,
			Description:   snippet(hit.Text),
			Sources:       []string{string(router.EngineExa)},
			Relevance:     hit.Score,
			LastRefreshed: refreshed,
		})
		relevanceSum += hit.Score
	}

	result := &Result{Records: records}
	if len(records) > 0 {
		result.AvgRelevance = relevanceSum / float64(len(records))
	}
	return result, nil
}

// snippet truncates provider text to a display-sized description without
// splitting a multi-byte rune.
func snippet(text string) string {
	const maxLen = 280
	if len(text) <= maxLen {
		return text
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
