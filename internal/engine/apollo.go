package engine

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/router"
	"github.com/sells-group/prospector/pkg/apollo"
)

// ApolloEngine adapts the Apollo cohort-discovery API. Apollo filters
// server-side rather than ranking, so every returned organization is treated
// as fully relevant.
type ApolloEngine struct {
	client apollo.Client
	opts   Options
}

// NewApollo creates the Apollo adapter.
func NewApollo(client apollo.Client, opts Options) *ApolloEngine {
	return &ApolloEngine{client: client, opts: opts}
}

// Name implements Engine.
func (e *ApolloEngine) Name() router.Engine {
	return router.EngineApollo
}

// Search implements Engine.
func (e *ApolloEngine) Search(ctx context.Context, query string, limit int) (*Result, error) {
	ctx, cancel, err := e.opts.acquire(ctx)
	defer cancel()
	if err != nil {
		return nil, eris.Wrap(err, "apollo engine: rate limit wait")
	}

	resp, err := e.client.SearchOrganizations(ctx, apollo.OrgSearchRequest{
		QKeywords: query,
		PerPage:   limit,
		Page:      1,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	records := make([]model.CompanyRecord, 0, len(resp.Organizations))
	for _, org := range resp.Organizations {
		domain := org.PrimaryDomain
		if domain == "" {
			domain = domainOf(org.WebsiteURL)
		} else {
			domain = domainOf(domain)
		}
		if domain == "" {
			continue
		}

		records = append(records, model.CompanyRecord{
			Domain:        domain,
			Name:          org.Name,
			Vertical:      org.Industry,
			EmployeeCount: org.EmployeeCount,
			Region:        region(org.City, org.Country),
			Description:   org.ShortDesc,
			Sources:       []string{string(router.EngineApollo)},
			Relevance:     1.0,
			LastRefreshed: now,
			Revenue:       org.AnnualRevenue,
			Founded:       org.FoundedYear,
			Phone:         org.Phone,
			LogoURL:       org.LogoURL,
		})
	}

	result := &Result{Records: records}
	if len(records) > 0 {
		result.AvgRelevance = 1.0
	}
	return result, nil
}

func region(city, country string) string {
	switch {
	case city != "" && country != "":
		return city + ", " + country
	case country != "":
		return country
	default:
		return city
	}
}
