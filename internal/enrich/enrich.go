// Package enrich augments merged company records with CRM presence data.
// Enrichment is best-effort: a failing CRM lookup degrades to "no match",
// never to a failed search.
package enrich

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/pkg/hubspot"
	"github.com/sells-group/prospector/pkg/sfdc"
)

// Source tags contributed by CRM enrichment.
const (
	SourceHubSpot    = "hubspot"
	SourceSalesforce = "salesforce"
)

// maxConcurrent bounds parallel CRM lookups per request.
const maxConcurrent = 8

// Enricher looks up each record's domain in the connected CRMs and records
// what it finds on the record itself.
type Enricher struct {
	hubspot    hubspot.Client
	salesforce sfdc.Client
}

// New creates an Enricher. Either client may be nil; a nil client simply
// contributes nothing.
func New(hs hubspot.Client, sf sfdc.Client) *Enricher {
	return &Enricher{hubspot: hs, salesforce: sf}
}

// Enrich annotates records in place with CRM statuses, source tags, and a
// CRM signal per match. It returns the number of records that matched at
// least one CRM. Lookups run concurrently across records; per record the
// CRMs are consulted sequentially.
func (e *Enricher) Enrich(ctx context.Context, records []model.CompanyRecord) int {
	if e == nil || (e.hubspot == nil && e.salesforce == nil) || len(records) == 0 {
		return 0
	}

	enriched := make([]bool, len(records))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)
	for i := range records {
		g.Go(func() error {
			enriched[i] = e.enrichOne(ctx, &records[i])
			return nil
		})
	}
	// Workers never return errors; failures are logged per lookup.
	_ = g.Wait()

	count := 0
	for _, ok := range enriched {
		if ok {
			count++
		}
	}
	return count
}

func (e *Enricher) enrichOne(ctx context.Context, rec *model.CompanyRecord) bool {
	matched := false

	if e.hubspot != nil {
		company, err := e.hubspot.FindCompanyByDomain(ctx, rec.Domain)
		switch {
		case err != nil:
			zap.L().Warn("enrich: hubspot lookup failed",
				zap.String("domain", rec.Domain),
				zap.Error(err),
			)
		case company != nil:
			matched = true
			applyMatch(rec, SourceHubSpot, company.Lifecycle())
		}
	}

	if e.salesforce != nil {
		account, err := sfdc.FindAccountByDomain(ctx, e.salesforce, rec.Domain)
		switch {
		case err != nil:
			zap.L().Warn("enrich: salesforce lookup failed",
				zap.String("domain", rec.Domain),
				zap.Error(err),
			)
		case account != nil:
			matched = true
			status := "prospect"
			if account.Type == "Customer" || account.Type == "Customer - Direct" {
				status = "customer"
			}
			applyMatch(rec, SourceSalesforce, status)
		}
	}

	return matched
}

func applyMatch(rec *model.CompanyRecord, source, status string) {
	if !rec.HasSource(source) {
		rec.Sources = append(rec.Sources, source)
	}
	if rec.CRMStatuses == nil {
		rec.CRMStatuses = make(map[string]string)
	}
	rec.CRMStatuses[source] = status

	sigID := fmt.Sprintf("%s-%s", source, rec.Domain)
	for _, sig := range rec.Signals {
		if sig.ID == sigID {
			return
		}
	}
	rec.Signals = append(rec.Signals, model.Signal{
		ID:          sigID,
		Type:        model.SignalCRM,
		Description: fmt.Sprintf("present in %s as %s", source, status),
		OccurredAt:  rec.LastRefreshed,
	})
}
