// Package model defines the record types shared across the discovery pipeline.
package model

import (
	"time"
)

// CompanyRecord is the canonical shape for a discovered company. Every engine
// adapter normalizes its provider response into this type at the boundary;
// provider-specific shapes never travel further into the pipeline.
type CompanyRecord struct {
	// Domain is the natural key. Case-insensitive; a leading "www." is not
	// significant. See dedupe.NormalizeDomain.
	Domain string `json:"domain"`

	Name          string `json:"name"`
	Vertical      string `json:"vertical,omitempty"`
	EmployeeCount int    `json:"employee_count,omitempty"`
	Region        string `json:"region,omitempty"`
	Description   string `json:"description,omitempty"`

	// Sources lists the provider tags that contributed to this record
	// (e.g. "exa", "apollo", "hubspot"). Union semantics after merge.
	Sources []string `json:"sources"`

	// Signals are timestamped buying/negative events. Unique by ID within
	// one response.
	Signals []Signal `json:"signals,omitempty"`

	ContactCount int     `json:"contact_count,omitempty"`
	ICPScore     float64 `json:"icp_score,omitempty"`

	// Relevance is the engine-reported relevance for this hit, when the
	// engine provides one. Feeds the ICP relevance factor.
	Relevance float64 `json:"relevance,omitempty"`

	LastRefreshed time.Time `json:"last_refreshed"`

	// Optional enrichment fields. Zero value means absent; any source may
	// omit them and merge backfills from secondaries.
	Revenue string `json:"revenue,omitempty"`
	Founded int    `json:"founded,omitempty"`
	Phone   string `json:"phone,omitempty"`
	LogoURL string `json:"logo_url,omitempty"`

	// CRMStatuses maps a CRM source tag to the record's status there
	// (e.g. "salesforce" -> "customer", "hubspot" -> "new_lead").
	CRMStatuses map[string]string `json:"crm_statuses,omitempty"`
}

// HasSource reports whether tag is already in Sources.
func (c *CompanyRecord) HasSource(tag string) bool {
	for _, s := range c.Sources {
		if s == tag {
			return true
		}
	}
	return false
}

// Signal is a timestamped event associated with a company (funding round,
// hiring spike, expansion, churn risk).
type Signal struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Signal types observed across providers.
const (
	SignalFunding   = "funding"
	SignalHiring    = "hiring"
	SignalExpansion = "expansion"
	SignalNews      = "news"
	SignalCRM       = "crm"
	SignalChurnRisk = "churn_risk"
	SignalLayoffs   = "layoffs"
)

// NegativeSignalTypes are the signal types that count against ICP fit.
var NegativeSignalTypes = map[string]bool{
	SignalChurnRisk: true,
	SignalLayoffs:   true,
}
