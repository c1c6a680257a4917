// Package icp computes ideal-customer-profile fit scores for merged company
// records. Scoring is pure: identical inputs always produce identical output.
package icp

import (
	"strconv"
	"strings"

	"github.com/sells-group/prospector/internal/model"
)

// Factor names as they appear in breakdowns.
const (
	FactorVertical           = "vertical_match"
	FactorSize               = "size_match"
	FactorRegion             = "region_match"
	FactorBuyingSignals      = "buying_signals"
	FactorNegativeSignals    = "negative_signals"
	FactorRelevance          = "relevance"
	FactorSalesforceCustomer = "salesforce_customer"
	FactorHubSpotLead        = "hubspot_new_lead"
)

// FactorContribution is one entry of a score breakdown.
type FactorContribution struct {
	Factor       string  `json:"factor"`
	Contribution float64 `json:"contribution"`
}

// ScoreResult is the scored fit plus its per-factor audit trail. The
// contributions sum to the score exactly; clamping to [0, 100] is applied by
// appending a balancing "clamp" entry rather than silently losing mass.
type ScoreResult struct {
	Score     float64              `json:"score"`
	Breakdown []FactorContribution `json:"breakdown"`
}

// clampFactor balances the breakdown when the raw sum leaves [0, 100].
const clampFactor = "clamp"

// Score computes the weighted-sum fit of record against filters using the
// supplied weights. Each factor contributes zero when its condition is unmet.
func Score(record model.CompanyRecord, weights Weights, filters model.FilterState) ScoreResult {
	var breakdown []FactorContribution
	add := func(factor string, contribution float64) {
		if contribution != 0 {
			breakdown = append(breakdown, FactorContribution{Factor: factor, Contribution: contribution})
		}
	}

	if matchesAny(record.Vertical, filters.Verticals) {
		add(FactorVertical, weights.VerticalMatch)
	}
	if matchesSize(record.EmployeeCount, filters.SizeBuckets) {
		add(FactorSize, weights.SizeMatch)
	}
	if matchesRegion(record.Region, filters.Regions) {
		add(FactorRegion, weights.RegionMatch)
	}

	buying, negative := countSignals(record.Signals, filters.SignalTypes)
	if buying > 0 {
		add(FactorBuyingSignals, weights.BuyingSignal)
	}
	if negative > 0 {
		add(FactorNegativeSignals, -weights.NegativeSignal)
	}

	if record.Relevance > 0 {
		add(FactorRelevance, record.Relevance*weights.RelevanceBoost)
	}

	// CRM status adjustments: an existing Salesforce customer is not a
	// prospect; a fresh HubSpot lead is a warmer one.
	if status := record.CRMStatuses["salesforce"]; status == "customer" {
		add(FactorSalesforceCustomer, -weights.SalesforceCustomerPenalty)
	}
	if status := record.CRMStatuses["hubspot"]; status == "lead" || status == "subscriber" {
		add(FactorHubSpotLead, weights.HubSpotLeadBoost)
	}

	total := 0.0
	for _, fc := range breakdown {
		total += fc.Contribution
	}

	switch {
	case total > 100:
		breakdown = append(breakdown, FactorContribution{Factor: clampFactor, Contribution: 100 - total})
		total = 100
	case total < 0:
		breakdown = append(breakdown, FactorContribution{Factor: clampFactor, Contribution: -total})
		total = 0
	}

	return ScoreResult{Score: total, Breakdown: breakdown}
}

func matchesAny(value string, wanted []string) bool {
	if value == "" || len(wanted) == 0 {
		return false
	}
	v := strings.ToLower(value)
	for _, w := range wanted {
		if w == "" {
			continue
		}
		if strings.Contains(v, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

func matchesRegion(region string, wanted []string) bool {
	return matchesAny(region, wanted)
}

// matchesSize checks employeeCount against buckets like "11-50" or "1000+".
func matchesSize(count int, buckets []string) bool {
	if count <= 0 || len(buckets) == 0 {
		return false
	}
	for _, b := range buckets {
		lo, hi, ok := parseBucket(b)
		if !ok {
			continue
		}
		if count >= lo && (hi == 0 || count <= hi) {
			return true
		}
	}
	return false
}

// parseBucket parses "11-50" into (11, 50) and "1000+" into (1000, 0);
// hi == 0 means unbounded.
func parseBucket(b string) (lo, hi int, ok bool) {
	b = strings.TrimSpace(b)
	if b == "" {
		return 0, 0, false
	}
	if strings.HasSuffix(b, "+") {
		n, err := strconv.Atoi(strings.TrimSuffix(b, "+"))
		if err != nil {
			return 0, 0, false
		}
		return n, 0, true
	}
	parts := strings.SplitN(b, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	l, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	h, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return l, h, true
}

// countSignals tallies buying and negative signals. When the caller filters
// on signal types, only those types count as buying signals; negative types
// always count against.
func countSignals(signals []model.Signal, wantedTypes []string) (buying, negative int) {
	wanted := make(map[string]bool, len(wantedTypes))
	for _, t := range wantedTypes {
		wanted[strings.ToLower(t)] = true
	}

	for _, sig := range signals {
		sigType := strings.ToLower(sig.Type)
		if model.NegativeSignalTypes[sigType] {
			negative++
			continue
		}
		if len(wanted) == 0 || wanted[sigType] {
			buying++
		}
	}
	return buying, negative
}
