// Package dedupe groups raw company records by normalized domain and merges
// duplicates from different sources into one canonical record.
package dedupe

import (
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/prospector/internal/model"
)

// NormalizeDomain folds a domain (or URL) to its grouping key: lowercase,
// scheme/path/port stripped, leading "www." removed. Two records are
// duplicates iff their normalized domains are equal.
func NormalizeDomain(raw string) string {
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

// Deduplicate merges records sharing a normalized domain. Output order is
// first appearance of each domain, which keeps the operation deterministic
// and idempotent. Single-record groups pass through unchanged.
func Deduplicate(records []model.CompanyRecord) []model.CompanyRecord {
	groups := make(map[string][]model.CompanyRecord)
	var order []string

	for _, rec := range records {
		key := NormalizeDomain(rec.Domain)
		if key == "" {
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], rec)
	}

	out := make([]model.CompanyRecord, 0, len(order))
	for _, key := range order {
		group := groups[key]
		if len(group) == 1 {
			rec := group[0]
			rec.Domain = key
			out = append(out, rec)
			continue
		}
		out = append(out, merge(key, group))
	}
	return out
}

// merge resolves a group of >=2 duplicates deterministically. The record
// with the most recent LastRefreshed is primary and supplies display fields;
// everything else is union/max/backfill.
func merge(domain string, group []model.CompanyRecord) model.CompanyRecord {
	primary := group[0]
	for _, rec := range group[1:] {
		if rec.LastRefreshed.After(primary.LastRefreshed) {
			primary = rec
		}
	}

	merged := primary
	merged.Domain = domain
	merged.Sources = nil
	merged.Signals = nil
	merged.CRMStatuses = nil

	seenSource := make(map[string]bool)
	seenSignal := make(map[string]bool)

	appendSources := func(rec model.CompanyRecord) {
		for _, src := range rec.Sources {
			if !seenSource[src] {
				seenSource[src] = true
				merged.Sources = append(merged.Sources, src)
			}
		}
		for _, sig := range rec.Signals {
			if !seenSignal[sig.ID] {
				seenSignal[sig.ID] = true
				merged.Signals = append(merged.Signals, sig)
			}
		}
		for k, v := range rec.CRMStatuses {
			if merged.CRMStatuses == nil {
				merged.CRMStatuses = make(map[string]string)
			}
			if _, ok := merged.CRMStatuses[k]; !ok {
				merged.CRMStatuses[k] = v
			}
		}
	}

	// Unions walk the group in input order so "first occurrence wins" is
	// well defined regardless of which record won primary.
	for _, rec := range group {
		appendSources(rec)

		if rec.ContactCount > merged.ContactCount {
			merged.ContactCount = rec.ContactCount
		}
		if rec.ICPScore > merged.ICPScore {
			merged.ICPScore = rec.ICPScore
		}
		if rec.Relevance > merged.Relevance {
			merged.Relevance = rec.Relevance
		}
	}

	// Backfill optional fields the primary lacks, first non-empty
	// secondary value wins.
	for _, rec := range group {
		if merged.Name == "" {
			merged.Name = rec.Name
		}
		if merged.Description == "" {
			merged.Description = rec.Description
		}
		if merged.Vertical == "" {
			merged.Vertical = rec.Vertical
		}
		if merged.Region == "" {
			merged.Region = rec.Region
		}
		if merged.EmployeeCount == 0 {
			merged.EmployeeCount = rec.EmployeeCount
		}
		if merged.Revenue == "" {
			merged.Revenue = rec.Revenue
		}
		if merged.Founded == 0 {
			merged.Founded = rec.Founded
		}
		if merged.Phone == "" {
			merged.Phone = rec.Phone
		}
		if merged.LogoURL == "" {
			merged.LogoURL = rec.LogoURL
		}
	}

	return merged
}

// displayNames maps source tags to their canonical display form.
var displayNames = map[string]string{
	"exa":        "Exa",
	"serper":     "Serper",
	"apollo":     "Apollo",
	"hubspot":    "HubSpot",
	"salesforce": "Salesforce",
}

var titleCaser = cases.Title(language.English)

// SourceLabel renders a human-readable provenance label. Empty for zero or
// one source; "Found by Exa + Apollo" style for more.
func SourceLabel(sources []string) string {
	if len(sources) < 2 {
		return ""
	}
	names := make([]string, len(sources))
	for i, src := range sources {
		if name, ok := displayNames[src]; ok {
			names[i] = name
		} else {
			names[i] = titleCaser.String(src)
		}
	}
	return "Found by " + strings.Join(names, " + ")
}
