// Package classify decides how to interpret a free-text prospect search and
// expands cohort descriptions into concrete engine queries.
package classify

import (
	"strings"
)

// legalSuffixes are trailing corporate-form abbreviations stripped before
// evaluating a query. Longest match wins so "co" does not eat "corp".
var legalSuffixes = []string{
	"incorporated", "corporation", "limited", "company",
	"gmbh", "corp", "inc", "llc", "ltd", "plc", "llp",
	"pty", "ag", "sa", "bv", "co",
}

// descriptiveMarkers are words that indicate a cohort or intent description
// rather than a specific company name. Any one of them disqualifies the text
// from name treatment.
var descriptiveMarkers = map[string]bool{
	// plural company nouns
	"companies": true, "startups": true, "firms": true, "vendors": true,
	"businesses": true, "manufacturers": true, "providers": true,
	"suppliers": true, "agencies": true, "brands": true, "retailers": true,
	// sector / cohort words
	"industry": true, "sector": true, "market": true, "space": true,
	"vertical": true, "niche": true, "saas": true, "b2b": true, "b2c": true,
	// filler prepositions and connectives typical of descriptions
	"in": true, "with": true, "that": true, "for": true, "near": true,
	"using": true, "based": true, "around": true, "offering": true,
	"selling": true, "who": true, "which": true,
}

// LooksLikeCompanyName reports whether text names a specific company rather
// than describing a cohort. Short, non-descriptive phrases are treated as
// names; anything long or containing cohort markers is not.
func LooksLikeCompanyName(text string) bool {
	stripped := StripLegalSuffix(text)

	tokens := strings.Fields(stripped)
	if len(tokens) == 0 {
		return false
	}
	if len(tokens) > 4 {
		return false
	}

	for _, tok := range tokens {
		word := strings.Trim(strings.ToLower(tok), ".,;:()\"'")
		if descriptiveMarkers[word] {
			return false
		}
	}

	return true
}

// StripLegalSuffix removes one trailing legal-entity suffix ("Acme Corp" ->
// "Acme"). Trailing punctuation on the suffix is tolerated.
func StripLegalSuffix(text string) string {
	trimmed := strings.TrimSpace(text)
	tokens := strings.Fields(trimmed)
	if len(tokens) < 2 {
		return trimmed
	}

	last := strings.Trim(strings.ToLower(tokens[len(tokens)-1]), ".,")
	for _, suffix := range legalSuffixes {
		if last == suffix {
			return strings.TrimSpace(strings.Join(tokens[:len(tokens)-1], " "))
		}
	}
	return trimmed
}

// Kind returns the query kind string for text, for meta/logging.
func Kind(text string) string {
	if LooksLikeCompanyName(text) {
		return "name"
	}
	return "cohort"
}
