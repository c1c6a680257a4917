package model

import "time"

// FilterState holds the caller-supplied cohort descriptors. It drives both
// query reformulation and ICP scoring.
type FilterState struct {
	Verticals   []string `json:"verticals,omitempty"`
	Regions     []string `json:"regions,omitempty"`
	SizeBuckets []string `json:"size_buckets,omitempty"`
	SignalTypes []string `json:"signal_types,omitempty"`

	// ExcludeExisting drops companies already present in a connected CRM.
	ExcludeExisting bool `json:"exclude_existing,omitempty"`
}

// QueryKind describes how the classifier read the free text.
type QueryKind string

const (
	QueryKindName   QueryKind = "name"   // specific company lookup
	QueryKindCohort QueryKind = "cohort" // descriptive cohort search
)

// SearchRequest is the orchestrator's input boundary.
type SearchRequest struct {
	FreeText string      `json:"free_text,omitempty"`
	Filters  FilterState `json:"filters,omitempty"`
	Limit    int         `json:"limit,omitempty"`
}

// SearchResponse is the orchestrator's output boundary.
type SearchResponse struct {
	Companies []CompanyRecord `json:"companies"`
	Meta      SearchMeta      `json:"meta"`
}

// SearchMeta reports how a response was produced.
type SearchMeta struct {
	RequestID     string        `json:"request_id"`
	QueryKind     QueryKind     `json:"query_kind"`
	EngineUsed    string        `json:"engine_used,omitempty"`
	EnginesCalled []string      `json:"engines_called,omitempty"`
	CacheHit      bool          `json:"cache_hit"`
	TotalDuration time.Duration `json:"total_duration"`
	EnrichedCount int           `json:"enriched_count"`
}

// SearchError is the structured error surfaced when the whole fallback chain
// is exhausted. The orchestrator degrades to an empty result set and returns
// this beside it; it never panics on provider failure.
type SearchError struct {
	Message         string `json:"message"`
	Engine          string `json:"engine,omitempty"`
	Retryable       bool   `json:"retryable"`
	SuggestedAction string `json:"suggested_action,omitempty"`
}

func (e *SearchError) Error() string {
	return e.Message
}
