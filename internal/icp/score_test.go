package icp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospector/internal/model"
)

func testWeights() Weights {
	return Weights{
		VerticalMatch:             25,
		SizeMatch:                 20,
		RegionMatch:               15,
		BuyingSignal:              15,
		NegativeSignal:            20,
		RelevanceBoost:            15,
		SalesforceCustomerPenalty: 40,
		HubSpotLeadBoost:          10,
	}
}

func sum(breakdown []FactorContribution) float64 {
	total := 0.0
	for _, fc := range breakdown {
		total += fc.Contribution
	}
	return total
}

func TestScore_Factors(t *testing.T) {
	t.Parallel()

	weights := testWeights()

	cases := []struct {
		name    string
		record  model.CompanyRecord
		filters model.FilterState
		want    float64
		factors []string
	}{
		{
			name:    "no factors met",
			record:  model.CompanyRecord{Domain: "a.com"},
			filters: model.FilterState{Verticals: []string{"fintech"}},
			want:    0,
		},
		{
			name:    "vertical match",
			record:  model.CompanyRecord{Vertical: "Fintech Infrastructure"},
			filters: model.FilterState{Verticals: []string{"fintech"}},
			want:    25,
			factors: []string{FactorVertical},
		},
		{
			name:    "size match in bucket",
			record:  model.CompanyRecord{EmployeeCount: 40},
			filters: model.FilterState{SizeBuckets: []string{"11-50"}},
			want:    20,
			factors: []string{FactorSize},
		},
		{
			name:    "open-ended bucket",
			record:  model.CompanyRecord{EmployeeCount: 5000},
			filters: model.FilterState{SizeBuckets: []string{"1000+"}},
			want:    20,
			factors: []string{FactorSize},
		},
		{
			name:    "region match",
			record:  model.CompanyRecord{Region: "Berlin, Germany"},
			filters: model.FilterState{Regions: []string{"germany"}},
			want:    15,
			factors: []string{FactorRegion},
		},
		{
			name: "buying signal",
			record: model.CompanyRecord{
				Signals: []model.Signal{{ID: "s1", Type: model.SignalFunding}},
			},
			want:    15,
			factors: []string{FactorBuyingSignals},
		},
		{
			name: "negative signal subtracts",
			record: model.CompanyRecord{
				Vertical: "fintech",
				Signals:  []model.Signal{{ID: "s1", Type: model.SignalLayoffs}},
			},
			filters: model.FilterState{Verticals: []string{"fintech"}},
			want:    5, // 25 - 20
			factors: []string{FactorVertical, FactorNegativeSignals},
		},
		{
			name:    "relevance scales boost",
			record:  model.CompanyRecord{Relevance: 0.6},
			want:    9, // 0.6 * 15
			factors: []string{FactorRelevance},
		},
		{
			name: "salesforce customer penalized",
			record: model.CompanyRecord{
				Vertical:    "fintech",
				CRMStatuses: map[string]string{"salesforce": "customer"},
			},
			filters: model.FilterState{Verticals: []string{"fintech"}},
			want:    0, // 25 - 40 clamped to 0
			factors: []string{FactorVertical, FactorSalesforceCustomer, clampFactor},
		},
		{
			name: "hubspot lead boosted",
			record: model.CompanyRecord{
				CRMStatuses: map[string]string{"hubspot": "lead"},
			},
			want:    10,
			factors: []string{FactorHubSpotLead},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(tc.record, weights, tc.filters)
			assert.InDelta(t, tc.want, got.Score, 1e-9)
			assert.InDelta(t, got.Score, sum(got.Breakdown), 1e-9, "breakdown must sum to score")

			names := make([]string, len(got.Breakdown))
			for i, fc := range got.Breakdown {
				names[i] = fc.Factor
			}
			assert.Equal(t, tc.factors, names)
		})
	}
}

func TestScore_ClampCeiling(t *testing.T) {
	t.Parallel()

	record := model.CompanyRecord{
		Vertical:      "fintech",
		EmployeeCount: 40,
		Region:        "Germany",
		Relevance:     1.0,
		Signals:       []model.Signal{{ID: "s1", Type: model.SignalFunding}},
		CRMStatuses:   map[string]string{"hubspot": "lead"},
	}
	filters := model.FilterState{
		Verticals:   []string{"fintech"},
		Regions:     []string{"germany"},
		SizeBuckets: []string{"11-50"},
	}

	got := Score(record, testWeights(), filters)
	assert.InDelta(t, 100, got.Score, 1e-9)
	assert.InDelta(t, got.Score, sum(got.Breakdown), 1e-9)
}

func TestScore_Pure(t *testing.T) {
	t.Parallel()

	record := model.CompanyRecord{
		Vertical:  "fintech",
		Relevance: 0.8,
		Signals:   []model.Signal{{ID: "s1", Type: model.SignalHiring}},
	}
	filters := model.FilterState{Verticals: []string{"fintech"}}

	first := Score(record, testWeights(), filters)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(record, testWeights(), filters))
	}
}

func TestScore_SignalTypeFilter(t *testing.T) {
	t.Parallel()

	record := model.CompanyRecord{
		Signals: []model.Signal{{ID: "s1", Type: model.SignalNews}},
	}

	// Caller asked only for funding signals: a news signal is not a
	// buying signal for this search.
	got := Score(record, testWeights(), model.FilterState{SignalTypes: []string{"funding"}})
	assert.Zero(t, got.Score)

	got = Score(record, testWeights(), model.FilterState{})
	assert.InDelta(t, 15, got.Score, 1e-9)
}

func TestParseBucket(t *testing.T) {
	t.Parallel()

	lo, hi, ok := parseBucket("11-50")
	require.True(t, ok)
	assert.Equal(t, 11, lo)
	assert.Equal(t, 50, hi)

	lo, hi, ok = parseBucket("1000+")
	require.True(t, ok)
	assert.Equal(t, 1000, lo)
	assert.Zero(t, hi)

	_, _, ok = parseBucket("huge")
	assert.False(t, ok)
}

func TestLoadWeights(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "weights.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vertical_match: 30\nhubspot_lead_boost: 5\n"), 0o600))

	w, err := LoadWeights(path)
	require.NoError(t, err)
	assert.InDelta(t, 30, w.VerticalMatch, 1e-9)
	assert.InDelta(t, 5, w.HubSpotLeadBoost, 1e-9)
	// Unspecified fields keep defaults.
	assert.InDelta(t, DefaultWeights().SizeMatch, w.SizeMatch, 1e-9)
}

func TestLoadWeights_Invalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "weights.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vertical_match: -10\n"), 0o600))

	_, err := LoadWeights(path)
	assert.Error(t, err)
}

func TestLoadWeights_EmptyPathUsesDefaults(t *testing.T) {
	t.Parallel()

	w, err := LoadWeights("")
	require.NoError(t, err)
	assert.Equal(t, DefaultWeights(), w)
}
