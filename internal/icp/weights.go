package icp

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Weights are the admin-supplied factor weights. The scorer treats them as
// read-only input. NegativeSignal and SalesforceCustomerPenalty are stored
// as positive magnitudes and applied negatively.
type Weights struct {
	VerticalMatch             float64 `yaml:"vertical_match"`
	SizeMatch                 float64 `yaml:"size_match"`
	RegionMatch               float64 `yaml:"region_match"`
	BuyingSignal              float64 `yaml:"buying_signal"`
	NegativeSignal            float64 `yaml:"negative_signal"`
	RelevanceBoost            float64 `yaml:"relevance_boost"`
	SalesforceCustomerPenalty float64 `yaml:"salesforce_customer_penalty"`
	HubSpotLeadBoost          float64 `yaml:"hubspot_lead_boost"`
}

// DefaultWeights returns the stock profile. Positive weights sum to 100 so
// a perfect-fit record with full relevance scores at the clamp ceiling.
func DefaultWeights() Weights {
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

// LoadWeights reads a weights profile from a yaml file. Fields omitted from
// the file keep their default values.
func LoadWeights(path string) (Weights, error) {
	w := DefaultWeights()
	if path == "" {
		return w, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return w, eris.Wrap(err, "icp: read weights file")
	}
	if err := yaml.Unmarshal(data, &w); err != nil {
		return w, eris.Wrap(err, "icp: parse weights file")
	}

	if err := Validate(w); err != nil {
		return w, err
	}
	return w, nil
}

// Validate rejects weight profiles with negative magnitudes.
func Validate(w Weights) error {
	checks := map[string]float64{
		"vertical_match":              w.VerticalMatch,
		"size_match":                  w.SizeMatch,
		"region_match":                w.RegionMatch,
		"buying_signal":               w.BuyingSignal,
		"negative_signal":             w.NegativeSignal,
		"relevance_boost":             w.RelevanceBoost,
		"salesforce_customer_penalty": w.SalesforceCustomerPenalty,
		"hubspot_lead_boost":          w.HubSpotLeadBoost,
	}
	for name, v := range checks {
		if v < 0 {
			return eris.Errorf("icp: weight %s must be non-negative, got %v", name, v)
		}
	}
	return nil
}
