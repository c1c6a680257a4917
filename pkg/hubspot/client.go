// Package hubspot provides a client for the HubSpot CRM companies API.
package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospector/internal/httperr"
)

const defaultBaseURL = "https://api.hubapi.com"

// Client looks up CRM companies.
type Client interface {
	// FindCompanyByDomain returns the CRM company whose domain property
	// equals domain, or nil when the CRM has no such company.
	FindCompanyByDomain(ctx context.Context, domain string) (*Company, error)
}

// Company is a CRM company object.
type Company struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

// Lifecycle returns the company's lifecyclestage property ("lead",
// "customer", ...) or "".
func (c *Company) Lifecycle() string {
	if c == nil {
		return ""
	}
	return c.Properties["lifecyclestage"]
}

type searchRequest struct {
	FilterGroups []filterGroup `json:"filterGroups"`
	Properties   []string      `json:"properties"`
	Limit        int           `json:"limit"`
}

type filterGroup struct {
	Filters []filter `json:"filters"`
}

type filter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

type searchResponse struct {
	Total   int       `json:"total"`
	Results []Company `json:"results"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a HubSpot API client using a private app token.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) FindCompanyByDomain(ctx context.Context, domain string) (*Company, error) {
	req := searchRequest{
		FilterGroups: []filterGroup{{
			Filters: []filter{{PropertyName: "domain", Operator: "EQ", Value: domain}},
		}},
		Properties: []string{"name", "domain", "lifecyclestage", "numberofemployees", "phone"},
		Limit:      1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "hubspot: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/crm/v3/objects/companies/search", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "hubspot: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "hubspot: send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for keep-alive
		return nil, eris.Wrap(httperr.From(resp), "hubspot: company search")
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "hubspot: read response")
	}

	var result searchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "hubspot: unmarshal response")
	}

	if len(result.Results) == 0 {
		return nil, nil
	}
	return &result.Results[0], nil
}
