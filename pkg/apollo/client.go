// Package apollo provides a client for the Apollo.io company search API.
package apollo

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

const defaultBaseURL = "https://api.apollo.io"

// Client performs cohort discovery against the Apollo API.
type Client interface {
	SearchOrganizations(ctx context.Context, req OrgSearchRequest) (*OrgSearchResponse, error)
}

// OrgSearchRequest is the request body for POST /api/v1/mixed_companies/search.
type OrgSearchRequest struct {
	QKeywords         string   `json:"q_organization_keyword_tags,omitempty"`
	Name              string   `json:"q_organization_name,omitempty"`
	Locations         []string `json:"organization_locations,omitempty"`
	EmployeeRanges    []string `json:"organization_num_employees_ranges,omitempty"`
	Page              int      `json:"page,omitempty"`
	PerPage           int      `json:"per_page,omitempty"`
	SignalDefinitions []string `json:"search_signal_ids,omitempty"`
}

// OrgSearchResponse is the response body.
type OrgSearchResponse struct {
	Organizations []Organization `json:"organizations"`
	Pagination    Pagination     `json:"pagination"`
}

// Pagination reports result paging.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
}

// Organization is a single discovered company.
type Organization struct {
	Name          string `json:"name"`
	WebsiteURL    string `json:"website_url"`
	PrimaryDomain string `json:"primary_domain"`
	Industry      string `json:"industry"`
	EmployeeCount int    `json:"estimated_num_employees"`
	City          string `json:"organization_city"`
	Country       string `json:"organization_country"`
	ShortDesc     string `json:"short_description"`
	Phone         string `json:"phone"`
	LogoURL       string `json:"logo_url"`
	FoundedYear   int    `json:"founded_year"`
	AnnualRevenue string `json:"annual_revenue_printed"`
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
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates an Apollo API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
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

func (c *httpClient) SearchOrganizations(ctx context.Context, req OrgSearchRequest) (*OrgSearchResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "apollo: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/mixed_companies/search", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "apollo: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "apollo: send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for keep-alive
		return nil, eris.Wrap(httperr.From(resp), "apollo: search organizations")
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "apollo: read response")
	}

	var result OrgSearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "apollo: unmarshal response")
	}

	return &result, nil
}
