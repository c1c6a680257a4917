package hubspot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospector/internal/httperr"
)

func TestFindCompanyByDomain_Hit(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/crm/v3/objects/companies/search", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.FilterGroups, 1)
		assert.Equal(t, "acme.com", req.FilterGroups[0].Filters[0].Value)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(searchResponse{
			Total: 1,
			Results: []Company{{
				ID: "901",
				Properties: map[string]string{
					"name":           "Acme Corp",
					"domain":         "acme.com",
					"lifecyclestage": "lead",
				},
			}},
		})
	}))
	defer srv.Close()

	client := NewClient("test-token", WithBaseURL(srv.URL))
	got, err := client.FindCompanyByDomain(context.Background(), "acme.com")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "901", got.ID)
	assert.Equal(t, "lead", got.Lifecycle())
}

func TestFindCompanyByDomain_Miss(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(searchResponse{Total: 0})
	}))
	defer srv.Close()

	client := NewClient("test-token", WithBaseURL(srv.URL))
	got, err := client.FindCompanyByDomain(context.Background(), "nobody.example")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindCompanyByDomain_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient("test-token", WithBaseURL(srv.URL))
	_, err := client.FindCompanyByDomain(context.Background(), "acme.com")

	require.Error(t, err)
	assert.Equal(t, 503, httperr.StatusOf(err))
}

func TestLifecycle_NilReceiver(t *testing.T) {
	t.Parallel()

	var c *Company
	assert.Equal(t, "", c.Lifecycle())
}
