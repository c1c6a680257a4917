package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospector/internal/model"
)

func TestKey_Deterministic(t *testing.T) {
	t.Parallel()

	a := Key("Fintech Startups", model.FilterState{Verticals: []string{"fintech", "saas"}})
	b := Key("fintech startups  ", model.FilterState{Verticals: []string{"SaaS", "Fintech"}})
	assert.Equal(t, a, b, "case, whitespace, and filter order are insignificant")
}

func TestKey_DistinguishesFilters(t *testing.T) {
	t.Parallel()

	base := Key("fintech", model.FilterState{})
	assert.NotEqual(t, base, Key("fintech", model.FilterState{Regions: []string{"EU"}}))
	assert.NotEqual(t, base, Key("fintech", model.FilterState{ExcludeExisting: true}))
	assert.NotEqual(t, base, Key("fintech startups", model.FilterState{}))
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	t.Parallel()

	c := NewMemory()
	ctx := context.Background()
	records := []model.CompanyRecord{{Domain: "acme.com", Name: "Acme"}}

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", records, time.Minute))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, records, got)
}

func TestMemoryCache_Expiry(t *testing.T) {
	t.Parallel()

	c := NewMemory()
	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []model.CompanyRecord{{Domain: "a.com"}}, time.Minute))

	current = current.Add(2 * time.Minute)
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "entry past its ttl is a miss")
}
