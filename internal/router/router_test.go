package router

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testBudgets() Budgets {
	return Budgets{Exa: 2, Serper: 3, Apollo: 3}
}

func TestPickDiscoveryEngine_PrefersApollo(t *testing.T) {
	t.Parallel()

	r := New(testBudgets())
	assert.Equal(t, EngineApollo, r.PickDiscoveryEngine())
}

func TestPickDiscoveryEngine_DegradesWhenExhausted(t *testing.T) {
	t.Parallel()

	r := New(testBudgets())
	for i := 0; i < 3; i++ {
		r.RecordUsage(EngineApollo)
	}
	assert.Equal(t, EngineSerper, r.PickDiscoveryEngine())
}

func TestPickNameEngine_PrefersSerper(t *testing.T) {
	t.Parallel()

	r := New(testBudgets())
	assert.Equal(t, EngineSerper, r.PickNameEngine())

	for i := 0; i < 3; i++ {
		r.RecordUsage(EngineSerper)
	}
	assert.Equal(t, EngineApollo, r.PickNameEngine())
}

func TestExaFallbackAllowed(t *testing.T) {
	t.Parallel()

	r := New(testBudgets())
	assert.True(t, r.ExaFallbackAllowed())

	r.RecordUsage(EngineExa)
	assert.True(t, r.ExaFallbackAllowed())

	r.RecordUsage(EngineExa)
	assert.False(t, r.ExaFallbackAllowed(), "budget of 2 is consumed after 2 calls")
}

func TestUsageSummary(t *testing.T) {
	t.Parallel()

	r := New(testBudgets())
	r.RecordUsage(EngineApollo)
	r.RecordUsage(EngineApollo)

	sum := r.UsageSummary()
	assert.Equal(t, int64(2), sum[EngineApollo].Count)
	assert.Equal(t, int64(3), sum[EngineApollo].Budget)
	assert.InDelta(t, 66.7, sum[EngineApollo].PctUsed, 0.1)
	assert.Equal(t, int64(0), sum[EngineExa].Count)
}

func TestResetWindow(t *testing.T) {
	t.Parallel()

	r := New(testBudgets())
	for i := 0; i < 3; i++ {
		r.RecordUsage(EngineApollo)
	}
	assert.Equal(t, EngineSerper, r.PickDiscoveryEngine())

	r.ResetWindow()
	assert.Equal(t, EngineApollo, r.PickDiscoveryEngine())
	assert.Equal(t, int64(0), r.UsageSummary()[EngineApollo].Count)
}

func TestRecordUsage_Concurrent(t *testing.T) {
	t.Parallel()

	r := New(Budgets{Apollo: 1_000_000})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				r.RecordUsage(EngineApollo)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(16000), r.UsageSummary()[EngineApollo].Count)
}

func TestZeroBudget_NeverRouted(t *testing.T) {
	t.Parallel()

	r := New(Budgets{Serper: 1})
	assert.Equal(t, EngineSerper, r.PickDiscoveryEngine(), "apollo has no budget")
	assert.False(t, r.ExaFallbackAllowed())
}
