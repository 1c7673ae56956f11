package recommend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vintageCRM/domain"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestGenerateExcludesSilenceWindow(t *testing.T) {
	clients := []domain.Client{{Code: "CL-1", RecencyDays: 2}}
	products := []domain.Product{
		{ProductKey: "P-1", Family: "Rouge", Popularity: 2, IsActive: true},
		{ProductKey: "P-2", Family: "Rouge", Popularity: 1, IsActive: true},
	}
	orders := []domain.Order{
		{ClientCode: "CL-1", ProductKey: "P-1", Total: 50, OrderedAt: testNow.AddDate(0, 0, -2)},
	}

	recs := NewEngine().Generate(clients, products, orders, Params{TopN: 5, SilenceWindowDays: 7, Now: testNow})
	require.Len(t, recs, 1)
	assert.Equal(t, "P-2", recs[0].ProductKey)

	// Window of zero disables the exclusion entirely.
	recs = NewEngine().Generate(clients, products, orders, Params{TopN: 5, SilenceWindowDays: 0, Now: testNow})
	assert.Len(t, recs, 2)
}

func TestGenerateSkipsInactiveProducts(t *testing.T) {
	clients := []domain.Client{{Code: "CL-1"}}
	products := []domain.Product{
		{ProductKey: "P-1", Popularity: 2, IsActive: true},
		{ProductKey: "P-2", Popularity: 5, IsActive: false},
	}

	recs := NewEngine().Generate(clients, products, nil, Params{TopN: 5, Now: testNow})
	require.Len(t, recs, 1)
	assert.Equal(t, "P-1", recs[0].ProductKey)
}

func TestGenerateRanksContiguousAndNonIncreasing(t *testing.T) {
	clients := []domain.Client{{Code: "CL-1"}}
	products := []domain.Product{
		{ProductKey: "P-1", Popularity: 1, IsActive: true},
		{ProductKey: "P-2", Popularity: 4, IsActive: true},
		{ProductKey: "P-3", Popularity: 2, IsActive: true},
	}

	recs := NewEngine().Generate(clients, products, nil, Params{TopN: 5, Now: testNow})
	require.Len(t, recs, 3)

	for i, r := range recs {
		assert.Equal(t, i+1, r.Rank)
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 1.0)
		if i > 0 {
			assert.LessOrEqual(t, r.Score, recs[i-1].Score)
		}
	}
	assert.Equal(t, "P-2", recs[0].ProductKey)
}

func TestGenerateHonorsTopN(t *testing.T) {
	clients := []domain.Client{{Code: "CL-1"}}
	products := make([]domain.Product, 0, 6)
	for _, key := range []string{"P-1", "P-2", "P-3", "P-4", "P-5", "P-6"} {
		products = append(products, domain.Product{ProductKey: key, Popularity: 1, IsActive: true})
	}

	recs := NewEngine().Generate(clients, products, nil, Params{TopN: 2, Now: testNow})
	assert.Len(t, recs, 2)

	// TopN zero falls back to the default of 5.
	recs = NewEngine().Generate(clients, products, nil, Params{Now: testNow})
	assert.Len(t, recs, 5)
}

func TestGenerateTieBreaksByPopularityThenKey(t *testing.T) {
	clients := []domain.Client{{Code: "CL-1"}}
	products := []domain.Product{
		{ProductKey: "P-B", Popularity: 2, IsActive: true},
		{ProductKey: "P-A", Popularity: 2, IsActive: true},
		{ProductKey: "P-C", Popularity: 4, IsActive: true},
	}

	recs := NewEngine().Generate(clients, products, nil, Params{TopN: 5, Now: testNow})
	require.Len(t, recs, 3)
	assert.Equal(t, "P-C", recs[0].ProductKey)
	assert.Equal(t, "P-A", recs[1].ProductKey)
	assert.Equal(t, "P-B", recs[2].ProductKey)
}

func TestGenerateCrossSellOnFamilyAffinity(t *testing.T) {
	clients := []domain.Client{{Code: "CL-1", RecencyDays: 10}}
	products := []domain.Product{
		{ProductKey: "P-OLD", Family: "Rouge", Popularity: 1, IsActive: true},
		{ProductKey: "P-NEW", Family: "Rouge", Popularity: 2, IsActive: true},
	}
	orders := []domain.Order{
		{ClientCode: "CL-1", ProductKey: "P-OLD", Total: 100, OrderedAt: testNow.AddDate(0, 0, -30)},
	}

	recs := NewEngine().Generate(clients, products, orders, Params{TopN: 5, SilenceWindowDays: 7, Now: testNow})
	require.NotEmpty(t, recs)
	assert.Equal(t, "P-NEW", recs[0].ProductKey)
	assert.Equal(t, domain.ScenarioCrossSell, recs[0].Scenario)
	assert.InDelta(t, 0.79, recs[0].Score, 1e-9)
}

func TestGenerateReactivationForDormantClients(t *testing.T) {
	clients := []domain.Client{{Code: "CL-1", RecencyDays: 365}}
	products := []domain.Product{
		{ProductKey: "P-1", Family: "Rouge", Popularity: 1, IsActive: true},
		{ProductKey: "P-2", Family: "Rouge", Popularity: 1, IsActive: true},
	}
	orders := []domain.Order{
		{ClientCode: "CL-1", ProductKey: "P-1", Total: 100, OrderedAt: testNow.AddDate(-1, 0, 0)},
	}

	recs := NewEngine().Generate(clients, products, orders, Params{TopN: 5, SilenceWindowDays: 7, Now: testNow})
	require.NotEmpty(t, recs)
	assert.Equal(t, domain.ScenarioReactivation, recs[0].Scenario)
}

func TestGeneratePremiumUpsellWithinBudget(t *testing.T) {
	clients := []domain.Client{{Code: "CL-1", RecencyDays: 10, BudgetBand: 100}}
	products := []domain.Product{
		{ProductKey: "P-CHEAP", Family: "Blanc", Price: 20, Popularity: 5, IsActive: true},
		{ProductKey: "P-PREMIUM", Family: "Blanc", Price: 80, Margin: 0.5, Popularity: 0, IsActive: true},
	}
	orders := []domain.Order{
		{ClientCode: "CL-1", ProductKey: "P-CHEAP", Total: 20, OrderedAt: testNow.AddDate(0, 0, -30)},
	}

	recs := NewEngine().Generate(clients, products, orders, Params{TopN: 5, SilenceWindowDays: 7, Now: testNow})
	require.Len(t, recs, 2)

	byKey := map[string]domain.Recommendation{}
	for _, r := range recs {
		byKey[r.ProductKey] = r
	}
	premium := byKey["P-PREMIUM"]
	assert.Equal(t, domain.ScenarioPremiumUpsell, premium.Scenario)
	assert.InDelta(t, 0.68, premium.Score, 1e-9)

	// Priced at the client's usual order value, the cheap bottle is no upsell.
	assert.NotEqual(t, domain.ScenarioPremiumUpsell, byKey["P-CHEAP"].Scenario)
}

func TestGeneratePopularFallback(t *testing.T) {
	clients := []domain.Client{{Code: "CL-1"}}
	products := []domain.Product{
		{ProductKey: "P-1", Popularity: 3, IsActive: true},
		{ProductKey: "P-2", Popularity: 1, IsActive: true},
	}

	recs := NewEngine().Generate(clients, products, nil, Params{TopN: 5, Now: testNow})
	require.Len(t, recs, 2)
	assert.Equal(t, domain.ScenarioPopular, recs[0].Scenario)
	assert.Equal(t, domain.ScenarioPopular, recs[1].Scenario)
	assert.Equal(t, "P-1", recs[0].ProductKey)
}

func TestGenerateEmptyCandidatesProduceNoRows(t *testing.T) {
	clients := []domain.Client{{Code: "CL-1"}}
	products := []domain.Product{
		{ProductKey: "P-1", Popularity: 1, IsActive: true},
	}
	orders := []domain.Order{
		{ClientCode: "CL-1", ProductKey: "P-1", Total: 30, OrderedAt: testNow.AddDate(0, 0, -1)},
	}

	recs := NewEngine().Generate(clients, products, orders, Params{TopN: 5, SilenceWindowDays: 7, Now: testNow})
	assert.Empty(t, recs)
}
