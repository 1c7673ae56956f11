package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vintageCRM/domain"
)

func TestScoreZeroOrderClient(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clients := []domain.Client{{Code: "CL-1", TenantCode: "acme"}}

	scored := NewEngine().Score(clients, nil, now, 365)
	require.Len(t, scored, 1)

	assert.Equal(t, 365, scored[0].RecencyDays)
	assert.Equal(t, 0, scored[0].Frequency)
	assert.Equal(t, 0.0, scored[0].Monetary)
	assert.Equal(t, "111", scored[0].RFMScore)
	assert.Equal(t, domain.SegmentInactive, scored[0].RFMSegment)
}

func TestScoreAggregatesWindowedOrders(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clients := []domain.Client{{Code: "CL-1", TenantCode: "acme"}}
	orders := []domain.Order{
		{ClientCode: "CL-1", Total: 300, OrderedAt: now.AddDate(0, 0, -3)},
		{ClientCode: "CL-1", Total: 250, OrderedAt: now.AddDate(0, 0, -40)},
		// Outside the lookback window, must not count.
		{ClientCode: "CL-1", Total: 9000, OrderedAt: now.AddDate(-2, 0, 0)},
	}

	scored := NewEngine().Score(clients, orders, now, 365)
	require.Len(t, scored, 1)

	assert.Equal(t, 3, scored[0].RecencyDays)
	assert.Equal(t, 2, scored[0].Frequency)
	assert.Equal(t, 550.0, scored[0].Monetary)
	assert.Equal(t, "523", scored[0].RFMScore)
}

func TestScoreDoesNotMutateInput(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clients := []domain.Client{{Code: "CL-1", RFMScore: "555"}}

	scored := NewEngine().Score(clients, nil, now, 365)

	assert.Equal(t, "555", clients[0].RFMScore)
	assert.Equal(t, "111", scored[0].RFMScore)
}

func TestRecencyTierBoundaries(t *testing.T) {
	cases := []struct {
		days int
		want int
	}{
		{0, 5}, {7, 5}, {8, 4}, {30, 4}, {31, 3}, {90, 3}, {91, 2}, {180, 2}, {181, 1}, {365, 1},
	}
	for _, c := range cases {
		assert.Equalf(t, c.want, recencyTier(c.days), "recency %d days", c.days)
	}
}

func TestFrequencyTierBoundaries(t *testing.T) {
	cases := []struct {
		orders int
		want   int
	}{
		{0, 1}, {1, 1}, {2, 2}, {4, 2}, {5, 3}, {9, 3}, {10, 4}, {19, 4}, {20, 5},
	}
	for _, c := range cases {
		assert.Equalf(t, c.want, frequencyTier(c.orders), "%d orders", c.orders)
	}
}

func TestMonetaryTierBoundaries(t *testing.T) {
	cases := []struct {
		total float64
		want  int
	}{
		{0, 1}, {50, 1}, {100, 2}, {499, 2}, {500, 3}, {1999, 3}, {2000, 4}, {4999, 4}, {5000, 5},
	}
	for _, c := range cases {
		assert.Equalf(t, c.want, monetaryTier(c.total), "total %.0f", c.total)
	}
}

func TestSegmentVocabulary(t *testing.T) {
	cases := []struct {
		r, f, m int
		want    string
	}{
		{5, 5, 5, domain.SegmentChampions},
		{4, 4, 4, domain.SegmentChampions},
		{4, 3, 2, domain.SegmentLoyal},
		{3, 3, 1, domain.SegmentLoyal},
		{5, 1, 1, domain.SegmentNew},
		{3, 2, 2, domain.SegmentPotential},
		{2, 4, 1, domain.SegmentAtRisk},
		{2, 1, 4, domain.SegmentAtRisk},
		{2, 2, 2, domain.SegmentHibernating},
		{1, 5, 2, domain.SegmentAtRisk},
		{1, 1, 1, domain.SegmentLost},
	}
	for _, c := range cases {
		assert.Equalf(t, c.want, segmentFor(c.r, c.f, c.m), "r=%d f=%d m=%d", c.r, c.f, c.m)
	}
}

func TestScoreMonotonicInSpend(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clients := []domain.Client{
		{Code: "CL-LOW"},
		{Code: "CL-HIGH"},
	}
	orders := []domain.Order{
		{ClientCode: "CL-LOW", Total: 120, OrderedAt: now.AddDate(0, 0, -10)},
		{ClientCode: "CL-HIGH", Total: 2500, OrderedAt: now.AddDate(0, 0, -10)},
	}

	scored := NewEngine().Score(clients, orders, now, 365)
	require.Len(t, scored, 2)

	byCode := map[string]domain.Client{}
	for _, c := range scored {
		byCode[c.Code] = c
	}
	assert.Less(t, byCode["CL-LOW"].RFMScore, byCode["CL-HIGH"].RFMScore)
}
