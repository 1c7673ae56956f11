//go:build !integration

package run

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"vintageCRM/business/audit"
	"vintageCRM/business/gating"
	"vintageCRM/business/recommend"
	"vintageCRM/business/scoring"
	"vintageCRM/business/segmentation"
	"vintageCRM/domain"
)

// scenario params
const (
	stressNumClients      = 20000
	stressNumProducts     = 500
	stressOrdersPerClient = 8
	stressTopN            = 5
	stressClusterCount    = 6
	stressSilenceWindow   = 30
	stressLookbackDays    = 365
)

var stressFamilies = []string{"Rouge", "Blanc", "Rosé", "Champagne"}

func TestPipelineAtCatalogScale(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress run in short mode")
	}

	rng := rand.New(rand.NewSource(42))
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	products := make([]domain.Product, 0, stressNumProducts)
	for p := 0; p < stressNumProducts; p++ {
		products = append(products, domain.Product{
			TenantCode: "stress",
			ProductKey: fmt.Sprintf("P-%04d", p),
			Family:     stressFamilies[p%len(stressFamilies)],
			Price:      10 + rng.Float64()*190,
			Margin:     rng.Float64(),
			Popularity: rng.Float64() * 1000,
			IsActive:   true,
		})
	}

	clients := make([]domain.Client, 0, stressNumClients)
	var orders []domain.Order
	for c := 0; c < stressNumClients; c++ {
		code := fmt.Sprintf("CL-%05d", c)
		clients = append(clients, domain.Client{
			TenantCode: "stress",
			Code:       code,
			BudgetBand: 20 + rng.Float64()*180,
		})

		// A tenth of the book never ordered.
		if c%10 == 9 {
			continue
		}
		n := 1 + rng.Intn(stressOrdersPerClient)
		for i := 0; i < n; i++ {
			product := products[rng.Intn(stressNumProducts)]
			orders = append(orders, domain.Order{
				TenantCode: "stress",
				ClientCode: code,
				ProductKey: product.ProductKey,
				Quantity:   1,
				UnitPrice:  product.Price,
				Total:      product.Price,
				OrderedAt:  now.AddDate(0, 0, -1-rng.Intn(stressLookbackDays-1)),
			})
		}
	}

	started := time.Now()
	scored := scoring.NewEngine().Score(clients, orders, now, stressLookbackDays)
	t.Logf("[scoring] clients=%d took=%s", len(scored), time.Since(started))

	started = time.Now()
	clustered, distribution, err := segmentation.NewEngine().Cluster(scored, orders, stressClusterCount)
	if err != nil {
		t.Fatalf("clustering failed: %v", err)
	}
	t.Logf("[segmentation] clusters=%d took=%s", len(distribution), time.Since(started))

	started = time.Now()
	recs := recommend.NewEngine().Generate(clustered, products, orders, recommend.Params{
		TopN:              stressTopN,
		SilenceWindowDays: stressSilenceWindow,
		Now:               now,
	})
	t.Logf("[recommend] rows=%d took=%s", len(recs), time.Since(started))

	started = time.Now()
	policy := audit.DefaultPolicy()
	results := audit.NewEngine(policy).Evaluate(clustered, recs, products, orders, audit.Params{
		SilenceWindowDays: stressSilenceWindow,
		Now:               now,
	})
	t.Logf("[audit] clients=%d took=%s", len(results), time.Since(started))

	gate := gating.NewEngine(policy.Threshold)
	eligible := 0
	for _, client := range clustered {
		if client.ClusterID < 1 || client.ClusterID > stressClusterCount {
			t.Fatalf("client %s has cluster %d outside 1..%d", client.Code, client.ClusterID, stressClusterCount)
		}
		result := results[client.Code]
		if result.Score < 0 || result.Score > policy.Baseline {
			t.Fatalf("client %s has audit score %f outside bounds", client.Code, result.Score)
		}
		if ok, _ := gate.Decide(result.Score, result.Violations); ok {
			eligible++
		}
	}

	if len(recs) > stressNumClients*stressTopN {
		t.Fatalf("recommendation volume %d exceeds clients*topN", len(recs))
	}
	perClient := make(map[string]int)
	for _, r := range recs {
		perClient[r.ClientCode]++
		if r.Score < 0 || r.Score > 1 {
			t.Fatalf("recommendation score %f out of range for %s", r.Score, r.ClientCode)
		}
	}
	for code, n := range perClient {
		if n > stressTopN {
			t.Fatalf("client %s received %d recommendations", code, n)
		}
	}

	t.Logf("[gating] eligible=%d/%d recs=%d", eligible, len(clustered), len(recs))
}
