package recommend

import (
	"time"

	"vintageCRM/domain"
)

// Scenario applicability and score composition. Every scenario score lands
// in [0,1] by construction; the final clamp only guards float drift.
const (
	reactivationAfterDays = 90
	dormancyHorizonDays   = 365

	affinitySpendWeight     = 0.7
	affinityPreferredWeight = 0.3
)

// clientHistory is the per-client purchase view the scenario checks read:
// last purchase time per product key and spend share per product family.
type clientHistory struct {
	now           time.Time
	lastPurchase  map[string]time.Time
	familyShare   map[string]float64
	preferred     map[string]bool
	avgOrderValue float64
}

func newClientHistory(client domain.Client, orders []domain.Order, now time.Time, familyByKey map[string]string) clientHistory {
	h := clientHistory{
		now:          now,
		lastPurchase: make(map[string]time.Time),
		familyShare:  make(map[string]float64),
		preferred:    make(map[string]bool),
	}

	for _, f := range client.PreferredFamilies {
		h.preferred[f] = true
	}

	spend := make(map[string]float64)
	total := 0.0
	for _, o := range orders {
		if last, ok := h.lastPurchase[o.ProductKey]; !ok || o.OrderedAt.After(last) {
			h.lastPurchase[o.ProductKey] = o.OrderedAt
		}
		total += o.Total
		// Orders referencing products gone from the catalog still count
		// toward totals, just not toward any family share.
		if family, ok := familyByKey[o.ProductKey]; ok {
			spend[family] += o.Total
		}
	}

	if len(orders) > 0 {
		h.avgOrderValue = total / float64(len(orders))
	}
	if total > 0 {
		for family, s := range spend {
			h.familyShare[family] = s / total
		}
	}

	return h
}

func (h clientHistory) purchasedWithin(productKey string, windowDays int) bool {
	if windowDays <= 0 {
		return false
	}
	last, ok := h.lastPurchase[productKey]
	if !ok {
		return false
	}

	return h.now.Sub(last) <= time.Duration(windowDays)*24*time.Hour
}

// familyAffinity blends the observed spend share of a family with the
// client's declared preference for it.
func (h clientHistory) familyAffinity(family string) float64 {
	affinity := affinitySpendWeight * h.familyShare[family]
	if h.preferred[family] {
		affinity += affinityPreferredWeight
	}

	return clamp01(affinity)
}

// bestScenario evaluates every applicable scenario for the product and
// keeps the highest score. Evaluation order is fixed and replacement is
// strict, so scenario ties always resolve the same way.
func bestScenario(client domain.Client, history clientHistory, p domain.Product, maxPopularity float64) (string, float64) {
	popNorm := 0.0
	if maxPopularity > 0 {
		popNorm = p.Popularity / maxPopularity
	}

	scenario := domain.ScenarioPopular
	score := 0.5 * popNorm

	if s, ok := crossSellScore(history, p, popNorm); ok && s > score {
		scenario, score = domain.ScenarioCrossSell, s
	}
	if s, ok := reactivationScore(client, history, p, popNorm); ok && s > score {
		scenario, score = domain.ScenarioReactivation, s
	}
	if s, ok := premiumUpsellScore(client, history, p); ok && s > score {
		scenario, score = domain.ScenarioPremiumUpsell, s
	}

	return scenario, clamp01(score)
}

// crossSellScore targets families the client demonstrably buys from or has
// declared. Requires purchase history or a declared preference.
func crossSellScore(history clientHistory, p domain.Product, popNorm float64) (float64, bool) {
	affinity := history.familyAffinity(p.Family)
	if affinity == 0 {
		return 0, false
	}

	return clamp01(0.7*affinity + 0.3*popNorm), true
}

// reactivationScore targets dormant clients: the longer the silence, the
// stronger the pull, nudged toward familiar families and known products.
func reactivationScore(client domain.Client, history clientHistory, p domain.Product, popNorm float64) (float64, bool) {
	if client.RecencyDays <= reactivationAfterDays {
		return 0, false
	}

	dormancy := float64(client.RecencyDays) / dormancyHorizonDays
	if dormancy > 1 {
		dormancy = 1
	}

	return clamp01(0.5*dormancy + 0.3*history.familyAffinity(p.Family) + 0.2*popNorm), true
}

// premiumUpsellScore targets products priced above the client's usual
// order value but still inside the budget band, favoring high margin.
func premiumUpsellScore(client domain.Client, history clientHistory, p domain.Product) (float64, bool) {
	if client.BudgetBand <= 0 || p.Price <= 0 {
		return 0, false
	}
	if p.Price <= history.avgOrderValue || p.Price > client.BudgetBand {
		return 0, false
	}

	return clamp01(0.6*(p.Price/client.BudgetBand) + 0.4*clamp01(p.Margin)), true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}

	return v
}
