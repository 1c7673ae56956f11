package recommend

import (
	"sort"
	"time"

	"vintageCRM/domain"
)

const defaultTopN = 5

// Params control one generation pass. TopN at or below zero falls back to
// the default of 5; SilenceWindowDays at zero disables the exclusion.
type Params struct {
	TopN              int
	SilenceWindowDays int
	Now               time.Time
}

// Engine produces ranked, scenario-tagged product recommendations per
// client. It is a pure computation over the data it is handed; the caller
// stamps run ids and persists the rows.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

type candidate struct {
	product  domain.Product
	score    float64
	scenario string
}

// Generate builds the recommendation set for every client. Products bought
// within the silence window are excluded, the remaining candidates are
// scored under each applicable scenario, and the best topN survive with
// contiguous ranks starting at 1. A client whose candidate list comes out
// empty simply produces no rows; the audit stage picks that up.
func (e *Engine) Generate(clients []domain.Client, products []domain.Product, orders []domain.Order, params Params) []domain.Recommendation {
	topN := params.TopN
	if topN <= 0 {
		topN = defaultTopN
	}

	maxPopularity := 0.0
	familyByKey := make(map[string]string, len(products))
	for _, p := range products {
		familyByKey[p.ProductKey] = p.Family
		if p.Popularity > maxPopularity {
			maxPopularity = p.Popularity
		}
	}

	ordersByClient := make(map[string][]domain.Order)
	for _, o := range orders {
		ordersByClient[o.ClientCode] = append(ordersByClient[o.ClientCode], o)
	}

	var recs []domain.Recommendation
	for _, client := range clients {
		history := newClientHistory(client, ordersByClient[client.Code], params.Now, familyByKey)

		candidates := e.scoreCandidates(client, history, products, maxPopularity, params)
		if len(candidates) == 0 {
			continue
		}

		rankCandidates(candidates)
		if len(candidates) > topN {
			candidates = candidates[:topN]
		}

		for i, c := range candidates {
			recs = append(recs, domain.Recommendation{
				ClientCode: client.Code,
				ProductKey: c.product.ProductKey,
				Rank:       i + 1,
				Score:      c.score,
				Scenario:   c.scenario,
				Approved:   true,
			})
		}
	}

	return recs
}

func (e *Engine) scoreCandidates(client domain.Client, history clientHistory, products []domain.Product, maxPopularity float64, params Params) []candidate {
	var candidates []candidate
	for _, p := range products {
		if !p.IsActive {
			continue
		}
		if history.purchasedWithin(p.ProductKey, params.SilenceWindowDays) {
			continue
		}

		scenario, score := bestScenario(client, history, p, maxPopularity)
		candidates = append(candidates, candidate{product: p, score: score, scenario: scenario})
	}

	return candidates
}

// rankCandidates orders by score descending; ties fall back to product
// popularity, then product key, so identical inputs always rank identically.
func rankCandidates(candidates []candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.product.Popularity != b.product.Popularity {
			return a.product.Popularity > b.product.Popularity
		}
		return a.product.ProductKey < b.product.ProductKey
	})
}
