package audit

import (
	"time"

	"vintageCRM/domain"
)

// Engine runs the rule registry over every client's recommendation set and
// aggregates a per-client audit score: the policy baseline minus the weight
// of each triggered rule's severity, floored at zero.
type Engine struct {
	policy Policy
	rules  []Rule
}

func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy, rules: Registry()}
}

func (e *Engine) Policy() Policy {
	return e.policy
}

// Params carry the run settings the rules need for their checks.
type Params struct {
	SilenceWindowDays int
	Now               time.Time
}

// Result is the audit outcome for one client.
type Result struct {
	ClientCode string
	Score      float64
	Violations []domain.AuditViolation
}

// Evaluate audits every client and returns results keyed by client code.
// The pass is deterministic: same inputs, same violations, same scores.
func (e *Engine) Evaluate(clients []domain.Client, recs []domain.Recommendation, products []domain.Product, orders []domain.Order, params Params) map[string]Result {
	productsByKey := make(map[string]domain.Product, len(products))
	catalogSize := 0
	for _, p := range products {
		productsByKey[p.ProductKey] = p
		if p.IsActive {
			catalogSize++
		}
	}

	recsByClient := make(map[string][]domain.Recommendation)
	for _, r := range recs {
		recsByClient[r.ClientCode] = append(recsByClient[r.ClientCode], r)
	}

	lastPurchase := make(map[string]map[string]time.Time)
	for _, o := range orders {
		byKey, ok := lastPurchase[o.ClientCode]
		if !ok {
			byKey = make(map[string]time.Time)
			lastPurchase[o.ClientCode] = byKey
		}
		if last, ok := byKey[o.ProductKey]; !ok || o.OrderedAt.After(last) {
			byKey[o.ProductKey] = o.OrderedAt
		}
	}

	results := make(map[string]Result, len(clients))
	for _, client := range clients {
		in := Input{
			Client:            client,
			Recommendations:   recsByClient[client.Code],
			Products:          productsByKey,
			LastPurchase:      lastPurchase[client.Code],
			CatalogSize:       catalogSize,
			SilenceWindowDays: params.SilenceWindowDays,
			Now:               params.Now,
		}

		results[client.Code] = e.evaluateClient(in)
	}

	return results
}

func (e *Engine) evaluateClient(in Input) Result {
	result := Result{ClientCode: in.Client.Code, Score: e.policy.Baseline}

	for _, rule := range e.rules {
		f := rule.Check(in, e.policy)
		if f == nil {
			continue
		}

		severity := rule.Severity
		if f.severity != "" {
			severity = f.severity
		}

		result.Violations = append(result.Violations, domain.AuditViolation{
			TenantCode: in.Client.TenantCode,
			ClientCode: in.Client.Code,
			RuleCode:   rule.Code,
			Severity:   severity,
			Details:    f.details,
		})
		result.Score -= e.policy.Weight(severity)
	}

	if result.Score < 0 {
		result.Score = 0
	}

	return result
}
