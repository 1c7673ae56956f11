package audit

import (
	"time"

	"gorm.io/datatypes"

	"vintageCRM/domain"
)

// Rule codes, in evaluation order.
const (
	RuleDupRecentPurchase   = "REC_DUP_RECENT_PURCHASE"
	RuleEmptySet            = "REC_EMPTY_SET"
	RuleScoreBounds         = "REC_SCORE_BOUNDS"
	RuleRankOrder           = "REC_RANK_ORDER"
	RuleScenarioMonoculture = "REC_SCENARIO_MONOCULTURE"
	RuleBudgetExceeded      = "REC_BUDGET_EXCEEDED"
)

// Input is everything a rule may look at for one client. Rules are pure
// functions of this value; none performs I/O.
type Input struct {
	Client            domain.Client
	Recommendations   []domain.Recommendation
	Products          map[string]domain.Product
	LastPurchase      map[string]time.Time
	CatalogSize       int
	SilenceWindowDays int
	Now               time.Time
}

// finding is a triggered rule before it is stamped into an AuditViolation.
// An empty severity takes the rule's default.
type finding struct {
	details  datatypes.JSONMap
	severity domain.Severity
}

// Rule couples a stable code and default severity with a pure check.
type Rule struct {
	Code     string
	Severity domain.Severity
	Check    func(in Input, p Policy) *finding
}

// Registry returns the fixed, ordered rule set. Order matters only for the
// stability of violation listings; every rule always runs.
func Registry() []Rule {
	return []Rule{
		{Code: RuleDupRecentPurchase, Severity: domain.SeverityCritical, Check: checkDupRecentPurchase},
		{Code: RuleEmptySet, Severity: domain.SeverityCritical, Check: checkEmptySet},
		{Code: RuleScoreBounds, Severity: domain.SeverityHigh, Check: checkScoreBounds},
		{Code: RuleRankOrder, Severity: domain.SeverityHigh, Check: checkRankOrder},
		{Code: RuleScenarioMonoculture, Severity: domain.SeverityMedium, Check: checkScenarioMonoculture},
		{Code: RuleBudgetExceeded, Severity: domain.SeverityMedium, Check: checkBudgetExceeded},
	}
}

// checkDupRecentPurchase flags recommendations duplicating a purchase made
// inside the silence window. The generator excludes these up front, so a
// hit here means corrupted input and gates the client hard.
func checkDupRecentPurchase(in Input, _ Policy) *finding {
	if in.SilenceWindowDays <= 0 {
		return nil
	}

	window := time.Duration(in.SilenceWindowDays) * 24 * time.Hour
	var offending []string
	for _, r := range in.Recommendations {
		last, ok := in.LastPurchase[r.ProductKey]
		if ok && in.Now.Sub(last) <= window {
			offending = append(offending, r.ProductKey)
		}
	}
	if len(offending) == 0 {
		return nil
	}

	return &finding{details: datatypes.JSONMap{
		"product_keys":        offending,
		"silence_window_days": in.SilenceWindowDays,
	}}
}

// checkEmptySet fires when a client received no recommendations at all.
// There is nothing to send such a client, so the violation is critical and
// gates the client out of campaigns.
func checkEmptySet(in Input, _ Policy) *finding {
	if len(in.Recommendations) > 0 {
		return nil
	}

	return &finding{details: datatypes.JSONMap{
		"reason": "no recommendations generated",
	}}
}

func checkScoreBounds(in Input, _ Policy) *finding {
	var offending []map[string]interface{}
	for _, r := range in.Recommendations {
		if r.Score < 0 || r.Score > 1 {
			offending = append(offending, map[string]interface{}{
				"rank":  r.Rank,
				"score": r.Score,
			})
		}
	}
	if len(offending) == 0 {
		return nil
	}

	return &finding{details: datatypes.JSONMap{"out_of_bounds": offending}}
}

// checkRankOrder verifies ranks are contiguous from 1 and scores never
// increase as rank grows.
func checkRankOrder(in Input, _ Policy) *finding {
	if len(in.Recommendations) == 0 {
		return nil
	}

	var problems []string
	for i, r := range in.Recommendations {
		if r.Rank != i+1 {
			problems = append(problems, "ranks not contiguous from 1")
			break
		}
	}
	for i := 1; i < len(in.Recommendations); i++ {
		if in.Recommendations[i].Score > in.Recommendations[i-1].Score {
			problems = append(problems, "score increases with rank")
			break
		}
	}
	if len(problems) == 0 {
		return nil
	}

	return &finding{details: datatypes.JSONMap{"problems": problems}}
}

// checkScenarioMonoculture flags recommendation sets collapsing into a
// single scenario when the catalog offered room for variety.
func checkScenarioMonoculture(in Input, p Policy) *finding {
	if len(in.Recommendations) < p.MonocultureMin {
		return nil
	}
	if in.CatalogSize <= len(in.Recommendations) {
		// Tiny catalogs cannot be expected to diversify.
		return nil
	}

	first := in.Recommendations[0].Scenario
	for _, r := range in.Recommendations[1:] {
		if r.Scenario != first {
			return nil
		}
	}

	return &finding{details: datatypes.JSONMap{
		"scenario":     first,
		"count":        len(in.Recommendations),
		"catalog_size": in.CatalogSize,
	}}
}

// checkBudgetExceeded flags recommendations priced past the client's budget
// band plus tolerance; past twice the band the severity escalates to high.
func checkBudgetExceeded(in Input, p Policy) *finding {
	if in.Client.BudgetBand <= 0 {
		return nil
	}

	limit := in.Client.BudgetBand * (1 + p.BudgetTolerance)
	hard := in.Client.BudgetBand * 2
	severity := domain.SeverityMedium
	var offending []map[string]interface{}
	for _, r := range in.Recommendations {
		product, ok := in.Products[r.ProductKey]
		if !ok || product.Price <= limit {
			continue
		}
		offending = append(offending, map[string]interface{}{
			"product_key": r.ProductKey,
			"price":       product.Price,
		})
		if product.Price > hard {
			severity = domain.SeverityHigh
		}
	}
	if len(offending) == 0 {
		return nil
	}

	return &finding{
		details: datatypes.JSONMap{
			"budget_band": in.Client.BudgetBand,
			"tolerance":   p.BudgetTolerance,
			"products":    offending,
		},
		severity: severity,
	}
}
