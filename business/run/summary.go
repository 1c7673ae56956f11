package run

import (
	"sort"

	"gorm.io/datatypes"

	"vintageCRM/domain"
)

const topErrorsCap = 10

// buildSummary derives the aggregate view of a completed run. It is
// computed exactly once; a corrected summary implies a new run.
func buildSummary(run *domain.Run, clients []domain.Client, recs []domain.Recommendation, actions []domain.NextAction, violations []domain.AuditViolation) domain.RunSummary {
	eligible := 0
	for _, a := range actions {
		if a.Eligible {
			eligible++
		}
	}

	gatingRate := 0.0
	if len(actions) > 0 {
		gatingRate = float64(eligible) / float64(len(actions))
	}

	scenarioCounts := datatypes.JSONMap{}
	for _, r := range recs {
		if r.Rank != 1 {
			continue
		}
		n, _ := scenarioCounts[r.Scenario].(int)
		scenarioCounts[r.Scenario] = n + 1
	}

	return domain.RunSummary{
		RunID:                run.ID,
		TenantCode:           run.TenantCode,
		TotalClients:         len(clients),
		EligibleCount:        eligible,
		TotalRecommendations: len(recs),
		GatingRate:           gatingRate,
		ScenarioCounts:       scenarioCounts,
		TopErrors:            topErrors(violations),
		GateExport:           eligible > 0,
	}
}

// topErrors histograms violations by rule code, worst offenders first,
// capped at ten rows. Equal counts order by rule code for stable output.
func topErrors(violations []domain.AuditViolation) datatypes.JSONSlice[domain.RuleCount] {
	counts := make(map[string]int)
	for _, v := range violations {
		counts[v.RuleCode]++
	}

	rows := make([]domain.RuleCount, 0, len(counts))
	for code, n := range counts {
		rows = append(rows, domain.RuleCount{RuleCode: code, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].RuleCode < rows[j].RuleCode
	})

	if len(rows) > topErrorsCap {
		rows = rows[:topErrorsCap]
	}

	return datatypes.NewJSONSlice(rows)
}
