package domain

import (
	"time"

	"gorm.io/datatypes"
)

// RuleCount is one entry of the top-errors histogram, ordered by count
// descending.
type RuleCount struct {
	RuleCode string `json:"rule_code"`
	Count    int    `json:"count"`
}

// RunSummary is the derived aggregate of a completed run. It is computed
// once at the end of orchestration; a corrected summary implies a new run.
type RunSummary struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID      uint64 `gorm:"column:run_id;not null;uniqueIndex" json:"run_id"`
	TenantCode string `gorm:"column:tenant_code;not null" json:"tenant_code"`

	TotalClients         int     `gorm:"column:total_clients;not null" json:"total_clients"`
	EligibleCount        int     `gorm:"column:eligible_count;not null" json:"eligible_count"`
	TotalRecommendations int     `gorm:"column:total_recommendations;not null" json:"total_recommendations"`
	GatingRate           float64 `gorm:"column:gating_rate;type:numeric;not null" json:"gating_rate"`

	// ScenarioCounts is the histogram of scenarios among rank-1
	// recommendations.
	ScenarioCounts datatypes.JSONMap `gorm:"column:scenario_counts;type:jsonb" json:"scenario_counts"`

	// TopErrors is the rule-code histogram over the run's violations,
	// descending by count, capped at ten entries.
	TopErrors datatypes.JSONSlice[RuleCount] `gorm:"column:top_errors" json:"top_errors"`

	// GateExport is true when at least one client is eligible, i.e. the run
	// can feed a campaign selection.
	GateExport bool `gorm:"column:gate_export;not null" json:"gate_export"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (RunSummary) TableName() string {
	return "run_summaries"
}
