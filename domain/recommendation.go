package domain

import "time"

// Scenario labels the strategy that produced a recommendation.
const (
	ScenarioCrossSell     = "cross_sell"
	ScenarioReactivation  = "reactivation"
	ScenarioPremiumUpsell = "premium_upsell"
	ScenarioPopular       = "popular"
)

// Recommendation is one ranked product suggestion for a client within a run.
// Rows are immutable once audited, except for Approved which review may
// toggle.
type Recommendation struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID      uint64 `gorm:"column:run_id;not null;uniqueIndex:idx_recs_run_client_rank" json:"run_id"`
	TenantCode string `gorm:"column:tenant_code;not null" json:"tenant_code"`
	ClientCode string `gorm:"column:client_code;not null;uniqueIndex:idx_recs_run_client_rank" json:"client_code"`
	ProductKey string `gorm:"column:product_key;not null" json:"product_key"`

	// Rank is contiguous starting at 1 per (run, client).
	Rank     int     `gorm:"column:rank;not null;uniqueIndex:idx_recs_run_client_rank" json:"rank"`
	Score    float64 `gorm:"column:score;type:numeric;not null" json:"score"`
	Scenario string  `gorm:"column:scenario;not null" json:"scenario"`
	Approved bool    `gorm:"column:approved;default:true" json:"approved"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Recommendation) TableName() string {
	return "recommendations"
}
