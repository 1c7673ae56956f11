package domain

import "time"

// NextAction is the per-client gating verdict for a run: whether the client
// may receive outreach, why not when ineligible, the winning scenario and
// the aggregate audit score. Exactly one row exists per (run, client).
type NextAction struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID      uint64 `gorm:"column:run_id;not null;uniqueIndex:idx_next_actions_run_client" json:"run_id"`
	TenantCode string `gorm:"column:tenant_code;not null" json:"tenant_code"`
	ClientCode string `gorm:"column:client_code;not null;uniqueIndex:idx_next_actions_run_client" json:"client_code"`

	Eligible   bool    `gorm:"column:eligible;not null" json:"eligible"`
	Reason     string  `gorm:"column:reason;type:text" json:"reason,omitempty"`
	Scenario   string  `gorm:"column:scenario" json:"scenario,omitempty"`
	AuditScore float64 `gorm:"column:audit_score;type:numeric;not null" json:"audit_score"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (NextAction) TableName() string {
	return "next_actions"
}
