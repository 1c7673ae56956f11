package domain

import (
	"time"

	"gorm.io/datatypes"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank orders severities for comparisons; higher is worse. Unknown values
// rank below low so they never win a tie-break.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// AuditViolation is one triggered rule for a client within a run. Rows are
// written once by the audit pass and never mutated.
type AuditViolation struct {
	ID         uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID      uint64            `gorm:"column:run_id;not null;index:idx_violations_run_client" json:"run_id"`
	TenantCode string            `gorm:"column:tenant_code;not null" json:"tenant_code"`
	ClientCode string            `gorm:"column:client_code;not null;index:idx_violations_run_client" json:"client_code"`
	RuleCode   string            `gorm:"column:rule_code;not null" json:"rule_code"`
	Severity   Severity          `gorm:"column:severity;not null" json:"severity"`
	Details    datatypes.JSONMap `gorm:"column:details;type:jsonb" json:"details"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (AuditViolation) TableName() string {
	return "audit_violations"
}
