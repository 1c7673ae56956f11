package domain

import "time"

type RunStatus string

const (
	RunStatusInProgress RunStatus = "in_progress"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
)

// RunParams are the caller-supplied knobs for one pipeline execution.
type RunParams struct {
	TopN              int `json:"top_n"`
	SilenceWindowDays int `json:"silence_window_days"`
	ClusterCount      int `json:"cluster_count"`
}

// Run is one complete execution of the scoring, segmentation,
// recommendation and audit pipeline for a tenant. The autoincrement id
// doubles as the monotonic ordering between runs.
type Run struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantCode string    `gorm:"column:tenant_code;not null;index:idx_runs_tenant_status" json:"tenant_code"`
	Status     RunStatus `gorm:"column:status;not null;index:idx_runs_tenant_status" json:"status"`

	// Fingerprint identifies the dataset snapshot the run was computed from.
	Fingerprint string `gorm:"column:fingerprint;type:text" json:"fingerprint"`

	TopN              int `gorm:"column:top_n;not null" json:"top_n"`
	SilenceWindowDays int `gorm:"column:silence_window_days;not null" json:"silence_window_days"`
	ClusterCount      int `gorm:"column:cluster_count;not null" json:"cluster_count"`

	StartedAt     time.Time  `gorm:"column:started_at" json:"started_at"`
	FinishedAt    *time.Time `gorm:"column:finished_at" json:"finished_at,omitempty"`
	FailureReason string     `gorm:"column:failure_reason;type:text" json:"failure_reason,omitempty"`
}

func (Run) TableName() string {
	return "runs"
}
