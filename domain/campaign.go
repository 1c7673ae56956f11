package domain

import "time"

type DispatchStatus string

const (
	DispatchStatusSent   DispatchStatus = "sent"
	DispatchStatusFailed DispatchStatus = "failed"
)

// CampaignDispatch is the audit trail of one live outbound message. Rows are
// only written in send mode; preview leaves no trace.
type CampaignDispatch struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	BatchID     string         `gorm:"column:batch_id;not null;index" json:"batch_id"`
	RunID       uint64         `gorm:"column:run_id;not null" json:"run_id"`
	TenantCode  string         `gorm:"column:tenant_code;not null" json:"tenant_code"`
	ClientCode  string         `gorm:"column:client_code;not null" json:"client_code"`
	ProductKey  string         `gorm:"column:product_key" json:"product_key"`
	TemplateRef string         `gorm:"column:template_ref;not null" json:"template_ref"`
	Status      DispatchStatus `gorm:"column:status;not null" json:"status"`
	Error       string         `gorm:"column:error;type:text" json:"error,omitempty"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (CampaignDispatch) TableName() string {
	return "campaign_dispatches"
}

// CampaignContact is one selected (client, top recommendation) pair as shown
// in a batch preview and handed to the messaging gateway on send.
type CampaignContact struct {
	ClientCode  string  `json:"client_code"`
	ClientName  string  `json:"client_name"`
	Email       string  `json:"email"`
	ProductKey  string  `json:"product_key"`
	ProductName string  `json:"product_name"`
	Scenario    string  `json:"scenario"`
	AuditScore  float64 `json:"audit_score"`
}

// CampaignBatchResult is the outcome of a preview or a live send.
type CampaignBatchResult struct {
	BatchID       string            `json:"batch_id"`
	RunID         uint64            `json:"run_id"`
	PreviewOnly   bool              `json:"preview_only"`
	EligibleTotal int               `json:"eligible_total"`
	SelectedCount int               `json:"selected_count"`
	SentCount     int               `json:"sent_count"`
	FailedCount   int               `json:"failed_count"`
	Contacts      []CampaignContact `json:"contacts"`
}

// DistributionRow is one bucket of a segment or cluster distribution.
type DistributionRow struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}
