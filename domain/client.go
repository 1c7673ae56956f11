package domain

import (
	"time"

	"gorm.io/datatypes"
)

// CREATE TABLE public.clients (
//     id                 BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     tenant_code        TEXT NOT NULL,
//     code               TEXT NOT NULL,
//     full_name          TEXT,
//     email              TEXT,
//     budget_band        NUMERIC,
//     preferred_families JSONB,
//     recency_days       INT,
//     frequency          INT,
//     monetary           NUMERIC,
//     rfm_score          TEXT,
//     rfm_segment        TEXT,
//     cluster_id         INT,
//     last_run_id        BIGINT,
//     created_at         TIMESTAMPTZ DEFAULT NOW(),
//     updated_at         TIMESTAMPTZ,
//     UNIQUE (tenant_code, code)
// );

type Client struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantCode string `gorm:"column:tenant_code;not null;index;uniqueIndex:idx_clients_tenant_code" json:"tenant_code"`
	Code       string `gorm:"column:code;not null;uniqueIndex:idx_clients_tenant_code" json:"code"`
	FullName   string `gorm:"column:full_name;type:text" json:"full_name"`
	Email      string `gorm:"column:email;type:text" json:"email"`

	// BudgetBand is the per-bottle ceiling the client usually shops under.
	BudgetBand        float64                     `gorm:"column:budget_band;type:numeric" json:"budget_band"`
	PreferredFamilies datatypes.JSONSlice[string] `gorm:"column:preferred_families" json:"preferred_families"`

	// RFM fields, rewritten by the scoring stage of each run.
	RecencyDays int     `gorm:"column:recency_days;default:0" json:"recency_days"`
	Frequency   int     `gorm:"column:frequency;default:0" json:"frequency"`
	Monetary    float64 `gorm:"column:monetary;type:numeric;default:0" json:"monetary"`
	RFMScore    string  `gorm:"column:rfm_score;type:text" json:"rfm_score"`
	RFMSegment  string  `gorm:"column:rfm_segment;type:text" json:"rfm_segment"`

	// ClusterID is 1-based; 0 means the client has never been clustered.
	ClusterID int `gorm:"column:cluster_id;default:0" json:"cluster_id"`

	// LastRunID records which run wrote the segment/cluster fields above,
	// so they are never a mix of two runs.
	LastRunID uint64 `gorm:"column:last_run_id;default:0" json:"last_run_id"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Client) TableName() string {
	return "clients"
}

// RFM segment vocabulary. SegmentInactive is reserved for clients with no
// orders inside the scoring window.
const (
	SegmentChampions   = "Champions"
	SegmentLoyal       = "Loyal"
	SegmentPotential   = "Potential"
	SegmentNew         = "New"
	SegmentAtRisk      = "At Risk"
	SegmentHibernating = "Hibernating"
	SegmentLost        = "Lost"
	SegmentInactive    = "Inactive"
)
