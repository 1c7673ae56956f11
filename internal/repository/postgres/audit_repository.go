package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"vintageCRM/business/run"
	"vintageCRM/domain"
)

// severityOrder ranks the severity column inside SQL so listings can sort
// worst-first; it works on both postgres and sqlite.
const severityOrder = "CASE severity WHEN 'critical' THEN 4 WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END DESC"

type AuditRepository struct {
	DB *gorm.DB
}

var _ run.AuditRepository = (*AuditRepository)(nil)

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{DB: db}
}

func (r *AuditRepository) BulkCreate(ctx context.Context, rows []domain.AuditViolation) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).CreateInBatches(rows, bulkBatchSize).Error; err != nil {
		return fmt.Errorf("failed to bulk create audit violations: %w", err)
	}

	return nil
}

func (r *AuditRepository) FindByRun(ctx context.Context, runID uint64, offset, limit int) ([]domain.AuditViolation, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("context error: %w", err)
	}

	var total int64
	base := r.DB.WithContext(ctx).Model(&domain.AuditViolation{}).Where("run_id = ?", runID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit violations: %w", err)
	}

	var rows []domain.AuditViolation
	err := base.
		Order(severityOrder).
		Order("rule_code ASC, client_code ASC").
		Offset(offset).Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit violations: %w", err)
	}

	return rows, total, nil
}
