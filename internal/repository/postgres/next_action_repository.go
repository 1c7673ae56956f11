package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"vintageCRM/business/campaign"
	"vintageCRM/business/run"
	"vintageCRM/domain"
)

type NextActionRepository struct {
	DB *gorm.DB
}

var (
	_ run.NextActionRepository      = (*NextActionRepository)(nil)
	_ campaign.NextActionRepository = (*NextActionRepository)(nil)
)

func NewNextActionRepository(db *gorm.DB) *NextActionRepository {
	return &NextActionRepository{DB: db}
}

func (r *NextActionRepository) BulkCreate(ctx context.Context, rows []domain.NextAction) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).CreateInBatches(rows, bulkBatchSize).Error; err != nil {
		return fmt.Errorf("failed to bulk create next actions: %w", err)
	}

	return nil
}

func (r *NextActionRepository) FindByRun(ctx context.Context, runID uint64, sortAsc bool, offset, limit int) ([]domain.NextAction, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("context error: %w", err)
	}

	var total int64
	base := r.DB.WithContext(ctx).Model(&domain.NextAction{}).Where("run_id = ?", runID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count next actions: %w", err)
	}

	direction := "DESC"
	if sortAsc {
		direction = "ASC"
	}

	var rows []domain.NextAction
	err := base.
		Order("audit_score " + direction).
		Order("client_code ASC").
		Offset(offset).Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list next actions: %w", err)
	}

	return rows, total, nil
}

// FindEligible returns a run's eligible verdicts in campaign selection
// order: best audit score first, ties by client code.
func (r *NextActionRepository) FindEligible(ctx context.Context, runID uint64) ([]domain.NextAction, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.NextAction
	err := r.DB.WithContext(ctx).
		Where("run_id = ? AND eligible = ?", runID, true).
		Order("audit_score DESC, client_code ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query eligible next actions: %w", err)
	}

	return rows, nil
}
