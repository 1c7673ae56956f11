package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"vintageCRM/business/run"
	"vintageCRM/domain"
)

type RunSummaryRepository struct {
	DB *gorm.DB
}

var _ run.RunSummaryRepository = (*RunSummaryRepository)(nil)

func NewRunSummaryRepository(db *gorm.DB) *RunSummaryRepository {
	return &RunSummaryRepository{DB: db}
}

func (r *RunSummaryRepository) Create(ctx context.Context, row *domain.RunSummary) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to create run summary: %w", err)
	}

	return nil
}

func (r *RunSummaryRepository) FindByRunID(ctx context.Context, runID uint64) (domain.RunSummary, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.RunSummary{}, false, fmt.Errorf("context error: %w", err)
	}

	var row domain.RunSummary
	err := r.DB.WithContext(ctx).First(&row, "run_id = ?", runID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.RunSummary{}, false, nil
	}
	if err != nil {
		return domain.RunSummary{}, false, fmt.Errorf("failed to query run summary: %w", err)
	}

	return row, true, nil
}
