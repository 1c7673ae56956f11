package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"vintageCRM/business/campaign"
	"vintageCRM/business/run"
	"vintageCRM/domain"
)

type RunRepository struct {
	DB *gorm.DB
}

var (
	_ run.RunRepository      = (*RunRepository)(nil)
	_ campaign.RunRepository = (*RunRepository)(nil)
)

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{DB: db}
}

func (r *RunRepository) Create(ctx context.Context, row *domain.Run) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

func (r *RunRepository) SetFingerprint(ctx context.Context, runID uint64, fingerprint string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).Model(&domain.Run{}).
		Where("id = ?", runID).
		Update("fingerprint", fingerprint).Error
	if err != nil {
		return fmt.Errorf("failed to set run fingerprint: %w", err)
	}

	return nil
}

func (r *RunRepository) MarkCompleted(ctx context.Context, runID uint64, finishedAt time.Time) error {
	return r.transition(ctx, runID, map[string]interface{}{
		"status":      domain.RunStatusCompleted,
		"finished_at": finishedAt,
	})
}

func (r *RunRepository) MarkFailed(ctx context.Context, runID uint64, reason string, finishedAt time.Time) error {
	return r.transition(ctx, runID, map[string]interface{}{
		"status":         domain.RunStatusFailed,
		"failure_reason": reason,
		"finished_at":    finishedAt,
	})
}

// transition only moves runs out of in_progress; terminal states are never
// overwritten.
func (r *RunRepository) transition(ctx context.Context, runID uint64, fields map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	res := r.DB.WithContext(ctx).Model(&domain.Run{}).
		Where("id = ? AND status = ?", runID, domain.RunStatusInProgress).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to transition run: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrRunNotFound
	}

	return nil
}

func (r *RunRepository) FindByID(ctx context.Context, tenantCode string, runID uint64) (domain.Run, error) {
	if err := ctx.Err(); err != nil {
		return domain.Run{}, fmt.Errorf("context error: %w", err)
	}

	var row domain.Run
	err := r.DB.WithContext(ctx).
		First(&row, "id = ? AND tenant_code = ?", runID, tenantCode).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Run{}, domain.ErrRunNotFound
	}
	if err != nil {
		return domain.Run{}, fmt.Errorf("failed to query run: %w", err)
	}

	return row, nil
}

// LatestCompleted is the explicit "latest run" query: the newest run that
// reached completed. In-progress and failed runs never qualify.
func (r *RunRepository) LatestCompleted(ctx context.Context, tenantCode string) (domain.Run, error) {
	if err := ctx.Err(); err != nil {
		return domain.Run{}, fmt.Errorf("context error: %w", err)
	}

	var row domain.Run
	err := r.DB.WithContext(ctx).
		Where("tenant_code = ? AND status = ?", tenantCode, domain.RunStatusCompleted).
		Order("id DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Run{}, domain.ErrNoCompletedRun
	}
	if err != nil {
		return domain.Run{}, fmt.Errorf("failed to query latest completed run: %w", err)
	}

	return row, nil
}

func (r *RunRepository) List(ctx context.Context, tenantCode string, offset, limit int) ([]domain.Run, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("context error: %w", err)
	}

	var total int64
	base := r.DB.WithContext(ctx).Model(&domain.Run{}).Where("tenant_code = ?", tenantCode)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count runs: %w", err)
	}

	var rows []domain.Run
	err := base.Order("id DESC").Offset(offset).Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list runs: %w", err)
	}

	return rows, total, nil
}
