package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"vintageCRM/business/campaign"
	"vintageCRM/business/run"
	"vintageCRM/domain"
)

const bulkBatchSize = 500

type RecommendationRepository struct {
	DB *gorm.DB
}

var (
	_ run.RecommendationRepository      = (*RecommendationRepository)(nil)
	_ campaign.RecommendationRepository = (*RecommendationRepository)(nil)
)

func NewRecommendationRepository(db *gorm.DB) *RecommendationRepository {
	return &RecommendationRepository{DB: db}
}

func (r *RecommendationRepository) BulkCreate(ctx context.Context, rows []domain.Recommendation) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).CreateInBatches(rows, bulkBatchSize).Error; err != nil {
		return fmt.Errorf("failed to bulk create recommendations: %w", err)
	}

	return nil
}

func (r *RecommendationRepository) FindByRunAndClient(ctx context.Context, runID uint64, clientCode string) ([]domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.Recommendation
	err := r.DB.WithContext(ctx).
		Where("run_id = ? AND client_code = ?", runID, clientCode).
		Order("rank ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}

	return rows, nil
}

// FindApprovedByRun returns the approved recommendations of the given
// clients, rank ascending, for campaign content selection.
func (r *RecommendationRepository) FindApprovedByRun(ctx context.Context, runID uint64, clientCodes []string) ([]domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if len(clientCodes) == 0 {
		return nil, nil
	}

	var rows []domain.Recommendation
	err := r.DB.WithContext(ctx).
		Where("run_id = ? AND approved = ? AND client_code IN ?", runID, true, clientCodes).
		Order("client_code ASC, rank ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query approved recommendations: %w", err)
	}

	return rows, nil
}

func (r *RecommendationRepository) SetApproval(ctx context.Context, runID uint64, recID uint, approved bool) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	res := r.DB.WithContext(ctx).Model(&domain.Recommendation{}).
		Where("id = ? AND run_id = ?", recID, runID).
		Update("approved", approved)
	if res.Error != nil {
		return fmt.Errorf("failed to update recommendation approval: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrRecommendationNotFound
	}

	return nil
}
