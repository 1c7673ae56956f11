package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"vintageCRM/business/campaign"
	"vintageCRM/domain"
)

type CampaignDispatchRepository struct {
	DB *gorm.DB
}

var _ campaign.DispatchRepository = (*CampaignDispatchRepository)(nil)

func NewCampaignDispatchRepository(db *gorm.DB) *CampaignDispatchRepository {
	return &CampaignDispatchRepository{DB: db}
}

func (r *CampaignDispatchRepository) BulkCreate(ctx context.Context, rows []domain.CampaignDispatch) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).CreateInBatches(rows, bulkBatchSize).Error; err != nil {
		return fmt.Errorf("failed to record campaign dispatches: %w", err)
	}

	return nil
}
