package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"vintageCRM/business/campaign"
	"vintageCRM/business/clients"
	"vintageCRM/business/run"
	"vintageCRM/domain"
)

type ClientRepository struct {
	DB *gorm.DB
}

var (
	_ run.ClientRepository      = (*ClientRepository)(nil)
	_ clients.Repository        = (*ClientRepository)(nil)
	_ campaign.ClientRepository = (*ClientRepository)(nil)
)

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{DB: db}
}

func (r *ClientRepository) FindByTenant(ctx context.Context, tenantCode string) ([]domain.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.Client
	err := r.DB.WithContext(ctx).
		Where("tenant_code = ?", tenantCode).
		Order("code ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}

	return rows, nil
}

func (r *ClientRepository) FindByCode(ctx context.Context, tenantCode, code string) (domain.Client, error) {
	if err := ctx.Err(); err != nil {
		return domain.Client{}, fmt.Errorf("context error: %w", err)
	}

	var row domain.Client
	err := r.DB.WithContext(ctx).
		First(&row, "tenant_code = ? AND code = ?", tenantCode, code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Client{}, domain.ErrClientNotFound
	}
	if err != nil {
		return domain.Client{}, fmt.Errorf("failed to query client: %w", err)
	}

	return row, nil
}

func (r *ClientRepository) List(ctx context.Context, tenantCode string, offset, limit int) ([]domain.Client, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("context error: %w", err)
	}

	var total int64
	base := r.DB.WithContext(ctx).Model(&domain.Client{}).Where("tenant_code = ?", tenantCode)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count clients: %w", err)
	}

	var rows []domain.Client
	err := base.Order("code ASC").Offset(offset).Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}

	return rows, total, nil
}

// BulkUpdateRunFields writes the scoring and clustering outcome of one run
// onto the client rows in a single transaction, so readers never see a
// half-updated tenant.
func (r *ClientRepository) BulkUpdateRunFields(ctx context.Context, rows []domain.Client, runID uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range rows {
			err := tx.Model(&domain.Client{}).
				Where("tenant_code = ? AND code = ?", c.TenantCode, c.Code).
				Updates(map[string]interface{}{
					"recency_days": c.RecencyDays,
					"frequency":    c.Frequency,
					"monetary":     c.Monetary,
					"rfm_score":    c.RFMScore,
					"rfm_segment":  c.RFMSegment,
					"cluster_id":   c.ClusterID,
					"last_run_id":  runID,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to bulk update client run fields: %w", err)
	}

	return nil
}

func (r *ClientRepository) SegmentDistribution(ctx context.Context, tenantCode string) ([]domain.DistributionRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.DistributionRow
	err := r.DB.WithContext(ctx).Model(&domain.Client{}).
		Select("rfm_segment AS label, COUNT(*) AS count").
		Where("tenant_code = ? AND rfm_segment <> ''", tenantCode).
		Group("rfm_segment").
		Order("count DESC, label ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query segment distribution: %w", err)
	}

	return rows, nil
}

func (r *ClientRepository) ClusterDistribution(ctx context.Context, tenantCode string) ([]domain.DistributionRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.DistributionRow
	err := r.DB.WithContext(ctx).Model(&domain.Client{}).
		Select("CAST(cluster_id AS TEXT) AS label, COUNT(*) AS count").
		Where("tenant_code = ? AND cluster_id > 0", tenantCode).
		Group("cluster_id").
		Order("cluster_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query cluster distribution: %w", err)
	}

	return rows, nil
}
