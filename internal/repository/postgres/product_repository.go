package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"vintageCRM/business/campaign"
	"vintageCRM/business/catalog"
	"vintageCRM/business/run"
	"vintageCRM/domain"
)

type ProductRepository struct {
	DB *gorm.DB
}

var (
	_ run.ProductRepository      = (*ProductRepository)(nil)
	_ campaign.ProductRepository = (*ProductRepository)(nil)
	_ catalog.Repository         = (*ProductRepository)(nil)
)

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{DB: db}
}

func (r *ProductRepository) FindByTenant(ctx context.Context, tenantCode string) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.Product
	err := r.DB.WithContext(ctx).
		Where("tenant_code = ?", tenantCode).
		Order("product_key ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	return rows, nil
}

func (r *ProductRepository) List(ctx context.Context, tenantCode string, offset, limit int) ([]domain.Product, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("context error: %w", err)
	}

	var total int64
	base := r.DB.WithContext(ctx).Model(&domain.Product{}).Where("tenant_code = ?", tenantCode)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var rows []domain.Product
	err := base.Order("product_key ASC").Offset(offset).Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	return rows, total, nil
}
