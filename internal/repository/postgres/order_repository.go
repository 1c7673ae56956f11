package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"vintageCRM/business/run"
	"vintageCRM/domain"
)

// OrderRepository reads the sales history; the pipeline never writes it.
type OrderRepository struct {
	DB *gorm.DB
}

var _ run.OrderRepository = (*OrderRepository)(nil)

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{DB: db}
}

func (r *OrderRepository) FindSince(ctx context.Context, tenantCode string, since time.Time) ([]domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.Order
	err := r.DB.WithContext(ctx).
		Where("tenant_code = ? AND ordered_at >= ?", tenantCode, since).
		Order("ordered_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	return rows, nil
}
