package catalog

import (
	"context"

	"vintageCRM/domain"
)

type Repository interface {
	List(ctx context.Context, tenantCode string, offset, limit int) ([]domain.Product, int64, error)
}

// Service is the read-only product listing behind the API.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, tenantCode string, page, perPage int) ([]domain.Product, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	return s.repo.List(ctx, tenantCode, (page-1)*perPage, perPage)
}
