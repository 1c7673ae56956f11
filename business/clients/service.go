package clients

import (
	"context"

	"vintageCRM/domain"
)

type Repository interface {
	FindByCode(ctx context.Context, tenantCode, code string) (domain.Client, error)
	List(ctx context.Context, tenantCode string, offset, limit int) ([]domain.Client, int64, error)
	SegmentDistribution(ctx context.Context, tenantCode string) ([]domain.DistributionRow, error)
	ClusterDistribution(ctx context.Context, tenantCode string) ([]domain.DistributionRow, error)
}

// Service exposes the read side of the client base: listings with their
// current RFM fields and the segment/cluster distributions.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, tenantCode, code string) (domain.Client, error) {
	return s.repo.FindByCode(ctx, tenantCode, code)
}

func (s *Service) List(ctx context.Context, tenantCode string, page, perPage int) ([]domain.Client, int64, error) {
	offset, limit := pageBounds(page, perPage)
	return s.repo.List(ctx, tenantCode, offset, limit)
}

func (s *Service) SegmentDistribution(ctx context.Context, tenantCode string) ([]domain.DistributionRow, error) {
	return s.repo.SegmentDistribution(ctx, tenantCode)
}

func (s *Service) ClusterDistribution(ctx context.Context, tenantCode string) ([]domain.DistributionRow, error) {
	return s.repo.ClusterDistribution(ctx, tenantCode)
}

func pageBounds(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	return (page - 1) * perPage, perPage
}
