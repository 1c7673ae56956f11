package run

import (
	"context"
	"fmt"

	"vintageCRM/domain"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// pageBounds normalizes 1-based page inputs into offset/limit.
func pageBounds(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	return (page - 1) * perPage, perPage
}

// GetRun returns the run with its summary when one exists. In-progress and
// failed runs have no summary; callers get a nil pointer.
func (s *Service) GetRun(ctx context.Context, tenantCode string, runID uint64) (domain.Run, *domain.RunSummary, error) {
	found, err := s.runs.FindByID(ctx, tenantCode, runID)
	if err != nil {
		return domain.Run{}, nil, err
	}

	return s.withSummary(ctx, found)
}

// LatestRun resolves the most recent completed run for the tenant. Failed
// and in-progress runs never qualify.
func (s *Service) LatestRun(ctx context.Context, tenantCode string) (domain.Run, *domain.RunSummary, error) {
	found, err := s.runs.LatestCompleted(ctx, tenantCode)
	if err != nil {
		return domain.Run{}, nil, err
	}

	return s.withSummary(ctx, found)
}

func (s *Service) withSummary(ctx context.Context, found domain.Run) (domain.Run, *domain.RunSummary, error) {
	if found.Status != domain.RunStatusCompleted {
		return found, nil, nil
	}

	summary, ok, err := s.summaries.FindByRunID(ctx, found.ID)
	if err != nil {
		return domain.Run{}, nil, fmt.Errorf("failed to load run summary: %w", err)
	}
	if !ok {
		return found, nil, nil
	}

	return found, &summary, nil
}

func (s *Service) ListRuns(ctx context.Context, tenantCode string, page, perPage int) ([]domain.Run, int64, error) {
	offset, limit := pageBounds(page, perPage)
	return s.runs.List(ctx, tenantCode, offset, limit)
}

// ListNextActions pages a run's gating verdicts ordered by audit score;
// ascending puts the worst-audited clients first for triage.
func (s *Service) ListNextActions(ctx context.Context, tenantCode string, runID uint64, sortAsc bool, page, perPage int) ([]domain.NextAction, int64, error) {
	if _, err := s.runs.FindByID(ctx, tenantCode, runID); err != nil {
		return nil, 0, err
	}

	offset, limit := pageBounds(page, perPage)
	return s.actions.FindByRun(ctx, runID, sortAsc, offset, limit)
}

// ListViolations pages a run's audit violations, most severe first.
func (s *Service) ListViolations(ctx context.Context, tenantCode string, runID uint64, page, perPage int) ([]domain.AuditViolation, int64, error) {
	if _, err := s.runs.FindByID(ctx, tenantCode, runID); err != nil {
		return nil, 0, err
	}

	offset, limit := pageBounds(page, perPage)
	return s.audits.FindByRun(ctx, runID, offset, limit)
}

func (s *Service) ListRecommendations(ctx context.Context, tenantCode string, runID uint64, clientCode string) ([]domain.Recommendation, error) {
	if _, err := s.runs.FindByID(ctx, tenantCode, runID); err != nil {
		return nil, err
	}

	return s.recs.FindByRunAndClient(ctx, runID, clientCode)
}

// SetRecommendationApproval toggles the one mutable flag on an audited
// recommendation.
func (s *Service) SetRecommendationApproval(ctx context.Context, tenantCode string, runID uint64, recID uint, approved bool) error {
	if _, err := s.runs.FindByID(ctx, tenantCode, runID); err != nil {
		return err
	}

	return s.recs.SetApproval(ctx, runID, recID, approved)
}
