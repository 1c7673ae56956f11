package run

import (
	"context"
	"fmt"
	"time"

	"vintageCRM/business/audit"
	"vintageCRM/business/gating"
	"vintageCRM/business/recommend"
	"vintageCRM/business/scoring"
	"vintageCRM/business/segmentation"
	"vintageCRM/domain"
	"vintageCRM/pkg/config"
	"vintageCRM/pkg/logger"
	"vintageCRM/pkg/metrics"
)

type ClientRepository interface {
	FindByTenant(ctx context.Context, tenantCode string) ([]domain.Client, error)
	BulkUpdateRunFields(ctx context.Context, clients []domain.Client, runID uint64) error
}

type ProductRepository interface {
	FindByTenant(ctx context.Context, tenantCode string) ([]domain.Product, error)
}

type OrderRepository interface {
	FindSince(ctx context.Context, tenantCode string, since time.Time) ([]domain.Order, error)
}

type RunRepository interface {
	Create(ctx context.Context, run *domain.Run) error
	SetFingerprint(ctx context.Context, runID uint64, fingerprint string) error
	MarkCompleted(ctx context.Context, runID uint64, finishedAt time.Time) error
	MarkFailed(ctx context.Context, runID uint64, reason string, finishedAt time.Time) error
	FindByID(ctx context.Context, tenantCode string, runID uint64) (domain.Run, error)
	LatestCompleted(ctx context.Context, tenantCode string) (domain.Run, error)
	List(ctx context.Context, tenantCode string, offset, limit int) ([]domain.Run, int64, error)
}

type RecommendationRepository interface {
	BulkCreate(ctx context.Context, recs []domain.Recommendation) error
	FindByRunAndClient(ctx context.Context, runID uint64, clientCode string) ([]domain.Recommendation, error)
	SetApproval(ctx context.Context, runID uint64, recID uint, approved bool) error
}

type AuditRepository interface {
	BulkCreate(ctx context.Context, violations []domain.AuditViolation) error
	FindByRun(ctx context.Context, runID uint64, offset, limit int) ([]domain.AuditViolation, int64, error)
}

type NextActionRepository interface {
	BulkCreate(ctx context.Context, actions []domain.NextAction) error
	FindByRun(ctx context.Context, runID uint64, sortAsc bool, offset, limit int) ([]domain.NextAction, int64, error)
}

type RunSummaryRepository interface {
	Create(ctx context.Context, summary *domain.RunSummary) error
	FindByRunID(ctx context.Context, runID uint64) (domain.RunSummary, bool, error)
}

// Lock serializes runs per tenant. Acquire returns a release token; a
// false ok means another run currently holds the tenant.
type Lock interface {
	Acquire(ctx context.Context, tenantCode string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, tenantCode, token string) error
}

// Service orchestrates the run pipeline: scoring, clustering,
// recommendation, audit and gating execute sequentially under a per-tenant
// lock, and every produced row carries the run id. Triggering is
// asynchronous; callers poll run status.
type Service struct {
	clients   ClientRepository
	products  ProductRepository
	orders    OrderRepository
	runs      RunRepository
	recs      RecommendationRepository
	audits    AuditRepository
	actions   NextActionRepository
	summaries RunSummaryRepository
	lock      Lock

	scorer      *scoring.Engine
	segmenter   *segmentation.Engine
	recommender *recommend.Engine
	auditor     *audit.Engine
	gate        *gating.Engine

	cfg config.PipelineConfig
	now func() time.Time
}

type Repositories struct {
	Clients   ClientRepository
	Products  ProductRepository
	Orders    OrderRepository
	Runs      RunRepository
	Recs      RecommendationRepository
	Audits    AuditRepository
	Actions   NextActionRepository
	Summaries RunSummaryRepository
	Lock      Lock
}

func NewService(repos Repositories, policy audit.Policy, cfg config.PipelineConfig) *Service {
	return &Service{
		clients:   repos.Clients,
		products:  repos.Products,
		orders:    repos.Orders,
		runs:      repos.Runs,
		recs:      repos.Recs,
		audits:    repos.Audits,
		actions:   repos.Actions,
		summaries: repos.Summaries,
		lock:      repos.Lock,

		scorer:      scoring.NewEngine(),
		segmenter:   segmentation.NewEngine(),
		recommender: recommend.NewEngine(),
		auditor:     audit.NewEngine(policy),
		gate:        gating.NewEngine(policy.Threshold),

		cfg: cfg,
		now: time.Now,
	}
}

// ResolveParams fills unset trigger parameters with the configured
// defaults. Nil means "not supplied"; an explicit zero silence window is
// a valid request and passes through.
func (s *Service) ResolveParams(topN, silenceWindowDays, clusterCount *int) domain.RunParams {
	params := domain.RunParams{
		TopN:              s.cfg.DefaultTopN,
		SilenceWindowDays: s.cfg.DefaultSilenceWindowDays,
		ClusterCount:      s.cfg.DefaultClusterCount,
	}
	if topN != nil {
		params.TopN = *topN
	}
	if silenceWindowDays != nil {
		params.SilenceWindowDays = *silenceWindowDays
	}
	if clusterCount != nil {
		params.ClusterCount = *clusterCount
	}

	return params
}

// Trigger validates the request, takes the tenant lock, persists the run
// in progress and starts the pipeline in the background. The returned run
// id is immediately pollable.
func (s *Service) Trigger(ctx context.Context, tenantCode string, params domain.RunParams) (uint64, error) {
	if params.ClusterCount < 2 {
		return 0, domain.ErrInvalidClusterCount
	}
	if params.TopN <= 0 || params.SilenceWindowDays < 0 {
		return 0, domain.ErrInvalidRunParams
	}

	token, ok, err := s.lock.Acquire(ctx, tenantCode, s.cfg.RunLockTTL)
	if err != nil {
		return 0, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !ok {
		return 0, domain.ErrRunInProgress
	}

	run := &domain.Run{
		TenantCode:        tenantCode,
		Status:            domain.RunStatusInProgress,
		TopN:              params.TopN,
		SilenceWindowDays: params.SilenceWindowDays,
		ClusterCount:      params.ClusterCount,
		StartedAt:         s.now(),
	}
	if err := s.runs.Create(ctx, run); err != nil {
		if relErr := s.lock.Release(ctx, tenantCode, token); relErr != nil {
			logger.Error("failed to release run lock", "tenant", tenantCode, "error", relErr)
		}
		return 0, fmt.Errorf("failed to create run: %w", err)
	}

	runsStartedTotal.WithLabelValues(tenantCode).Inc()
	logger.Info("run triggered",
		"tenant", tenantCode,
		"run_id", run.ID,
		"top_n", params.TopN,
		"silence_window_days", params.SilenceWindowDays,
		"cluster_count", params.ClusterCount,
	)

	go func() {
		// The pipeline outlives the triggering request.
		bgCtx := context.Background()
		defer func() {
			if err := s.lock.Release(bgCtx, tenantCode, token); err != nil {
				logger.Error("failed to release run lock", "tenant", tenantCode, "run_id", run.ID, "error", err)
			}
		}()
		s.execute(bgCtx, run)
	}()

	return run.ID, nil
}

// execute drives the pipeline to a terminal status. Client rows are only
// touched on the success path, after every run-scoped row landed, so a
// failed run never leaves clients carrying its values.
func (s *Service) execute(ctx context.Context, run *domain.Run) {
	if err := s.runStages(ctx, run); err != nil {
		logger.Error("run failed", "tenant", run.TenantCode, "run_id", run.ID, "error", err)
		runsFailedTotal.WithLabelValues(run.TenantCode).Inc()
		if markErr := s.runs.MarkFailed(ctx, run.ID, err.Error(), s.now()); markErr != nil {
			logger.Error("failed to mark run failed", "run_id", run.ID, "error", markErr)
		}
		return
	}

	runsCompletedTotal.WithLabelValues(run.TenantCode).Inc()
	logger.Info("run completed", "tenant", run.TenantCode, "run_id", run.ID)
}

func (s *Service) runStages(ctx context.Context, run *domain.Run) error {
	now := s.now()
	params := domain.RunParams{
		TopN:              run.TopN,
		SilenceWindowDays: run.SilenceWindowDays,
		ClusterCount:      run.ClusterCount,
	}

	clients, err := s.clients.FindByTenant(ctx, run.TenantCode)
	if err != nil {
		return fmt.Errorf("failed to load clients: %w", err)
	}
	if len(clients) == 0 {
		return domain.ErrNoClients
	}

	products, err := s.products.FindByTenant(ctx, run.TenantCode)
	if err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}

	since := now.AddDate(0, 0, -s.cfg.LookbackDays)
	orders, err := s.orders.FindSince(ctx, run.TenantCode, since)
	if err != nil {
		return fmt.Errorf("failed to load orders: %w", err)
	}

	fingerprint := datasetFingerprint(run.TenantCode, clients, products, orders)
	if err := s.runs.SetFingerprint(ctx, run.ID, fingerprint); err != nil {
		return fmt.Errorf("failed to set run fingerprint: %w", err)
	}

	stageStart := s.now()
	scored := s.scorer.Score(clients, orders, now, s.cfg.LookbackDays)
	observeStage("scoring", stageStart, s.now())
	logger.Info("scoring done", "tenant", run.TenantCode, "run_id", run.ID, "clients", len(scored))

	stageStart = s.now()
	clustered, clusterDist, err := s.segmenter.Cluster(scored, orders, params.ClusterCount)
	if err != nil {
		return fmt.Errorf("failed to cluster clients: %w", err)
	}
	observeStage("segmentation", stageStart, s.now())
	logger.Info("clustering done", "tenant", run.TenantCode, "run_id", run.ID, "clusters", len(clusterDist))

	stageStart = s.now()
	recs := s.recommender.Generate(clustered, products, orders, recommend.Params{
		TopN:              params.TopN,
		SilenceWindowDays: params.SilenceWindowDays,
		Now:               now,
	})
	for i := range recs {
		recs[i].RunID = run.ID
		recs[i].TenantCode = run.TenantCode
	}
	observeStage("recommend", stageStart, s.now())
	metrics.RecommendationsGenerated.Add(float64(len(recs)))
	logger.Info("recommendations generated", "tenant", run.TenantCode, "run_id", run.ID, "rows", len(recs))

	stageStart = s.now()
	auditResults := s.auditor.Evaluate(clustered, recs, products, orders, audit.Params{
		SilenceWindowDays: params.SilenceWindowDays,
		Now:               now,
	})
	observeStage("audit", stageStart, s.now())

	stageStart = s.now()
	var violations []domain.AuditViolation
	actions := make([]domain.NextAction, 0, len(clustered))
	topScenario := rankOneScenarios(recs)
	for _, client := range clustered {
		result := auditResults[client.Code]
		for _, v := range result.Violations {
			v.RunID = run.ID
			violations = append(violations, v)
			metrics.ViolationsTotal.WithLabelValues(string(v.Severity)).Inc()
		}

		eligible, reason := s.gate.Decide(result.Score, result.Violations)
		actions = append(actions, domain.NextAction{
			RunID:      run.ID,
			TenantCode: run.TenantCode,
			ClientCode: client.Code,
			Eligible:   eligible,
			Reason:     reason,
			Scenario:   topScenario[client.Code],
			AuditScore: result.Score,
		})
	}
	observeStage("gating", stageStart, s.now())

	if err := s.persistRunOutput(ctx, run, clustered, recs, violations, actions); err != nil {
		return err
	}

	return nil
}

// persistRunOutput lands run-scoped rows first and client fields last;
// the run flips to completed only after everything else is in place.
func (s *Service) persistRunOutput(ctx context.Context, run *domain.Run, clients []domain.Client, recs []domain.Recommendation, violations []domain.AuditViolation, actions []domain.NextAction) error {
	if len(recs) > 0 {
		if err := s.recs.BulkCreate(ctx, recs); err != nil {
			return fmt.Errorf("failed to persist recommendations: %w", err)
		}
	}
	if len(violations) > 0 {
		if err := s.audits.BulkCreate(ctx, violations); err != nil {
			return fmt.Errorf("failed to persist audit violations: %w", err)
		}
	}
	if err := s.actions.BulkCreate(ctx, actions); err != nil {
		return fmt.Errorf("failed to persist next actions: %w", err)
	}

	summary := buildSummary(run, clients, recs, actions, violations)
	if err := s.summaries.Create(ctx, &summary); err != nil {
		return fmt.Errorf("failed to persist run summary: %w", err)
	}

	if err := s.clients.BulkUpdateRunFields(ctx, clients, run.ID); err != nil {
		return fmt.Errorf("failed to update client run fields: %w", err)
	}

	if err := s.runs.MarkCompleted(ctx, run.ID, s.now()); err != nil {
		return fmt.Errorf("failed to mark run completed: %w", err)
	}

	return nil
}

// rankOneScenarios maps each client to the scenario of its top-ranked
// recommendation, the "winning scenario" surfaced on the NextAction.
func rankOneScenarios(recs []domain.Recommendation) map[string]string {
	top := make(map[string]string)
	for _, r := range recs {
		if r.Rank == 1 {
			top[r.ClientCode] = r.Scenario
		}
	}

	return top
}

func observeStage(stage string, start, end time.Time) {
	metrics.StageDuration.WithLabelValues(stage).Observe(end.Sub(start).Seconds())
}
