package campaign

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"vintageCRM/domain"
	"vintageCRM/pkg/logger"
	"vintageCRM/pkg/metrics"
)

// Batch size bounds; requests outside the range are rejected outright.
const (
	BatchSizeMin = 200
	BatchSizeMax = 300
)

type RunRepository interface {
	FindByID(ctx context.Context, tenantCode string, runID uint64) (domain.Run, error)
	LatestCompleted(ctx context.Context, tenantCode string) (domain.Run, error)
}

type NextActionRepository interface {
	FindEligible(ctx context.Context, runID uint64) ([]domain.NextAction, error)
}

type ClientRepository interface {
	FindByTenant(ctx context.Context, tenantCode string) ([]domain.Client, error)
}

type RecommendationRepository interface {
	FindApprovedByRun(ctx context.Context, runID uint64, clientCodes []string) ([]domain.Recommendation, error)
}

type ProductRepository interface {
	FindByTenant(ctx context.Context, tenantCode string) ([]domain.Product, error)
}

type DispatchRepository interface {
	BulkCreate(ctx context.Context, dispatches []domain.CampaignDispatch) error
}

// Messenger is the outbound messaging gateway, invoked once per selected
// client during a live send.
type Messenger interface {
	SendEmail(toName, toEmail, subject, message string) error
}

// BatchRequest describes one batch selection. A nil RunID targets the
// latest completed run; Segment and Cluster are mutually exclusive.
type BatchRequest struct {
	RunID       *uint64
	TemplateRef string
	BatchSize   int
	Segment     string
	Cluster     *int
	PreviewOnly bool
}

// Service selects campaign batches from completed run output and, in send
// mode, dispatches one message per selected client. It only ever reads run
// rows; dispatch outcomes land in their own audit trail.
type Service struct {
	runs       RunRepository
	actions    NextActionRepository
	clients    ClientRepository
	recs       RecommendationRepository
	products   ProductRepository
	dispatches DispatchRepository
	messenger  Messenger
}

func NewService(runs RunRepository, actions NextActionRepository, clients ClientRepository, recs RecommendationRepository, products ProductRepository, dispatches DispatchRepository, messenger Messenger) *Service {
	return &Service{
		runs:       runs,
		actions:    actions,
		clients:    clients,
		recs:       recs,
		products:   products,
		dispatches: dispatches,
		messenger:  messenger,
	}
}

// ProcessBatch validates the request, selects up to BatchSize eligible
// clients from the resolved run (best audit score first, client code as
// tie-break) and either returns the preview or dispatches the batch.
func (s *Service) ProcessBatch(ctx context.Context, tenantCode string, req BatchRequest) (domain.CampaignBatchResult, error) {
	if req.BatchSize < BatchSizeMin || req.BatchSize > BatchSizeMax {
		return domain.CampaignBatchResult{}, domain.ErrInvalidBatchSize
	}
	if req.TemplateRef == "" {
		return domain.CampaignBatchResult{}, domain.ErrMissingTemplateRef
	}
	if req.Segment != "" && req.Cluster != nil {
		return domain.CampaignBatchResult{}, domain.ErrConflictingFilter
	}

	run, err := s.resolveRun(ctx, tenantCode, req.RunID)
	if err != nil {
		return domain.CampaignBatchResult{}, err
	}

	contacts, eligibleTotal, err := s.selectContacts(ctx, tenantCode, run, req)
	if err != nil {
		return domain.CampaignBatchResult{}, err
	}

	result := domain.CampaignBatchResult{
		BatchID:       uuid.NewString(),
		RunID:         run.ID,
		PreviewOnly:   req.PreviewOnly,
		EligibleTotal: eligibleTotal,
		SelectedCount: len(contacts),
		Contacts:      contacts,
	}

	if req.PreviewOnly {
		return result, nil
	}

	sent, failed, err := s.dispatch(ctx, tenantCode, run.ID, result.BatchID, req.TemplateRef, contacts)
	if err != nil {
		return domain.CampaignBatchResult{}, err
	}
	result.SentCount = sent
	result.FailedCount = failed

	logger.Info("campaign batch dispatched",
		"tenant", tenantCode,
		"run_id", run.ID,
		"batch_id", result.BatchID,
		"sent", sent,
		"failed", failed,
	)

	return result, nil
}

// resolveRun picks the explicit run or falls back to the latest completed
// one. Only completed runs may feed a campaign.
func (s *Service) resolveRun(ctx context.Context, tenantCode string, runID *uint64) (domain.Run, error) {
	if runID == nil {
		return s.runs.LatestCompleted(ctx, tenantCode)
	}

	run, err := s.runs.FindByID(ctx, tenantCode, *runID)
	if err != nil {
		return domain.Run{}, err
	}
	if run.Status != domain.RunStatusCompleted {
		return domain.Run{}, domain.ErrRunNotUsable
	}

	return run, nil
}

// selectContacts walks the run's eligible NextActions in selection order,
// applies the segment or cluster filter, and pairs each surviving client
// with its best approved recommendation. Clients without one cannot be
// messaged and are passed over.
func (s *Service) selectContacts(ctx context.Context, tenantCode string, run domain.Run, req BatchRequest) ([]domain.CampaignContact, int, error) {
	actions, err := s.actions.FindEligible(ctx, run.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load eligible next actions: %w", err)
	}

	clients, err := s.clients.FindByTenant(ctx, tenantCode)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load clients: %w", err)
	}
	clientByCode := make(map[string]domain.Client, len(clients))
	for _, c := range clients {
		clientByCode[c.Code] = c
	}

	var candidates []domain.NextAction
	for _, action := range actions {
		client, ok := clientByCode[action.ClientCode]
		if !ok {
			continue
		}
		if req.Segment != "" && client.RFMSegment != req.Segment {
			continue
		}
		if req.Cluster != nil && client.ClusterID != *req.Cluster {
			continue
		}
		candidates = append(candidates, action)
	}
	eligibleTotal := len(candidates)

	codes := make([]string, 0, len(candidates))
	for _, action := range candidates {
		codes = append(codes, action.ClientCode)
	}
	topRec, err := s.topApprovedByClient(ctx, run.ID, codes)
	if err != nil {
		return nil, 0, err
	}

	productName := make(map[string]string)
	products, err := s.products.FindByTenant(ctx, tenantCode)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load products: %w", err)
	}
	for _, p := range products {
		productName[p.ProductKey] = p.ProductName
	}

	contacts := make([]domain.CampaignContact, 0, req.BatchSize)
	for _, action := range candidates {
		if len(contacts) == req.BatchSize {
			break
		}
		rec, ok := topRec[action.ClientCode]
		if !ok {
			continue
		}

		client := clientByCode[action.ClientCode]
		contacts = append(contacts, domain.CampaignContact{
			ClientCode:  client.Code,
			ClientName:  client.FullName,
			Email:       client.Email,
			ProductKey:  rec.ProductKey,
			ProductName: productName[rec.ProductKey],
			Scenario:    rec.Scenario,
			AuditScore:  action.AuditScore,
		})
	}

	return contacts, eligibleTotal, nil
}

// topApprovedByClient reduces the approved recommendations to the lowest
// rank per client.
func (s *Service) topApprovedByClient(ctx context.Context, runID uint64, codes []string) (map[string]domain.Recommendation, error) {
	if len(codes) == 0 {
		return map[string]domain.Recommendation{}, nil
	}

	recs, err := s.recs.FindApprovedByRun(ctx, runID, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to load approved recommendations: %w", err)
	}

	top := make(map[string]domain.Recommendation)
	for _, r := range recs {
		if best, ok := top[r.ClientCode]; !ok || r.Rank < best.Rank {
			top[r.ClientCode] = r
		}
	}

	return top, nil
}

// dispatch sends one message per contact, never retrying and never
// stopping on individual failures, and records the per-contact outcomes.
func (s *Service) dispatch(ctx context.Context, tenantCode string, runID uint64, batchID, templateRef string, contacts []domain.CampaignContact) (int, int, error) {
	sent, failed := 0, 0
	rows := make([]domain.CampaignDispatch, 0, len(contacts))
	for _, contact := range contacts {
		subject, body := buildMessage(contact, templateRef)

		row := domain.CampaignDispatch{
			BatchID:     batchID,
			RunID:       runID,
			TenantCode:  tenantCode,
			ClientCode:  contact.ClientCode,
			ProductKey:  contact.ProductKey,
			TemplateRef: templateRef,
			Status:      domain.DispatchStatusSent,
		}
		if err := s.messenger.SendEmail(contact.ClientName, contact.Email, subject, body); err != nil {
			row.Status = domain.DispatchStatusFailed
			row.Error = err.Error()
			failed++
			logger.Warn("campaign message failed", "tenant", tenantCode, "client", contact.ClientCode, "error", err)
		} else {
			sent++
		}
		metrics.CampaignDispatchTotal.WithLabelValues(string(row.Status)).Inc()
		rows = append(rows, row)
	}

	if len(rows) > 0 {
		if err := s.dispatches.BulkCreate(ctx, rows); err != nil {
			return sent, failed, fmt.Errorf("failed to record campaign dispatches: %w", err)
		}
	}

	return sent, failed, nil
}

func buildMessage(contact domain.CampaignContact, templateRef string) (string, string) {
	subject := fmt.Sprintf("A selection for you: %s", contact.ProductName)
	body := fmt.Sprintf("Hello %s,\n\nBased on your taste we picked %s for you (%s).\n\n[template:%s]",
		contact.ClientName, contact.ProductName, contact.Scenario, templateRef)

	return subject, body
}
