package campaign

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vintageCRM/domain"
)

type fakeRunRepo struct {
	runs   map[uint64]domain.Run
	latest *domain.Run
}

func (f *fakeRunRepo) FindByID(_ context.Context, tenantCode string, runID uint64) (domain.Run, error) {
	run, ok := f.runs[runID]
	if !ok || run.TenantCode != tenantCode {
		return domain.Run{}, domain.ErrRunNotFound
	}
	return run, nil
}

func (f *fakeRunRepo) LatestCompleted(_ context.Context, _ string) (domain.Run, error) {
	if f.latest == nil {
		return domain.Run{}, domain.ErrNoCompletedRun
	}
	return *f.latest, nil
}

type fakeActionRepo struct {
	rows []domain.NextAction
}

func (f *fakeActionRepo) FindEligible(_ context.Context, runID uint64) ([]domain.NextAction, error) {
	var out []domain.NextAction
	for _, row := range f.rows {
		if row.RunID == runID && row.Eligible {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AuditScore != out[j].AuditScore {
			return out[i].AuditScore > out[j].AuditScore
		}
		return out[i].ClientCode < out[j].ClientCode
	})
	return out, nil
}

type fakeClientRepo struct {
	rows []domain.Client
}

func (f *fakeClientRepo) FindByTenant(_ context.Context, _ string) ([]domain.Client, error) {
	return f.rows, nil
}

type fakeRecRepo struct {
	rows []domain.Recommendation
}

func (f *fakeRecRepo) FindApprovedByRun(_ context.Context, runID uint64, clientCodes []string) ([]domain.Recommendation, error) {
	wanted := make(map[string]bool, len(clientCodes))
	for _, code := range clientCodes {
		wanted[code] = true
	}
	var out []domain.Recommendation
	for _, row := range f.rows {
		if row.RunID == runID && row.Approved && wanted[row.ClientCode] {
			out = append(out, row)
		}
	}
	return out, nil
}

type fakeProductRepo struct {
	rows []domain.Product
}

func (f *fakeProductRepo) FindByTenant(_ context.Context, _ string) ([]domain.Product, error) {
	return f.rows, nil
}

type fakeDispatchRepo struct {
	rows []domain.CampaignDispatch
}

func (f *fakeDispatchRepo) BulkCreate(_ context.Context, dispatches []domain.CampaignDispatch) error {
	f.rows = append(f.rows, dispatches...)
	return nil
}

type fakeMessenger struct {
	failEmails map[string]bool
	sent       []string
}

func (f *fakeMessenger) SendEmail(_, toEmail, _, _ string) error {
	f.sent = append(f.sent, toEmail)
	if f.failEmails[toEmail] {
		return errors.New("smtp refused")
	}
	return nil
}

type campaignFixture struct {
	svc        *Service
	runs       *fakeRunRepo
	actions    *fakeActionRepo
	clients    *fakeClientRepo
	recs       *fakeRecRepo
	products   *fakeProductRepo
	dispatches *fakeDispatchRepo
	messenger  *fakeMessenger
}

func newFixture() *campaignFixture {
	completed := domain.Run{ID: 1, TenantCode: "cavewine", Status: domain.RunStatusCompleted}
	f := &campaignFixture{
		runs:       &fakeRunRepo{runs: map[uint64]domain.Run{1: completed}, latest: &completed},
		actions:    &fakeActionRepo{},
		clients:    &fakeClientRepo{},
		recs:       &fakeRecRepo{},
		products:   &fakeProductRepo{rows: []domain.Product{{ProductKey: "P-1", ProductName: "Margaux 2015"}}},
		dispatches: &fakeDispatchRepo{},
		messenger:  &fakeMessenger{failEmails: map[string]bool{}},
	}
	f.svc = NewService(f.runs, f.actions, f.clients, f.recs, f.products, f.dispatches, f.messenger)
	return f
}

// seedEligible creates n clients with eligible next actions and one approved
// rank-1 recommendation each. Audit scores descend with i so selection order
// is predictable.
func (f *campaignFixture) seedEligible(n int) {
	for i := 0; i < n; i++ {
		code := fmt.Sprintf("CL-%04d", i)
		f.clients.rows = append(f.clients.rows, domain.Client{
			TenantCode: "cavewine",
			Code:       code,
			FullName:   "Client " + code,
			Email:      code + "@example.com",
			RFMSegment: domain.SegmentLoyal,
			ClusterID:  1,
		})
		f.actions.rows = append(f.actions.rows, domain.NextAction{
			RunID:      1,
			ClientCode: code,
			Eligible:   true,
			AuditScore: float64(1000 - i),
		})
		f.recs.rows = append(f.recs.rows, domain.Recommendation{
			RunID:      1,
			ClientCode: code,
			ProductKey: "P-1",
			Rank:       1,
			Scenario:   domain.ScenarioPopular,
			Approved:   true,
		})
	}
}

func request() BatchRequest {
	return BatchRequest{TemplateRef: "spring-offer", BatchSize: 200, PreviewOnly: true}
}

func TestProcessBatchCapsSelectionAtBatchSize(t *testing.T) {
	f := newFixture()
	f.seedEligible(400)

	req := request()
	req.BatchSize = 250

	result, err := f.svc.ProcessBatch(context.Background(), "cavewine", req)
	require.NoError(t, err)

	assert.Equal(t, 400, result.EligibleTotal)
	assert.Equal(t, 250, result.SelectedCount)
	require.Len(t, result.Contacts, 250)

	// Best audit score first, and nothing below the cut makes it in.
	assert.Equal(t, "CL-0000", result.Contacts[0].ClientCode)
	assert.Equal(t, "CL-0249", result.Contacts[249].ClientCode)
	for i := 1; i < len(result.Contacts); i++ {
		assert.LessOrEqual(t, result.Contacts[i].AuditScore, result.Contacts[i-1].AuditScore)
	}
}

func TestProcessBatchRejectsBatchSizeOutOfRange(t *testing.T) {
	f := newFixture()
	f.seedEligible(10)

	for _, size := range []int{0, 199, 301} {
		req := request()
		req.BatchSize = size
		_, err := f.svc.ProcessBatch(context.Background(), "cavewine", req)
		assert.ErrorIs(t, err, domain.ErrInvalidBatchSize, "size %d", size)
	}

	assert.Empty(t, f.messenger.sent)
}

func TestProcessBatchRejectsMissingTemplate(t *testing.T) {
	f := newFixture()
	req := request()
	req.TemplateRef = ""

	_, err := f.svc.ProcessBatch(context.Background(), "cavewine", req)
	assert.ErrorIs(t, err, domain.ErrMissingTemplateRef)
}

func TestProcessBatchRejectsConflictingFilters(t *testing.T) {
	f := newFixture()
	cluster := 2
	req := request()
	req.Segment = domain.SegmentLoyal
	req.Cluster = &cluster

	_, err := f.svc.ProcessBatch(context.Background(), "cavewine", req)
	assert.ErrorIs(t, err, domain.ErrConflictingFilter)
}

func TestProcessBatchSegmentFilter(t *testing.T) {
	f := newFixture()
	f.seedEligible(6)
	f.clients.rows[0].RFMSegment = domain.SegmentChampions
	f.clients.rows[3].RFMSegment = domain.SegmentChampions

	req := request()
	req.Segment = domain.SegmentChampions

	result, err := f.svc.ProcessBatch(context.Background(), "cavewine", req)
	require.NoError(t, err)

	assert.Equal(t, 2, result.EligibleTotal)
	require.Len(t, result.Contacts, 2)
	assert.Equal(t, "CL-0000", result.Contacts[0].ClientCode)
	assert.Equal(t, "CL-0003", result.Contacts[1].ClientCode)
}

func TestProcessBatchClusterFilter(t *testing.T) {
	f := newFixture()
	f.seedEligible(5)
	f.clients.rows[1].ClusterID = 3
	f.clients.rows[4].ClusterID = 3

	cluster := 3
	req := request()
	req.Cluster = &cluster

	result, err := f.svc.ProcessBatch(context.Background(), "cavewine", req)
	require.NoError(t, err)

	assert.Equal(t, 2, result.EligibleTotal)
	require.Len(t, result.Contacts, 2)
	assert.Equal(t, "CL-0001", result.Contacts[0].ClientCode)
	assert.Equal(t, "CL-0004", result.Contacts[1].ClientCode)
}

func TestProcessBatchNeverSelectsIneligible(t *testing.T) {
	f := newFixture()
	f.seedEligible(3)
	f.clients.rows = append(f.clients.rows, domain.Client{
		TenantCode: "cavewine", Code: "CL-BAD", Email: "bad@example.com",
	})
	f.actions.rows = append(f.actions.rows, domain.NextAction{
		RunID: 1, ClientCode: "CL-BAD", Eligible: false,
		Reason: "REC_DUP_RECENT_PURCHASE", AuditScore: 9999,
	})

	result, err := f.svc.ProcessBatch(context.Background(), "cavewine", request())
	require.NoError(t, err)

	assert.Equal(t, 3, result.EligibleTotal)
	for _, contact := range result.Contacts {
		assert.NotEqual(t, "CL-BAD", contact.ClientCode)
	}
}

func TestProcessBatchSkipsClientsWithoutApprovedRecommendation(t *testing.T) {
	f := newFixture()
	f.seedEligible(4)

	// Best-scored client loses its only recommendation to a rejection; the
	// second keeps rank 2 after its rank 1 was rejected.
	f.recs.rows[0].Approved = false
	f.recs.rows[1].Approved = false
	f.recs.rows = append(f.recs.rows, domain.Recommendation{
		RunID: 1, ClientCode: "CL-0001", ProductKey: "P-9", Rank: 2,
		Scenario: domain.ScenarioCrossSell, Approved: true,
	})

	result, err := f.svc.ProcessBatch(context.Background(), "cavewine", request())
	require.NoError(t, err)

	assert.Equal(t, 4, result.EligibleTotal)
	require.Len(t, result.Contacts, 3)
	assert.Equal(t, "CL-0001", result.Contacts[0].ClientCode)
	assert.Equal(t, "P-9", result.Contacts[0].ProductKey)
	assert.Equal(t, domain.ScenarioCrossSell, result.Contacts[0].Scenario)
}

func TestProcessBatchExplicitRunMustBeCompleted(t *testing.T) {
	f := newFixture()
	f.runs.runs[2] = domain.Run{ID: 2, TenantCode: "cavewine", Status: domain.RunStatusFailed}

	failedID := uint64(2)
	req := request()
	req.RunID = &failedID
	_, err := f.svc.ProcessBatch(context.Background(), "cavewine", req)
	assert.ErrorIs(t, err, domain.ErrRunNotUsable)

	missingID := uint64(42)
	req.RunID = &missingID
	_, err = f.svc.ProcessBatch(context.Background(), "cavewine", req)
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

func TestProcessBatchDefaultsToLatestCompletedRun(t *testing.T) {
	f := newFixture()
	f.seedEligible(2)

	result, err := f.svc.ProcessBatch(context.Background(), "cavewine", request())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.RunID)

	f.runs.latest = nil
	_, err = f.svc.ProcessBatch(context.Background(), "cavewine", request())
	assert.ErrorIs(t, err, domain.ErrNoCompletedRun)
}

func TestProcessBatchPreviewHasNoSideEffects(t *testing.T) {
	f := newFixture()
	f.seedEligible(5)

	result, err := f.svc.ProcessBatch(context.Background(), "cavewine", request())
	require.NoError(t, err)

	assert.True(t, result.PreviewOnly)
	assert.Equal(t, 5, result.SelectedCount)
	assert.Zero(t, result.SentCount)
	assert.Zero(t, result.FailedCount)
	assert.Empty(t, f.messenger.sent)
	assert.Empty(t, f.dispatches.rows)
	assert.NotEmpty(t, result.BatchID)
}

func TestProcessBatchSendRecordsPerContactOutcomes(t *testing.T) {
	f := newFixture()
	f.seedEligible(5)
	f.messenger.failEmails["CL-0001@example.com"] = true
	f.messenger.failEmails["CL-0003@example.com"] = true

	req := request()
	req.PreviewOnly = false

	result, err := f.svc.ProcessBatch(context.Background(), "cavewine", req)
	require.NoError(t, err)

	assert.Equal(t, 3, result.SentCount)
	assert.Equal(t, 2, result.FailedCount)

	// One attempt per contact, no retries, failures do not stop the batch.
	assert.Len(t, f.messenger.sent, 5)

	require.Len(t, f.dispatches.rows, 5)
	byClient := make(map[string]domain.CampaignDispatch)
	for _, row := range f.dispatches.rows {
		byClient[row.ClientCode] = row
		assert.Equal(t, result.BatchID, row.BatchID)
		assert.Equal(t, uint64(1), row.RunID)
		assert.Equal(t, "spring-offer", row.TemplateRef)
	}
	assert.Equal(t, domain.DispatchStatusSent, byClient["CL-0000"].Status)
	assert.Equal(t, domain.DispatchStatusFailed, byClient["CL-0001"].Status)
	assert.Contains(t, byClient["CL-0001"].Error, "smtp refused")
	assert.Equal(t, domain.DispatchStatusFailed, byClient["CL-0003"].Status)
}
