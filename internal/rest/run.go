package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"vintageCRM/domain"
	"vintageCRM/pkg/logger"
)

type (
	RunService interface {
		ResolveParams(topN, silenceWindowDays, clusterCount *int) domain.RunParams
		Trigger(ctx context.Context, tenantCode string, params domain.RunParams) (uint64, error)
		GetRun(ctx context.Context, tenantCode string, runID uint64) (domain.Run, *domain.RunSummary, error)
		LatestRun(ctx context.Context, tenantCode string) (domain.Run, *domain.RunSummary, error)
		ListRuns(ctx context.Context, tenantCode string, page, perPage int) ([]domain.Run, int64, error)
		ListNextActions(ctx context.Context, tenantCode string, runID uint64, sortAsc bool, page, perPage int) ([]domain.NextAction, int64, error)
		ListViolations(ctx context.Context, tenantCode string, runID uint64, page, perPage int) ([]domain.AuditViolation, int64, error)
		ListRecommendations(ctx context.Context, tenantCode string, runID uint64, clientCode string) ([]domain.Recommendation, error)
		SetRecommendationApproval(ctx context.Context, tenantCode string, runID uint64, recID uint, approved bool) error
	}

	RunHandler struct {
		runService RunService
		validate   *validator.Validate
		timeout    time.Duration
	}

	TriggerRunRequest struct {
		TopN              *int `json:"top_n" validate:"omitempty,gt=0"`
		SilenceWindowDays *int `json:"silence_window_days" validate:"omitempty,gte=0"`
		ClusterCount      *int `json:"cluster_count" validate:"omitempty,gte=2"`
	}

	ListQuery struct {
		Page    int    `query:"page"`
		PerPage int    `query:"per_page"`
		Sort    string `query:"sort" validate:"omitempty,oneof=asc desc"`
		Client  string `query:"client"`
	}

	ApprovalRequest struct {
		Approved *bool `json:"approved" validate:"required"`
	}

	// RunResponse pairs a run with its summary; the summary is only present
	// once the run completed.
	RunResponse struct {
		Run     domain.Run         `json:"run"`
		Summary *domain.RunSummary `json:"summary,omitempty"`
	}
)

func NewRunHandler(svc RunService) *RunHandler {
	return &RunHandler{
		runService: svc,
		validate:   validator.New(),
		timeout:    10 * time.Second,
	}
}

// TriggerRun starts the pipeline asynchronously and returns the run id for
// polling.
func (h *RunHandler) TriggerRun(c echo.Context) error {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req TriggerRunRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	params := h.runService.ResolveParams(req.TopN, req.SilenceWindowDays, req.ClusterCount)
	runID, err := h.runService.Trigger(ctx, tenant, params)
	if err != nil {
		logger.Error("failed to trigger run", "tenant", tenant, "error", err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"message": "run started",
		"run_id":  runID,
	})
}

func (h *RunHandler) GetRun(c echo.Context) error {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	runID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid run id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	found, summary, err := h.runService.GetRun(ctx, tenant, runID)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(RunResponse{Run: found, Summary: summary}))
}

func (h *RunHandler) LatestRun(c echo.Context) error {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	found, summary, err := h.runService.LatestRun(ctx, tenant)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(RunResponse{Run: found, Summary: summary}))
}

func (h *RunHandler) ListRuns(c echo.Context) error {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var q ListQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	runs, total, err := h.runService.ListRuns(ctx, tenant, q.Page, q.PerPage)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]interface{}{
		"runs":  runs,
		"total": total,
	}))
}

// ListNextActions pages a run's gating verdicts. The default ascending
// order surfaces the worst audit scores first.
func (h *RunHandler) ListNextActions(c echo.Context) error {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	runID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid run id"})
	}

	var q ListQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	actions, total, err := h.runService.ListNextActions(ctx, tenant, runID, q.Sort != "desc", q.Page, q.PerPage)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]interface{}{
		"next_actions": actions,
		"total":        total,
	}))
}

func (h *RunHandler) ListViolations(c echo.Context) error {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	runID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid run id"})
	}

	var q ListQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	violations, total, err := h.runService.ListViolations(ctx, tenant, runID, q.Page, q.PerPage)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]interface{}{
		"violations": violations,
		"total":      total,
	}))
}

func (h *RunHandler) ListRecommendations(c echo.Context) error {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	runID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid run id"})
	}

	var q ListQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if q.Client == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "client query parameter is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	recs, err := h.runService.ListRecommendations(ctx, tenant, runID, q.Client)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(recs))
}

// UpdateRecommendationApproval toggles whether a recommendation may be
// used by campaign sends.
func (h *RunHandler) UpdateRecommendationApproval(c echo.Context) error {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	runID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid run id"})
	}
	recID, err := strconv.ParseUint(c.Param("rec_id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid recommendation id"})
	}

	var req ApprovalRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.runService.SetRecommendationApproval(ctx, tenant, runID, uint(recID), *req.Approved); err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "approval updated",
	})
}
