package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"vintageCRM/business/campaign"
	"vintageCRM/domain"
	"vintageCRM/pkg/logger"
)

type (
	CampaignService interface {
		ProcessBatch(ctx context.Context, tenantCode string, req campaign.BatchRequest) (domain.CampaignBatchResult, error)
	}

	CampaignHandler struct {
		campaignService CampaignService
		validate        *validator.Validate
		timeout         time.Duration
	}

	CampaignBatchRequest struct {
		RunID       *uint64 `json:"run_id"`
		TemplateRef string  `json:"template_ref" validate:"required"`
		BatchSize   int     `json:"batch_size" validate:"required,min=200,max=300"`
		Segment     string  `json:"segment"`
		Cluster     *int    `json:"cluster" validate:"omitempty,gte=1"`
		PreviewOnly bool    `json:"preview_only"`
	}
)

func NewCampaignHandler(svc CampaignService) *CampaignHandler {
	return &CampaignHandler{
		campaignService: svc,
		validate:        validator.New(),
		// Live sends call the mail gateway once per contact.
		timeout: 2 * time.Minute,
	}
}

// CreateBatch selects a campaign batch from a completed run and either
// previews it or dispatches it immediately.
func (h *CampaignHandler) CreateBatch(c echo.Context) error {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req CampaignBatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.campaignService.ProcessBatch(ctx, tenant, campaign.BatchRequest{
		RunID:       req.RunID,
		TemplateRef: req.TemplateRef,
		BatchSize:   req.BatchSize,
		Segment:     req.Segment,
		Cluster:     req.Cluster,
		PreviewOnly: req.PreviewOnly,
	})
	if err != nil {
		logger.Error("failed to process campaign batch", "tenant", tenant, "error", err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}
