package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"

	"vintageCRM/domain"
)

type (
	ClientService interface {
		Get(ctx context.Context, tenantCode, code string) (domain.Client, error)
		List(ctx context.Context, tenantCode string, page, perPage int) ([]domain.Client, int64, error)
		SegmentDistribution(ctx context.Context, tenantCode string) ([]domain.DistributionRow, error)
		ClusterDistribution(ctx context.Context, tenantCode string) ([]domain.DistributionRow, error)
	}

	ClientHandler struct {
		clientService ClientService
		timeout       time.Duration
	}
)

func NewClientHandler(svc ClientService) *ClientHandler {
	return &ClientHandler{
		clientService: svc,
		timeout:       10 * time.Second,
	}
}

func (h *ClientHandler) ListClients(c echo.Context) error {
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

	clients, total, err := h.clientService.List(ctx, tenant, q.Page, q.PerPage)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]interface{}{
		"clients": clients,
		"total":   total,
	}))
}

func (h *ClientHandler) GetClient(c echo.Context) error {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	code := c.Param("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "client code is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	client, err := h.clientService.Get(ctx, tenant, code)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(client))
}

// SegmentDistribution reports how the last run spread clients across RFM
// segments.
func (h *ClientHandler) SegmentDistribution(c echo.Context) error {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	rows, err := h.clientService.SegmentDistribution(ctx, tenant)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(rows))
}

func (h *ClientHandler) ClusterDistribution(c echo.Context) error {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	rows, err := h.clientService.ClusterDistribution(ctx, tenant)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(rows))
}
