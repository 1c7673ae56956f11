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
	CatalogService interface {
		List(ctx context.Context, tenantCode string, page, perPage int) ([]domain.Product, int64, error)
	}

	CatalogHandler struct {
		catalogService CatalogService
		timeout        time.Duration
	}
)

func NewCatalogHandler(svc CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: svc,
		timeout:        10 * time.Second,
	}
}

func (h *CatalogHandler) ListProducts(c echo.Context) error {
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

	products, total, err := h.catalogService.List(ctx, tenant, q.Page, q.PerPage)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]interface{}{
		"products": products,
		"total":    total,
	}))
}
