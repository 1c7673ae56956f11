package rest

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"vintageCRM/domain"
)

type ResponseError struct {
	Message string `json:"message"`
}

// statusFor maps domain errors onto HTTP statuses: validation failures are
// 400, missing resources 404, state conflicts 409, the rest 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidClusterCount),
		errors.Is(err, domain.ErrInvalidRunParams),
		errors.Is(err, domain.ErrInvalidBatchSize),
		errors.Is(err, domain.ErrMissingTemplateRef),
		errors.Is(err, domain.ErrConflictingFilter):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRunNotFound),
		errors.Is(err, domain.ErrNoCompletedRun),
		errors.Is(err, domain.ErrClientNotFound),
		errors.Is(err, domain.ErrRecommendationNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRunInProgress),
		errors.Is(err, domain.ErrRunNotUsable),
		errors.Is(err, domain.ErrNoClients):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func errorJSON(c echo.Context, err error) error {
	return c.JSON(statusFor(err), ResponseError{Message: err.Error()})
}

// tenantFromContext reads the tenant code the auth middleware stored.
func tenantFromContext(c echo.Context) (string, bool) {
	code, ok := c.Get("tenant_code").(string)
	if !ok || code == "" {
		return "", false
	}

	return code, true
}
