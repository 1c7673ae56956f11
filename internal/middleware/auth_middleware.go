package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"vintageCRM/pkg/logger"
	"vintageCRM/pkg/tokens"
)

// TenantStore answers whether a tenant code from a token is provisioned.
type TenantStore interface {
	Exists(ctx context.Context, tenantCode string) (bool, error)
}

// TenantAuth validates the bearer token and scopes the request to the
// tenant it names. Every handler downstream reads tenant_code from the
// echo context and nothing else.
func TenantAuth(secret string, store TenantStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"message": "missing authorization header",
				})
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"message": "invalid authorization format",
				})
			}

			claims, err := tokens.ParseTenantToken(secret, tokenParts[1])
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"message": "invalid token",
				})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			exists, err := store.Exists(ctx, claims.TenantCode)
			if err != nil {
				logger.Error("failed to check tenant", "tenant", claims.TenantCode, "error", err)
				return c.JSON(http.StatusInternalServerError, echo.Map{
					"message": "failed to verify tenant",
				})
			}
			if !exists {
				return c.JSON(http.StatusForbidden, echo.Map{
					"message": "unknown tenant",
				})
			}

			c.Set("tenant_code", claims.TenantCode)

			return next(c)
		}
	}
}
