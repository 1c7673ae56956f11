package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vintageCRM/pkg/tokens"
)

type fakeTenantStore struct {
	known map[string]bool
}

func (f *fakeTenantStore) Exists(_ context.Context, tenantCode string) (bool, error) {
	return f.known[tenantCode], nil
}

func invoke(t *testing.T, authHeader string) (*httptest.ResponseRecorder, string) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seenTenant string
	handler := TenantAuth("test-secret", &fakeTenantStore{known: map[string]bool{"cavewine": true}})(
		func(c echo.Context) error {
			seenTenant, _ = c.Get("tenant_code").(string)
			return c.NoContent(http.StatusOK)
		})

	require.NoError(t, handler(c))
	return rec, seenTenant
}

func TestTenantAuthAcceptsValidToken(t *testing.T) {
	token, err := tokens.GenerateTenantToken("test-secret", "cavewine", time.Hour)
	require.NoError(t, err)

	rec, tenant := invoke(t, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cavewine", tenant)
}

func TestTenantAuthRejectsMissingHeader(t *testing.T) {
	rec, _ := invoke(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTenantAuthRejectsMalformedHeader(t *testing.T) {
	rec, _ := invoke(t, "Token abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTenantAuthRejectsWrongSecret(t *testing.T) {
	token, err := tokens.GenerateTenantToken("other-secret", "cavewine", time.Hour)
	require.NoError(t, err)

	rec, _ := invoke(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTenantAuthRejectsExpiredToken(t *testing.T) {
	token, err := tokens.GenerateTenantToken("test-secret", "cavewine", -time.Minute)
	require.NoError(t, err)

	rec, _ := invoke(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTenantAuthRejectsUnknownTenant(t *testing.T) {
	token, err := tokens.GenerateTenantToken("test-secret", "grandcru", time.Hour)
	require.NoError(t, err)

	rec, _ := invoke(t, "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
