package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TenantClaims scope an API token to a single tenant. Tokens are minted
// out-of-band (ops tooling, tests); this service only validates them.
type TenantClaims struct {
	TenantCode string `json:"tenant_code"`
	jwt.RegisteredClaims
}

// GenerateTenantToken mints a signed tenant-scoped token.
func GenerateTenantToken(secret, tenantCode string, ttl time.Duration) (string, error) {
	if tenantCode == "" {
		return "", errors.New("tenant code is required")
	}

	now := time.Now()
	claims := TenantClaims{
		TenantCode: tenantCode,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   tenantCode,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// ParseTenantToken validates a token and returns its claims.
func ParseTenantToken(secret, tokenString string) (*TenantClaims, error) {
	claims := &TenantClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	if claims.TenantCode == "" {
		return nil, errors.New("token has no tenant code")
	}

	return claims, nil
}
