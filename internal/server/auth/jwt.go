// Package auth issues and verifies the bearer tokens that carry a tenant
// id on HTTP requests.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tenantive/jobboard/internal/common"
	"github.com/tenantive/jobboard/internal/tenant"
)

// Claims carries the standard claims plus the tenant id the token was
// minted for.
type Claims struct {
	jwt.RegisteredClaims
	TenantID uint32 `json:"tenant_id"`
}

// GenerateToken mints an HS256 token for the tenant.
func GenerateToken(t tenant.ID, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		TenantID: uint32(t),
	})
	return token.SignedString(secretKey)
}

// TenantFromToken verifies the token and returns the tenant id claim.
func TenantFromToken(tokenString string, secretKey []byte) (tenant.ID, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, common.ErrInvalidToken
	}

	id := tenant.ID(claims.TenantID)
	if !id.Valid() {
		return 0, common.ErrInvalidToken
	}
	return id, nil
}
