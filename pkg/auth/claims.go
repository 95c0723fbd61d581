package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pharmalink/pharmacy-pos/pkg/types"
)

// TokenClaims are the claims read from the backend-issued bearer token.
type TokenClaims struct {
	Role       string   `json:"role,omitempty"`
	PharmacyID types.ID `json:"pharmacyId,omitempty"`
	jwt.RegisteredClaims
}

// Expired reports whether the token carries an exp claim at or before now.
// Tokens without exp never expire locally.
func (c *TokenClaims) Expired(now time.Time) bool {
	if c == nil || c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Time)
}
