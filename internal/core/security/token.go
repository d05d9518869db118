// Package security provides facility identity tokens.
//
// The ledger does not run its own login flows; callers arrive with a
// signed bearer token naming the facility they operate. This package
// verifies that token and turns it into the request identity.
package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appctx "coldledger/internal/core/context"
	"coldledger/internal/core/id"
)

// TokenConfig holds token verification configuration.
type TokenConfig struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

// DefaultTokenConfig returns default token configuration.
func DefaultTokenConfig(secret string) TokenConfig {
	return TokenConfig{
		Secret:   secret,
		Issuer:   "coldledger",
		TokenTTL: 12 * time.Hour,
	}
}

// Claims represents the facility identity claims.
type Claims struct {
	jwt.RegisteredClaims
	FacilityID string `json:"fid"`
	Admin      bool   `json:"adm,omitempty"`
}

// TokenService signs and verifies facility identity tokens.
type TokenService struct {
	config TokenConfig
}

// NewTokenService creates a new token service.
func NewTokenService(config TokenConfig) *TokenService {
	return &TokenService{config: config}
}

// IssueToken signs a token for an operator of the given facility.
func (s *TokenService) IssueToken(subject string, facilityID id.ID, admin bool) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.config.TokenTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		FacilityID: facilityID.String(),
		Admin:      admin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken verifies a token and returns the caller identity.
func (s *TokenService) ValidateToken(tokenString string) (*appctx.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	facilityID, err := id.Parse(claims.FacilityID)
	if err != nil {
		return nil, fmt.Errorf("invalid facility id in token: %w", err)
	}

	return &appctx.Identity{
		FacilityID: facilityID,
		Subject:    claims.Subject,
		Admin:      claims.Admin,
	}, nil
}
