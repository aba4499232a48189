// Package auth issues and verifies the signed access tokens carried by
// API clients. Access tokens are stateless: verification is signature plus
// expiry only, nothing is persisted.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shepherdhq/memberd/internal/common"
	"github.com/shepherdhq/memberd/internal/server/models"
)

// Claims embeds the registered JWT claims and adds the identity claims the
// API relies on. MustChangePassword is propagated from the user record at
// issuance time so a forced-reset user is flagged on every token.
type Claims struct {
	jwt.RegisteredClaims
	Email              string      `json:"email"`
	Role               models.Role `json:"role"`
	MustChangePassword bool        `json:"mustChangePassword"`
}

// Issuer mints HS256-signed access tokens. The secret is immutable after
// construction; an empty secret is rejected by config validation before an
// Issuer is ever built.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	return &Issuer{secret: secret, ttl: ttl}
}

// Issue signs an access token for the user, reading role and
// mustChangePassword from the record as it is now.
func (i *Issuer) Issue(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Email:              user.Email,
		Role:               user.Role,
		MustChangePassword: user.MustChangePassword,
	})
	return token.SignedString(i.secret)
}

// Parse verifies the token's signature and expiry and returns its claims.
// Any failure surfaces as ErrUnauthorized.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, common.ErrUnauthorized
	}
	if !token.Valid {
		return nil, common.ErrUnauthorized
	}
	return claims, nil
}
