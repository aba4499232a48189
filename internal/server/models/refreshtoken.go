package models

import "time"

// RefreshToken is one row of the refresh_tokens table. A token is usable
// iff IsRevoked is false and ExpiresAt is in the future. IsRevoked only ever
// transitions false to true.
type RefreshToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	IsRevoked bool
	CreatedAt time.Time
}

// Usable reports whether the token can still validate or rotate at the
// given instant.
func (t *RefreshToken) Usable(now time.Time) bool {
	return !t.IsRevoked && t.ExpiresAt.After(now)
}
