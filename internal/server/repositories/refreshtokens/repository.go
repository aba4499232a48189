// Package refreshtokens declares the server-side repository contract for
// refresh tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/shepherdhq/memberd/internal/server/models"
)

// Repository defines the single-row operations the refresh-token lifecycle
// is built on. No multi-row transactions are required by callers; rotation
// correctness relies on Revoke being a conditional single-row update.
type Repository interface {
	// Create stores a new active refresh token for userID.
	Create(ctx context.Context, userID string, token string, expiresAt time.Time) error

	// Find looks up a refresh token by its opaque token string.
	// Returns common.ErrNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Revoke marks the token revoked iff it is not revoked already, and
	// returns the number of rows affected. Zero means the token was absent
	// or already revoked; callers decide whether that matters.
	Revoke(ctx context.Context, token string) (int64, error)

	// RevokeAllForUser marks every token belonging to userID revoked.
	RevokeAllForUser(ctx context.Context, userID string) error

	// DeleteExpiredOrRevoked removes the user's rows that are no longer
	// usable. Bounded to one user: cleanup piggybacks on issuance.
	DeleteExpiredOrRevoked(ctx context.Context, userID string) error
}
