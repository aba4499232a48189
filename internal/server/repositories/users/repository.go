// Package users declares the repository contract for user accounts.
package users

import (
	"context"
	"time"

	"github.com/shepherdhq/memberd/internal/server/models"
)

type Repository interface {
	// Create inserts a new user and returns it with the generated id.
	// A duplicate email returns common.ErrConflict.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// FindByID returns the user or common.ErrNotFound.
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail returns the user or common.ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByResetToken returns the user holding the given one-shot password
	// reset token, or common.ErrNotFound.
	FindByResetToken(ctx context.Context, token string) (*models.User, error)

	// List returns all users.
	List(ctx context.Context) ([]models.User, error)

	// Update overwrites the user's profile fields (name, phone, role).
	Update(ctx context.Context, user *models.User) (*models.User, error)

	// UpdatePassword replaces the password hash only.
	UpdatePassword(ctx context.Context, id string, passwordHash string) error

	// FinishReset replaces the password hash, clears the reset token, and
	// clears the must-change-password flag in one statement.
	FinishReset(ctx context.Context, id string, passwordHash string) error

	// SetResetToken stores a one-shot reset token with its expiry.
	SetResetToken(ctx context.Context, id string, token string, expires time.Time) error

	// Delete removes the user. Deleting an absent user returns common.ErrNotFound.
	Delete(ctx context.Context, id string) error
}
