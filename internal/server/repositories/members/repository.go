// Package members declares the repository contract for member records.
package members

import (
	"context"
	"time"

	"github.com/shepherdhq/memberd/internal/server/models"
)

type Repository interface {
	// Create inserts a new member. A duplicate email returns common.ErrConflict.
	Create(ctx context.Context, member *models.Member) (*models.Member, error)

	// FindByID returns the member or common.ErrNotFound.
	FindByID(ctx context.Context, id string) (*models.Member, error)

	// FindByEmail returns the member or common.ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*models.Member, error)

	// List returns a page of members matching the filter plus the total
	// count of matches.
	List(ctx context.Context, filter models.MemberFilter) ([]models.Member, int, error)

	// Update overwrites the member's mutable fields.
	Update(ctx context.Context, member *models.Member) (*models.Member, error)

	// UpdateAttendance records an attendance-driven state change in one write.
	UpdateAttendance(ctx context.Context, id string, attendance int, lastVisit time.Time, status models.MemberStatus) error

	// SearchByContact returns every member matching the given phone or
	// email, newest first.
	SearchByContact(ctx context.Context, phone, email string) ([]models.Member, error)

	// Delete removes the member or returns common.ErrNotFound.
	Delete(ctx context.Context, id string) error
}
