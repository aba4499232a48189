package departments

import (
	"context"

	"github.com/shepherdhq/memberd/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, dept *models.Department) (*models.Department, error)
	FindByID(ctx context.Context, id string) (*models.Department, error)
	List(ctx context.Context) ([]models.Department, error)
	Update(ctx context.Context, dept *models.Department) (*models.Department, error)
	Delete(ctx context.Context, id string) error

	// Membership links live in member_departments. Assigning twice is a no-op.
	AssignMember(ctx context.Context, departmentID, memberID string) error
	UnassignMember(ctx context.Context, departmentID, memberID string) error
	ListForMember(ctx context.Context, memberID string) ([]models.Department, error)
}
