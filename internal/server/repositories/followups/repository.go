package followups

import (
	"context"

	"github.com/shepherdhq/memberd/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, fu *models.FollowUp) (*models.FollowUp, error)
	FindByID(ctx context.Context, id string) (*models.FollowUp, error)
	ListForMember(ctx context.Context, memberID string) ([]models.FollowUp, error)
	ListAssignedTo(ctx context.Context, userID string) ([]models.FollowUp, error)
	Update(ctx context.Context, fu *models.FollowUp) (*models.FollowUp, error)
	Delete(ctx context.Context, id string) error
}
