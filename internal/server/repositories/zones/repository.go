package zones

import (
	"context"

	"github.com/shepherdhq/memberd/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, zone *models.Zone) (*models.Zone, error)
	FindByID(ctx context.Context, id string) (*models.Zone, error)
	List(ctx context.Context) ([]models.Zone, error)
	Update(ctx context.Context, zone *models.Zone) (*models.Zone, error)
	Delete(ctx context.Context, id string) error
}
