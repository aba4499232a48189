package cells

import (
	"context"

	"github.com/shepherdhq/memberd/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, cell *models.Cell) (*models.Cell, error)
	FindByID(ctx context.Context, id string) (*models.Cell, error)
	List(ctx context.Context) ([]models.Cell, error)
	ListByZone(ctx context.Context, zoneID string) ([]models.Cell, error)
	Update(ctx context.Context, cell *models.Cell) (*models.Cell, error)
	Delete(ctx context.Context, id string) error
}
