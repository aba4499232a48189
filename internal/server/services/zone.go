package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shepherdhq/memberd/internal/common"
	"github.com/shepherdhq/memberd/internal/server/models"
	"github.com/shepherdhq/memberd/internal/server/repositories/repomanager"
)

// ZoneDetail is a zone with its cells.
type ZoneDetail struct {
	models.Zone
	Cells []models.Cell `json:"cells,omitempty"`
}

type ZoneService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewZoneService(db *sql.DB, m repomanager.RepositoryManager) *ZoneService {
	return &ZoneService{db: db, repomanager: m}
}

func (s *ZoneService) CreateZone(ctx context.Context, zone *models.Zone) (*models.Zone, error) {
	if zone.Name == "" || zone.CoordinatorID == "" {
		return nil, fmt.Errorf("%w: name and coordinator are required", common.ErrInvalidInput)
	}
	if _, err := s.repomanager.Users(s.db).FindByID(ctx, zone.CoordinatorID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown coordinator", common.ErrInvalidInput)
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	created, err := s.repomanager.Zones(s.db).Create(ctx, zone)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return created, nil
}

func (s *ZoneService) GetZone(ctx context.Context, id string) (*ZoneDetail, error) {
	zone, err := s.repomanager.Zones(s.db).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	detail := &ZoneDetail{Zone: *zone}
	if cells, err := s.repomanager.Cells(s.db).ListByZone(ctx, id); err == nil {
		detail.Cells = cells
	}
	return detail, nil
}

func (s *ZoneService) ListZones(ctx context.Context) ([]models.Zone, error) {
	zones, err := s.repomanager.Zones(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return zones, nil
}

func (s *ZoneService) UpdateZone(ctx context.Context, zone *models.Zone) (*models.Zone, error) {
	if zone.Name == "" || zone.CoordinatorID == "" {
		return nil, fmt.Errorf("%w: name and coordinator are required", common.ErrInvalidInput)
	}
	updated, err := s.repomanager.Zones(s.db).Update(ctx, zone)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return updated, nil
}

// DeleteZone refuses to remove a zone that still has cells.
func (s *ZoneService) DeleteZone(ctx context.Context, id string) error {
	cells, err := s.repomanager.Cells(s.db).ListByZone(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	if len(cells) > 0 {
		return fmt.Errorf("%w: zone still has cells", common.ErrConflict)
	}
	if err := s.repomanager.Zones(s.db).Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return nil
}
