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

type CellService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCellService(db *sql.DB, m repomanager.RepositoryManager) *CellService {
	return &CellService{db: db, repomanager: m}
}

func (s *CellService) validate(ctx context.Context, cell *models.Cell) error {
	if cell.Name == "" || cell.LeaderID == "" || cell.ZoneID == "" {
		return fmt.Errorf("%w: name, leader and zone are required", common.ErrInvalidInput)
	}
	if _, err := s.repomanager.Zones(s.db).FindByID(ctx, cell.ZoneID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("%w: unknown zone", common.ErrInvalidInput)
		}
		return fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	if _, err := s.repomanager.Users(s.db).FindByID(ctx, cell.LeaderID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("%w: unknown leader", common.ErrInvalidInput)
		}
		return fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return nil
}

func (s *CellService) CreateCell(ctx context.Context, cell *models.Cell) (*models.Cell, error) {
	if err := s.validate(ctx, cell); err != nil {
		return nil, err
	}
	created, err := s.repomanager.Cells(s.db).Create(ctx, cell)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return created, nil
}

func (s *CellService) GetCell(ctx context.Context, id string) (*models.Cell, error) {
	cell, err := s.repomanager.Cells(s.db).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return cell, nil
}

// ListCells returns every cell, or only a zone's cells when zoneID is set.
func (s *CellService) ListCells(ctx context.Context, zoneID string) ([]models.Cell, error) {
	var (
		cells []models.Cell
		err   error
	)
	if zoneID == "" {
		cells, err = s.repomanager.Cells(s.db).List(ctx)
	} else {
		cells, err = s.repomanager.Cells(s.db).ListByZone(ctx, zoneID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return cells, nil
}

func (s *CellService) UpdateCell(ctx context.Context, cell *models.Cell) (*models.Cell, error) {
	if err := s.validate(ctx, cell); err != nil {
		return nil, err
	}
	updated, err := s.repomanager.Cells(s.db).Update(ctx, cell)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return updated, nil
}

// DeleteCell refuses to remove a cell that still has members.
func (s *CellService) DeleteCell(ctx context.Context, id string) error {
	_, total, err := s.repomanager.Members(s.db).List(ctx, models.MemberFilter{CellID: id, Limit: 1})
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	if total > 0 {
		return fmt.Errorf("%w: cell still has members", common.ErrConflict)
	}
	if err := s.repomanager.Cells(s.db).Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return nil
}
