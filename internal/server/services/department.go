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

type DepartmentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewDepartmentService(db *sql.DB, m repomanager.RepositoryManager) *DepartmentService {
	return &DepartmentService{db: db, repomanager: m}
}

func (s *DepartmentService) CreateDepartment(ctx context.Context, dept *models.Department) (*models.Department, error) {
	if dept.Name == "" {
		return nil, fmt.Errorf("%w: name is required", common.ErrInvalidInput)
	}
	created, err := s.repomanager.Departments(s.db).Create(ctx, dept)
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return created, nil
}

func (s *DepartmentService) GetDepartment(ctx context.Context, id string) (*models.Department, error) {
	dept, err := s.repomanager.Departments(s.db).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return dept, nil
}

func (s *DepartmentService) ListDepartments(ctx context.Context) ([]models.Department, error) {
	depts, err := s.repomanager.Departments(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return depts, nil
}

func (s *DepartmentService) UpdateDepartment(ctx context.Context, dept *models.Department) (*models.Department, error) {
	if dept.Name == "" {
		return nil, fmt.Errorf("%w: name is required", common.ErrInvalidInput)
	}
	updated, err := s.repomanager.Departments(s.db).Update(ctx, dept)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			return nil, common.ErrNotFound
		case errors.Is(err, common.ErrConflict):
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return updated, nil
}

func (s *DepartmentService) DeleteDepartment(ctx context.Context, id string) error {
	if err := s.repomanager.Departments(s.db).Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return nil
}

// AssignMember adds a member to a department. Both sides must exist;
// assigning an already-assigned member succeeds.
func (s *DepartmentService) AssignMember(ctx context.Context, departmentID, memberID string) error {
	if _, err := s.repomanager.Departments(s.db).FindByID(ctx, departmentID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	if _, err := s.repomanager.Members(s.db).FindByID(ctx, memberID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	if err := s.repomanager.Departments(s.db).AssignMember(ctx, departmentID, memberID); err != nil {
		return fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return nil
}

func (s *DepartmentService) UnassignMember(ctx context.Context, departmentID, memberID string) error {
	if err := s.repomanager.Departments(s.db).UnassignMember(ctx, departmentID, memberID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return nil
}
