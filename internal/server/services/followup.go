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

type FollowUpService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewFollowUpService(db *sql.DB, m repomanager.RepositoryManager) *FollowUpService {
	return &FollowUpService{db: db, repomanager: m}
}

// CreateFollowUp opens a follow-up task for a member. New tasks start
// PENDING regardless of what the caller sends.
func (s *FollowUpService) CreateFollowUp(ctx context.Context, fu *models.FollowUp) (*models.FollowUp, error) {
	if fu.MemberID == "" || fu.AssignedTo == "" {
		return nil, fmt.Errorf("%w: member and assignee are required", common.ErrInvalidInput)
	}
	if _, err := s.repomanager.Members(s.db).FindByID(ctx, fu.MemberID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown member", common.ErrInvalidInput)
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	if _, err := s.repomanager.Users(s.db).FindByID(ctx, fu.AssignedTo); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown assignee", common.ErrInvalidInput)
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}

	fu.Status = models.FollowUpPending
	created, err := s.repomanager.FollowUps(s.db).Create(ctx, fu)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return created, nil
}

func (s *FollowUpService) GetFollowUp(ctx context.Context, id string) (*models.FollowUp, error) {
	fu, err := s.repomanager.FollowUps(s.db).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return fu, nil
}

func (s *FollowUpService) ListForMember(ctx context.Context, memberID string) ([]models.FollowUp, error) {
	fus, err := s.repomanager.FollowUps(s.db).ListForMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return fus, nil
}

func (s *FollowUpService) ListAssignedTo(ctx context.Context, userID string) ([]models.FollowUp, error) {
	fus, err := s.repomanager.FollowUps(s.db).ListAssignedTo(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return fus, nil
}

func (s *FollowUpService) UpdateFollowUp(ctx context.Context, fu *models.FollowUp) (*models.FollowUp, error) {
	if fu.Status != models.FollowUpPending && fu.Status != models.FollowUpCompleted {
		return nil, fmt.Errorf("%w: unknown status %q", common.ErrInvalidInput, fu.Status)
	}
	updated, err := s.repomanager.FollowUps(s.db).Update(ctx, fu)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return updated, nil
}

// Complete marks the follow-up done, keeping the rest of the record as is.
func (s *FollowUpService) Complete(ctx context.Context, id string) (*models.FollowUp, error) {
	fu, err := s.repomanager.FollowUps(s.db).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	fu.Status = models.FollowUpCompleted
	updated, err := s.repomanager.FollowUps(s.db).Update(ctx, fu)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return updated, nil
}

func (s *FollowUpService) DeleteFollowUp(ctx context.Context, id string) error {
	if err := s.repomanager.FollowUps(s.db).Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return nil
}
