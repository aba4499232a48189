// This file implements MemberService: member records, attendance tracking
// with automatic status progression, and duplicate-contact detection.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shepherdhq/memberd/internal/common"
	"github.com/shepherdhq/memberd/internal/server/models"
	"github.com/shepherdhq/memberd/internal/server/repositories/repomanager"
)

// MemberDetail is a member with its relations resolved.
type MemberDetail struct {
	models.Member
	Zone        *models.Zone        `json:"zone,omitempty"`
	Cell        *models.Cell        `json:"cell,omitempty"`
	Departments []models.Department `json:"departments,omitempty"`
	FollowUps   []models.FollowUp   `json:"followUps,omitempty"`
}

// MemberList is one page of members plus the unpaged total.
type MemberList struct {
	Items  []models.Member `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// DuplicateMatch reports an existing member sharing contact details with a
// prospective one, and which fields collided.
type DuplicateMatch struct {
	Member    models.Member `json:"member"`
	MatchedOn []string      `json:"matchedOn"`
}

type MemberService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewMemberService(db *sql.DB, m repomanager.RepositoryManager) *MemberService {
	return &MemberService{db: db, repomanager: m, now: time.Now}
}

// statusForAttendance maps a Sunday-attendance count to a member status.
func statusForAttendance(n int) models.MemberStatus {
	switch {
	case n >= 3:
		return models.StatusFullMember
	case n == 2:
		return models.StatusSecondTimer
	default:
		return models.StatusFirstTimer
	}
}

// CreateMember registers a first-timer. Visit dates default to now, the
// attendance counter starts at one, and status is derived from attendance
// rather than trusted from the caller.
func (s *MemberService) CreateMember(ctx context.Context, member *models.Member) (*models.Member, error) {
	if member.Name == "" || member.ZoneID == "" || member.CellID == "" {
		return nil, fmt.Errorf("%w: name, zone and cell are required", common.ErrInvalidInput)
	}

	cell, err := s.repomanager.Cells(s.db).FindByID(ctx, member.CellID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown cell", common.ErrInvalidInput)
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	if cell.ZoneID != member.ZoneID {
		return nil, fmt.Errorf("%w: cell does not belong to zone", common.ErrInvalidInput)
	}

	now := s.now()
	if member.FirstVisit.IsZero() {
		member.FirstVisit = now
	}
	if member.LastVisit.IsZero() {
		member.LastVisit = member.FirstVisit
	}
	if member.SundayAttendance < 1 {
		member.SundayAttendance = 1
	}
	member.Status = statusForAttendance(member.SundayAttendance)
	if member.ConversionStatus == "" {
		member.ConversionStatus = models.ConversionNotConverted
	}

	created, err := s.repomanager.Members(s.db).Create(ctx, member)
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return created, nil
}

// GetMember resolves the member and its relations. Relation lookups that
// fail individually do not fail the whole read.
func (s *MemberService) GetMember(ctx context.Context, id string) (*MemberDetail, error) {
	member, err := s.repomanager.Members(s.db).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}

	detail := &MemberDetail{Member: *member}
	if zone, err := s.repomanager.Zones(s.db).FindByID(ctx, member.ZoneID); err == nil {
		detail.Zone = zone
	}
	if cell, err := s.repomanager.Cells(s.db).FindByID(ctx, member.CellID); err == nil {
		detail.Cell = cell
	}
	if depts, err := s.repomanager.Departments(s.db).ListForMember(ctx, id); err == nil {
		detail.Departments = depts
	}
	if fus, err := s.repomanager.FollowUps(s.db).ListForMember(ctx, id); err == nil {
		detail.FollowUps = fus
	}
	return detail, nil
}

func (s *MemberService) ListMembers(ctx context.Context, filter models.MemberFilter) (*MemberList, error) {
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	items, total, err := s.repomanager.Members(s.db).List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return &MemberList{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (s *MemberService) UpdateMember(ctx context.Context, member *models.Member) (*models.Member, error) {
	updated, err := s.repomanager.Members(s.db).Update(ctx, member)
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

func (s *MemberService) DeleteMember(ctx context.Context, id string) error {
	if err := s.repomanager.Members(s.db).Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return nil
}

// MarkAttendance records a Sunday visit. A member is counted at most once
// per calendar day; the counter drives status progression.
func (s *MemberService) MarkAttendance(ctx context.Context, id string) (*models.Member, error) {
	member, err := s.repomanager.Members(s.db).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}

	now := s.now()
	if sameDay(member.LastVisit, now) {
		return nil, fmt.Errorf("%w: attendance already recorded today", common.ErrConflict)
	}

	member.SundayAttendance++
	member.LastVisit = now
	member.Status = statusForAttendance(member.SundayAttendance)

	err = s.repomanager.Members(s.db).UpdateAttendance(ctx, id, member.SundayAttendance, member.LastVisit, member.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return member, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// FindDuplicates checks whether the given contact details already belong to
// registered members, reporting which field matched for each hit.
func (s *MemberService) FindDuplicates(ctx context.Context, phone, email string) ([]DuplicateMatch, error) {
	if phone == "" && email == "" {
		return nil, fmt.Errorf("%w: phone or email required", common.ErrInvalidInput)
	}

	hits, err := s.repomanager.Members(s.db).SearchByContact(ctx, phone, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}

	matches := make([]DuplicateMatch, 0, len(hits))
	for _, hit := range hits {
		var on []string
		if phone != "" && hit.Phone == phone {
			on = append(on, "phone")
		}
		if email != "" && hit.Email != nil && *hit.Email == email {
			on = append(on, "email")
		}
		matches = append(matches, DuplicateMatch{Member: hit, MatchedOn: on})
	}
	return matches, nil
}
