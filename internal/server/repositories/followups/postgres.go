package followups

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shepherdhq/memberd/internal/common"
	"github.com/shepherdhq/memberd/internal/dbx"
	"github.com/shepherdhq/memberd/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, fu *models.FollowUp) (*models.FollowUp, error) {
	query := `
		INSERT INTO follow_ups (member_id, assigned_to, notes, status, due_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, fu.MemberID, fu.AssignedTo, fu.Notes, fu.Status, fu.DueDate).
		Scan(&fu.ID, &fu.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return fu, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.FollowUp, error) {
	query := `SELECT id, member_id, assigned_to, notes, status, due_date, created_at
		FROM follow_ups WHERE id = $1`
	fu := &models.FollowUp{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&fu.ID, &fu.MemberID, &fu.AssignedTo, &fu.Notes, &fu.Status, &fu.DueDate, &fu.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return fu, nil
}

func (r *PostgresRepository) ListForMember(ctx context.Context, memberID string) ([]models.FollowUp, error) {
	query := `SELECT id, member_id, assigned_to, notes, status, due_date, created_at
		FROM follow_ups WHERE member_id = $1 ORDER BY created_at DESC`
	return r.queryMany(ctx, query, memberID)
}

func (r *PostgresRepository) ListAssignedTo(ctx context.Context, userID string) ([]models.FollowUp, error) {
	query := `SELECT id, member_id, assigned_to, notes, status, due_date, created_at
		FROM follow_ups WHERE assigned_to = $1 ORDER BY created_at DESC`
	return r.queryMany(ctx, query, userID)
}

func (r *PostgresRepository) queryMany(ctx context.Context, query string, args ...any) ([]models.FollowUp, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.FollowUp
	for rows.Next() {
		var fu models.FollowUp
		if err := rows.Scan(&fu.ID, &fu.MemberID, &fu.AssignedTo, &fu.Notes, &fu.Status, &fu.DueDate, &fu.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, fu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, fu *models.FollowUp) (*models.FollowUp, error) {
	query := `
		UPDATE follow_ups
		SET assigned_to = $2, notes = $3, status = $4, due_date = $5
		WHERE id = $1
		RETURNING id, member_id, assigned_to, notes, status, due_date, created_at
	`
	out := &models.FollowUp{}
	err := r.db.QueryRowContext(ctx, query, fu.ID, fu.AssignedTo, fu.Notes, fu.Status, fu.DueDate).
		Scan(&out.ID, &out.MemberID, &out.AssignedTo, &out.Notes, &out.Status, &out.DueDate, &out.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM follow_ups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
