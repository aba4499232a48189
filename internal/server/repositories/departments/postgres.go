package departments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/shepherdhq/memberd/internal/common"
	"github.com/shepherdhq/memberd/internal/dbx"
	"github.com/shepherdhq/memberd/internal/server/models"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, dept *models.Department) (*models.Department, error) {
	query := `
		INSERT INTO departments (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, dept.Name, dept.Description).
		Scan(&dept.ID, &dept.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return dept, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Department, error) {
	query := `SELECT id, name, description, created_at FROM departments WHERE id = $1`
	d := &models.Department{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&d.ID, &d.Name, &d.Description, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.Department, error) {
	query := `SELECT id, name, description, created_at FROM departments ORDER BY name`
	return r.queryMany(ctx, query)
}

func (r *PostgresRepository) Update(ctx context.Context, dept *models.Department) (*models.Department, error) {
	query := `
		UPDATE departments
		SET name = $2, description = $3
		WHERE id = $1
		RETURNING id, name, description, created_at
	`
	d := &models.Department{}
	err := r.db.QueryRowContext(ctx, query, dept.ID, dept.Name, dept.Description).
		Scan(&d.ID, &d.Name, &d.Description, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM departments WHERE id = $1`, id)
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

func (r *PostgresRepository) AssignMember(ctx context.Context, departmentID, memberID string) error {
	query := `
		INSERT INTO member_departments (member_id, department_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, memberID, departmentID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UnassignMember(ctx context.Context, departmentID, memberID string) error {
	query := `DELETE FROM member_departments WHERE member_id = $1 AND department_id = $2`
	res, err := r.db.ExecContext(ctx, query, memberID, departmentID)
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

func (r *PostgresRepository) ListForMember(ctx context.Context, memberID string) ([]models.Department, error) {
	query := `
		SELECT d.id, d.name, d.description, d.created_at
		FROM departments d
		JOIN member_departments md ON md.department_id = d.id
		WHERE md.member_id = $1
		ORDER BY d.name
	`
	return r.queryMany(ctx, query, memberID)
}

func (r *PostgresRepository) queryMany(ctx context.Context, query string, args ...any) ([]models.Department, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Department
	for rows.Next() {
		var d models.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
