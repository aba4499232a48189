package zones

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

func (r *PostgresRepository) Create(ctx context.Context, zone *models.Zone) (*models.Zone, error) {
	query := `
		INSERT INTO zones (name, description, coordinator_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, zone.Name, zone.Description, zone.CoordinatorID).
		Scan(&zone.ID, &zone.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return zone, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Zone, error) {
	query := `SELECT id, name, description, coordinator_id, created_at FROM zones WHERE id = $1`
	z := &models.Zone{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&z.ID, &z.Name, &z.Description, &z.CoordinatorID, &z.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return z, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.Zone, error) {
	query := `SELECT id, name, description, coordinator_id, created_at FROM zones ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Zone
	for rows.Next() {
		var z models.Zone
		if err := rows.Scan(&z.ID, &z.Name, &z.Description, &z.CoordinatorID, &z.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, zone *models.Zone) (*models.Zone, error) {
	query := `
		UPDATE zones
		SET name = $2, description = $3, coordinator_id = $4
		WHERE id = $1
		RETURNING id, name, description, coordinator_id, created_at
	`
	z := &models.Zone{}
	err := r.db.QueryRowContext(ctx, query, zone.ID, zone.Name, zone.Description, zone.CoordinatorID).
		Scan(&z.ID, &z.Name, &z.Description, &z.CoordinatorID, &z.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return z, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM zones WHERE id = $1`, id)
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
