package cells

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

func (r *PostgresRepository) Create(ctx context.Context, cell *models.Cell) (*models.Cell, error) {
	query := `
		INSERT INTO cells (name, leader_id, zone_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, cell.Name, cell.LeaderID, cell.ZoneID).
		Scan(&cell.ID, &cell.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return cell, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Cell, error) {
	query := `SELECT id, name, leader_id, zone_id, created_at FROM cells WHERE id = $1`
	c := &models.Cell{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&c.ID, &c.Name, &c.LeaderID, &c.ZoneID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.Cell, error) {
	query := `SELECT id, name, leader_id, zone_id, created_at FROM cells ORDER BY name`
	return r.queryMany(ctx, query)
}

func (r *PostgresRepository) ListByZone(ctx context.Context, zoneID string) ([]models.Cell, error) {
	query := `SELECT id, name, leader_id, zone_id, created_at FROM cells WHERE zone_id = $1 ORDER BY name`
	return r.queryMany(ctx, query, zoneID)
}

func (r *PostgresRepository) queryMany(ctx context.Context, query string, args ...any) ([]models.Cell, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Cell
	for rows.Next() {
		var c models.Cell
		if err := rows.Scan(&c.ID, &c.Name, &c.LeaderID, &c.ZoneID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, cell *models.Cell) (*models.Cell, error) {
	query := `
		UPDATE cells
		SET name = $2, leader_id = $3, zone_id = $4
		WHERE id = $1
		RETURNING id, name, leader_id, zone_id, created_at
	`
	c := &models.Cell{}
	err := r.db.QueryRowContext(ctx, query, cell.ID, cell.Name, cell.LeaderID, cell.ZoneID).
		Scan(&c.ID, &c.Name, &c.LeaderID, &c.ZoneID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cells WHERE id = $1`, id)
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
