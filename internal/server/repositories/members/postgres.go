package members

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

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

// interests is stored as TEXT[]; it crosses the driver boundary as a
// comma-joined string so the repository stays on plain database/sql types.
const memberColumns = `id, name, email, phone, address, gender, zone_id, cell_id, status,
	conversion_status, sunday_attendance, first_visit, last_visit, conversion_date,
	prayer_request, COALESCE(array_to_string(interests, ','), ''), education_level, age_range, birth_date, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (*models.Member, error) {
	m := &models.Member{}
	var interests string
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Address, &m.Gender,
		&m.ZoneID, &m.CellID, &m.Status, &m.ConversionStatus, &m.SundayAttendance,
		&m.FirstVisit, &m.LastVisit, &m.ConversionDate, &m.PrayerRequest,
		&interests, &m.EducationLevel, &m.AgeRange, &m.BirthDate, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if interests != "" {
		m.Interests = strings.Split(interests, ",")
	}
	return m, nil
}

func (r *PostgresRepository) Create(ctx context.Context, member *models.Member) (*models.Member, error) {
	query := `
		INSERT INTO members (name, email, phone, address, gender, zone_id, cell_id, status,
			conversion_status, sunday_attendance, first_visit, last_visit, conversion_date,
			prayer_request, interests, education_level, age_range, birth_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			string_to_array(NULLIF($15, ''), ','), $16, $17, $18)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		member.Name, member.Email, member.Phone, member.Address, member.Gender,
		member.ZoneID, member.CellID, member.Status, member.ConversionStatus,
		member.SundayAttendance, member.FirstVisit, member.LastVisit, member.ConversionDate,
		member.PrayerRequest, strings.Join(member.Interests, ","),
		member.EducationLevel, member.AgeRange, member.BirthDate).
		Scan(&member.ID, &member.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return member, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	return scanMember(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE email = $1`
	return scanMember(r.db.QueryRowContext(ctx, query, email))
}

// List applies the filter as a dynamically built WHERE clause. The count
// and the page come from the same predicate so the total stays consistent
// with the rows returned.
func (r *PostgresRepository) List(ctx context.Context, filter models.MemberFilter) ([]models.Member, int, error) {
	where, args := buildFilter(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM members` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	pageQuery := fmt.Sprintf(`SELECT %s FROM members%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		memberColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, pageQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	return result, total, nil
}

func buildFilter(filter models.MemberFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != "" {
		add(`status = $%d`, filter.Status)
	}
	if filter.ConversionStatus != "" {
		add(`conversion_status = $%d`, filter.ConversionStatus)
	}
	if filter.ZoneID != "" {
		add(`zone_id = $%d`, filter.ZoneID)
	}
	if filter.CellID != "" {
		add(`cell_id = $%d`, filter.CellID)
	}
	if filter.Gender != "" {
		add(`gender = $%d`, filter.Gender)
	}
	if filter.AgeRange != "" {
		add(`age_range = $%d`, filter.AgeRange)
	}
	if filter.FirstVisitStart != nil {
		add(`first_visit >= $%d`, *filter.FirstVisitStart)
	}
	if filter.FirstVisitEnd != nil {
		add(`first_visit <= $%d`, *filter.FirstVisitEnd)
	}
	if filter.LastVisitStart != nil {
		add(`last_visit >= $%d`, *filter.LastVisitStart)
	}
	if filter.LastVisitEnd != nil {
		add(`last_visit <= $%d`, *filter.LastVisitEnd)
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(`(name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d)`, n, n, n))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PostgresRepository) Update(ctx context.Context, member *models.Member) (*models.Member, error) {
	query := `
		UPDATE members
		SET name = $2, email = $3, phone = $4, address = $5, gender = $6, zone_id = $7,
			cell_id = $8, status = $9, conversion_status = $10, sunday_attendance = $11,
			first_visit = $12, last_visit = $13, conversion_date = $14, prayer_request = $15,
			interests = string_to_array(NULLIF($16, ''), ','), education_level = $17,
			age_range = $18, birth_date = $19
		WHERE id = $1
		RETURNING ` + memberColumns
	return scanMember(r.db.QueryRowContext(ctx, query,
		member.ID, member.Name, member.Email, member.Phone, member.Address, member.Gender,
		member.ZoneID, member.CellID, member.Status, member.ConversionStatus,
		member.SundayAttendance, member.FirstVisit, member.LastVisit, member.ConversionDate,
		member.PrayerRequest, strings.Join(member.Interests, ","),
		member.EducationLevel, member.AgeRange, member.BirthDate))
}

func (r *PostgresRepository) UpdateAttendance(ctx context.Context, id string, attendance int, lastVisit time.Time, status models.MemberStatus) error {
	query := `
		UPDATE members
		SET sunday_attendance = $2, last_visit = $3, status = $4
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id, attendance, lastVisit, status); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SearchByContact(ctx context.Context, phone, email string) ([]models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members
		WHERE (NULLIF($1, '') IS NOT NULL AND phone = $1)
		   OR (NULLIF($2, '') IS NOT NULL AND email = $2)
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, phone, email)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM members WHERE id = $1`, id)
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
