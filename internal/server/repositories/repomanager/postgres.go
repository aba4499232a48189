// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/shepherdhq/memberd/internal/dbx"
	"github.com/shepherdhq/memberd/internal/server/migrations"
	"github.com/shepherdhq/memberd/internal/server/repositories/cells"
	"github.com/shepherdhq/memberd/internal/server/repositories/departments"
	"github.com/shepherdhq/memberd/internal/server/repositories/followups"
	"github.com/shepherdhq/memberd/internal/server/repositories/members"
	"github.com/shepherdhq/memberd/internal/server/repositories/refreshtokens"
	"github.com/shepherdhq/memberd/internal/server/repositories/users"
	"github.com/shepherdhq/memberd/internal/server/repositories/zones"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Members(db dbx.DBTX) members.Repository {
	return members.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Zones(db dbx.DBTX) zones.Repository {
	return zones.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Cells(db dbx.DBTX) cells.Repository {
	return cells.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Departments(db dbx.DBTX) departments.Repository {
	return departments.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) FollowUps(db dbx.DBTX) followups.Repository {
	return followups.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetDialect("pgx")
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() (RepositoryManager, error) {
	return &PostgresRepositoryManager{}, nil
}
