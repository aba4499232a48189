package repomanager

import (
	"context"
	"database/sql"

	"github.com/shepherdhq/memberd/internal/dbx"
	"github.com/shepherdhq/memberd/internal/server/repositories/cells"
	"github.com/shepherdhq/memberd/internal/server/repositories/departments"
	"github.com/shepherdhq/memberd/internal/server/repositories/followups"
	"github.com/shepherdhq/memberd/internal/server/repositories/members"
	"github.com/shepherdhq/memberd/internal/server/repositories/refreshtokens"
	"github.com/shepherdhq/memberd/internal/server/repositories/users"
	"github.com/shepherdhq/memberd/internal/server/repositories/zones"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Members(db dbx.DBTX) members.Repository
	Zones(db dbx.DBTX) zones.Repository
	Cells(db dbx.DBTX) cells.Repository
	Departments(db dbx.DBTX) departments.Repository
	FollowUps(db dbx.DBTX) followups.Repository
}
