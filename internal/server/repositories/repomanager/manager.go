package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/outreach/internal/dbx"
	"github.com/dmitrijs2005/outreach/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/outreach/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can run
// the same code against a connection pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}
