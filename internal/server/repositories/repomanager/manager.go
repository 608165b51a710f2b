package repomanager

import (
	"context"
	"database/sql"

	"assistant-service/internal/dbx"
	"assistant-service/internal/server/repositories/refreshtokens"
	"assistant-service/internal/server/repositories/revokedtokens"
	"assistant-service/internal/server/repositories/tasks"
	"assistant-service/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can use
// the same constructors with either a plain connection or a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	RevokedTokens(db dbx.DBTX) revokedtokens.Repository
	Tasks(db dbx.DBTX) tasks.Repository
}
