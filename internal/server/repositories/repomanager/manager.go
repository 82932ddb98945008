package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/trazo/internal/dbx"
	"github.com/dmitrijs2005/trazo/internal/server/repositories/audits"
	"github.com/dmitrijs2005/trazo/internal/server/repositories/claims"
	"github.com/dmitrijs2005/trazo/internal/server/repositories/establishments"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Claims(db dbx.DBTX) claims.Repository
	Audits(db dbx.DBTX) audits.Repository
	Establishments(db dbx.DBTX) establishments.Repository
}
