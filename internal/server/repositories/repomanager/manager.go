package repomanager

import (
	"context"
	"database/sql"

	"github.com/mpetrenko/accountd/internal/dbx"
	"github.com/mpetrenko/accountd/internal/server/repositories/loginrecords"
	"github.com/mpetrenko/accountd/internal/server/repositories/profiles"
	"github.com/mpetrenko/accountd/internal/server/repositories/refreshtokens"
	"github.com/mpetrenko/accountd/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can run
// the same repository code on a plain connection or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	LoginRecords(db dbx.DBTX) loginrecords.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
