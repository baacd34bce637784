// Package repomanager provides repository factories for the server,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/walletvault/internal/dbx"
	"github.com/dmitrijs2005/walletvault/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/walletvault/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/walletvault/internal/server/repositories/resetcodes"
	"github.com/dmitrijs2005/walletvault/internal/server/repositories/wallets"
)

// RepositoryManager hands out repositories bound to a DBTX, so services can
// run any subset of them inside one transaction.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Wallets(db dbx.DBTX) wallets.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	ResetCodes(db dbx.DBTX) resetcodes.Repository
}
