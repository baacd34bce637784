package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/walletvault/internal/dbx"
	"github.com/dmitrijs2005/walletvault/internal/server/migrations"
	"github.com/dmitrijs2005/walletvault/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/walletvault/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/walletvault/internal/server/repositories/resetcodes"
	"github.com/dmitrijs2005/walletvault/internal/server/repositories/wallets"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct{}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Wallets(db dbx.DBTX) wallets.Repository {
	return wallets.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) ResetCodes(db dbx.DBTX) resetcodes.Repository {
	return resetcodes.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the given database.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}
