package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/walletvault/internal/common"
	"github.com/dmitrijs2005/walletvault/internal/dbx"
	"github.com/dmitrijs2005/walletvault/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id, username, email, name, password_hash, wallet_address,
		phone_number, avatar_uri, country_code, calling_code, two_factor_secret,
		created_at, updated_at`

func scanAccount(row *sql.Row) (*models.Account, error) {
	a := &models.Account{}
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.Name, &a.PasswordHash,
		&a.WalletAddress, &a.PhoneNumber, &a.AvatarURI, &a.CountryCode,
		&a.CallingCode, &a.TwoFactorSecret, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

// Create inserts the account. Uniqueness of username, email, and wallet
// address is enforced by the database; violations map to common.ErrConflict.
func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (id, username, email, name, password_hash, wallet_address,
			phone_number, avatar_uri, country_code, calling_code, two_factor_secret)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		account.ID, account.Username, account.Email, account.Name,
		account.PasswordHash, account.WalletAddress, account.PhoneNumber,
		account.AvatarURI, account.CountryCode, account.CallingCode,
		account.TwoFactorSecret).Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return account, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, id))
}

// GetByIdentifier resolves a username-or-email login identifier.
func (r *PostgresRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		WHERE lower(username) = lower($1) OR lower(email) = lower($1)`
	return scanAccount(r.db.QueryRowContext(ctx, query, identifier))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE lower(email) = lower($1)`
	return scanAccount(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM accounts WHERE lower(username) = lower($1))`
	var taken bool
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&taken); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return taken, nil
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id string, passwordHash string) error {
	query := `UPDATE accounts SET password_hash = $2, updated_at = now() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}
