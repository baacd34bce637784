package wallets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/walletvault/internal/common"
	"github.com/dmitrijs2005/walletvault/internal/dbx"
	"github.com/dmitrijs2005/walletvault/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, wallet *models.Wallet) error {
	query := `
		INSERT INTO wallets (id, account_id, wallet_address, encrypted_seed, kdf_salt)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query,
		wallet.ID, wallet.AccountID, wallet.WalletAddress,
		wallet.EncryptedSeed, wallet.KDFSalt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByAccountID(ctx context.Context, accountID string) (*models.Wallet, error) {
	query := `
		SELECT id, account_id, wallet_address, encrypted_seed, kdf_salt, created_at, updated_at
		FROM wallets
		WHERE account_id = $1
	`
	w := &models.Wallet{}
	err := r.db.QueryRowContext(ctx, query, accountID).Scan(
		&w.ID, &w.AccountID, &w.WalletAddress, &w.EncryptedSeed, &w.KDFSalt,
		&w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return w, nil
}

// UpdateSeed replaces the ciphertext and salt in one statement, so no
// partial write is ever observable.
func (r *PostgresRepository) UpdateSeed(ctx context.Context, accountID string, encryptedSeed string, kdfSalt []byte) error {
	query := `
		UPDATE wallets SET encrypted_seed = $2, kdf_salt = $3, updated_at = now()
		WHERE account_id = $1
	`
	res, err := r.db.ExecContext(ctx, query, accountID, encryptedSeed, kdfSalt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}
