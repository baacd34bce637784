// Package wallets provides a PostgreSQL-backed repository for the single
// encrypted-seed blob each account owns.
package wallets

import (
	"context"

	"github.com/dmitrijs2005/walletvault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, wallet *models.Wallet) error
	GetByAccountID(ctx context.Context, accountID string) (*models.Wallet, error)
	// UpdateSeed atomically replaces the ciphertext and its KDF salt.
	UpdateSeed(ctx context.Context, accountID string, encryptedSeed string, kdfSalt []byte) error
}
