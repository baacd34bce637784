package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/walletvault/internal/common"
	"github.com/dmitrijs2005/walletvault/internal/cryptox"
	"github.com/dmitrijs2005/walletvault/internal/logging"
	"github.com/dmitrijs2005/walletvault/internal/server/models"
	"github.com/dmitrijs2005/walletvault/internal/server/repositories/repomanager"
)

// WalletService exposes the encrypted wallet blob to its owner. The server
// stores and returns ciphertext only; decryption happens on the client.
type WalletService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	logger logging.Logger
}

func NewWalletService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *WalletService {
	return &WalletService{db: db, repos: m, logger: l.With("module", "wallet_service")}
}

// Get returns the account's wallet record, encrypted seed and KDF salt included.
func (s *WalletService) Get(ctx context.Context, accountID string) (*models.Wallet, error) {
	wallet, err := s.repos.Wallets(s.db).GetByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}
	return wallet, nil
}

// PutSeed replaces the stored ciphertext and salt with values the client
// re-sealed, typically after seed recovery following a password reset.
func (s *WalletService) PutSeed(ctx context.Context, accountID string, encryptedSeed string, kdfSalt []byte) error {
	if encryptedSeed == "" || len(kdfSalt) != cryptox.KDFSaltSize {
		return common.ErrInvalidInput
	}

	if err := s.repos.Wallets(s.db).UpdateSeed(ctx, accountID, encryptedSeed, kdfSalt); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return common.ErrInternal
	}

	s.logger.Info(ctx, "wallet seed replaced", "account_id", accountID)
	return nil
}
