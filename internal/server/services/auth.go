// Package services contains server-side business logic. This file implements
// AuthService: registration, login with optional second factor, token
// issuance/refresh, logout, and the password-change flow that re-encrypts
// the wallet seed.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/walletvault/internal/auth"
	"github.com/dmitrijs2005/walletvault/internal/common"
	"github.com/dmitrijs2005/walletvault/internal/cryptox"
	"github.com/dmitrijs2005/walletvault/internal/dbx"
	"github.com/dmitrijs2005/walletvault/internal/logging"
	"github.com/dmitrijs2005/walletvault/internal/server/config"
	"github.com/dmitrijs2005/walletvault/internal/server/models"
	"github.com/dmitrijs2005/walletvault/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// totpValidateOpts is the shared TOTP acceptance window: 6 digits, 30s step,
// ±1 step of clock skew.
var totpValidateOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterInput carries everything needed to create an account and its
// wallet atomically. EncryptedSeed and KDFSalt were produced client-side;
// the server never sees the plaintext seed.
type RegisterInput struct {
	Username         string
	Email            string
	Name             string
	Password         string
	WalletAddress    string
	EncryptedSeed    string
	KDFSalt          []byte
	PhoneNumber      string
	AvatarURI        string
	CountryCode      string
	CallingCode      string
	TwoFactorEnabled bool
}

// LoginResult is either a pending second-factor handshake (Requires2FA with
// PendingID set, no tokens) or a completed login (Account + Tokens).
type LoginResult struct {
	Requires2FA bool
	PendingID   string
	Account     *models.Account
	Tokens      *TokenPair
}

// AuthService provides authentication-related operations over the account,
// wallet, and refresh-token repositories.
type AuthService struct {
	db              *sql.DB
	repos           repomanager.RepositoryManager
	pending         *PendingLoginStore
	logger          logging.Logger
	accessSecret    []byte
	refreshSecret   []byte
	accessValidity  time.Duration
	refreshValidity time.Duration
	twoFactorIssuer string
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, l logging.Logger) *AuthService {
	return &AuthService{
		db:              db,
		repos:           m,
		pending:         NewPendingLoginStore(5 * time.Minute),
		logger:          l.With("module", "auth_service"),
		accessSecret:    []byte(cfg.AccessTokenSecret),
		refreshSecret:   []byte(cfg.RefreshTokenSecret),
		accessValidity:  cfg.AccessTokenValidityDuration,
		refreshValidity: cfg.RefreshTokenValidityDuration,
		twoFactorIssuer: cfg.TwoFactorIssuer,
	}
}

// Register creates the account and its wallet in one transaction. When 2FA
// enrollment is requested, the returned string is the otpauth URL for the
// generated secret; it is shown exactly once.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.Account, string, error) {
	// email is optional contact data; the wallet fields are not
	if in.Username == "" || in.Name == "" || in.Password == "" ||
		in.WalletAddress == "" || in.EncryptedSeed == "" || len(in.KDFSalt) == 0 {
		return nil, "", common.ErrInvalidInput
	}
	if len(in.Password) < minPasswordLength {
		return nil, "", common.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", common.ErrInternal
	}

	account := &models.Account{
		ID:            uuid.NewString(),
		Username:      in.Username,
		Email:         in.Email,
		Name:          in.Name,
		PasswordHash:  string(hash),
		WalletAddress: in.WalletAddress,
		PhoneNumber:   in.PhoneNumber,
		AvatarURI:     in.AvatarURI,
		CountryCode:   in.CountryCode,
		CallingCode:   in.CallingCode,
	}

	var otpauthURL string
	if in.TwoFactorEnabled {
		key, err := totp.Generate(totp.GenerateOpts{
			Issuer:      s.twoFactorIssuer,
			AccountName: in.Username,
		})
		if err != nil {
			return nil, "", common.ErrInternal
		}
		account.TwoFactorSecret = key.Secret()
		otpauthURL = key.URL()
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repos.Accounts(tx).Create(ctx, account); err != nil {
			return err
		}
		wallet := &models.Wallet{
			ID:            uuid.NewString(),
			AccountID:     account.ID,
			WalletAddress: in.WalletAddress,
			EncryptedSeed: in.EncryptedSeed,
			KDFSalt:       in.KDFSalt,
		}
		return s.repos.Wallets(tx).Create(ctx, wallet)
	}); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, "", common.ErrConflict
		}
		return nil, "", fmt.Errorf("error creating account: %w", err)
	}

	s.logger.Info(ctx, "account registered", "username", in.Username)

	return sanitizeAccount(account), otpauthURL, nil
}

// Login verifies credentials by username-or-email. Lookup failure and hash
// mismatch produce the same error, so responses do not reveal whether the
// identifier exists. Accounts with 2FA enabled get a pending reference
// instead of tokens.
func (s *AuthService) Login(ctx context.Context, identifier string, password string) (*LoginResult, error) {
	if identifier == "" || password == "" {
		return nil, common.ErrInvalidInput
	}

	account, err := s.repos.Accounts(s.db).GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, common.ErrInternal
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, common.ErrUnauthorized
	}

	if account.TwoFactorEnabled() {
		pendingID, err := s.pending.Put(account.ID)
		if err != nil {
			return nil, common.ErrInternal
		}
		return &LoginResult{Requires2FA: true, PendingID: pendingID}, nil
	}

	tokens, err := s.generateTokenPair(ctx, account.ID, s.db)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Account: sanitizeAccount(account), Tokens: tokens}, nil
}

// VerifySecondFactor completes a pending login with a TOTP code. The pending
// reference is consumed only on success; an unknown reference and a wrong
// code are indistinguishable to the caller.
func (s *AuthService) VerifySecondFactor(ctx context.Context, pendingID string, code string) (*LoginResult, error) {
	accountID, ok := s.pending.Get(pendingID)
	if !ok {
		return nil, common.ErrUnauthorized
	}

	account, err := s.repos.Accounts(s.db).GetByID(ctx, accountID)
	if err != nil {
		return nil, common.ErrInternal
	}

	valid, err := totp.ValidateCustom(code, account.TwoFactorSecret, time.Now(), totpValidateOpts)
	if err != nil || !valid {
		return nil, common.ErrUnauthorized
	}

	s.pending.Delete(pendingID)

	tokens, err := s.generateTokenPair(ctx, account.ID, s.db)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Account: sanitizeAccount(account), Tokens: tokens}, nil
}

// RefreshAccessToken verifies the refresh token cryptographically, requires
// its presence in storage (revocability), checks expiry, and mints a new
// access token. The refresh token itself is NOT rotated: concurrent
// refreshes with the same token must all succeed.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	accountID, err := auth.GetUserIDFromToken(refreshToken, s.refreshSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return "", common.ErrRefreshTokenExpired
		}
		return "", common.ErrUnauthorized
	}

	repo := s.repos.RefreshTokens(s.db)

	// Lazy purge keeps the table from accumulating dead rows; a failure here
	// must not block the refresh.
	if err := repo.PurgeExpired(ctx); err != nil {
		s.logger.Warn(ctx, "refresh token purge failed", "error", err.Error())
	}

	stored, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrUnauthorized
		}
		return "", common.ErrInternal
	}

	// Storage may lag the embedded expiry; reject either way.
	if stored.ExpiresAt.Before(time.Now()) {
		_ = repo.Delete(ctx, refreshToken)
		return "", common.ErrRefreshTokenExpired
	}

	accessToken, err := auth.GenerateToken(accountID, s.accessSecret, s.accessValidity)
	if err != nil {
		return "", common.ErrInternal
	}
	return accessToken, nil
}

// Logout deletes the stored refresh token. Idempotent: an absent token is
// not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.repos.RefreshTokens(s.db).Delete(ctx, refreshToken)
}

// ChangePassword verifies the old password, then, inside one serializable
// transaction, stores the new hash and re-encrypts the wallet seed under a
// key derived from the new password and a fresh salt. If the stored seed
// does not decrypt under the old key, the transaction aborts with
// common.ErrWalletDecryptionFailed and the password stays unchanged.
func (s *AuthService) ChangePassword(ctx context.Context, accountID string, oldPassword string, newPassword string) error {
	if oldPassword == "" || len(newPassword) < minPasswordLength {
		return common.ErrInvalidInput
	}

	account, err := s.repos.Accounts(s.db).GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrUnauthorized
		}
		return common.ErrInternal
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(oldPassword)) != nil {
		return common.ErrUnauthorized
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return common.ErrInternal
	}

	err = dbx.WithSerializableTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		wallet, err := s.repos.Wallets(tx).GetByAccountID(ctx, accountID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				// No wallet yet: only the hash changes.
				return s.repos.Accounts(tx).UpdatePasswordHash(ctx, accountID, string(newHash))
			}
			return err
		}

		oldKey := cryptox.DeriveKey([]byte(oldPassword), wallet.KDFSalt)
		defer common.WipeByteArray(oldKey)

		seed, ok := cryptox.DecryptSeed(wallet.EncryptedSeed, oldKey)
		if !ok {
			return common.ErrWalletDecryptionFailed
		}

		newSalt := common.GenerateRandByteArray(cryptox.KDFSaltSize)
		newKey := cryptox.DeriveKey([]byte(newPassword), newSalt)
		defer common.WipeByteArray(newKey)

		reencrypted, err := cryptox.EncryptSeed(seed, newKey)
		if err != nil {
			return err
		}

		if err := s.repos.Accounts(tx).UpdatePasswordHash(ctx, accountID, string(newHash)); err != nil {
			return err
		}
		return s.repos.Wallets(tx).UpdateSeed(ctx, accountID, reencrypted, newSalt)
	})
	if err != nil {
		if errors.Is(err, common.ErrWalletDecryptionFailed) {
			s.logger.Error(ctx, "stored seed failed to decrypt during password change", "account_id", accountID)
			return common.ErrWalletDecryptionFailed
		}
		return fmt.Errorf("password change failed: %w", err)
	}

	s.logger.Info(ctx, "password changed", "account_id", accountID)
	return nil
}

// CheckUsername reports whether a username is free (case-insensitive).
func (s *AuthService) CheckUsername(ctx context.Context, username string) (bool, error) {
	if username == "" {
		return false, common.ErrInvalidInput
	}
	taken, err := s.repos.Accounts(s.db).UsernameTaken(ctx, username)
	if err != nil {
		return false, common.ErrInternal
	}
	return !taken, nil
}

// --- helpers below ---

func (s *AuthService) generateTokenPair(ctx context.Context, accountID string, db dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(accountID, s.accessSecret, s.accessValidity)
	if err != nil {
		return nil, common.ErrInternal
	}
	refresh, err := auth.GenerateToken(accountID, s.refreshSecret, s.refreshValidity)
	if err != nil {
		return nil, common.ErrInternal
	}
	if err := s.repos.RefreshTokens(db).Create(ctx, accountID, refresh, s.refreshValidity); err != nil {
		return nil, common.ErrInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// sanitizeAccount strips the password hash and the 2FA secret before an
// account leaves the service layer.
func sanitizeAccount(a *models.Account) *models.Account {
	out := *a
	out.PasswordHash = ""
	out.TwoFactorSecret = ""
	return &out
}
