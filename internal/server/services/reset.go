package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/walletvault/internal/common"
	"github.com/dmitrijs2005/walletvault/internal/dbx"
	"github.com/dmitrijs2005/walletvault/internal/logging"
	"github.com/dmitrijs2005/walletvault/internal/mail"
	"github.com/dmitrijs2005/walletvault/internal/server/config"
	"github.com/dmitrijs2005/walletvault/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

const resetTicketBytes = 32

// ResetService implements the forgot-password flow: a mailed 6-digit code,
// verification of that code into a single-use ticket, and the final password
// replacement. Resetting never touches the wallet; the seed stays encrypted
// under the old password until the client re-seals it.
type ResetService struct {
	db             *sql.DB
	repos          repomanager.RepositoryManager
	mailer         mail.Mailer
	logger         logging.Logger
	codeValidity   time.Duration
	cooldown       time.Duration
	ticketValidity time.Duration
}

func NewResetService(db *sql.DB, m repomanager.RepositoryManager, mailer mail.Mailer, cfg *config.Config, l logging.Logger) *ResetService {
	return &ResetService{
		db:             db,
		repos:          m,
		mailer:         mailer,
		logger:         l.With("module", "reset_service"),
		codeValidity:   cfg.ResetCodeValidityDuration,
		cooldown:       cfg.ResetCooldownDuration,
		ticketValidity: cfg.ResetTicketValidityDuration,
	}
}

// RequestReset generates a 6-digit code for the account behind the email and
// mails it. An unknown email returns nil so responses do not reveal whether
// an account exists; a request inside the cooldown window returns
// common.ErrRateLimited.
func (s *ResetService) RequestReset(ctx context.Context, email string) error {
	if email == "" {
		return common.ErrInvalidInput
	}

	account, err := s.repos.Accounts(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Debug(ctx, "reset requested for unknown email")
			return nil
		}
		return common.ErrInternal
	}

	codes := s.repos.ResetCodes(s.db)

	if err := codes.PurgeExpired(ctx); err != nil {
		s.logger.Warn(ctx, "reset code purge failed", "error", err.Error())
	}

	if latest, err := codes.FindLatestActive(ctx, account.ID); err == nil {
		if time.Since(latest.CreatedAt) < s.cooldown {
			return common.ErrRateLimited
		}
	} else if !errors.Is(err, common.ErrNotFound) {
		return common.ErrInternal
	}

	code, err := common.MakeNumericCode(6)
	if err != nil {
		return common.ErrInternal
	}

	if err := codes.Create(ctx, account.ID, code, s.codeValidity); err != nil {
		return common.ErrInternal
	}

	// Delivery must not delay or fail the HTTP response; the request context
	// is about to end, so the send gets its own.
	go func(to, code string) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		body := fmt.Sprintf("Your password reset code is %s. It expires in %d minutes.",
			code, int(s.codeValidity.Minutes()))
		if err := s.mailer.Send(ctx, to, "Password reset code", body); err != nil {
			s.logger.Error(ctx, "reset mail delivery failed", "error", err.Error())
		}
	}(account.Email, code)

	return nil
}

// VerifyResetCode checks the mailed code and mints a single-use reset ticket.
// Wrong email, wrong code, and expired code all collapse into
// common.ErrResetCodeInvalid.
func (s *ResetService) VerifyResetCode(ctx context.Context, email string, code string) (string, error) {
	if email == "" || code == "" {
		return "", common.ErrInvalidInput
	}

	account, err := s.repos.Accounts(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrResetCodeInvalid
		}
		return "", common.ErrInternal
	}

	codes := s.repos.ResetCodes(s.db)

	rc, err := codes.FindByAccountAndCode(ctx, account.ID, code)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrResetCodeInvalid
		}
		return "", common.ErrInternal
	}

	ticket, err := common.MakeRandHexString(resetTicketBytes)
	if err != nil {
		return "", common.ErrInternal
	}

	if err := codes.AttachTicket(ctx, rc.ID, ticket, s.ticketValidity); err != nil {
		return "", common.ErrInternal
	}

	return ticket, nil
}

// ResetPassword consumes the ticket and replaces the password hash. All
// outstanding reset codes and refresh tokens for the account are dropped in
// the same transaction, so old sessions cannot survive a reset. The wallet
// row is untouched: the client must re-seal the seed afterwards.
func (s *ResetService) ResetPassword(ctx context.Context, ticket string, newPassword string) error {
	if ticket == "" || len(newPassword) < minPasswordLength {
		return common.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return common.ErrInternal
	}

	var accountID string
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		id, err := s.repos.ResetCodes(tx).ConsumeTicket(ctx, ticket)
		if err != nil {
			return err
		}
		accountID = id

		if err := s.repos.Accounts(tx).UpdatePasswordHash(ctx, id, string(hash)); err != nil {
			return err
		}
		if err := s.repos.ResetCodes(tx).DeleteAllForAccount(ctx, id); err != nil {
			return err
		}
		return s.repos.RefreshTokens(tx).DeleteAllForAccount(ctx, id)
	})
	if err != nil {
		if errors.Is(err, common.ErrResetCodeInvalid) {
			return common.ErrResetCodeInvalid
		}
		return common.ErrInternal
	}

	s.logger.Warn(ctx, "password reset completed, seed recovery required", "account_id", accountID)
	return nil
}
