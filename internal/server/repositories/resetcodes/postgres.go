package resetcodes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

func (r *PostgresRepository) Create(ctx context.Context, accountID string, code string, validity time.Duration) error {
	query := `
		INSERT INTO reset_codes (account_id, code, expires_at)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, accountID, code, time.Now().Add(validity)); err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	return nil
}

func (r *PostgresRepository) FindLatestActive(ctx context.Context, accountID string) (*models.PasswordResetCode, error) {
	query := `
		SELECT id, account_id, code, created_at, expires_at
		FROM reset_codes
		WHERE account_id = $1 AND expires_at > now()
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.scanCode(r.db.QueryRowContext(ctx, query, accountID))
}

func (r *PostgresRepository) FindByAccountAndCode(ctx context.Context, accountID string, code string) (*models.PasswordResetCode, error) {
	query := `
		SELECT id, account_id, code, created_at, expires_at
		FROM reset_codes
		WHERE account_id = $1 AND code = $2 AND expires_at > now()
	`
	return r.scanCode(r.db.QueryRowContext(ctx, query, accountID, code))
}

func (r *PostgresRepository) AttachTicket(ctx context.Context, codeID string, ticket string, validity time.Duration) error {
	query := `
		UPDATE reset_codes SET ticket = $2, ticket_expires_at = $3
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, codeID, ticket, time.Now().Add(validity))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// ConsumeTicket clears the ticket in the same statement that reads it, so
// concurrent reset attempts cannot both claim it.
func (r *PostgresRepository) ConsumeTicket(ctx context.Context, ticket string) (string, error) {
	query := `
		UPDATE reset_codes SET ticket = '', ticket_expires_at = NULL
		WHERE ticket = $1 AND ticket <> '' AND ticket_expires_at > now()
		RETURNING account_id
	`
	var accountID string
	if err := r.db.QueryRowContext(ctx, query, ticket).Scan(&accountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrResetCodeInvalid
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return accountID, nil
}

func (r *PostgresRepository) DeleteAllForAccount(ctx context.Context, accountID string) error {
	query := `
		DELETE FROM reset_codes
		WHERE account_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, accountID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) PurgeExpired(ctx context.Context) error {
	query := `
		DELETE FROM reset_codes
		WHERE expires_at < now() AND (ticket = '' OR ticket_expires_at < now())
	`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) scanCode(row *sql.Row) (*models.PasswordResetCode, error) {
	c := &models.PasswordResetCode{}
	if err := row.Scan(&c.ID, &c.AccountID, &c.Code, &c.CreatedAt, &c.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}
