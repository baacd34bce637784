// Package resetcodes provides a PostgreSQL-backed repository for one-time
// password-reset codes and the single-use tickets minted when a code is
// verified.
package resetcodes

import (
	"context"
	"time"

	"github.com/dmitrijs2005/walletvault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, accountID string, code string, validity time.Duration) error
	// FindLatestActive returns the newest unexpired code for the account,
	// used for the request cooldown check.
	FindLatestActive(ctx context.Context, accountID string) (*models.PasswordResetCode, error)
	// FindByAccountAndCode matches an unexpired code.
	FindByAccountAndCode(ctx context.Context, accountID string, code string) (*models.PasswordResetCode, error)
	// AttachTicket stores a single-use reset ticket on a verified code row.
	AttachTicket(ctx context.Context, codeID string, ticket string, validity time.Duration) error
	// ConsumeTicket atomically claims an unexpired ticket and returns the
	// owning account id. A second call with the same ticket fails with
	// common.ErrResetCodeInvalid.
	ConsumeTicket(ctx context.Context, ticket string) (string, error)
	DeleteAllForAccount(ctx context.Context, accountID string) error
	PurgeExpired(ctx context.Context) error
}
