// Package refreshtokens provides a PostgreSQL-backed repository for managing
// refresh tokens used in the server's authentication flow.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/walletvault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, accountID string, token string, validity time.Duration) error
	Find(ctx context.Context, token string) (*models.RefreshToken, error)
	// Delete is idempotent: removing an absent token is not an error.
	Delete(ctx context.Context, token string) error
	// DeleteAllForAccount revokes every outstanding session of an account
	// (used by password reset).
	DeleteAllForAccount(ctx context.Context, accountID string) error
	// PurgeExpired lazily removes rows whose embedded expiry has passed.
	PurgeExpired(ctx context.Context) error
}
