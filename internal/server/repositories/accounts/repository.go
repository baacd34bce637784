// Package accounts provides a PostgreSQL-backed repository for account rows.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/walletvault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	// GetByIdentifier looks an account up by username or email,
	// case-insensitively.
	GetByIdentifier(ctx context.Context, identifier string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	UpdatePasswordHash(ctx context.Context, id string, passwordHash string) error
}
