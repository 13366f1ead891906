// Package users declares the server-side repository contract for user
// accounts.
package users

import (
	"context"

	"github.com/kotirearend/giglog/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)

	// UpdateDisplayName renames the account; not-found when no row matches.
	UpdateDisplayName(ctx context.Context, id string, displayName string) error
}
