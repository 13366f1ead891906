// Package people declares the server-side repository contract for tagged
// companions.
package people

import (
	"context"
	"time"

	"github.com/kotirearend/giglog/internal/server/models"
)

type Repository interface {
	// Upsert writes the person under its client-minted ID, replacing any
	// existing row.
	Upsert(ctx context.Context, person *models.Person) error

	GetByID(ctx context.Context, userID string, id string) (*models.Person, error)

	// FindByNickname does a case-insensitive nickname lookup.
	FindByNickname(ctx context.Context, userID string, nickname string) (*models.Person, error)

	// List returns all people for the user ordered by nickname.
	List(ctx context.Context, userID string) ([]*models.Person, error)

	// UpdatedSince returns people updated strictly after since.
	UpdatedSince(ctx context.Context, userID string, since time.Time) ([]*models.Person, error)
}
