// Package venues declares the server-side repository contract for venues.
package venues

import (
	"context"
	"time"

	"github.com/kotirearend/giglog/internal/server/models"
)

type Repository interface {
	// Upsert writes the venue under its client-minted ID, replacing any
	// existing row.
	Upsert(ctx context.Context, venue *models.Venue) error

	GetByID(ctx context.Context, userID string, id string) (*models.Venue, error)

	// List returns the user's venues ordered by name. A non-empty search
	// narrows by name or city, case-insensitively.
	List(ctx context.Context, userID string, search string) ([]*models.Venue, error)

	// UpdatedSince returns venues updated strictly after since.
	UpdatedSince(ctx context.Context, userID string, since time.Time) ([]*models.Venue, error)
}
