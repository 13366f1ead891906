// Package gigs declares the server-side repository contract for gig records.
package gigs

import (
	"context"
	"time"

	"github.com/kotirearend/giglog/internal/server/models"
)

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	Year    int
	Artist  string
	VenueID string
	Search  string
}

type Repository interface {
	// Upsert writes the gig under its client-minted or server-minted ID,
	// replacing any existing row.
	Upsert(ctx context.Context, gig *models.Gig) error

	GetByID(ctx context.Context, userID string, id string) (*models.Gig, error)

	// List returns the user's gigs matching the filter, newest gig date first.
	List(ctx context.Context, userID string, filter ListFilter) ([]*models.Gig, error)

	// Delete removes a gig; it returns a not-found error when no row matches.
	Delete(ctx context.Context, userID string, id string) error

	// UpdatedSince returns gigs updated strictly after since.
	UpdatedSince(ctx context.Context, userID string, since time.Time) ([]*models.Gig, error)
}
