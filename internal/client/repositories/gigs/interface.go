package gigs

import (
	"context"

	"github.com/kotirearend/giglog/internal/client/models"
)

// Repository is the durable on-device gig collection. Pure storage; merge
// logic lives in the sync engine.
type Repository interface {
	// Upsert inserts or replaces a gig by identity. The write is atomic: a
	// reader never observes a half-written record.
	Upsert(ctx context.Context, g *models.Gig) error

	// GetByID returns a gig or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.Gig, error)

	// GetAll lists all gigs, newest gig_date first.
	GetAll(ctx context.Context) ([]models.Gig, error)

	// DeleteByID removes a gig. Deleting an absent id is a no-op.
	DeleteByID(ctx context.Context, id string) error
}
