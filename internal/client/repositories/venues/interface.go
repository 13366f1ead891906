package venues

import (
	"context"

	"github.com/kotirearend/giglog/internal/client/models"
)

// Repository is the durable on-device venue collection.
type Repository interface {
	Upsert(ctx context.Context, v *models.Venue) error
	GetByID(ctx context.Context, id string) (*models.Venue, error)
	GetAll(ctx context.Context) ([]models.Venue, error)

	// GetPending lists venues created locally and not yet confirmed by the
	// server. They are reconciled through the batch push endpoint.
	GetPending(ctx context.Context) ([]models.Venue, error)
}
