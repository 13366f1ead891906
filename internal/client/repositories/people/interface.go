package people

import (
	"context"

	"github.com/kotirearend/giglog/internal/client/models"
)

// Repository is the durable on-device people collection.
type Repository interface {
	Upsert(ctx context.Context, p *models.Person) error
	GetByID(ctx context.Context, id string) (*models.Person, error)
	GetAll(ctx context.Context) ([]models.Person, error)

	// GetPending lists people created locally and not yet confirmed by the
	// server.
	GetPending(ctx context.Context) ([]models.Person, error)
}
