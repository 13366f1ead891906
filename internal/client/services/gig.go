package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kotirearend/giglog/internal/client/models"
	"github.com/kotirearend/giglog/internal/client/repositories/gigs"
	"github.com/kotirearend/giglog/internal/client/repositories/queue"
	"github.com/kotirearend/giglog/internal/client/repositories/venues"
	"github.com/kotirearend/giglog/internal/common"
	"github.com/kotirearend/giglog/internal/datex"
)

// Validation limits, matching what the server enforces.
const (
	maxArtistTextLen = 500
	maxNotesLen      = 5000
	maxSpendItems    = 50
)

// GigService is the local-first gig diary. Every write lands in the
// on-device store immediately and is queued for the sync engine; nothing
// here waits on the network.
type GigService interface {
	Add(ctx context.Context, g models.Gig) (*models.Gig, error)
	Update(ctx context.Context, g models.Gig) (*models.Gig, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.Gig, error)
	List(ctx context.Context) ([]models.Gig, error)

	// AttachPhoto records an uploaded photo's storage key on the gig.
	AttachPhoto(ctx context.Context, id string, key string) (*models.Gig, error)
}

type gigService struct {
	gigRepo   gigs.Repository
	venueRepo venues.Repository
	queueRepo queue.Repository
	now       func() time.Time
}

func NewGigService(gigRepo gigs.Repository, venueRepo venues.Repository, queueRepo queue.Repository) GigService {
	return &gigService{gigRepo: gigRepo, venueRepo: venueRepo, queueRepo: queueRepo, now: time.Now}
}

func validateGig(g *models.Gig) error {
	if g.ArtistText == "" && g.VenueNameSnapshot == "" {
		return fmt.Errorf("%w: a gig needs at least an artist or a venue", common.ErrorValidation)
	}
	if len(g.ArtistText) > maxArtistTextLen {
		return fmt.Errorf("%w: artist text is too long", common.ErrorValidation)
	}
	if len(g.Notes) > maxNotesLen {
		return fmt.Errorf("%w: notes are too long", common.ErrorValidation)
	}
	if len(g.SpendItems) > maxSpendItems {
		return fmt.Errorf("%w: too many purchases", common.ErrorValidation)
	}
	if g.Rating != nil && (*g.Rating < 1 || *g.Rating > 5) {
		return fmt.Errorf("%w: rating must be between 1 and 5", common.ErrorValidation)
	}
	return nil
}

// normalize fills derived fields: the night-of date when none is given and
// the spend total from the itemized purchases.
func (s *gigService) normalize(ctx context.Context, g *models.Gig, now time.Time) error {
	if g.GigDate == "" {
		g.GigDate = datex.NightOf(now)
	}
	if len(g.SpendItems) > 0 && g.SpendTotal == nil {
		var total float64
		for _, item := range g.SpendItems {
			total += item.Amount
		}
		g.SpendTotal = &total
	}
	if g.VenueID != "" && g.VenueNameSnapshot == "" {
		v, err := s.venueRepo.GetByID(ctx, g.VenueID)
		if err == nil {
			g.VenueNameSnapshot = v.Name
			g.VenueCitySnapshot = v.City
		}
	}
	return nil
}

func (s *gigService) enqueue(ctx context.Context, kind models.MutationKind, g *models.Gig, now time.Time) error {
	payload, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to snapshot gig: %w", err)
	}
	if _, err := s.queueRepo.Enqueue(ctx, kind, g.ID, payload, now); err != nil {
		return fmt.Errorf("failed to queue mutation: %w", err)
	}
	return nil
}

func (s *gigService) Add(ctx context.Context, g models.Gig) (*models.Gig, error) {
	now := s.now().UTC()
	if g.ID == "" {
		g.ID = models.NewLocalID(now)
	}
	g.CreatedAt = now
	g.UpdatedAt = now

	if err := s.normalize(ctx, &g, now); err != nil {
		return nil, err
	}
	if err := validateGig(&g); err != nil {
		return nil, err
	}

	if err := s.gigRepo.Upsert(ctx, &g); err != nil {
		return nil, fmt.Errorf("failed to save gig: %w", err)
	}
	if err := s.enqueue(ctx, models.MutationCreateGig, &g, now); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *gigService) Update(ctx context.Context, g models.Gig) (*models.Gig, error) {
	existing, err := s.gigRepo.GetByID(ctx, g.ID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	g.CreatedAt = existing.CreatedAt
	g.UpdatedAt = existing.UpdatedAt
	g.Touch(now)

	if err := s.normalize(ctx, &g, now); err != nil {
		return nil, err
	}
	if err := validateGig(&g); err != nil {
		return nil, err
	}

	if err := s.gigRepo.Upsert(ctx, &g); err != nil {
		return nil, fmt.Errorf("failed to save gig: %w", err)
	}
	if err := s.enqueue(ctx, models.MutationUpdateGig, &g, now); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *gigService) Delete(ctx context.Context, id string) error {
	if err := s.gigRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete gig: %w", err)
	}
	now := s.now().UTC()
	// The payload carries only the identity; that is all a delete needs,
	// and it keeps the queue retargetable.
	payload, err := json.Marshal(map[string]string{"id": id})
	if err != nil {
		return fmt.Errorf("failed to snapshot delete: %w", err)
	}
	if _, err := s.queueRepo.Enqueue(ctx, models.MutationDeleteGig, id, payload, now); err != nil {
		return fmt.Errorf("failed to queue mutation: %w", err)
	}
	return nil
}

func (s *gigService) AttachPhoto(ctx context.Context, id string, key string) (*models.Gig, error) {
	existing, err := s.gigRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	g := *existing
	g.PhotoIDs = append(append([]string(nil), g.PhotoIDs...), key)
	now := s.now().UTC()
	g.Touch(now)

	if err := s.gigRepo.Upsert(ctx, &g); err != nil {
		return nil, fmt.Errorf("failed to save gig: %w", err)
	}
	if err := s.enqueue(ctx, models.MutationUpdateGig, &g, now); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *gigService) Get(ctx context.Context, id string) (*models.Gig, error) {
	return s.gigRepo.GetByID(ctx, id)
}

func (s *gigService) List(ctx context.Context) ([]models.Gig, error) {
	return s.gigRepo.GetAll(ctx)
}
