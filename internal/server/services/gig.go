// Package services: GigService implements the diary CRUD surface. Writes
// carry client timestamps; an update only lands when it is strictly newer
// than the stored row, so replayed or stale edits fall away.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kotirearend/giglog/internal/common"
	"github.com/kotirearend/giglog/internal/datex"
	"github.com/kotirearend/giglog/internal/server/models"
	"github.com/kotirearend/giglog/internal/server/repositories/gigs"
	"github.com/kotirearend/giglog/internal/server/repositories/repomanager"
)

const (
	maxArtistTextLen = 500
	maxNotesLen      = 5000
	maxSpendItems    = 50

	// Client clocks drift; anything further ahead than this is rejected
	// rather than allowed to shadow every later edit.
	maxFutureSkew = time.Minute
)

type GigService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewGigService(db *sql.DB, m repomanager.RepositoryManager) *GigService {
	return &GigService{db: db, repomanager: m}
}

func validateGig(gig *models.Gig) error {
	if strings.TrimSpace(gig.ArtistText) == "" && strings.TrimSpace(gig.VenueNameSnapshot) == "" {
		return fmt.Errorf("%w: artist or venue required", common.ErrorValidation)
	}
	if len(gig.ArtistText) > maxArtistTextLen {
		return fmt.Errorf("%w: artist text too long", common.ErrorValidation)
	}
	if len(gig.Notes) > maxNotesLen {
		return fmt.Errorf("%w: notes too long", common.ErrorValidation)
	}
	if len(gig.Purchases) > maxSpendItems {
		return fmt.Errorf("%w: too many purchases", common.ErrorValidation)
	}
	if gig.Rating != nil && (*gig.Rating < 1 || *gig.Rating > 5) {
		return fmt.Errorf("%w: rating must be between 1 and 5", common.ErrorValidation)
	}
	return nil
}

// Create mints a server ID for the gig and stores it. The client's provisional
// ID is never persisted; the response carries the replacement.
func (s *GigService) Create(ctx context.Context, userID string, gig *models.Gig) (*models.Gig, error) {
	if err := validateGig(gig); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	gig.ID = uuid.NewString()
	gig.UserID = userID
	if gig.GigDate == "" {
		gig.GigDate = datex.NightOf(now)
	}
	if gig.CreatedAt.IsZero() {
		gig.CreatedAt = now
	}
	if gig.UpdatedAt.IsZero() {
		gig.UpdatedAt = now
	}
	if gig.UpdatedAt.After(now.Add(maxFutureSkew)) {
		return nil, fmt.Errorf("%w: timestamp too far in the future", common.ErrorValidation)
	}
	s.scrubVenueRef(ctx, userID, gig)

	if err := s.repomanager.Gigs(s.db).Upsert(ctx, gig); err != nil {
		return nil, err
	}
	return gig, nil
}

// Update applies the incoming record if it is strictly newer than the stored
// one; otherwise the stored record is returned unchanged.
func (s *GigService) Update(ctx context.Context, userID string, id string, incoming *models.Gig) (*models.Gig, error) {
	if err := validateGig(incoming); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if incoming.UpdatedAt.After(now.Add(maxFutureSkew)) {
		return nil, fmt.Errorf("%w: timestamp too far in the future", common.ErrorValidation)
	}

	repo := s.repomanager.Gigs(s.db)
	existing, err := repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !incoming.UpdatedAt.After(existing.UpdatedAt) {
		return existing, nil
	}

	incoming.ID = existing.ID
	incoming.UserID = userID
	incoming.CreatedAt = existing.CreatedAt
	s.scrubVenueRef(ctx, userID, incoming)

	if err := repo.Upsert(ctx, incoming); err != nil {
		return nil, err
	}
	return incoming, nil
}

func (s *GigService) Delete(ctx context.Context, userID string, id string) error {
	return s.repomanager.Gigs(s.db).Delete(ctx, userID, id)
}

func (s *GigService) Get(ctx context.Context, userID string, id string) (*models.Gig, error) {
	return s.repomanager.Gigs(s.db).GetByID(ctx, userID, id)
}

func (s *GigService) List(ctx context.Context, userID string, filter gigs.ListFilter) ([]*models.Gig, error) {
	return s.repomanager.Gigs(s.db).List(ctx, userID, filter)
}

// scrubVenueRef drops a venue reference the server has never seen. The name
// and city snapshots on the gig survive regardless.
func (s *GigService) scrubVenueRef(ctx context.Context, userID string, gig *models.Gig) {
	if gig.VenueID == nil || *gig.VenueID == "" {
		gig.VenueID = nil
		return
	}
	if _, err := s.repomanager.Venues(s.db).GetByID(ctx, userID, *gig.VenueID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			gig.VenueID = nil
		}
	}
}
