package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kotirearend/giglog/internal/client/models"
	"github.com/kotirearend/giglog/internal/client/repositories/people"
	"github.com/kotirearend/giglog/internal/client/repositories/venues"
	"github.com/kotirearend/giglog/internal/common"
)

const maxNicknameLen = 100

// LibraryService manages the reusable venue and people records gigs refer
// to. Identities are minted on the device and adopted by the server, so a
// record is usable offline the moment it is created.
type LibraryService interface {
	AddVenue(ctx context.Context, name, city string, lat, lng *float64) (*models.Venue, error)
	Venues(ctx context.Context) ([]models.Venue, error)

	AddPerson(ctx context.Context, nickname, emoji string) (*models.Person, error)
	People(ctx context.Context) ([]models.Person, error)
}

type libraryService struct {
	venueRepo  venues.Repository
	personRepo people.Repository
	now        func() time.Time
}

func NewLibraryService(venueRepo venues.Repository, personRepo people.Repository) LibraryService {
	return &libraryService{venueRepo: venueRepo, personRepo: personRepo, now: time.Now}
}

func (s *libraryService) AddVenue(ctx context.Context, name, city string, lat, lng *float64) (*models.Venue, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: venue name is required", common.ErrorValidation)
	}

	now := s.now().UTC()
	v := &models.Venue{
		ID:        uuid.NewString(),
		Name:      name,
		City:      strings.TrimSpace(city),
		Lat:       lat,
		Lng:       lng,
		Source:    models.VenueSourceManual,
		Pending:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.venueRepo.Upsert(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to save venue: %w", err)
	}
	return v, nil
}

func (s *libraryService) Venues(ctx context.Context) ([]models.Venue, error) {
	return s.venueRepo.GetAll(ctx)
}

func (s *libraryService) AddPerson(ctx context.Context, nickname, emoji string) (*models.Person, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, fmt.Errorf("%w: nickname is required", common.ErrorValidation)
	}
	if len(nickname) > maxNicknameLen {
		return nil, fmt.Errorf("%w: nickname is too long", common.ErrorValidation)
	}

	existing, err := s.personRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range existing {
		if strings.EqualFold(p.Nickname, nickname) {
			return nil, fmt.Errorf("%w: someone is already called %q", common.ErrorConflict, nickname)
		}
	}

	p := &models.Person{
		ID:        uuid.NewString(),
		Nickname:  nickname,
		Emoji:     emoji,
		Pending:   true,
		CreatedAt: s.now().UTC(),
	}
	if err := s.personRepo.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save person: %w", err)
	}
	return p, nil
}

func (s *libraryService) People(ctx context.Context) ([]models.Person, error) {
	return s.personRepo.GetAll(ctx)
}
