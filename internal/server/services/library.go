// Package services: LibraryService exposes the user's venue and person
// libraries. Most writes arrive through the sync merge; the direct create
// and update endpoints serve clients without a local store.
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
	"github.com/kotirearend/giglog/internal/server/models"
	"github.com/kotirearend/giglog/internal/server/repositories/repomanager"
)

const maxNicknameLen = 100

type LibraryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewLibraryService(db *sql.DB, m repomanager.RepositoryManager) *LibraryService {
	return &LibraryService{db: db, repomanager: m}
}

func (s *LibraryService) Venues(ctx context.Context, userID string, search string) ([]*models.Venue, error) {
	return s.repomanager.Venues(s.db).List(ctx, userID, search)
}

func (s *LibraryService) People(ctx context.Context, userID string) ([]*models.Person, error) {
	return s.repomanager.People(s.db).List(ctx, userID)
}

// CreateVenue mints a server ID for the venue and stores it.
func (s *LibraryService) CreateVenue(ctx context.Context, userID string, venue *models.Venue) (*models.Venue, error) {
	venue.Name = strings.TrimSpace(venue.Name)
	if venue.Name == "" {
		return nil, fmt.Errorf("%w: venue name required", common.ErrorValidation)
	}
	if venue.Source == "" {
		venue.Source = "manual"
	}

	now := time.Now().UTC()
	venue.ID = uuid.NewString()
	venue.UserID = userID
	venue.CreatedAt = now
	venue.UpdatedAt = now

	if err := s.repomanager.Venues(s.db).Upsert(ctx, venue); err != nil {
		return nil, err
	}
	return venue, nil
}

// CreatePerson mints a server ID for the person. Nicknames are unique per
// user, compared case-insensitively.
func (s *LibraryService) CreatePerson(ctx context.Context, userID string, person *models.Person) (*models.Person, error) {
	if err := s.validateNickname(ctx, userID, person.Nickname, ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	person.ID = uuid.NewString()
	person.UserID = userID
	person.Nickname = strings.TrimSpace(person.Nickname)
	person.CreatedAt = now
	person.UpdatedAt = now

	if err := s.repomanager.People(s.db).Upsert(ctx, person); err != nil {
		return nil, err
	}
	return person, nil
}

// UpdatePerson renames a person or changes their emoji.
func (s *LibraryService) UpdatePerson(ctx context.Context, userID string, id string, incoming *models.Person) (*models.Person, error) {
	if err := s.validateNickname(ctx, userID, incoming.Nickname, id); err != nil {
		return nil, err
	}

	repo := s.repomanager.People(s.db)
	existing, err := repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	existing.Nickname = strings.TrimSpace(incoming.Nickname)
	existing.Emoji = incoming.Emoji
	existing.UpdatedAt = time.Now().UTC()

	if err := repo.Upsert(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// validateNickname checks shape and per-user uniqueness. selfID exempts the
// row being renamed from the uniqueness check.
func (s *LibraryService) validateNickname(ctx context.Context, userID string, nickname string, selfID string) error {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return fmt.Errorf("%w: nickname required", common.ErrorValidation)
	}
	if len(nickname) > maxNicknameLen {
		return fmt.Errorf("%w: nickname too long", common.ErrorValidation)
	}
	existing, err := s.repomanager.People(s.db).FindByNickname(ctx, userID, nickname)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return fmt.Errorf("%w: nickname already in use", common.ErrorConflict)
	}
	return nil
}
