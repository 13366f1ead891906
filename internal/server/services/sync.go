// Package services: SyncService implements the batch merge and delta-pull
// surface the offline client drains its queue against.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kotirearend/giglog/internal/common"
	"github.com/kotirearend/giglog/internal/dbx"
	"github.com/kotirearend/giglog/internal/server/models"
	"github.com/kotirearend/giglog/internal/server/repositories/repomanager"
)

// pushBatchLimit caps each record type in a single push.
const pushBatchLimit = 100

// PushBatch is one client upload. IDs are client-minted and adopted as-is.
type PushBatch struct {
	Gigs   []*models.Gig
	Venues []*models.Venue
	People []*models.Person
}

// PullResult is everything of the user's that changed after a checkpoint.
type PullResult struct {
	Gigs   []*models.Gig
	Venues []*models.Venue
	People []*models.Person
}

type SyncService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewSyncService(db *sql.DB, m repomanager.RepositoryManager) *SyncService {
	return &SyncService{db: db, repomanager: m}
}

// Push merges a batch of client records. Per record the incoming version
// wins only when strictly newer than the stored one; unseen IDs are adopted.
// Malformed and clock-skewed records are skipped, never errored, so one bad
// record cannot hold back the rest of the batch. Only an oversize batch is
// rejected outright. The whole batch lands in one transaction.
func (s *SyncService) Push(ctx context.Context, userID string, batch *PushBatch) error {
	if len(batch.Gigs) > pushBatchLimit || len(batch.Venues) > pushBatchLimit || len(batch.People) > pushBatchLimit {
		return fmt.Errorf("%w: batch exceeds %d records per type", common.ErrorValidation, pushBatchLimit)
	}

	now := time.Now().UTC()
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.mergeVenues(ctx, tx, userID, now, batch.Venues); err != nil {
			return err
		}
		if err := s.mergePeople(ctx, tx, userID, now, batch.People); err != nil {
			return err
		}
		return s.mergeGigs(ctx, tx, userID, now, batch.Gigs)
	})
}

// Pull returns all records updated strictly after since.
func (s *SyncService) Pull(ctx context.Context, userID string, since time.Time) (*PullResult, error) {
	gigs, err := s.repomanager.Gigs(s.db).UpdatedSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	venues, err := s.repomanager.Venues(s.db).UpdatedSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	people, err := s.repomanager.People(s.db).UpdatedSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	return &PullResult{Gigs: gigs, Venues: venues, People: people}, nil
}

func (s *SyncService) mergeVenues(ctx context.Context, tx dbx.DBTX, userID string, now time.Time, incoming []*models.Venue) error {
	repo := s.repomanager.Venues(tx)
	horizon := now.Add(maxFutureSkew)
	for _, venue := range incoming {
		if venue.ID == "" || strings.TrimSpace(venue.Name) == "" {
			continue
		}
		venue.UserID = userID
		if venue.CreatedAt.IsZero() {
			venue.CreatedAt = now
		}
		if venue.UpdatedAt.IsZero() {
			venue.UpdatedAt = now
		}
		existing, err := repo.GetByID(ctx, userID, venue.ID)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		if existing != nil {
			// A clock too far ahead must not shadow every later edit.
			if venue.UpdatedAt.After(horizon) || !venue.UpdatedAt.After(existing.UpdatedAt) {
				continue
			}
		}
		if err := repo.Upsert(ctx, venue); err != nil {
			return err
		}
	}
	return nil
}

func (s *SyncService) mergePeople(ctx context.Context, tx dbx.DBTX, userID string, now time.Time, incoming []*models.Person) error {
	repo := s.repomanager.People(tx)
	for _, person := range incoming {
		person.Nickname = strings.TrimSpace(person.Nickname)
		if person.ID == "" || person.Nickname == "" || len(person.Nickname) > maxNicknameLen {
			continue
		}
		person.UserID = userID
		if person.CreatedAt.IsZero() {
			person.CreatedAt = now
		}
		person.UpdatedAt = now

		// A nickname already on file under another ID keeps its row; the
		// pull phase hands that row back to the client.
		byNickname, err := repo.FindByNickname(ctx, userID, person.Nickname)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		if byNickname != nil && byNickname.ID != person.ID {
			continue
		}
		if err := repo.Upsert(ctx, person); err != nil {
			return err
		}
	}
	return nil
}

func (s *SyncService) mergeGigs(ctx context.Context, tx dbx.DBTX, userID string, now time.Time, incoming []*models.Gig) error {
	repo := s.repomanager.Gigs(tx)
	horizon := now.Add(maxFutureSkew)
	for _, gig := range incoming {
		if gig.ID == "" || validateGig(gig) != nil {
			continue
		}
		gig.UserID = userID
		if gig.CreatedAt.IsZero() {
			gig.CreatedAt = now
		}
		if gig.UpdatedAt.IsZero() {
			gig.UpdatedAt = now
		}
		existing, err := repo.GetByID(ctx, userID, gig.ID)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		if existing != nil {
			if gig.UpdatedAt.After(horizon) || !gig.UpdatedAt.After(existing.UpdatedAt) {
				continue
			}
		}
		if err := repo.Upsert(ctx, gig); err != nil {
			return err
		}
	}
	return nil
}
