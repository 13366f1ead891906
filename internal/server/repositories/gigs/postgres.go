package gigs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kotirearend/giglog/internal/common"
	"github.com/kotirearend/giglog/internal/dbx"
	"github.com/kotirearend/giglog/internal/server/models"
)

// PostgresRepository implements gig storage over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx). List-valued fields live in JSONB columns.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const gigColumns = `id, user_id, gig_date, gig_time, venue_id, venue_name_snapshot, venue_city_snapshot,
		lat, lng, artist_text, mood_tags, people_ids, people, spend_total, purchases,
		rating, notes, photo_ids, created_at, updated_at`

// marshalList encodes a slice for a JSONB column, never as SQL NULL.
func marshalList(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal error: %w", err)
	}
	if string(b) == "null" {
		return []byte("[]"), nil
	}
	return b, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, gig *models.Gig) error {
	moodTags, err := marshalList(gig.MoodTags)
	if err != nil {
		return err
	}
	peopleIDs, err := marshalList(gig.PeopleIDs)
	if err != nil {
		return err
	}
	people, err := marshalList(gig.People)
	if err != nil {
		return err
	}
	purchases, err := marshalList(gig.Purchases)
	if err != nil {
		return err
	}
	photoIDs, err := marshalList(gig.PhotoIDs)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO gigs (` + gigColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (id) DO UPDATE SET
			gig_date = EXCLUDED.gig_date,
			gig_time = EXCLUDED.gig_time,
			venue_id = EXCLUDED.venue_id,
			venue_name_snapshot = EXCLUDED.venue_name_snapshot,
			venue_city_snapshot = EXCLUDED.venue_city_snapshot,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			artist_text = EXCLUDED.artist_text,
			mood_tags = EXCLUDED.mood_tags,
			people_ids = EXCLUDED.people_ids,
			people = EXCLUDED.people,
			spend_total = EXCLUDED.spend_total,
			purchases = EXCLUDED.purchases,
			rating = EXCLUDED.rating,
			notes = EXCLUDED.notes,
			photo_ids = EXCLUDED.photo_ids,
			updated_at = EXCLUDED.updated_at
	`
	_, err = r.db.ExecContext(ctx, query,
		gig.ID, gig.UserID, gig.GigDate, gig.GigTime, gig.VenueID,
		gig.VenueNameSnapshot, gig.VenueCitySnapshot, gig.Lat, gig.Lng, gig.ArtistText,
		moodTags, peopleIDs, people, gig.SpendTotal, purchases,
		gig.Rating, gig.Notes, photoIDs, gig.CreatedAt, gig.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID string, id string) (*models.Gig, error) {
	query := `
		SELECT ` + gigColumns + `
		FROM gigs
		WHERE user_id = $1 AND id = $2
	`
	gig, err := scanGig(r.db.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}
	return gig, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string, filter ListFilter) ([]*models.Gig, error) {
	query := `SELECT ` + gigColumns + ` FROM gigs WHERE user_id = $1`
	args := []any{userID}
	if filter.Year != 0 {
		args = append(args, fmt.Sprintf("%04d-%%", filter.Year))
		query += fmt.Sprintf(" AND gig_date LIKE $%d", len(args))
	}
	if filter.Artist != "" {
		args = append(args, "%"+filter.Artist+"%")
		query += fmt.Sprintf(" AND artist_text ILIKE $%d", len(args))
	}
	if filter.VenueID != "" {
		args = append(args, filter.VenueID)
		query += fmt.Sprintf(" AND venue_id = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		query += fmt.Sprintf(" AND (artist_text ILIKE $%d OR venue_name_snapshot ILIKE $%d OR notes ILIKE $%d)", n, n, n)
	}
	query += " ORDER BY gig_date DESC, created_at DESC"
	return r.queryGigs(ctx, query, args...)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID string, id string) error {
	query := `
		DELETE FROM gigs
		WHERE user_id = $1 AND id = $2
	`
	res, err := r.db.ExecContext(ctx, query, userID, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) UpdatedSince(ctx context.Context, userID string, since time.Time) ([]*models.Gig, error) {
	query := `
		SELECT ` + gigColumns + `
		FROM gigs
		WHERE user_id = $1 AND updated_at > $2
		ORDER BY updated_at
	`
	return r.queryGigs(ctx, query, userID, since)
}

func (r *PostgresRepository) queryGigs(ctx context.Context, query string, args ...any) ([]*models.Gig, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Gig
	for rows.Next() {
		gig, err := scanGig(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, gig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGig(row rowScanner) (*models.Gig, error) {
	gig := &models.Gig{}
	var moodTags, peopleIDs, people, purchases, photoIDs []byte
	err := row.Scan(
		&gig.ID, &gig.UserID, &gig.GigDate, &gig.GigTime, &gig.VenueID,
		&gig.VenueNameSnapshot, &gig.VenueCitySnapshot, &gig.Lat, &gig.Lng, &gig.ArtistText,
		&moodTags, &peopleIDs, &people, &gig.SpendTotal, &purchases,
		&gig.Rating, &gig.Notes, &photoIDs, &gig.CreatedAt, &gig.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	for _, pair := range []struct {
		src []byte
		dst any
	}{
		{moodTags, &gig.MoodTags},
		{peopleIDs, &gig.PeopleIDs},
		{people, &gig.People},
		{purchases, &gig.Purchases},
		{photoIDs, &gig.PhotoIDs},
	} {
		if len(pair.src) == 0 {
			continue
		}
		if err := json.Unmarshal(pair.src, pair.dst); err != nil {
			return nil, fmt.Errorf("unmarshal error: %w", err)
		}
	}
	return gig, nil
}
