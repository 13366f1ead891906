package venues

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kotirearend/giglog/internal/common"
	"github.com/kotirearend/giglog/internal/dbx"
	"github.com/kotirearend/giglog/internal/server/models"
)

// PostgresRepository implements venue storage over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, venue *models.Venue) error {
	query := `
		INSERT INTO venues (id, user_id, name, city, lat, lng, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			city = EXCLUDED.city,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			source = EXCLUDED.source,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		venue.ID, venue.UserID, venue.Name, venue.City, venue.Lat, venue.Lng,
		venue.Source, venue.CreatedAt, venue.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID string, id string) (*models.Venue, error) {
	query := `
		SELECT id, user_id, name, city, lat, lng, source, created_at, updated_at
		FROM venues
		WHERE user_id = $1 AND id = $2
	`
	venue := &models.Venue{}
	err := r.db.QueryRowContext(ctx, query, userID, id).Scan(
		&venue.ID, &venue.UserID, &venue.Name, &venue.City, &venue.Lat, &venue.Lng,
		&venue.Source, &venue.CreatedAt, &venue.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return venue, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string, search string) ([]*models.Venue, error) {
	query := `
		SELECT id, user_id, name, city, lat, lng, source, created_at, updated_at
		FROM venues
		WHERE user_id = $1
	`
	args := []any{userID}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += ` AND (name ILIKE $2 OR city ILIKE $2)`
	}
	query += ` ORDER BY name`
	return r.queryVenues(ctx, query, args...)
}

func (r *PostgresRepository) UpdatedSince(ctx context.Context, userID string, since time.Time) ([]*models.Venue, error) {
	query := `
		SELECT id, user_id, name, city, lat, lng, source, created_at, updated_at
		FROM venues
		WHERE user_id = $1 AND updated_at > $2
		ORDER BY updated_at
	`
	return r.queryVenues(ctx, query, userID, since)
}

func (r *PostgresRepository) queryVenues(ctx context.Context, query string, args ...any) ([]*models.Venue, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Venue
	for rows.Next() {
		venue := &models.Venue{}
		err := rows.Scan(
			&venue.ID, &venue.UserID, &venue.Name, &venue.City, &venue.Lat, &venue.Lng,
			&venue.Source, &venue.CreatedAt, &venue.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, venue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
