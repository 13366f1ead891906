// Package venues provides the SQLite-backed local venue collection.
package venues

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kotirearend/giglog/internal/client/models"
	"github.com/kotirearend/giglog/internal/common"
	"github.com/kotirearend/giglog/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Upsert inserts or replaces the venue document by id.
func (r *SQLiteRepository) Upsert(ctx context.Context, v *models.Venue) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode venue: %w", err)
	}
	pending := 0
	if v.Pending {
		pending = 1
	}
	query := `INSERT INTO venues (id, updated_at, pending, doc)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			updated_at = excluded.updated_at,
			pending = excluded.pending,
			doc = excluded.doc
	`
	_, err = r.db.ExecContext(ctx, query,
		v.ID, v.UpdatedAt.UTC().Format(time.RFC3339Nano), pending, string(doc))
	if err != nil {
		return fmt.Errorf("failed to upsert venue: %w", err)
	}
	return nil
}

// GetByID returns a single venue by identity.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Venue, error) {
	var doc string
	err := r.db.QueryRowContext(ctx, `SELECT doc FROM venues WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select venue: %w", err)
	}
	v := &models.Venue{}
	if err := json.Unmarshal([]byte(doc), v); err != nil {
		return nil, fmt.Errorf("failed to decode venue: %w", err)
	}
	return v, nil
}

// GetAll lists every venue.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Venue, error) {
	return r.list(ctx, `SELECT doc FROM venues ORDER BY id`)
}

// GetPending lists venues awaiting server confirmation.
func (r *SQLiteRepository) GetPending(ctx context.Context) ([]models.Venue, error) {
	return r.list(ctx, `SELECT doc FROM venues WHERE pending = 1 ORDER BY id`)
}

func (r *SQLiteRepository) list(ctx context.Context, query string) ([]models.Venue, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select venues: %w", err)
	}
	defer rows.Close()

	var result []models.Venue
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var v models.Venue
		if err := json.Unmarshal([]byte(doc), &v); err != nil {
			return nil, fmt.Errorf("failed to decode venue: %w", err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
