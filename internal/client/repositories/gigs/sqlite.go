// Package gigs provides the SQLite-backed local gig collection.
package gigs

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

// Upsert inserts or replaces the gig document by id in a single statement.
func (r *SQLiteRepository) Upsert(ctx context.Context, g *models.Gig) error {
	doc, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to encode gig: %w", err)
	}
	query := `INSERT INTO gigs (id, gig_date, updated_at, doc)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			gig_date = excluded.gig_date,
			updated_at = excluded.updated_at,
			doc = excluded.doc
	`
	_, err = r.db.ExecContext(ctx, query,
		g.ID, g.GigDate, g.UpdatedAt.UTC().Format(time.RFC3339Nano), string(doc))
	if err != nil {
		return fmt.Errorf("failed to upsert gig: %w", err)
	}
	return nil
}

// GetByID returns a single gig by identity.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Gig, error) {
	var doc string
	err := r.db.QueryRowContext(ctx, `SELECT doc FROM gigs WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select gig: %w", err)
	}
	g := &models.Gig{}
	if err := json.Unmarshal([]byte(doc), g); err != nil {
		return nil, fmt.Errorf("failed to decode gig: %w", err)
	}
	return g, nil
}

// GetAll lists every gig, newest night first.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Gig, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT doc FROM gigs ORDER BY gig_date DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select gigs: %w", err)
	}
	defer rows.Close()

	var result []models.Gig
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var g models.Gig
		if err := json.Unmarshal([]byte(doc), &g); err != nil {
			return nil, fmt.Errorf("failed to decode gig: %w", err)
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteByID removes a gig. Absent ids are a no-op.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM gigs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete gig: %w", err)
	}
	return nil
}
