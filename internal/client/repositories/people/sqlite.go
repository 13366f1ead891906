// Package people provides the SQLite-backed local people collection.
package people

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

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

// Upsert inserts or replaces the person document by id.
func (r *SQLiteRepository) Upsert(ctx context.Context, p *models.Person) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode person: %w", err)
	}
	pending := 0
	if p.Pending {
		pending = 1
	}
	query := `INSERT INTO people (id, pending, doc)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			pending = excluded.pending,
			doc = excluded.doc
	`
	if _, err = r.db.ExecContext(ctx, query, p.ID, pending, string(doc)); err != nil {
		return fmt.Errorf("failed to upsert person: %w", err)
	}
	return nil
}

// GetByID returns a single person by identity.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Person, error) {
	var doc string
	err := r.db.QueryRowContext(ctx, `SELECT doc FROM people WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select person: %w", err)
	}
	p := &models.Person{}
	if err := json.Unmarshal([]byte(doc), p); err != nil {
		return nil, fmt.Errorf("failed to decode person: %w", err)
	}
	return p, nil
}

// GetAll lists every person.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Person, error) {
	return r.list(ctx, `SELECT doc FROM people ORDER BY id`)
}

// GetPending lists people awaiting server confirmation.
func (r *SQLiteRepository) GetPending(ctx context.Context) ([]models.Person, error) {
	return r.list(ctx, `SELECT doc FROM people WHERE pending = 1 ORDER BY id`)
}

func (r *SQLiteRepository) list(ctx context.Context, query string) ([]models.Person, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select people: %w", err)
	}
	defer rows.Close()

	var result []models.Person
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var p models.Person
		if err := json.Unmarshal([]byte(doc), &p); err != nil {
			return nil, fmt.Errorf("failed to decode person: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
