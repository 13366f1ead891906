// Package queue provides the SQLite-backed pending-mutation queue.
package queue

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

// Enqueue appends an entry. The AUTOINCREMENT sequence guarantees numbers
// are never reused even after acknowledged entries are removed.
func (r *SQLiteRepository) Enqueue(ctx context.Context, kind models.MutationKind, entityID string, payload []byte, enqueuedAt time.Time) (int64, error) {
	query := `INSERT INTO sync_queue (kind, entity_id, payload, enqueued_at) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		string(kind), entityID, string(payload), enqueuedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("failed to enqueue mutation: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get sequence number: %w", err)
	}
	return seq, nil
}

// All returns the queue in enqueue order.
func (r *SQLiteRepository) All(ctx context.Context) ([]models.QueueEntry, error) {
	query := `SELECT seq, kind, entity_id, payload, attempts, enqueued_at FROM sync_queue ORDER BY seq`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select queue: %w", err)
	}
	defer rows.Close()

	var result []models.QueueEntry
	for rows.Next() {
		var (
			e          models.QueueEntry
			kind       string
			payload    string
			enqueuedAt string
		)
		if err := rows.Scan(&e.Seq, &kind, &e.EntityID, &payload, &e.Attempts, &enqueuedAt); err != nil {
			return nil, err
		}
		e.Kind = models.MutationKind(kind)
		e.Payload = []byte(payload)
		if e.EnqueuedAt, err = time.Parse(time.RFC3339Nano, enqueuedAt); err != nil {
			return nil, fmt.Errorf("failed to parse enqueued_at: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Acknowledge removes one entry; already-removed sequence numbers are a no-op.
func (r *SQLiteRepository) Acknowledge(ctx context.Context, seq int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sync_queue WHERE seq = ?`, seq); err != nil {
		return fmt.Errorf("failed to acknowledge queue entry: %w", err)
	}
	return nil
}

// Retarget rewrites entity_id and the payload identity for every queued
// entry that still references oldID.
func (r *SQLiteRepository) Retarget(ctx context.Context, oldID, newID string) error {
	rows, err := r.db.QueryContext(ctx, `SELECT seq, payload FROM sync_queue WHERE entity_id = ?`, oldID)
	if err != nil {
		return fmt.Errorf("failed to select queue entries: %w", err)
	}

	type patch struct {
		seq     int64
		payload string
	}
	var patches []patch
	for rows.Next() {
		var (
			seq     int64
			payload string
		)
		if err := rows.Scan(&seq, &payload); err != nil {
			rows.Close()
			return err
		}
		var doc map[string]any
		if err := json.Unmarshal([]byte(payload), &doc); err != nil {
			rows.Close()
			return fmt.Errorf("failed to decode queued payload: %w", err)
		}
		if _, ok := doc["id"]; ok {
			doc["id"] = newID
		}
		patched, err := json.Marshal(doc)
		if err != nil {
			rows.Close()
			return fmt.Errorf("failed to encode queued payload: %w", err)
		}
		patches = append(patches, patch{seq: seq, payload: string(patched)})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, p := range patches {
		_, err := r.db.ExecContext(ctx,
			`UPDATE sync_queue SET entity_id = ?, payload = ? WHERE seq = ?`,
			newID, p.payload, p.seq)
		if err != nil {
			return fmt.Errorf("failed to retarget queue entry: %w", err)
		}
	}
	return nil
}

// IncrementAttempts bumps the failure counter and returns the new value.
func (r *SQLiteRepository) IncrementAttempts(ctx context.Context, seq int64) (int, error) {
	if _, err := r.db.ExecContext(ctx, `UPDATE sync_queue SET attempts = attempts + 1 WHERE seq = ?`, seq); err != nil {
		return 0, fmt.Errorf("failed to increment attempts: %w", err)
	}
	var attempts int
	err := r.db.QueryRowContext(ctx, `SELECT attempts FROM sync_queue WHERE seq = ?`, seq).Scan(&attempts)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, common.ErrorNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read attempts: %w", err)
	}
	return attempts, nil
}
