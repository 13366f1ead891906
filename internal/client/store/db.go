// Package store opens the on-device SQLite database, applies migrations,
// and hands out the local repositories. It is pure storage wiring; all
// merge logic lives in the sync engine.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kotirearend/giglog/internal/client/migrations"
	"github.com/kotirearend/giglog/internal/client/repositories/gigs"
	"github.com/kotirearend/giglog/internal/client/repositories/metadata"
	"github.com/kotirearend/giglog/internal/client/repositories/people"
	"github.com/kotirearend/giglog/internal/client/repositories/queue"
	"github.com/kotirearend/giglog/internal/client/repositories/venues"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// Repositories bundles the local collections plus the underlying handle,
// which callers need for cross-repository transactions via dbx.WithTx.
type Repositories struct {
	DB       *sql.DB
	Gigs     gigs.Repository
	Venues   venues.Repository
	People   people.Repository
	Queue    queue.Repository
	Metadata metadata.Repository
}

// RunMigrations applies the embedded schema with goose.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the local database at dsn and returns
// the repository set.
func Open(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open local db: %w", err)
	}
	// A single writer avoids SQLITE_BUSY between optimistic writes and
	// sync-engine upserts.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return &Repositories{
		DB:       db,
		Gigs:     gigs.NewSQLiteRepository(db),
		Venues:   venues.NewSQLiteRepository(db),
		People:   people.NewSQLiteRepository(db),
		Queue:    queue.NewSQLiteRepository(db),
		Metadata: metadata.NewSQLiteRepository(db),
	}, nil
}

// Close releases the database handle.
func (r *Repositories) Close() error {
	return r.DB.Close()
}
