package venues

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/kotirearend/giglog/internal/client/models"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:venuesrepo?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS venues (
  id         TEXT PRIMARY KEY,
  updated_at TEXT NOT NULL,
  pending    INTEGER NOT NULL DEFAULT 0,
  doc        TEXT NOT NULL
);
DELETE FROM venues;
`)
	require.NoError(t, err)
	return db
}

func TestUpsertAndPendingFilter(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	now := time.Date(2025, 4, 1, 20, 0, 0, 0, time.UTC)
	confirmed := &models.Venue{ID: "v1", Name: "Thekla", City: "Bristol", Source: models.VenueSourceConfirmed, CreatedAt: now, UpdatedAt: now}
	local := &models.Venue{ID: "v2", Name: "Strange Brew", City: "Bristol", Source: models.VenueSourceManual, Pending: true, CreatedAt: now, UpdatedAt: now}

	require.NoError(t, repo.Upsert(ctx, confirmed))
	require.NoError(t, repo.Upsert(ctx, local))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	pending, err := repo.GetPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "v2", pending[0].ID)

	// Confirmation clears the pending flag.
	local.Pending = false
	require.NoError(t, repo.Upsert(ctx, local))
	pending, err = repo.GetPending(ctx)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestGetByID(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	now := time.Date(2025, 4, 1, 20, 0, 0, 0, time.UTC)
	v := &models.Venue{ID: "v1", Name: "Exchange", City: "Bristol", Source: models.VenueSourceManual, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Upsert(ctx, v))

	got, err := repo.GetByID(ctx, "v1")
	require.NoError(t, err)
	require.Equal(t, v, got)
}
