package gigs

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/kotirearend/giglog/internal/client/models"
	"github.com/kotirearend/giglog/internal/common"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:gigsrepo?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS gigs (
  id         TEXT PRIMARY KEY,
  gig_date   TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  doc        TEXT NOT NULL
);
DELETE FROM gigs;
`)
	require.NoError(t, err)
	return db
}

func sample(id, date string) *models.Gig {
	return &models.Gig{
		ID:                id,
		GigDate:           date,
		VenueNameSnapshot: "Thekla",
		ArtistText:        "Protomartyr",
		Mood:              []string{"loud"},
		CreatedAt:         time.Date(2025, 3, 1, 22, 0, 0, 0, time.UTC),
		UpdatedAt:         time.Date(2025, 3, 1, 22, 0, 0, 0, time.UTC),
	}
}

func TestUpsert_InsertThenGet(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	g := sample("local-1", "2025-03-01")
	require.NoError(t, repo.Upsert(ctx, g))

	got, err := repo.GetByID(ctx, "local-1")
	require.NoError(t, err)
	require.Equal(t, g, got)
}

func TestUpsert_ReplacesExisting(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	g := sample("g1", "2025-03-01")
	require.NoError(t, repo.Upsert(ctx, g))

	g.ArtistText = "Protomartyr + support"
	g.UpdatedAt = g.UpdatedAt.Add(time.Minute)
	require.NoError(t, repo.Upsert(ctx, g))

	got, err := repo.GetByID(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, "Protomartyr + support", got.ArtistText)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestGetAll_NewestNightFirst(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, sample("a", "2025-01-01")))
	require.NoError(t, repo.Upsert(ctx, sample("b", "2025-06-01")))
	require.NoError(t, repo.Upsert(ctx, sample("c", "2025-03-01")))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "b", all[0].ID)
	require.Equal(t, "c", all[1].ID)
	require.Equal(t, "a", all[2].ID)
}

func TestGetByID_NotFound(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)

	_, err := repo.GetByID(context.Background(), "missing")
	require.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestDeleteByID_Idempotent(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, sample("g1", "2025-03-01")))
	require.NoError(t, repo.DeleteByID(ctx, "g1"))
	require.NoError(t, repo.DeleteByID(ctx, "g1"))

	_, err := repo.GetByID(ctx, "g1")
	require.True(t, errors.Is(err, common.ErrorNotFound))
}
