package sync

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/kotirearend/giglog/internal/client/gateway"
	"github.com/kotirearend/giglog/internal/client/models"
	"github.com/kotirearend/giglog/internal/client/repositories/gigs"
	"github.com/kotirearend/giglog/internal/client/repositories/metadata"
	"github.com/kotirearend/giglog/internal/client/repositories/people"
	"github.com/kotirearend/giglog/internal/client/repositories/queue"
	"github.com/kotirearend/giglog/internal/client/repositories/venues"
	"github.com/kotirearend/giglog/internal/client/store"
	"github.com/kotirearend/giglog/internal/client/wire"
	"github.com/kotirearend/giglog/internal/logging"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS gigs (
  id TEXT PRIMARY KEY, gig_date TEXT NOT NULL, updated_at TEXT NOT NULL, doc TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS venues (
  id TEXT PRIMARY KEY, updated_at TEXT NOT NULL, pending INTEGER NOT NULL DEFAULT 0, doc TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS people (
  id TEXT PRIMARY KEY, pending INTEGER NOT NULL DEFAULT 0, doc TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS sync_queue (
  seq INTEGER PRIMARY KEY AUTOINCREMENT, kind TEXT NOT NULL, entity_id TEXT NOT NULL,
  payload TEXT NOT NULL, attempts INTEGER NOT NULL DEFAULT 0, enqueued_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY, value BLOB NOT NULL
);
DELETE FROM gigs; DELETE FROM venues; DELETE FROM people;
DELETE FROM sync_queue; DELETE FROM metadata;
`

func setupRepos(t *testing.T) *store.Repositories {
	t.Helper()
	name := strings.NewReplacer("/", "_", "#", "_").Replace(t.Name())
	db, err := sql.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(schema)
	require.NoError(t, err)

	return &store.Repositories{
		DB:       db,
		Gigs:     gigs.NewSQLiteRepository(db),
		Venues:   venues.NewSQLiteRepository(db),
		People:   people.NewSQLiteRepository(db),
		Queue:    queue.NewSQLiteRepository(db),
		Metadata: metadata.NewSQLiteRepository(db),
	}
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type updateCall struct {
	ID  string
	Gig wire.Gig
}

type fakeGateway struct {
	createFn func(wire.Gig) (*wire.Gig, error)
	updateFn func(string, wire.Gig) (*wire.Gig, error)
	deleteFn func(string) error
	pullFn   func(time.Time) (*gateway.PullResult, error)
	pushFn   func(gateway.Batch) error

	creates []wire.Gig
	updates []updateCall
	deletes []string
	sinces  []time.Time
	batches []gateway.Batch
}

func (f *fakeGateway) Register(ctx context.Context, email, password, displayName string) (*gateway.Session, error) {
	return nil, gateway.ErrUnavailable
}

func (f *fakeGateway) Login(ctx context.Context, email, password string) (*gateway.Session, error) {
	return nil, gateway.ErrUnavailable
}

func (f *fakeGateway) CreateGig(ctx context.Context, g wire.Gig) (*wire.Gig, error) {
	f.creates = append(f.creates, g)
	if f.createFn != nil {
		return f.createFn(g)
	}
	out := g
	out.ID = uuid.NewString()
	return &out, nil
}

func (f *fakeGateway) UpdateGig(ctx context.Context, id string, g wire.Gig) (*wire.Gig, error) {
	f.updates = append(f.updates, updateCall{ID: id, Gig: g})
	if f.updateFn != nil {
		return f.updateFn(id, g)
	}
	out := g
	out.ID = id
	return &out, nil
}

func (f *fakeGateway) DeleteGig(ctx context.Context, id string) error {
	f.deletes = append(f.deletes, id)
	if f.deleteFn != nil {
		return f.deleteFn(id)
	}
	return nil
}

func (f *fakeGateway) Pull(ctx context.Context, since time.Time) (*gateway.PullResult, error) {
	f.sinces = append(f.sinces, since)
	if f.pullFn != nil {
		return f.pullFn(since)
	}
	return &gateway.PullResult{}, nil
}

func (f *fakeGateway) PushBatch(ctx context.Context, b gateway.Batch) error {
	f.batches = append(f.batches, b)
	if f.pushFn != nil {
		return f.pushFn(b)
	}
	return nil
}

func (f *fakeGateway) Ping(ctx context.Context) error { return nil }

func newTestEngine(t *testing.T, gw gateway.Gateway) (*Engine, *store.Repositories) {
	t.Helper()
	repos := setupRepos(t)
	return NewEngine(repos, gw, testLogger()), repos
}

func enqueueGig(t *testing.T, repos *store.Repositories, kind models.MutationKind, g models.Gig) {
	t.Helper()
	payload, err := json.Marshal(g)
	require.NoError(t, err)
	_, err = repos.Queue.Enqueue(context.Background(), kind, g.ID, payload, g.UpdatedAt)
	require.NoError(t, err)
}

func localGig(id string) models.Gig {
	ts := time.Date(2025, 6, 7, 23, 15, 0, 0, time.UTC)
	return models.Gig{
		ID:                id,
		GigDate:           "2025-06-07",
		VenueNameSnapshot: "Exchange",
		ArtistText:        "Dry Cleaning",
		CreatedAt:         ts,
		UpdatedAt:         ts,
	}
}

func queueLen(t *testing.T, repos *store.Repositories) int {
	t.Helper()
	entries, err := repos.Queue.All(context.Background())
	require.NoError(t, err)
	return len(entries)
}

func TestPush_PromotesProvisionalIdentity(t *testing.T) {
	serverID := uuid.NewString()
	gw := &fakeGateway{
		createFn: func(g wire.Gig) (*wire.Gig, error) {
			out := g
			out.ID = serverID
			return &out, nil
		},
	}
	e, repos := newTestEngine(t, gw)
	ctx := context.Background()

	g := localGig("local-100")
	require.NoError(t, repos.Gigs.Upsert(ctx, &g))
	enqueueGig(t, repos, models.MutationCreateGig, g)

	require.NoError(t, e.Push(ctx))

	// The create was sent without a provisional identity.
	require.Len(t, gw.creates, 1)
	require.Empty(t, gw.creates[0].ID)

	_, err := repos.Gigs.GetByID(ctx, "local-100")
	require.Error(t, err)
	promoted, err := repos.Gigs.GetByID(ctx, serverID)
	require.NoError(t, err)
	require.Equal(t, "Dry Cleaning", promoted.ArtistText)
	require.Zero(t, queueLen(t, repos))
}

func TestPush_RetargetsLaterEntriesForSameIdentity(t *testing.T) {
	serverID := uuid.NewString()
	gw := &fakeGateway{
		createFn: func(g wire.Gig) (*wire.Gig, error) {
			out := g
			out.ID = serverID
			return &out, nil
		},
	}
	e, repos := newTestEngine(t, gw)
	ctx := context.Background()

	g := localGig("local-100")
	enqueueGig(t, repos, models.MutationCreateGig, g)
	g.Notes = "edited offline"
	g.Touch(g.UpdatedAt)
	enqueueGig(t, repos, models.MutationUpdateGig, g)

	require.NoError(t, e.Push(ctx))

	require.Len(t, gw.updates, 1)
	require.Equal(t, serverID, gw.updates[0].ID)
	require.Equal(t, "edited offline", gw.updates[0].Gig.Notes)
	require.Zero(t, queueLen(t, repos))
}

func TestPush_TransientFailureKeepsQueue(t *testing.T) {
	gw := &fakeGateway{
		createFn: func(g wire.Gig) (*wire.Gig, error) { return nil, gateway.ErrUnavailable },
	}
	e, repos := newTestEngine(t, gw)
	ctx := context.Background()

	g := localGig("local-100")
	require.NoError(t, repos.Gigs.Upsert(ctx, &g))
	enqueueGig(t, repos, models.MutationCreateGig, g)

	require.ErrorIs(t, e.Push(ctx), gateway.ErrUnavailable)

	// Nothing was consumed or promoted.
	require.Equal(t, 1, queueLen(t, repos))
	_, err := repos.Gigs.GetByID(ctx, "local-100")
	require.NoError(t, err)
}

func TestPush_ValidationBlocksOnlySameIdentity(t *testing.T) {
	gw := &fakeGateway{
		createFn: func(g wire.Gig) (*wire.Gig, error) {
			if g.ArtistText == "bad" {
				return nil, gateway.ErrValidation
			}
			out := g
			out.ID = uuid.NewString()
			return &out, nil
		},
	}
	e, repos := newTestEngine(t, gw)
	ctx := context.Background()

	rejected := localGig("local-1")
	rejected.ArtistText = "bad"
	enqueueGig(t, repos, models.MutationCreateGig, rejected)
	rejected.Notes = "follow-up edit"
	enqueueGig(t, repos, models.MutationUpdateGig, rejected)

	ok := localGig("local-2")
	enqueueGig(t, repos, models.MutationCreateGig, ok)

	require.NoError(t, e.Push(ctx))

	// The rejected create and its chained update stay queued; the
	// unrelated create went through.
	entries, err := repos.Queue.All(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "local-1", entries[0].EntityID)
	require.Equal(t, 1, entries[0].Attempts)
	require.Equal(t, models.MutationUpdateGig, entries[1].Kind)
	require.Equal(t, 0, entries[1].Attempts)

	// The chained update was never attempted out of order.
	require.Empty(t, gw.updates)
	require.Len(t, gw.creates, 2)
}

func TestPush_DropsEntryAfterRepeatedRejections(t *testing.T) {
	gw := &fakeGateway{
		createFn: func(g wire.Gig) (*wire.Gig, error) { return nil, gateway.ErrValidation },
	}
	e, repos := newTestEngine(t, gw)
	ctx := context.Background()

	g := localGig("local-1")
	enqueueGig(t, repos, models.MutationCreateGig, g)
	_, err := repos.DB.Exec(`UPDATE sync_queue SET attempts = ?`, maxValidationAttempts-1)
	require.NoError(t, err)

	require.NoError(t, e.Push(ctx))
	require.Zero(t, queueLen(t, repos))

	// The local record survives the drop.
	require.NoError(t, repos.Gigs.Upsert(ctx, &g))
	got, err := repos.Gigs.GetByID(ctx, "local-1")
	require.NoError(t, err)
	require.Equal(t, g.ArtistText, got.ArtistText)
}

func TestPush_DeleteOfProvisionalNeverReachesServer(t *testing.T) {
	gw := &fakeGateway{}
	e, repos := newTestEngine(t, gw)
	ctx := context.Background()

	g := localGig("local-9")
	enqueueGig(t, repos, models.MutationDeleteGig, g)

	require.NoError(t, e.Push(ctx))
	require.Empty(t, gw.deletes)
	require.Zero(t, queueLen(t, repos))
}

func TestPush_CreateThenDeleteOfProvisionalCancelsOut(t *testing.T) {
	gw := &fakeGateway{}
	e, repos := newTestEngine(t, gw)
	ctx := context.Background()

	g := localGig("local-100")
	enqueueGig(t, repos, models.MutationCreateGig, g)
	g.Notes = "edited before the delete"
	g.Touch(g.UpdatedAt)
	enqueueGig(t, repos, models.MutationUpdateGig, g)
	g.Touch(g.UpdatedAt)
	enqueueGig(t, repos, models.MutationDeleteGig, g)

	require.NoError(t, e.Sync(ctx))

	// The whole chain was consumed without a single server call.
	require.Empty(t, gw.creates)
	require.Empty(t, gw.updates)
	require.Empty(t, gw.deletes)
	require.Zero(t, queueLen(t, repos))

	all, err := repos.Gigs.GetAll(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestPush_AbandonsPendingRecordsAfterRepeatedRejections(t *testing.T) {
	gw := &fakeGateway{
		pushFn: func(gateway.Batch) error { return gateway.ErrValidation },
	}
	e, repos := newTestEngine(t, gw)
	ctx := context.Background()

	v := models.Venue{
		ID:        uuid.NewString(),
		Name:      "Strange Brew",
		City:      "Bristol",
		Source:    models.VenueSourceManual,
		Pending:   true,
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repos.Venues.Upsert(ctx, &v))

	for i := 0; i < maxValidationAttempts-1; i++ {
		require.NoError(t, e.Push(ctx))
	}
	pending, err := repos.Venues.GetPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, e.Push(ctx))
	pending, err = repos.Venues.GetPending(ctx)
	require.NoError(t, err)
	require.Empty(t, pending)

	// The venue itself survives locally.
	got, err := repos.Venues.GetByID(ctx, v.ID)
	require.NoError(t, err)
	require.Equal(t, "Strange Brew", got.Name)
}

func TestPush_DeleteOfMissingRecordIsAcknowledged(t *testing.T) {
	gw := &fakeGateway{
		deleteFn: func(id string) error { return gateway.ErrNotFound },
	}
	e, repos := newTestEngine(t, gw)
	ctx := context.Background()

	g := localGig(uuid.NewString())
	enqueueGig(t, repos, models.MutationDeleteGig, g)

	require.NoError(t, e.Push(ctx))
	require.Len(t, gw.deletes, 1)
	require.Zero(t, queueLen(t, repos))
}

func TestPush_ScrubsDanglingVenueReference(t *testing.T) {
	gw := &fakeGateway{}
	e, repos := newTestEngine(t, gw)
	ctx := context.Background()

	keep := uuid.NewString()
	g1 := localGig("local-1")
	g1.VenueID = "draft-venue"
	enqueueGig(t, repos, models.MutationCreateGig, g1)
	g2 := localGig("local-2")
	g2.VenueID = keep
	enqueueGig(t, repos, models.MutationCreateGig, g2)

	require.NoError(t, e.Push(ctx))
	require.Len(t, gw.creates, 2)
	require.Empty(t, gw.creates[0].VenueID)
	require.Equal(t, keep, gw.creates[1].VenueID)
}

func TestPush_ReconcilesPendingVenuesAndPeople(t *testing.T) {
	gw := &fakeGateway{}
	e, repos := newTestEngine(t, gw)
	ctx := context.Background()

	v := models.Venue{
		ID:        uuid.NewString(),
		Name:      "Strange Brew",
		City:      "Bristol",
		Source:    models.VenueSourceManual,
		Pending:   true,
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repos.Venues.Upsert(ctx, &v))
	p := models.Person{
		ID:        uuid.NewString(),
		Nickname:  "Sam",
		Emoji:     "🎸",
		Pending:   true,
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repos.People.Upsert(ctx, &p))

	require.NoError(t, e.Push(ctx))

	require.Len(t, gw.batches, 1)
	require.Len(t, gw.batches[0].Venues, 1)
	require.Len(t, gw.batches[0].People, 1)
	require.Equal(t, v.ID, gw.batches[0].Venues[0].ID)

	pendingV, err := repos.Venues.GetPending(ctx)
	require.NoError(t, err)
	require.Empty(t, pendingV)
	pendingP, err := repos.People.GetPending(ctx)
	require.NoError(t, err)
	require.Empty(t, pendingP)
}

func TestPull_FirstRunUsesEpochCheckpoint(t *testing.T) {
	gw := &fakeGateway{}
	e, _ := newTestEngine(t, gw)

	require.NoError(t, e.Pull(context.Background()))
	require.Len(t, gw.sinces, 1)
	require.True(t, gw.sinces[0].Equal(checkpointEpoch))
}

func TestPull_AppliesDeltaAndAdvancesCheckpoint(t *testing.T) {
	serverGig := wire.Gig{
		ID:                uuid.NewString(),
		GigDate:           "2025-06-07",
		VenueNameSnapshot: "Exchange",
		ArtistText:        "Squid",
		UpdatedAt:         time.Date(2025, 6, 8, 1, 0, 0, 0, time.UTC),
	}
	serverVenue := wire.Venue{ID: uuid.NewString(), Name: "Exchange", City: "Bristol"}
	serverPerson := wire.Person{ID: uuid.NewString(), Nickname: "Robin"}
	gw := &fakeGateway{
		pullFn: func(since time.Time) (*gateway.PullResult, error) {
			return &gateway.PullResult{
				Gigs:   []wire.Gig{serverGig},
				Venues: []wire.Venue{serverVenue},
				People: []wire.Person{serverPerson},
			}, nil
		},
	}
	e, repos := newTestEngine(t, gw)
	ctx := context.Background()

	requestedAt := time.Date(2025, 6, 9, 10, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return requestedAt }

	require.NoError(t, e.Pull(ctx))

	got, err := repos.Gigs.GetByID(ctx, serverGig.ID)
	require.NoError(t, err)
	require.Equal(t, "Squid", got.ArtistText)

	v, err := repos.Venues.GetByID(ctx, serverVenue.ID)
	require.NoError(t, err)
	require.False(t, v.Pending)

	cp, err := repos.Metadata.GetTime(ctx, metadata.KeyLastPullAt)
	require.NoError(t, err)
	require.True(t, cp.Equal(requestedAt))
}

func TestPull_IsIdempotent(t *testing.T) {
	serverGig := wire.Gig{
		ID:                uuid.NewString(),
		GigDate:           "2025-06-07",
		VenueNameSnapshot: "Exchange",
		ArtistText:        "Squid",
	}
	gw := &fakeGateway{
		pullFn: func(since time.Time) (*gateway.PullResult, error) {
			return &gateway.PullResult{Gigs: []wire.Gig{serverGig}}, nil
		},
	}
	e, repos := newTestEngine(t, gw)
	ctx := context.Background()

	require.NoError(t, e.Pull(ctx))
	require.NoError(t, e.Pull(ctx))

	all, err := repos.Gigs.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestPull_CheckpointNeverRegresses(t *testing.T) {
	gw := &fakeGateway{}
	e, repos := newTestEngine(t, gw)
	ctx := context.Background()

	ahead := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repos.Metadata.SetTime(ctx, metadata.KeyLastPullAt, ahead))
	e.now = func() time.Time { return time.Date(2025, 6, 9, 10, 0, 0, 0, time.UTC) }

	require.NoError(t, e.Pull(ctx))

	cp, err := repos.Metadata.GetTime(ctx, metadata.KeyLastPullAt)
	require.NoError(t, err)
	require.True(t, cp.Equal(ahead))
}

func TestPush_ReentrantTriggerIsNoOp(t *testing.T) {
	gw := &fakeGateway{}
	e, repos := newTestEngine(t, gw)
	ctx := context.Background()

	enqueueGig(t, repos, models.MutationCreateGig, localGig("local-1"))

	e.pushing.Store(true)
	require.NoError(t, e.Push(ctx))
	require.Empty(t, gw.creates)
	require.Equal(t, 1, queueLen(t, repos))

	e.pushing.Store(false)
	require.NoError(t, e.Push(ctx))
	require.Zero(t, queueLen(t, repos))
}

func TestSync_OfflineEditsReachServerThenLocalMatchesPull(t *testing.T) {
	serverID := uuid.NewString()
	var serverState *wire.Gig
	gw := &fakeGateway{
		createFn: func(g wire.Gig) (*wire.Gig, error) {
			out := g
			out.ID = serverID
			serverState = &out
			return &out, nil
		},
		updateFn: func(id string, g wire.Gig) (*wire.Gig, error) {
			out := g
			out.ID = id
			serverState = &out
			return &out, nil
		},
	}
	gw.pullFn = func(since time.Time) (*gateway.PullResult, error) {
		if serverState == nil {
			return &gateway.PullResult{}, nil
		}
		return &gateway.PullResult{Gigs: []wire.Gig{*serverState}}, nil
	}
	e, repos := newTestEngine(t, gw)
	ctx := context.Background()

	g := localGig("local-100")
	require.NoError(t, repos.Gigs.Upsert(ctx, &g))
	enqueueGig(t, repos, models.MutationCreateGig, g)
	g.Rating = intPtr(5)
	g.Touch(g.UpdatedAt)
	require.NoError(t, repos.Gigs.Upsert(ctx, &g))
	enqueueGig(t, repos, models.MutationUpdateGig, g)

	require.NoError(t, e.Sync(ctx))

	require.Zero(t, queueLen(t, repos))
	all, err := repos.Gigs.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, serverID, all[0].ID)
	require.NotNil(t, all[0].Rating)
	require.Equal(t, 5, *all[0].Rating)
}

func intPtr(v int) *int { return &v }
