// Package sync implements the offline synchronization engine: draining the
// local mutation queue to the server (push) and applying server deltas to
// the local store (pull). Conflict resolution is server-side last writer
// wins; the engine's job is ordering, identity promotion, and checkpoint
// bookkeeping.
package sync

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kotirearend/giglog/internal/client/gateway"
	"github.com/kotirearend/giglog/internal/client/models"
	"github.com/kotirearend/giglog/internal/client/repositories/gigs"
	"github.com/kotirearend/giglog/internal/client/repositories/metadata"
	"github.com/kotirearend/giglog/internal/client/repositories/people"
	"github.com/kotirearend/giglog/internal/client/repositories/queue"
	"github.com/kotirearend/giglog/internal/client/repositories/venues"
	"github.com/kotirearend/giglog/internal/client/store"
	"github.com/kotirearend/giglog/internal/client/wire"
	"github.com/kotirearend/giglog/internal/common"
	"github.com/kotirearend/giglog/internal/dbx"
	"github.com/kotirearend/giglog/internal/logging"
)

// checkpointEpoch is the pull checkpoint used before the first successful
// pull. Every account fits comfortably after it.
var checkpointEpoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

const (
	// maxValidationAttempts bounds how many push cycles a
	// validation-rejected entry survives before it is dropped.
	maxValidationAttempts = 5

	// pushBatchLimit matches the server-side cap on merge batch size.
	pushBatchLimit = 100
)

// Engine drives push and pull against the server. Safe for concurrent
// triggers: overlapping runs of the same direction collapse into one.
type Engine struct {
	db       *sql.DB
	gigs     gigs.Repository
	venues   venues.Repository
	people   people.Repository
	queue    queue.Repository
	metadata metadata.Repository

	gw  gateway.Gateway
	log logging.Logger
	now func() time.Time

	pushing atomic.Bool
	pulling atomic.Bool

	// pendingRejections counts consecutive validation rejections of the
	// pending venue/person batch. Guarded by the pushing flag.
	pendingRejections int
}

// NewEngine wires the engine over the local repositories and the server
// gateway.
func NewEngine(repos *store.Repositories, gw gateway.Gateway, log logging.Logger) *Engine {
	return &Engine{
		db:       repos.DB,
		gigs:     repos.Gigs,
		venues:   repos.Venues,
		people:   repos.People,
		queue:    repos.Queue,
		metadata: repos.Metadata,
		gw:       gw,
		log:      log.With("component", "sync"),
		now:      time.Now,
	}
}

func transient(err error) bool {
	return errors.Is(err, gateway.ErrUnavailable)
}

// Sync runs one push phase followed by one pull phase.
func (e *Engine) Sync(ctx context.Context) error {
	if err := e.Push(ctx); err != nil {
		return err
	}
	return e.Pull(ctx)
}

// Push reconciles locally created venues and people through the merge
// endpoint, then drains the gig mutation queue in enqueue order. A
// transient failure aborts the run and leaves the remaining entries queued
// for the next trigger; a validation rejection blocks only the entries for
// the same record identity.
func (e *Engine) Push(ctx context.Context) error {
	if !e.pushing.CompareAndSwap(false, true) {
		return nil
	}
	defer e.pushing.Store(false)

	if err := e.reconcilePending(ctx); err != nil {
		return err
	}
	return e.drainQueue(ctx)
}

// reconcilePending submits locally created venues and people for merge and
// clears their pending flag once the server has adopted them. Their
// identities are client-minted, so confirmation changes no other record. A
// batch rejected maxValidationAttempts runs in a row has its flag cleared
// anyway, with a logged diagnostic, so the push cycle cannot wedge on it.
func (e *Engine) reconcilePending(ctx context.Context) error {
	pendingVenues, err := e.venues.GetPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pending venues: %w", err)
	}
	pendingPeople, err := e.people.GetPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pending people: %w", err)
	}
	if len(pendingVenues) == 0 && len(pendingPeople) == 0 {
		return nil
	}

	wireVenues := make([]wire.Venue, 0, len(pendingVenues))
	for _, v := range pendingVenues {
		wireVenues = append(wireVenues, wire.VenueToWire(v))
	}
	wirePeople := make([]wire.Person, 0, len(pendingPeople))
	for _, p := range pendingPeople {
		wirePeople = append(wirePeople, wire.PersonToWire(p))
	}

	for len(wireVenues) > 0 || len(wirePeople) > 0 {
		var b gateway.Batch
		b.Venues, wireVenues = takeVenues(wireVenues, pushBatchLimit)
		b.People, wirePeople = takePeople(wirePeople, pushBatchLimit-len(b.Venues))

		err := common.Retry(ctx, transient, func(ctx context.Context) error {
			return e.gw.PushBatch(ctx, b)
		})
		switch {
		case err == nil:
			e.pendingRejections = 0
		case errors.Is(err, gateway.ErrValidation):
			e.pendingRejections++
			if e.pendingRejections < maxValidationAttempts {
				// The records stay pending and are resubmitted next run.
				e.log.Warn(ctx, "server rejected pending records",
					"attempts", e.pendingRejections, "error", err)
				return nil
			}
			// The flag clears below so later runs are not wedged on the
			// same batch; the records stay usable locally.
			e.log.Error(ctx, "abandoning pending records after repeated rejections",
				"venues", len(b.Venues), "people", len(b.People), "error", err)
			e.pendingRejections = 0
		default:
			return err
		}

		for i := range b.Venues {
			v := wire.VenueFromWire(b.Venues[i])
			if upErr := e.venues.Upsert(ctx, &v); upErr != nil {
				return fmt.Errorf("failed to confirm venue: %w", upErr)
			}
		}
		for i := range b.People {
			p := wire.PersonFromWire(b.People[i])
			if upErr := e.people.Upsert(ctx, &p); upErr != nil {
				return fmt.Errorf("failed to confirm person: %w", upErr)
			}
		}
	}
	return nil
}

func takeVenues(vs []wire.Venue, n int) ([]wire.Venue, []wire.Venue) {
	if n <= 0 {
		return nil, vs
	}
	if len(vs) <= n {
		return vs, nil
	}
	return vs[:n], vs[n:]
}

func takePeople(ps []wire.Person, n int) ([]wire.Person, []wire.Person) {
	if n <= 0 {
		return nil, ps
	}
	if len(ps) <= n {
		return ps, nil
	}
	return ps[:n], ps[n:]
}

// drainQueue walks the mutation queue in sequence order. When an entry
// fails for reasons that may clear up later, every later entry for the
// same identity is skipped this run so the server never observes the
// record's mutations out of order.
func (e *Engine) drainQueue(ctx context.Context) error {
	entries, err := e.queue.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to read mutation queue: %w", err)
	}

	// A provisional identity with a queued delete cancels out: the create
	// never has to land, so none of the chain's entries go to the server.
	cancelled := make(map[string]bool)
	for _, entry := range entries {
		if entry.Kind == models.MutationDeleteGig && models.IsLocalID(entry.EntityID) {
			cancelled[entry.EntityID] = true
		}
	}

	blocked := make(map[string]bool)
	promoted := make(map[string]string)
	for _, entry := range entries {
		if cancelled[entry.EntityID] {
			if ackErr := e.queue.Acknowledge(ctx, entry.Seq); ackErr != nil {
				return fmt.Errorf("failed to acknowledge entry %d: %w", entry.Seq, ackErr)
			}
			continue
		}

		// A create earlier in this run retargets the queue rows in the
		// database; this slice was read before that, so the same mapping
		// is applied here.
		if serverID, ok := promoted[entry.EntityID]; ok {
			entry.EntityID = serverID
		}
		if blocked[entry.EntityID] {
			continue
		}

		serverID, err := e.processEntry(ctx, entry)
		switch {
		case err == nil:
			if serverID != "" {
				promoted[entry.EntityID] = serverID
			}
			if ackErr := e.queue.Acknowledge(ctx, entry.Seq); ackErr != nil {
				return fmt.Errorf("failed to acknowledge entry %d: %w", entry.Seq, ackErr)
			}
		case errors.Is(err, gateway.ErrValidation):
			if dropErr := e.handleRejected(ctx, entry, err); dropErr != nil {
				return dropErr
			}
			blocked[entry.EntityID] = true
		case errors.Is(err, gateway.ErrNotFound):
			// The record is gone server-side; the next pull reconciles.
			e.log.Warn(ctx, "queued mutation targeted a missing record",
				"seq", entry.Seq, "kind", entry.Kind, "entity_id", entry.EntityID)
			if ackErr := e.queue.Acknowledge(ctx, entry.Seq); ackErr != nil {
				return fmt.Errorf("failed to acknowledge entry %d: %w", entry.Seq, ackErr)
			}
		default:
			// Unavailable or unauthorized: stop the run, keep the queue.
			return err
		}
	}
	return nil
}

// handleRejected counts a validation rejection against the entry and drops
// it once the limit is reached. The record's local state is kept.
func (e *Engine) handleRejected(ctx context.Context, entry models.QueueEntry, cause error) error {
	attempts, err := e.queue.IncrementAttempts(ctx, entry.Seq)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return fmt.Errorf("failed to record rejection for entry %d: %w", entry.Seq, err)
	}
	if attempts < maxValidationAttempts {
		e.log.Warn(ctx, "server rejected queued mutation",
			"seq", entry.Seq, "kind", entry.Kind, "entity_id", entry.EntityID,
			"attempts", attempts, "error", cause)
		return nil
	}
	e.log.Error(ctx, "dropping queued mutation after repeated rejections",
		"seq", entry.Seq, "kind", entry.Kind, "entity_id", entry.EntityID,
		"attempts", attempts, "error", cause)
	return e.queue.Acknowledge(ctx, entry.Seq)
}

// processEntry pushes one entry. For a create it returns the
// server-assigned identity so the drain loop can retarget the in-memory
// rest of the chain.
func (e *Engine) processEntry(ctx context.Context, entry models.QueueEntry) (string, error) {
	switch entry.Kind {
	case models.MutationCreateGig:
		return e.pushCreate(ctx, entry)
	case models.MutationUpdateGig:
		return "", e.pushUpdate(ctx, entry)
	case models.MutationDeleteGig:
		return "", e.pushDelete(ctx, entry)
	default:
		e.log.Error(ctx, "unknown mutation kind in queue", "seq", entry.Seq, "kind", entry.Kind)
		return "", nil
	}
}

// pushCreate submits the snapshot and promotes the local-provisional
// identity to the server-assigned one. The row replacement, queue
// retargeting, and acknowledgement commit atomically so a crash can never
// leave the record half-promoted.
func (e *Engine) pushCreate(ctx context.Context, entry models.QueueEntry) (string, error) {
	var g models.Gig
	if err := json.Unmarshal(entry.Payload, &g); err != nil {
		e.log.Error(ctx, "dropping undecodable queue payload", "seq", entry.Seq, "error", err)
		return "", nil
	}

	w := wire.GigToWire(g)
	w.ID = "" // the server assigns the durable identity
	scrubVenueRef(&w)

	confirmed, err := common.RetryWithResult(ctx, transient, func(ctx context.Context) (*wire.Gig, error) {
		return e.gw.CreateGig(ctx, w)
	})
	if err != nil {
		return "", err
	}

	serverGig := wire.GigFromWire(*confirmed)
	err = dbx.WithTx(ctx, e.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		gigRepo := gigs.NewSQLiteRepository(tx)
		queueRepo := queue.NewSQLiteRepository(tx)

		if err := gigRepo.DeleteByID(ctx, entry.EntityID); err != nil {
			return err
		}
		if err := gigRepo.Upsert(ctx, &serverGig); err != nil {
			return err
		}
		if err := queueRepo.Retarget(ctx, entry.EntityID, serverGig.ID); err != nil {
			return err
		}
		return queueRepo.Acknowledge(ctx, entry.Seq)
	})
	if err != nil {
		return "", err
	}
	return serverGig.ID, nil
}

func (e *Engine) pushUpdate(ctx context.Context, entry models.QueueEntry) error {
	var g models.Gig
	if err := json.Unmarshal(entry.Payload, &g); err != nil {
		e.log.Error(ctx, "dropping undecodable queue payload", "seq", entry.Seq, "error", err)
		return nil
	}

	w := wire.GigToWire(g)
	w.ID = entry.EntityID
	scrubVenueRef(&w)

	// The merged result is not applied here: the following pull phase
	// carries whichever side won.
	_, err := common.RetryWithResult(ctx, transient, func(ctx context.Context) (*wire.Gig, error) {
		return e.gw.UpdateGig(ctx, entry.EntityID, w)
	})
	return err
}

// pushDelete only ever sees server-confirmed identities; provisional
// chains are cancelled before the drain reaches them.
func (e *Engine) pushDelete(ctx context.Context, entry models.QueueEntry) error {
	return common.Retry(ctx, transient, func(ctx context.Context) error {
		return e.gw.DeleteGig(ctx, entry.EntityID)
	})
}

// scrubVenueRef clears a venue reference that is not a server-shaped
// identity. The snapshot fields already carry the display data, so the
// record stays valid without the link.
func scrubVenueRef(w *wire.Gig) {
	if w.VenueID == "" {
		return
	}
	if _, err := uuid.Parse(w.VenueID); err != nil {
		w.VenueID = ""
	}
}

// Pull fetches every record updated after the checkpoint and applies it
// unconditionally; the server already resolved conflicts. The checkpoint
// advances to the moment the request was issued, never backwards, so a
// re-run of the same delta is harmless.
func (e *Engine) Pull(ctx context.Context) error {
	if !e.pulling.CompareAndSwap(false, true) {
		return nil
	}
	defer e.pulling.Store(false)

	since, err := e.metadata.GetTime(ctx, metadata.KeyLastPullAt)
	if err != nil {
		return fmt.Errorf("failed to read checkpoint: %w", err)
	}
	if since.IsZero() {
		since = checkpointEpoch
	}

	requestedAt := e.now()
	res, err := common.RetryWithResult(ctx, transient, func(ctx context.Context) (*gateway.PullResult, error) {
		return e.gw.Pull(ctx, since)
	})
	if err != nil {
		return err
	}

	for i := range res.Gigs {
		g := wire.GigFromWire(res.Gigs[i])
		if err := e.gigs.Upsert(ctx, &g); err != nil {
			return fmt.Errorf("failed to apply pulled gig: %w", err)
		}
	}
	for i := range res.Venues {
		v := wire.VenueFromWire(res.Venues[i])
		if err := e.venues.Upsert(ctx, &v); err != nil {
			return fmt.Errorf("failed to apply pulled venue: %w", err)
		}
	}
	for i := range res.People {
		p := wire.PersonFromWire(res.People[i])
		if err := e.people.Upsert(ctx, &p); err != nil {
			return fmt.Errorf("failed to apply pulled person: %w", err)
		}
	}

	if requestedAt.After(since) {
		if err := e.metadata.SetTime(ctx, metadata.KeyLastPullAt, requestedAt); err != nil {
			return fmt.Errorf("failed to advance checkpoint: %w", err)
		}
	}

	e.log.Info(ctx, "pull applied",
		"gigs", len(res.Gigs), "venues", len(res.Venues), "people", len(res.People))
	return nil
}
