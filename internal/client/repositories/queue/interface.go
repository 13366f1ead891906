package queue

import (
	"context"
	"time"

	"github.com/kotirearend/giglog/internal/client/models"
)

// Repository is the ordered log of not-yet-confirmed local writes. Entries
// are appended with monotonically increasing sequence numbers and drained
// strictly in enqueue order; they are never reordered or coalesced, so a
// delete can never be applied before the create it depends on.
type Repository interface {
	// Enqueue appends an entry and returns its sequence number.
	Enqueue(ctx context.Context, kind models.MutationKind, entityID string, payload []byte, enqueuedAt time.Time) (int64, error)

	// All returns the full queue in enqueue order without removing anything;
	// the push phase walks this view and acknowledges entries individually.
	All(ctx context.Context) ([]models.QueueEntry, error)

	// Acknowledge removes a single entry. Acknowledging an already-removed
	// sequence number is a no-op, not an error.
	Acknowledge(ctx context.Context, seq int64) error

	// Retarget repoints all queued entries for oldID at newID, rewriting the
	// identity inside each payload snapshot. Used when the server confirms a
	// creation and the local-provisional identity is replaced.
	Retarget(ctx context.Context, oldID, newID string) error

	// IncrementAttempts bumps the permanent-failure counter for an entry and
	// returns the new count.
	IncrementAttempts(ctx context.Context, seq int64) (int, error)
}
