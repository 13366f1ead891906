package models

import "time"

// MutationKind identifies the type of a queued local write.
type MutationKind string

const (
	MutationCreateGig MutationKind = "create_gig"
	MutationUpdateGig MutationKind = "update_gig"
	MutationDeleteGig MutationKind = "delete_gig"
)

// QueueEntry is one pending local write awaiting confirmation by the
// server. Entries are drained strictly in Seq order per entity; they are
// never reordered or coalesced.
type QueueEntry struct {
	Seq        int64
	Kind       MutationKind
	EntityID   string
	Payload    []byte // JSON snapshot of the record at enqueue time
	Attempts   int    // completed push attempts that ended in a validation rejection
	EnqueuedAt time.Time
}
