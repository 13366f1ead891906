// Package models defines the client-side domain model: gigs, venues,
// people, and the pending-mutation queue entries. These are the shapes the
// rest of the client operates on; the wire package owns the translation to
// and from server field names.
package models

import (
	"fmt"
	"strings"
	"time"
)

// LocalIDPrefix marks a record identity as local-provisional: assigned on
// this device before the server has confirmed the creation. A provisional
// identity is never reused as a server identity.
const LocalIDPrefix = "local-"

// NewLocalID mints a local-provisional identity from the given moment.
func NewLocalID(now time.Time) string {
	return fmt.Sprintf("%s%d", LocalIDPrefix, now.UnixMilli())
}

// IsLocalID reports whether id is local-provisional.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, LocalIDPrefix)
}

// SpendItem is a single purchase made at a gig.
type SpendItem struct {
	Category string  `json:"category"`
	Label    string  `json:"label"`
	Amount   float64 `json:"amount"`
	Pint     bool    `json:"pint"`
}

// Gig is one concert attendance record. Venue name and city are snapshots
// captured at gig time so later venue edits do not rewrite history.
// JSON tags use the client field names; server field names live in the
// wire package.
type Gig struct {
	ID                string      `json:"id"`
	GigDate           string      `json:"gig_date"` // YYYY-MM-DD, night-of rule
	GigTime           string      `json:"gig_time,omitempty"`
	VenueID           string      `json:"venue_id,omitempty"`
	VenueNameSnapshot string      `json:"venue_name_snapshot"`
	VenueCitySnapshot string      `json:"venue_city_snapshot,omitempty"`
	Lat               *float64    `json:"lat,omitempty"`
	Lng               *float64    `json:"lng,omitempty"`
	ArtistText        string      `json:"artist_text"`
	Mood              []string    `json:"mood,omitempty"`
	PeopleIDs         []string    `json:"people_ids,omitempty"`
	People            []string    `json:"people,omitempty"`
	SpendTotal        *float64    `json:"spend_total,omitempty"`
	SpendItems        []SpendItem `json:"spend_items,omitempty"`
	Rating            *int        `json:"rating,omitempty"` // 0–5 stars
	Notes             string      `json:"notes,omitempty"`
	PhotoIDs          []string    `json:"photo_ids,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// Touch advances UpdatedAt, keeping it strictly increasing even when the
// wall clock has not moved since the previous mutation.
func (g *Gig) Touch(now time.Time) {
	if !now.After(g.UpdatedAt) {
		now = g.UpdatedAt.Add(time.Millisecond)
	}
	g.UpdatedAt = now
}
