package models

import "time"

// Venue source tags. Manual venues were typed in by the user; confirmed
// venues came back from the server's canonical list.
const (
	VenueSourceManual    = "manual"
	VenueSourceConfirmed = "confirmed"
)

// Venue is a place gigs happen at. Venues created on this device carry a
// client-minted UUID that the server adopts on first sync.
type Venue struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city,omitempty"`
	Lat       *float64  `json:"lat,omitempty"`
	Lng       *float64  `json:"lng,omitempty"`
	Source    string    `json:"source,omitempty"`
	Pending   bool      `json:"pending,omitempty"` // true until the server has confirmed this venue
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
