// Package wire defines the server-facing record shapes and the field
// mapper between them and the domain model. The server names a few fields
// differently from the client (mood tags, purchases); every rename lives
// here and only here, so wire naming drift never leaks into domain code.
package wire

import (
	"time"

	"github.com/kotirearend/giglog/internal/client/models"
)

// Gig is a gig record in server field names.
type Gig struct {
	ID                string             `json:"id,omitempty"`
	GigDate           string             `json:"gig_date"`
	GigTime           string             `json:"gig_time,omitempty"`
	VenueID           string             `json:"venue_id,omitempty"`
	VenueNameSnapshot string             `json:"venue_name_snapshot"`
	VenueCitySnapshot string             `json:"venue_city_snapshot,omitempty"`
	Lat               *float64           `json:"lat,omitempty"`
	Lng               *float64           `json:"lng,omitempty"`
	ArtistText        string             `json:"artist_text"`
	MoodTags          []string           `json:"mood_tags,omitempty"`
	PeopleIDs         []string           `json:"people_ids,omitempty"`
	People            []string           `json:"people,omitempty"`
	SpendTotal        *float64           `json:"spend_total,omitempty"`
	Purchases         []models.SpendItem `json:"purchases,omitempty"`
	Rating            *int               `json:"rating,omitempty"`
	Notes             string             `json:"notes,omitempty"`
	PhotoIDs          []string           `json:"photo_ids,omitempty"`
	CreatedAt         time.Time          `json:"created_at,omitempty"`
	UpdatedAt         time.Time          `json:"updated_at,omitempty"`
}

// Venue is a venue record in server field names.
type Venue struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	City      string    `json:"city,omitempty"`
	Lat       *float64  `json:"lat,omitempty"`
	Lng       *float64  `json:"lng,omitempty"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Person is a person record in server field names.
type Person struct {
	ID        string    `json:"id,omitempty"`
	Nickname  string    `json:"nickname"`
	Emoji     string    `json:"emoji,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
