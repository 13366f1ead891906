package models

import "time"

// Purchase is one item bought at a gig.
type Purchase struct {
	Category string  `json:"category"`
	Label    string  `json:"label"`
	Amount   float64 `json:"amount"`
	Pint     bool    `json:"pint"`
}

// Gig is one attendance record. Venue name and city are snapshots taken at
// gig time; editing a venue later never rewrites diary history.
type Gig struct {
	ID                string     `json:"id"`
	UserID            string     `json:"-"`
	GigDate           string     `json:"gig_date"` // YYYY-MM-DD
	GigTime           string     `json:"gig_time,omitempty"`
	VenueID           *string    `json:"venue_id,omitempty"`
	VenueNameSnapshot string     `json:"venue_name_snapshot"`
	VenueCitySnapshot string     `json:"venue_city_snapshot,omitempty"`
	Lat               *float64   `json:"lat,omitempty"`
	Lng               *float64   `json:"lng,omitempty"`
	ArtistText        string     `json:"artist_text"`
	MoodTags          []string   `json:"mood_tags,omitempty"`
	PeopleIDs         []string   `json:"people_ids,omitempty"`
	People            []string   `json:"people,omitempty"`
	SpendTotal        *float64   `json:"spend_total,omitempty"`
	Purchases         []Purchase `json:"purchases,omitempty"`
	Rating            *int       `json:"rating,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	PhotoIDs          []string   `json:"photo_ids,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type Venue struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	City      string    `json:"city,omitempty"`
	Lat       *float64  `json:"lat,omitempty"`
	Lng       *float64  `json:"lng,omitempty"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Person struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Nickname  string    `json:"nickname"`
	Emoji     string    `json:"emoji,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}
