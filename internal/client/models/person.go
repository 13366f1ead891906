package models

import "time"

// Person is a gig companion. Nicknames are unique per user by
// case-insensitive comparison; the server enforces this on sync.
type Person struct {
	ID        string    `json:"id"`
	Nickname  string    `json:"nickname"`
	Emoji     string    `json:"emoji,omitempty"`
	Pending   bool      `json:"pending,omitempty"` // true until the server has confirmed this person
	CreatedAt time.Time `json:"created_at"`
}
