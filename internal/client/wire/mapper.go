package wire

import "github.com/kotirearend/giglog/internal/client/models"

// GigToWire translates a domain gig to server field names. Pure and total:
// every domain field has a wire home, unmapped fields pass through, and
// GigFromWire(GigToWire(g)) preserves all domain-meaningful fields of g.
func GigToWire(g models.Gig) Gig {
	return Gig{
		ID:                g.ID,
		GigDate:           g.GigDate,
		GigTime:           g.GigTime,
		VenueID:           g.VenueID,
		VenueNameSnapshot: g.VenueNameSnapshot,
		VenueCitySnapshot: g.VenueCitySnapshot,
		Lat:               g.Lat,
		Lng:               g.Lng,
		ArtistText:        g.ArtistText,
		MoodTags:          g.Mood,
		PeopleIDs:         g.PeopleIDs,
		People:            g.People,
		SpendTotal:        g.SpendTotal,
		Purchases:         g.SpendItems,
		Rating:            g.Rating,
		Notes:             g.Notes,
		PhotoIDs:          g.PhotoIDs,
		CreatedAt:         g.CreatedAt,
		UpdatedAt:         g.UpdatedAt,
	}
}

// GigFromWire translates a server gig back to the domain model.
func GigFromWire(w Gig) models.Gig {
	return models.Gig{
		ID:                w.ID,
		GigDate:           w.GigDate,
		GigTime:           w.GigTime,
		VenueID:           w.VenueID,
		VenueNameSnapshot: w.VenueNameSnapshot,
		VenueCitySnapshot: w.VenueCitySnapshot,
		Lat:               w.Lat,
		Lng:               w.Lng,
		ArtistText:        w.ArtistText,
		Mood:              w.MoodTags,
		PeopleIDs:         w.PeopleIDs,
		People:            w.People,
		SpendTotal:        w.SpendTotal,
		SpendItems:        w.Purchases,
		Rating:            w.Rating,
		Notes:             w.Notes,
		PhotoIDs:          w.PhotoIDs,
		CreatedAt:         w.CreatedAt,
		UpdatedAt:         w.UpdatedAt,
	}
}

// VenueToWire translates a domain venue to server field names.
func VenueToWire(v models.Venue) Venue {
	return Venue{
		ID:        v.ID,
		Name:      v.Name,
		City:      v.City,
		Lat:       v.Lat,
		Lng:       v.Lng,
		Source:    v.Source,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

// VenueFromWire translates a server venue back to the domain model.
// Records arriving from the server are by definition confirmed.
func VenueFromWire(w Venue) models.Venue {
	return models.Venue{
		ID:        w.ID,
		Name:      w.Name,
		City:      w.City,
		Lat:       w.Lat,
		Lng:       w.Lng,
		Source:    w.Source,
		Pending:   false,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

// PersonToWire translates a domain person to server field names.
func PersonToWire(p models.Person) Person {
	return Person{
		ID:        p.ID,
		Nickname:  p.Nickname,
		Emoji:     p.Emoji,
		CreatedAt: p.CreatedAt,
	}
}

// PersonFromWire translates a server person back to the domain model.
func PersonFromWire(w Person) models.Person {
	return models.Person{
		ID:        w.ID,
		Nickname:  w.Nickname,
		Emoji:     w.Emoji,
		Pending:   false,
		CreatedAt: w.CreatedAt,
	}
}
