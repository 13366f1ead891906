// Package services: StatsService aggregates the diary into summary and
// pint-economics reports server-side, mirroring what the client computes
// locally.
package services

import (
	"context"
	"database/sql"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kotirearend/giglog/internal/server/repositories/gigs"
	"github.com/kotirearend/giglog/internal/server/repositories/repomanager"
)

const topN = 5

// NameCount pairs a name with how often it appears.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summary is the headline view of one user's diary.
type Summary struct {
	TotalGigs    int         `json:"total_gigs"`
	GigsThisYear int         `json:"gigs_this_year"`
	UniqueVenues int         `json:"unique_venues"`
	TotalSpend   float64     `json:"total_spend"`
	TopVenues    []NameCount `json:"top_venues"`
	TopArtists   []NameCount `json:"top_artists"`
}

// Pints is the pint economics report.
type Pints struct {
	Count        int     `json:"count"`
	TotalSpend   float64 `json:"total_spend"`
	AveragePrice float64 `json:"average_price"`
	MaxPrice     float64 `json:"max_price"`
	MaxPriceGig  string  `json:"max_price_gig,omitempty"`
}

type StatsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewStatsService(db *sql.DB, m repomanager.RepositoryManager) *StatsService {
	return &StatsService{db: db, repomanager: m}
}

func (s *StatsService) Summary(ctx context.Context, userID string) (*Summary, error) {
	list, err := s.repomanager.Gigs(s.db).List(ctx, userID, gigs.ListFilter{})
	if err != nil {
		return nil, err
	}

	year := strconv.Itoa(time.Now().UTC().Year())
	venueCounts := map[string]int{}
	artistCounts := map[string]int{}
	result := &Summary{TotalGigs: len(list)}

	for _, gig := range list {
		if strings.HasPrefix(gig.GigDate, year) {
			result.GigsThisYear++
		}
		if gig.SpendTotal != nil {
			result.TotalSpend += *gig.SpendTotal
		}
		if name := strings.TrimSpace(gig.VenueNameSnapshot); name != "" {
			venueCounts[name]++
		}
		for _, artist := range splitArtists(gig.ArtistText) {
			artistCounts[artist]++
		}
	}

	result.UniqueVenues = len(venueCounts)
	result.TopVenues = topCounts(venueCounts)
	result.TopArtists = topCounts(artistCounts)
	return result, nil
}

func (s *StatsService) Pints(ctx context.Context, userID string) (*Pints, error) {
	list, err := s.repomanager.Gigs(s.db).List(ctx, userID, gigs.ListFilter{})
	if err != nil {
		return nil, err
	}

	result := &Pints{}
	for _, gig := range list {
		for _, purchase := range gig.Purchases {
			if !purchase.Pint {
				continue
			}
			result.Count++
			result.TotalSpend += purchase.Amount
			if purchase.Amount > result.MaxPrice {
				result.MaxPrice = purchase.Amount
				result.MaxPriceGig = gig.ID
			}
		}
	}
	if result.Count > 0 {
		result.AveragePrice = result.TotalSpend / float64(result.Count)
	}
	return result, nil
}

func splitArtists(artistText string) []string {
	parts := strings.FieldsFunc(artistText, func(r rune) bool {
		return r == ',' || r == '+'
	})
	var artists []string
	for _, part := range parts {
		if name := strings.TrimSpace(part); name != "" {
			artists = append(artists, name)
		}
	}
	return artists
}

func topCounts(counts map[string]int) []NameCount {
	result := make([]NameCount, 0, len(counts))
	for name, count := range counts {
		result = append(result, NameCount{Name: name, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Name < result[j].Name
	})
	if len(result) > topN {
		result = result[:topN]
	}
	return result
}
