package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/kotirearend/giglog/internal/client/repositories/gigs"
)

// NameCount is one entry of a top-N ranking.
type NameCount struct {
	Name  string
	Count int
}

// Summary is the at-a-glance view of the diary.
type Summary struct {
	TotalGigs    int
	GigsThisYear int
	UniqueVenues int
	TotalSpend   float64
	TopVenues    []NameCount
	TopArtists   []NameCount
}

// PintStats summarizes every purchase flagged as a pint.
type PintStats struct {
	Count        int
	TotalSpend   float64
	AveragePrice float64
	MaxPrice     float64
	MaxPriceGig  string // venue snapshot of the dearest pint
}

const topN = 5

// StatsService computes statistics over the local store, so it works fully
// offline and reflects unsynced edits immediately.
type StatsService interface {
	Summary(ctx context.Context) (*Summary, error)
	Pints(ctx context.Context) (*PintStats, error)
}

type statsService struct {
	gigRepo gigs.Repository
	now     func() time.Time
}

func NewStatsService(gigRepo gigs.Repository) StatsService {
	return &statsService{gigRepo: gigRepo, now: time.Now}
}

func (s *statsService) Summary(ctx context.Context) (*Summary, error) {
	all, err := s.gigRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	yearPrefix := s.now().UTC().Format("2006") + "-"
	venueCounts := map[string]int{}
	artistCounts := map[string]int{}
	out := &Summary{TotalGigs: len(all)}

	for _, g := range all {
		if strings.HasPrefix(g.GigDate, yearPrefix) {
			out.GigsThisYear++
		}
		if g.VenueNameSnapshot != "" {
			venueCounts[g.VenueNameSnapshot]++
		}
		for _, artist := range splitArtists(g.ArtistText) {
			artistCounts[artist]++
		}
		if g.SpendTotal != nil {
			out.TotalSpend += *g.SpendTotal
		}
	}

	out.UniqueVenues = len(venueCounts)
	out.TopVenues = topCounts(venueCounts, topN)
	out.TopArtists = topCounts(artistCounts, topN)
	return out, nil
}

// splitArtists breaks a free-text line-up into individual names.
func splitArtists(text string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == '+' }) {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func topCounts(counts map[string]int, n int) []NameCount {
	ranked := make([]NameCount, 0, len(counts))
	for name, count := range counts {
		ranked = append(ranked, NameCount{Name: name, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func (s *statsService) Pints(ctx context.Context) (*PintStats, error) {
	all, err := s.gigRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	out := &PintStats{}
	for _, g := range all {
		for _, item := range g.SpendItems {
			if !item.Pint {
				continue
			}
			out.Count++
			out.TotalSpend += item.Amount
			if item.Amount > out.MaxPrice {
				out.MaxPrice = item.Amount
				out.MaxPriceGig = g.VenueNameSnapshot
			}
		}
	}
	if out.Count > 0 {
		out.AveragePrice = out.TotalSpend / float64(out.Count)
	}
	return out, nil
}
