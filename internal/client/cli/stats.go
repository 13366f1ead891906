package cli

import (
	"context"
	"fmt"
	"log"
)

func (a *App) Stats(ctx context.Context) error {
	s, err := a.statsService.Summary(ctx)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	fmt.Printf("Gigs: %d total, %d this year\n", s.TotalGigs, s.GigsThisYear)
	fmt.Printf("Venues visited: %d\n", s.UniqueVenues)
	fmt.Printf("Total spend: %.2f\n", s.TotalSpend)
	if len(s.TopVenues) > 0 {
		fmt.Println("Top venues:")
		for _, v := range s.TopVenues {
			fmt.Printf("  %d× %s\n", v.Count, v.Name)
		}
	}
	if len(s.TopArtists) > 0 {
		fmt.Println("Top artists:")
		for _, art := range s.TopArtists {
			fmt.Printf("  %d× %s\n", art.Count, art.Name)
		}
	}
	return nil
}

func (a *App) Pints(ctx context.Context) error {
	p, err := a.statsService.Pints(ctx)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	if p.Count == 0 {
		fmt.Println("No pints logged yet.")
		return nil
	}
	fmt.Printf("Pints: %d for %.2f (avg %.2f)\n", p.Count, p.TotalSpend, p.AveragePrice)
	fmt.Printf("Dearest pint: %.2f at %s\n", p.MaxPrice, p.MaxPriceGig)
	return nil
}

// Sync runs a full push+pull pass against the server on demand.
func (a *App) Sync(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Println("Log in first.")
		return nil
	}
	if err := a.engine.Sync(ctx); err != nil {
		log.Println(err.Error())
		a.setMode(ModeOffline)
		return err
	}
	a.setMode(ModeOnline)
	fmt.Println("Synced.")
	return nil
}
