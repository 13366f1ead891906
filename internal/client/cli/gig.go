package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/kotirearend/giglog/internal/client/models"
)

// AddGig interactively collects a gig record and saves it locally. Every
// prompt except the artist may be left empty.
func (a *App) AddGig(ctx context.Context) error {
	artist, err := getSimpleText(a.reader, "Who played?", os.Stdout)
	if err != nil {
		return err
	}
	date, err := getSimpleText(a.reader, "Date (YYYY-MM-DD, empty for tonight)", os.Stdout)
	if err != nil {
		return err
	}
	venueName, err := getSimpleText(a.reader, "Venue", os.Stdout)
	if err != nil {
		return err
	}
	venueCity, err := getSimpleText(a.reader, "City", os.Stdout)
	if err != nil {
		return err
	}
	ratingText, err := getSimpleText(a.reader, "Rating 1-5 (empty to skip)", os.Stdout)
	if err != nil {
		return err
	}

	g := models.Gig{
		ArtistText:        artist,
		GigDate:           date,
		VenueNameSnapshot: venueName,
		VenueCitySnapshot: venueCity,
	}

	if ratingText != "" {
		rating, err := strconv.Atoi(ratingText)
		if err != nil {
			log.Printf("rating must be a number")
			return err
		}
		g.Rating = &rating
	}

	// Reuse a library venue when the name matches, so the gig links to it.
	if venueName != "" {
		if venues, err := a.libraryService.Venues(ctx); err == nil {
			for _, v := range venues {
				if strings.EqualFold(v.Name, venueName) {
					g.VenueID = v.ID
					break
				}
			}
		}
	}

	items, err := a.readPurchases()
	if err != nil {
		return err
	}
	g.SpendItems = items

	notes, err := GetMultiline(a.reader, "Notes", os.Stdout)
	if err != nil {
		return err
	}
	g.Notes = notes

	saved, err := a.gigService.Add(ctx, g)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	fmt.Printf("Saved %s (%s)\n", saved.ArtistText, saved.GigDate)
	return nil
}

// readPurchases collects "label amount [pint]" lines until an empty line.
func (a *App) readPurchases() ([]models.SpendItem, error) {
	fmt.Println("Purchases as 'label amount [pint]' (empty line to finish)")
	var items []models.SpendItem
	for {
		line, err := getSimpleText(a.reader, "", os.Stdout)
		if err != nil {
			return nil, err
		}
		if line == "" {
			return items, nil
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			fmt.Println("Need at least a label and an amount")
			continue
		}
		amount, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			fmt.Println("Amount must be a number")
			continue
		}
		item := models.SpendItem{Label: fields[0], Amount: amount}
		if len(fields) > 2 && strings.EqualFold(fields[2], "pint") {
			item.Pint = true
			item.Category = "drink"
		}
		items = append(items, item)
	}
}

func (a *App) List(ctx context.Context) error {
	all, err := a.gigService.List(ctx)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	if len(all) == 0 {
		fmt.Println("No gigs yet. Try 'add'.")
		return nil
	}
	for _, g := range all {
		marker := ""
		if models.IsLocalID(g.ID) {
			marker = " (not yet synced)"
		}
		fmt.Printf("%s  %s @ %s  [%s]%s\n", g.GigDate, g.ArtistText, g.VenueNameSnapshot, g.ID, marker)
	}
	return nil
}

func (a *App) Show(ctx context.Context, id string) error {
	g, err := a.gigService.Get(ctx, id)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	fmt.Printf("%s @ %s", g.ArtistText, g.VenueNameSnapshot)
	if g.VenueCitySnapshot != "" {
		fmt.Printf(", %s", g.VenueCitySnapshot)
	}
	fmt.Printf("\nDate: %s", g.GigDate)
	if g.Rating != nil {
		fmt.Printf("\nRating: %s", strings.Repeat("★", *g.Rating))
	}
	if g.SpendTotal != nil {
		fmt.Printf("\nSpend: %.2f", *g.SpendTotal)
	}
	for _, item := range g.SpendItems {
		fmt.Printf("\n  - %s %.2f", item.Label, item.Amount)
	}
	if g.Notes != "" {
		fmt.Printf("\n%s", g.Notes)
	}
	fmt.Println()
	return nil
}

// EditGig re-prompts the mutable fields of a gig. An empty answer keeps the
// current value.
func (a *App) EditGig(ctx context.Context, id string) error {
	g, err := a.gigService.Get(ctx, id)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	artist, err := getSimpleText(a.reader, fmt.Sprintf("Who played? [%s]", g.ArtistText), os.Stdout)
	if err != nil {
		return err
	}
	if artist != "" {
		g.ArtistText = artist
	}
	date, err := getSimpleText(a.reader, fmt.Sprintf("Date [%s]", g.GigDate), os.Stdout)
	if err != nil {
		return err
	}
	if date != "" {
		g.GigDate = date
	}
	current := "-"
	if g.Rating != nil {
		current = strconv.Itoa(*g.Rating)
	}
	ratingText, err := getSimpleText(a.reader, fmt.Sprintf("Rating 1-5 [%s]", current), os.Stdout)
	if err != nil {
		return err
	}
	if ratingText != "" {
		rating, err := strconv.Atoi(ratingText)
		if err != nil {
			log.Printf("rating must be a number")
			return err
		}
		g.Rating = &rating
	}
	notes, err := GetMultiline(a.reader, "Notes (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}
	if notes != "" {
		g.Notes = notes
	}

	updated, err := a.gigService.Update(ctx, *g)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	fmt.Printf("Updated %s (%s)\n", updated.ArtistText, updated.GigDate)
	return nil
}

func (a *App) DeleteGig(ctx context.Context, id string) error {
	if err := a.gigService.Delete(ctx, id); err != nil {
		log.Println(err.Error())
		return err
	}
	fmt.Println("Deleted.")
	return nil
}
