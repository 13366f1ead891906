package cli

import (
	"context"
	"fmt"
	"log"
	"os"
)

func (a *App) AddVenue(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Venue name", os.Stdout)
	if err != nil {
		return err
	}
	city, err := getSimpleText(a.reader, "City", os.Stdout)
	if err != nil {
		return err
	}

	v, err := a.libraryService.AddVenue(ctx, name, city, nil, nil)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	fmt.Printf("Added %s [%s]\n", v.Name, v.ID)
	return nil
}

func (a *App) Venues(ctx context.Context) error {
	all, err := a.libraryService.Venues(ctx)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	for _, v := range all {
		marker := ""
		if v.Pending {
			marker = " (not yet synced)"
		}
		fmt.Printf("%s, %s  [%s]%s\n", v.Name, v.City, v.ID, marker)
	}
	return nil
}

func (a *App) AddPerson(ctx context.Context) error {
	nickname, err := getSimpleText(a.reader, "Nickname", os.Stdout)
	if err != nil {
		return err
	}
	emoji, err := getSimpleText(a.reader, "Emoji (optional)", os.Stdout)
	if err != nil {
		return err
	}

	p, err := a.libraryService.AddPerson(ctx, nickname, emoji)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	fmt.Printf("Added %s %s\n", p.Emoji, p.Nickname)
	return nil
}

func (a *App) People(ctx context.Context) error {
	all, err := a.libraryService.People(ctx)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	for _, p := range all {
		fmt.Printf("%s %s  [%s]\n", p.Emoji, p.Nickname, p.ID)
	}
	return nil
}
