package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kotirearend/giglog/internal/common"
	"github.com/kotirearend/giglog/internal/server/models"
)

func TestLibraryCreateVenue_MintsIDAndDefaultsSource(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()
	rm := newFakeRepoManager()
	s := NewLibraryService(db, rm)

	created, err := s.CreateVenue(context.Background(), "u-1", &models.Venue{Name: "  Thekla "})
	if err != nil {
		t.Fatalf("CreateVenue error: %v", err)
	}
	if created.ID == "" {
		t.Fatal("no id minted")
	}
	if created.Name != "Thekla" || created.Source != "manual" {
		t.Fatalf("unexpected venue: %+v", created)
	}
	if _, ok := rm.v.venues[created.ID]; !ok {
		t.Fatal("venue not stored")
	}
}

func TestLibraryCreateVenue_RequiresName(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()
	s := NewLibraryService(db, newFakeRepoManager())

	_, err := s.CreateVenue(context.Background(), "u-1", &models.Venue{Name: "   "})
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("expected ErrorValidation, got %v", err)
	}
}

func TestLibraryCreatePerson_RejectsDuplicateNickname(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()
	s := NewLibraryService(db, newFakeRepoManager())
	ctx := context.Background()

	if _, err := s.CreatePerson(ctx, "u-1", &models.Person{Nickname: "Sam"}); err != nil {
		t.Fatalf("CreatePerson error: %v", err)
	}
	_, err := s.CreatePerson(ctx, "u-1", &models.Person{Nickname: "sam"})
	if !errors.Is(err, common.ErrorConflict) {
		t.Fatalf("expected ErrorConflict, got %v", err)
	}
}

func TestLibraryCreatePerson_RejectsLongNickname(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()
	s := NewLibraryService(db, newFakeRepoManager())

	_, err := s.CreatePerson(context.Background(), "u-1", &models.Person{Nickname: strings.Repeat("x", maxNicknameLen+1)})
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("expected ErrorValidation, got %v", err)
	}
}

func TestLibraryUpdatePerson_KeepsOwnNickname(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()
	s := NewLibraryService(db, newFakeRepoManager())
	ctx := context.Background()

	created, err := s.CreatePerson(ctx, "u-1", &models.Person{Nickname: "Sam", Emoji: "🎸"})
	if err != nil {
		t.Fatalf("CreatePerson error: %v", err)
	}

	// Changing only the emoji keeps the same nickname without tripping the
	// uniqueness check.
	updated, err := s.UpdatePerson(ctx, "u-1", created.ID, &models.Person{Nickname: "Sam", Emoji: "🥁"})
	if err != nil {
		t.Fatalf("UpdatePerson error: %v", err)
	}
	if updated.Emoji != "🥁" || updated.Nickname != "Sam" {
		t.Fatalf("unexpected person: %+v", updated)
	}
}

func TestLibraryVenues_NarrowsBySearch(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()
	rm := newFakeRepoManager()
	s := NewLibraryService(db, rm)
	ctx := context.Background()

	for _, name := range []string{"Thekla", "Exchange"} {
		if _, err := s.CreateVenue(ctx, "u-1", &models.Venue{Name: name}); err != nil {
			t.Fatalf("CreateVenue error: %v", err)
		}
	}

	got, err := s.Venues(ctx, "u-1", "thek")
	if err != nil {
		t.Fatalf("Venues error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Thekla" {
		t.Fatalf("unexpected result: %+v", got)
	}
}
