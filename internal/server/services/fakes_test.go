package services

import (
	"context"
	"database/sql"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kotirearend/giglog/internal/common"
	"github.com/kotirearend/giglog/internal/dbx"
	"github.com/kotirearend/giglog/internal/server/models"
	gigsrepo "github.com/kotirearend/giglog/internal/server/repositories/gigs"
	peoplerepo "github.com/kotirearend/giglog/internal/server/repositories/people"
	refreshtokensrepo "github.com/kotirearend/giglog/internal/server/repositories/refreshtokens"
	usersrepo "github.com/kotirearend/giglog/internal/server/repositories/users"
	venuesrepo "github.com/kotirearend/giglog/internal/server/repositories/venues"
)

// In-memory fakes for the repository interfaces. They ignore the DBTX they
// are vended with, so transactional and plain calls hit the same state.

type fakeUsersRepo struct {
	users  map[string]*models.User // keyed by email
	nextID int
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{users: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.nextID++
	u.ID = "u-" + strconv.Itoa(f.nextID)
	u.CreatedAt = time.Now()
	f.users[u.Email] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) UpdateDisplayName(ctx context.Context, id string, displayName string) error {
	for _, u := range f.users {
		if u.ID == id {
			u.DisplayName = displayName
			return nil
		}
	}
	return common.ErrorNotFound
}

type fakeRefreshRepo struct {
	tokens map[string]*models.RefreshToken
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{tokens: map[string]*models.RefreshToken{}}
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	f.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := f.tokens[token]; ok {
		return t, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

func (f *fakeRefreshRepo) DeleteExpired(ctx context.Context) (int64, error) {
	var n int64
	for token, t := range f.tokens {
		if t.Expires.Before(time.Now()) {
			delete(f.tokens, token)
			n++
		}
	}
	return n, nil
}

type fakeGigsRepo struct {
	gigs map[string]*models.Gig
}

func newFakeGigsRepo() *fakeGigsRepo {
	return &fakeGigsRepo{gigs: map[string]*models.Gig{}}
}

func (f *fakeGigsRepo) Upsert(ctx context.Context, gig *models.Gig) error {
	copied := *gig
	f.gigs[gig.ID] = &copied
	return nil
}

func (f *fakeGigsRepo) GetByID(ctx context.Context, userID string, id string) (*models.Gig, error) {
	if g, ok := f.gigs[id]; ok && g.UserID == userID {
		return g, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeGigsRepo) List(ctx context.Context, userID string, filter gigsrepo.ListFilter) ([]*models.Gig, error) {
	var result []*models.Gig
	for _, g := range f.gigs {
		if g.UserID != userID {
			continue
		}
		if filter.Year != 0 && !strings.HasPrefix(g.GigDate, strconv.Itoa(filter.Year)) {
			continue
		}
		if filter.Artist != "" && !strings.Contains(strings.ToLower(g.ArtistText), strings.ToLower(filter.Artist)) {
			continue
		}
		if filter.VenueID != "" && (g.VenueID == nil || *g.VenueID != filter.VenueID) {
			continue
		}
		result = append(result, g)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].GigDate > result[j].GigDate })
	return result, nil
}

func (f *fakeGigsRepo) Delete(ctx context.Context, userID string, id string) error {
	if g, ok := f.gigs[id]; ok && g.UserID == userID {
		delete(f.gigs, id)
		return nil
	}
	return common.ErrorNotFound
}

func (f *fakeGigsRepo) UpdatedSince(ctx context.Context, userID string, since time.Time) ([]*models.Gig, error) {
	var result []*models.Gig
	for _, g := range f.gigs {
		if g.UserID == userID && g.UpdatedAt.After(since) {
			result = append(result, g)
		}
	}
	return result, nil
}

type fakeVenuesRepo struct {
	venues map[string]*models.Venue
}

func newFakeVenuesRepo() *fakeVenuesRepo {
	return &fakeVenuesRepo{venues: map[string]*models.Venue{}}
}

func (f *fakeVenuesRepo) Upsert(ctx context.Context, venue *models.Venue) error {
	copied := *venue
	f.venues[venue.ID] = &copied
	return nil
}

func (f *fakeVenuesRepo) GetByID(ctx context.Context, userID string, id string) (*models.Venue, error) {
	if v, ok := f.venues[id]; ok && v.UserID == userID {
		return v, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeVenuesRepo) List(ctx context.Context, userID string, search string) ([]*models.Venue, error) {
	var result []*models.Venue
	for _, v := range f.venues {
		if v.UserID != userID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(v.Name), strings.ToLower(search)) &&
			!strings.Contains(strings.ToLower(v.City), strings.ToLower(search)) {
			continue
		}
		result = append(result, v)
	}
	return result, nil
}

func (f *fakeVenuesRepo) UpdatedSince(ctx context.Context, userID string, since time.Time) ([]*models.Venue, error) {
	var result []*models.Venue
	for _, v := range f.venues {
		if v.UserID == userID && v.UpdatedAt.After(since) {
			result = append(result, v)
		}
	}
	return result, nil
}

type fakePeopleRepo struct {
	people map[string]*models.Person
}

func newFakePeopleRepo() *fakePeopleRepo {
	return &fakePeopleRepo{people: map[string]*models.Person{}}
}

func (f *fakePeopleRepo) Upsert(ctx context.Context, person *models.Person) error {
	copied := *person
	f.people[person.ID] = &copied
	return nil
}

func (f *fakePeopleRepo) GetByID(ctx context.Context, userID string, id string) (*models.Person, error) {
	if p, ok := f.people[id]; ok && p.UserID == userID {
		return p, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakePeopleRepo) FindByNickname(ctx context.Context, userID string, nickname string) (*models.Person, error) {
	for _, p := range f.people {
		if p.UserID == userID && strings.EqualFold(p.Nickname, nickname) {
			return p, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakePeopleRepo) List(ctx context.Context, userID string) ([]*models.Person, error) {
	var result []*models.Person
	for _, p := range f.people {
		if p.UserID == userID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (f *fakePeopleRepo) UpdatedSince(ctx context.Context, userID string, since time.Time) ([]*models.Person, error) {
	var result []*models.Person
	for _, p := range f.people {
		if p.UserID == userID && p.UpdatedAt.After(since) {
			result = append(result, p)
		}
	}
	return result, nil
}

type fakeRepoManager struct {
	u  *fakeUsersRepo
	rt *fakeRefreshRepo
	g  *fakeGigsRepo
	v  *fakeVenuesRepo
	p  *fakePeopleRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		u:  newFakeUsersRepo(),
		rt: newFakeRefreshRepo(),
		g:  newFakeGigsRepo(),
		v:  newFakeVenuesRepo(),
		p:  newFakePeopleRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error           { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository { return m.rt }
func (m *fakeRepoManager) Gigs(db dbx.DBTX) gigsrepo.Repository                   { return m.g }
func (m *fakeRepoManager) Venues(db dbx.DBTX) venuesrepo.Repository               { return m.v }
func (m *fakeRepoManager) People(db dbx.DBTX) peoplerepo.Repository               { return m.p }
