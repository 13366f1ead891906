// Package httpapi exposes the server's REST surface over chi. Handlers stay
// thin: decode, call the service, map the sentinel error to a status code.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kotirearend/giglog/internal/logging"
	"github.com/kotirearend/giglog/internal/server/models"
	"github.com/kotirearend/giglog/internal/server/repositories/gigs"
	"github.com/kotirearend/giglog/internal/server/services"
)

// UserService is the authentication surface the API needs.
type UserService interface {
	Register(ctx context.Context, email, password, displayName string) (*models.User, *services.TokenPair, error)
	Login(ctx context.Context, email, password string) (*models.User, *services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, displayName string) (*models.User, error)
}

// GigService is the diary CRUD surface.
type GigService interface {
	Create(ctx context.Context, userID string, gig *models.Gig) (*models.Gig, error)
	Update(ctx context.Context, userID string, id string, gig *models.Gig) (*models.Gig, error)
	Delete(ctx context.Context, userID string, id string) error
	Get(ctx context.Context, userID string, id string) (*models.Gig, error)
	List(ctx context.Context, userID string, filter gigs.ListFilter) ([]*models.Gig, error)
}

// SyncService is the batch merge and delta surface.
type SyncService interface {
	Push(ctx context.Context, userID string, batch *services.PushBatch) error
	Pull(ctx context.Context, userID string, since time.Time) (*services.PullResult, error)
}

// LibraryService manages the user's venues and people.
type LibraryService interface {
	Venues(ctx context.Context, userID string, search string) ([]*models.Venue, error)
	People(ctx context.Context, userID string) ([]*models.Person, error)
	CreateVenue(ctx context.Context, userID string, venue *models.Venue) (*models.Venue, error)
	CreatePerson(ctx context.Context, userID string, person *models.Person) (*models.Person, error)
	UpdatePerson(ctx context.Context, userID string, id string, person *models.Person) (*models.Person, error)
}

// StatsService is the aggregate reporting surface.
type StatsService interface {
	Summary(ctx context.Context, userID string) (*services.Summary, error)
	Pints(ctx context.Context, userID string) (*services.Pints, error)
}

// PhotoService mints presigned object-storage URLs.
type PhotoService interface {
	GetPresignedPutUrl(ctx context.Context, userID string) (string, string, error)
	GetPresignedGetUrl(ctx context.Context, key string) (string, error)
}

// Server bundles the handlers and their dependencies.
type Server struct {
	users     UserService
	gigs      GigService
	sync      SyncService
	library   LibraryService
	stats     StatsService
	photos    PhotoService
	jwtSecret []byte
	logger    logging.Logger
}

func NewServer(users UserService, gigs GigService, sync SyncService, library LibraryService,
	stats StatsService, photos PhotoService, secretKey string, logger logging.Logger) *Server {
	return &Server{
		users:     users,
		gigs:      gigs,
		sync:      sync,
		library:   library,
		stats:     stats,
		photos:    photos,
		jwtSecret: []byte(secretKey),
		logger:    logger.With("module", "httpapi"),
	}
}

// Router assembles all routes. Everything under the authenticated group
// requires a valid bearer token.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/api/health", s.handleHealth)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/refresh", s.handleRefresh)
		r.With(s.withAuth).Get("/profile", s.handleProfile)
		r.With(s.withAuth).Put("/profile", s.handleUpdateProfile)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.withAuth)

		r.Route("/api/gigs", func(r chi.Router) {
			r.Get("/", s.handleListGigs)
			r.Post("/", s.handleCreateGig)
			r.Get("/{id}", s.handleGetGig)
			r.Put("/{id}", s.handleUpdateGig)
			r.Delete("/{id}", s.handleDeleteGig)
		})

		r.Get("/api/venues", s.handleListVenues)
		r.Post("/api/venues", s.handleCreateVenue)
		r.Get("/api/people", s.handleListPeople)
		r.Post("/api/people", s.handleCreatePerson)
		r.Put("/api/people/{id}", s.handleUpdatePerson)

		r.Get("/api/sync/pull", s.handlePull)
		r.Post("/api/sync/push", s.handlePush)

		r.Get("/api/stats/summary", s.handleStatsSummary)
		r.Get("/api/stats/pints", s.handleStatsPints)

		r.Post("/api/photos/upload-url", s.handlePhotoUploadURL)
		r.Get("/api/photos/download-url", s.handlePhotoDownloadURL)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
