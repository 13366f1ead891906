package cli

import (
	"bufio"
	"context"
	"log"
	"os"
	"time"

	"github.com/kotirearend/giglog/internal/client/config"
	"github.com/kotirearend/giglog/internal/client/gateway"
	"github.com/kotirearend/giglog/internal/client/services"
	"github.com/kotirearend/giglog/internal/client/store"
	gigsync "github.com/kotirearend/giglog/internal/client/sync"
	"github.com/kotirearend/giglog/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config         *config.Config
	repos          *store.Repositories
	authService    services.AuthService
	gigService     services.GigService
	libraryService services.LibraryService
	statsService   services.StatsService
	engine         *gigsync.Engine
	photoGW        gateway.PhotoGateway

	userEmail string
	Mode      Mode
	reader    *bufio.Reader
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	repos, err := store.Open(ctx, c.DBPath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	tokens := services.MetadataTokenStore{Repo: repos.Metadata}
	gw := gateway.NewHTTPGateway(c.ServerURL, c.RequestTimeout, tokens)

	return &App{
		config:         c,
		repos:          repos,
		authService:    services.NewAuthService(gw, gw, repos.Metadata),
		gigService:     services.NewGigService(repos.Gigs, repos.Venues, repos.Queue),
		libraryService: services.NewLibraryService(repos.Venues, repos.People),
		statsService:   services.NewStatsService(repos.Gigs),
		engine:         gigsync.NewEngine(repos, gw, logger),
		photoGW:        gw,
		Mode:           ModeOffline,
		reader:         bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) isLoggedIn() bool {
	return a.userEmail != ""
}

// Run restores any persisted session, starts the background workers, and
// blocks in the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.repos.Close()

	if found, err := a.authService.Restore(ctx); err == nil && found {
		if email, err := a.authService.CurrentEmail(ctx); err == nil {
			a.userEmail = email
		}
		log.Printf("Welcome back, %s", a.userEmail)
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.SyncInterval)

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

func (a *App) getStatus() string {
	s := ""
	if a.userEmail != "" {
		s = a.userEmail + " "
	}
	return s + string(a.Mode)
}

// StartOnlineStatusWatcher probes the server on every tick. A transition to
// online also runs a sync pass, so edits made offline drain as soon as the
// connection returns.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.authService.Ping(probeCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
				continue
			}
			wasOffline := a.Mode != ModeOnline
			a.setMode(ModeOnline)
			if wasOffline && a.isLoggedIn() {
				if err := a.engine.Sync(ctx); err != nil {
					log.Printf("background sync: %s", err.Error())
				}
			}

		case <-ctx.Done():
			return
		}
	}
}
