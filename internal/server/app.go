// Package server wires the giglog API together: database, migrations,
// services, HTTP router, scheduled cleanup, and graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kotirearend/giglog/internal/logging"
	"github.com/kotirearend/giglog/internal/server/config"
	"github.com/kotirearend/giglog/internal/server/httpapi"
	"github.com/kotirearend/giglog/internal/server/repositories/repomanager"
	"github.com/kotirearend/giglog/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

// tokenCleanupSchedule runs the refresh-token sweep nightly at 03:00.
const tokenCleanupSchedule = "0 3 * * *"

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	userService *services.UserService
	handler     http.Handler
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	userService := services.NewUserService(db, rm, c)
	gigService := services.NewGigService(db, rm)
	syncService := services.NewSyncService(db, rm)
	libraryService := services.NewLibraryService(db, rm)
	statsService := services.NewStatsService(db, rm)
	photoService := services.NewPhotoService(c)

	api := httpapi.NewServer(userService, gigService, syncService, libraryService,
		statsService, photoService, c.SecretKey, logger)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		userService: userService,
		handler:     api.Router(),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// startTokenCleanup schedules the nightly refresh-token sweep and returns
// the scheduler so Run can stop it on shutdown.
func (app *App) startTokenCleanup(ctx context.Context) *cron.Cron {
	scheduler := cron.New()
	_, err := scheduler.AddFunc(tokenCleanupSchedule, func() {
		n, err := app.userService.CleanupExpiredTokens(ctx)
		if err != nil {
			app.logger.Error(ctx, "refresh token cleanup failed", "error", err)
			return
		}
		app.logger.Info(ctx, "refresh token cleanup done", "removed", n)
	})
	if err != nil {
		app.logger.Error(ctx, "could not schedule token cleanup", "error", err)
	}
	scheduler.Start()
	return scheduler
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	scheduler := app.startTokenCleanup(ctx)
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.handler,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(context.Background(), "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(context.Background(), "shutdown error", "error", err)
		}
		if err := app.db.Close(); err != nil {
			app.logger.Error(context.Background(), "db close error", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.EndpointAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
	}
}
