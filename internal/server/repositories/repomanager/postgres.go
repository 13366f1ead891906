// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/kotirearend/giglog/internal/dbx"
	"github.com/kotirearend/giglog/internal/server/migrations"
	"github.com/kotirearend/giglog/internal/server/repositories/gigs"
	"github.com/kotirearend/giglog/internal/server/repositories/people"
	"github.com/kotirearend/giglog/internal/server/repositories/refreshtokens"
	"github.com/kotirearend/giglog/internal/server/repositories/users"
	"github.com/kotirearend/giglog/internal/server/repositories/venues"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// RefreshTokens returns a refreshtokens.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

// Gigs returns a gigs.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Gigs(db dbx.DBTX) gigs.Repository {
	return gigs.NewPostgresRepository(db)
}

// Venues returns a venues.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Venues(db dbx.DBTX) venues.Repository {
	return venues.NewPostgresRepository(db)
}

// People returns a people.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) People(db dbx.DBTX) people.Repository {
	return people.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing RunMigrations.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}
