package repomanager

import (
	"context"
	"database/sql"

	"github.com/kotirearend/giglog/internal/dbx"
	"github.com/kotirearend/giglog/internal/server/repositories/gigs"
	"github.com/kotirearend/giglog/internal/server/repositories/people"
	"github.com/kotirearend/giglog/internal/server/repositories/refreshtokens"
	"github.com/kotirearend/giglog/internal/server/repositories/users"
	"github.com/kotirearend/giglog/internal/server/repositories/venues"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Gigs(db dbx.DBTX) gigs.Repository
	Venues(db dbx.DBTX) venues.Repository
	People(db dbx.DBTX) people.Repository
}
