// Package gateway is the thin authenticated HTTP interface to the giglog
// server. It attaches the bearer token, performs a single refresh-and-retry
// on 401, and classifies failures into the sentinel taxonomy in errors.go.
// Retry policy beyond that lives in the sync engine, not here.
package gateway

import (
	"context"
	"time"

	"github.com/kotirearend/giglog/internal/client/wire"
)

// Session is the result of a successful register or login.
type Session struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	DisplayName  string `json:"display_name"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// PullResult is the server's delta since a checkpoint.
type PullResult struct {
	Gigs   []wire.Gig    `json:"gigs"`
	Venues []wire.Venue  `json:"venues"`
	People []wire.Person `json:"people"`
}

// Batch is a set of records submitted to the server's merge endpoint.
type Batch struct {
	Gigs   []wire.Gig    `json:"gigs,omitempty"`
	Venues []wire.Venue  `json:"venues,omitempty"`
	People []wire.Person `json:"people,omitempty"`
}

// Gateway is the remote surface the sync engine and services talk to.
type Gateway interface {
	Register(ctx context.Context, email, password, displayName string) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)

	CreateGig(ctx context.Context, g wire.Gig) (*wire.Gig, error)
	UpdateGig(ctx context.Context, id string, g wire.Gig) (*wire.Gig, error)
	DeleteGig(ctx context.Context, id string) error

	// Pull fetches all records updated strictly after since.
	Pull(ctx context.Context, since time.Time) (*PullResult, error)

	// PushBatch submits records for server-side last-writer-wins merge.
	PushBatch(ctx context.Context, b Batch) error

	Ping(ctx context.Context) error
}

// PhotoGateway mints presigned URLs for photo upload and download. It is
// separate from Gateway because only the CLI photo commands need it; the
// sync engine never touches photo bytes.
type PhotoGateway interface {
	PhotoUploadURL(ctx context.Context) (key string, url string, err error)
	PhotoDownloadURL(ctx context.Context, key string) (string, error)
}

// TokenStore persists the token pair so a refreshed session survives
// process restarts. The metadata repository implements the storage side.
type TokenStore interface {
	SaveTokens(ctx context.Context, accessToken, refreshToken string) error
}
