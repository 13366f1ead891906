package gateway

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/kotirearend/giglog/internal/client/wire"
)

func (g *HTTPGateway) Register(ctx context.Context, email, password, displayName string) (*Session, error) {
	body := map[string]string{
		"email":        email,
		"password":     password,
		"display_name": displayName,
	}
	var s Session
	if err := g.do(ctx, http.MethodPost, "/api/auth/register", body, &s, false); err != nil {
		return nil, err
	}
	g.SetTokens(s.AccessToken, s.RefreshToken)
	return &s, nil
}

func (g *HTTPGateway) Login(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	var s Session
	if err := g.do(ctx, http.MethodPost, "/api/auth/login", body, &s, false); err != nil {
		return nil, err
	}
	g.SetTokens(s.AccessToken, s.RefreshToken)
	return &s, nil
}

func (g *HTTPGateway) CreateGig(ctx context.Context, gig wire.Gig) (*wire.Gig, error) {
	var out wire.Gig
	if err := g.do(ctx, http.MethodPost, "/api/gigs", gig, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTPGateway) UpdateGig(ctx context.Context, id string, gig wire.Gig) (*wire.Gig, error) {
	var out wire.Gig
	if err := g.do(ctx, http.MethodPut, "/api/gigs/"+url.PathEscape(id), gig, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTPGateway) DeleteGig(ctx context.Context, id string) error {
	return g.do(ctx, http.MethodDelete, "/api/gigs/"+url.PathEscape(id), nil, nil, true)
}

func (g *HTTPGateway) Pull(ctx context.Context, since time.Time) (*PullResult, error) {
	q := url.Values{}
	q.Set("since", since.UTC().Format(time.RFC3339Nano))
	var out PullResult
	if err := g.do(ctx, http.MethodGet, "/api/sync/pull?"+q.Encode(), nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTPGateway) PushBatch(ctx context.Context, b Batch) error {
	return g.do(ctx, http.MethodPost, "/api/sync/push", b, nil, true)
}

func (g *HTTPGateway) Ping(ctx context.Context) error {
	return g.do(ctx, http.MethodGet, "/api/health", nil, nil, false)
}

func (g *HTTPGateway) PhotoUploadURL(ctx context.Context) (string, string, error) {
	var out struct {
		Key string `json:"key"`
		URL string `json:"url"`
	}
	if err := g.do(ctx, http.MethodPost, "/api/photos/upload-url", nil, &out, true); err != nil {
		return "", "", err
	}
	return out.Key, out.URL, nil
}

func (g *HTTPGateway) PhotoDownloadURL(ctx context.Context, key string) (string, error) {
	q := url.Values{}
	q.Set("key", key)
	var out struct {
		URL string `json:"url"`
	}
	if err := g.do(ctx, http.MethodGet, "/api/photos/download-url?"+q.Encode(), nil, &out, true); err != nil {
		return "", err
	}
	return out.URL, nil
}
