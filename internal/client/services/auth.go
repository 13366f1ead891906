// Package services contains the application services behind the CLI:
// authentication and session persistence, optimistic gig writes with
// mutation queueing, the local venue and people library, and statistics
// computed over the on-device store.
package services

import (
	"context"
	"fmt"

	"github.com/kotirearend/giglog/internal/client/gateway"
	"github.com/kotirearend/giglog/internal/client/repositories/metadata"
)

// AuthService handles account access and the locally persisted session.
//
// Contract:
//   - Register / Login: authenticate against the server and persist the
//     token pair so the session survives restarts.
//   - Restore: prime the gateway from persisted tokens; reports whether a
//     session was found.
//   - Logout: drop the persisted session.
//   - Ping: check server liveness.
type AuthService interface {
	Register(ctx context.Context, email, password, displayName string) (*gateway.Session, error)
	Login(ctx context.Context, email, password string) (*gateway.Session, error)
	Restore(ctx context.Context) (bool, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error

	// CurrentEmail returns the cached account email, or "" when signed out.
	CurrentEmail(ctx context.Context) (string, error)
}

type authService struct {
	gw           gateway.Gateway
	tokenSetter  interface{ SetTokens(access, refresh string) }
	metadataRepo metadata.Repository
}

// NewAuthService binds the auth flows to the gateway and the local
// metadata store. gw is typically a *gateway.HTTPGateway; tokenSetter is
// the same value when it supports priming tokens.
func NewAuthService(gw gateway.Gateway, tokenSetter interface{ SetTokens(access, refresh string) }, metadataRepo metadata.Repository) AuthService {
	return &authService{gw: gw, tokenSetter: tokenSetter, metadataRepo: metadataRepo}
}

func (a *authService) Register(ctx context.Context, email, password, displayName string) (*gateway.Session, error) {
	s, err := a.gw.Register(ctx, email, password, displayName)
	if err != nil {
		return nil, err
	}
	if err := a.persistSession(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (a *authService) Login(ctx context.Context, email, password string) (*gateway.Session, error) {
	s, err := a.gw.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := a.persistSession(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (a *authService) persistSession(ctx context.Context, s *gateway.Session) error {
	if err := a.metadataRepo.Set(ctx, metadata.KeyAccessToken, []byte(s.AccessToken)); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	if err := a.metadataRepo.Set(ctx, metadata.KeyRefreshToken, []byte(s.RefreshToken)); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	if err := a.metadataRepo.Set(ctx, metadata.KeyUserEmail, []byte(s.Email)); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// Restore loads the persisted token pair into the gateway. It does not
// talk to the server; an expired access token is refreshed lazily on the
// first authorized request.
func (a *authService) Restore(ctx context.Context) (bool, error) {
	access, err := a.metadataRepo.Get(ctx, metadata.KeyAccessToken)
	if err != nil {
		return false, err
	}
	refresh, err := a.metadataRepo.Get(ctx, metadata.KeyRefreshToken)
	if err != nil {
		return false, err
	}
	if len(access) == 0 && len(refresh) == 0 {
		return false, nil
	}
	if a.tokenSetter != nil {
		a.tokenSetter.SetTokens(string(access), string(refresh))
	}
	return true, nil
}

func (a *authService) Logout(ctx context.Context) error {
	for _, key := range []string{metadata.KeyAccessToken, metadata.KeyRefreshToken, metadata.KeyUserEmail} {
		if err := a.metadataRepo.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
	}
	if a.tokenSetter != nil {
		a.tokenSetter.SetTokens("", "")
	}
	return nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.gw.Ping(ctx)
}

func (a *authService) CurrentEmail(ctx context.Context) (string, error) {
	email, err := a.metadataRepo.Get(ctx, metadata.KeyUserEmail)
	if err != nil {
		return "", err
	}
	return string(email), nil
}

// MetadataTokenStore adapts the metadata repository to the gateway's
// TokenStore so refreshed tokens are persisted where Restore finds them.
type MetadataTokenStore struct {
	Repo metadata.Repository
}

func (s MetadataTokenStore) SaveTokens(ctx context.Context, accessToken, refreshToken string) error {
	if err := s.Repo.Set(ctx, metadata.KeyAccessToken, []byte(accessToken)); err != nil {
		return err
	}
	return s.Repo.Set(ctx, metadata.KeyRefreshToken, []byte(refreshToken))
}

var _ gateway.TokenStore = MetadataTokenStore{}
