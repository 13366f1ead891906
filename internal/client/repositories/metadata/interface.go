package metadata

import (
	"context"
	"time"
)

// Well-known metadata keys.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUserEmail    = "user_email"
	KeyLastPullAt   = "last_pull_at" // sync checkpoint, RFC3339Nano
)

// Repository is a small durable key-value store for per-device state:
// auth tokens, the cached identity, and the sync checkpoint.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error

	// GetTime reads a key holding an RFC3339Nano timestamp. A missing key
	// yields the zero time, not an error.
	GetTime(ctx context.Context, key string) (time.Time, error)

	// SetTime stores a timestamp under key in RFC3339Nano form.
	SetTime(ctx context.Context, key string, t time.Time) error
}
