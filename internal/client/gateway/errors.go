package gateway

import "errors"

// Error taxonomy for remote calls. The sync engine decides retry-vs-surface
// from these classes; the gateway itself never retries beyond the single
// token-refresh attempt.
var (
	// ErrUnavailable covers timeouts, connection failures, and 5xx
	// responses. Transient: retry on the next trigger.
	ErrUnavailable = errors.New("server unavailable")

	// ErrUnauthorized means the access token was rejected and could not be
	// refreshed. The caller degrades to offline/unauthenticated.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation is a 4xx rejection of the payload. Permanent for the
	// payload in question; retrying without change will not help.
	ErrValidation = errors.New("validation rejected")

	// ErrNotFound is a 404 for the addressed record.
	ErrNotFound = errors.New("not found")
)
