package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultRequestTimeout = 12 * time.Second

// HTTPGateway implements Gateway over the server's JSON API.
type HTTPGateway struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore

	accessToken  string
	refreshToken string
}

// NewHTTPGateway constructs a gateway for the given server base URL
// (e.g. "http://localhost:8080"). tokens may be nil when persistence of
// refreshed tokens is not needed (tests).
func NewHTTPGateway(baseURL string, timeout time.Duration, tokens TokenStore) *HTTPGateway {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &HTTPGateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
	}
}

// SetTokens primes the gateway with a previously persisted token pair.
func (g *HTTPGateway) SetTokens(accessToken, refreshToken string) {
	g.accessToken = accessToken
	g.refreshToken = refreshToken
}

// errorBody is the server's error envelope.
type errorBody struct {
	Error string `json:"error"`
}

// do performs one JSON request. Authorized requests carry the bearer token;
// a 401 triggers a single refresh-and-retry before giving up.
func (g *HTTPGateway) do(ctx context.Context, method, path string, body any, out any, authorized bool) error {
	status, errMsg, err := g.doOnce(ctx, method, path, body, out, authorized)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized && authorized {
		if refreshErr := g.refresh(ctx); refreshErr != nil {
			return ErrUnauthorized
		}
		status, errMsg, err = g.doOnce(ctx, method, path, body, out, authorized)
		if err != nil {
			return err
		}
	}
	return classifyStatus(status, errMsg)
}

// doOnce performs a single HTTP round trip. A non-nil error means the
// request never produced a usable response (transport or codec failure);
// HTTP-level failures are reported through the status code and the
// server's error message.
func (g *HTTPGateway) doOnce(ctx context.Context, method, path string, body any, out any, authorized bool) (int, string, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, "", fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return 0, "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authorized && g.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+g.accessToken)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		// Timeouts and connection errors are indistinguishable to the
		// caller: both mean "try again on the next trigger".
		return 0, "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out != nil && resp.StatusCode != http.StatusNoContent {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return 0, "", fmt.Errorf("failed to decode response: %w", err)
			}
		}
		return resp.StatusCode, "", nil
	}

	var eb errorBody
	_ = json.NewDecoder(resp.Body).Decode(&eb)
	return resp.StatusCode, eb.Error, nil
}

func classifyStatus(status int, errMsg string) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusNotFound:
		return ErrNotFound
	case status >= 400 && status < 500:
		if errMsg != "" {
			return fmt.Errorf("%w: %s", ErrValidation, errMsg)
		}
		return ErrValidation
	default:
		return fmt.Errorf("%w: http %d", ErrUnavailable, status)
	}
}

// refresh exchanges the stored refresh credential for a new token pair and
// persists it. Any failure leaves the caller unauthenticated.
func (g *HTTPGateway) refresh(ctx context.Context) error {
	if g.refreshToken == "" {
		return ErrUnauthorized
	}

	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	status, _, err := g.doOnce(ctx, http.MethodPost, "/api/auth/refresh",
		map[string]string{"refresh_token": g.refreshToken}, &resp, false)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return ErrUnauthorized
	}

	g.accessToken = resp.AccessToken
	if resp.RefreshToken != "" {
		g.refreshToken = resp.RefreshToken
	}
	if g.tokens != nil {
		if err := g.tokens.SaveTokens(ctx, g.accessToken, g.refreshToken); err != nil {
			return fmt.Errorf("failed to persist refreshed tokens: %w", err)
		}
	}
	return nil
}
