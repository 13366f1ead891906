package common

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	retryInitialBackoff = 100 * time.Millisecond
	retryMaxRetries     = 3
)

// Retry runs fn, re-running it with fibonacci backoff while it returns an
// error that isRetryable accepts. Non-retryable errors are returned
// immediately.
func Retry(ctx context.Context, isRetryable func(error) bool, fn func(ctx context.Context) error) error {
	b := retry.WithMaxRetries(retryMaxRetries, retry.NewFibonacci(retryInitialBackoff))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil && isRetryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// RetryWithResult is Retry for functions that also produce a value.
func RetryWithResult[T any](ctx context.Context, isRetryable func(error) bool, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := Retry(ctx, isRetryable, func(ctx context.Context) error {
		var innerErr error
		out, innerErr = fn(ctx)
		return innerErr
	})
	return out, err
}
