package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// TransientError marks a failure that is expected to resolve on retry:
// timeouts, rate limits, and server-side errors.
type TransientError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *TransientError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: transient error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: transient error: %s", e.Provider, e.Message)
}

// AuthError marks an authentication or configuration failure. It is never
// retried; the credentials have to change before another attempt can succeed.
type AuthError struct {
	Provider string
	Message  string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authentication failed: %s", e.Provider, e.Message)
}

// ClassifyStatus converts an HTTP status code into the matching error kind.
// 2xx codes return nil. Unrecognized client errors come back as plain errors
// so callers fail fast instead of retrying a request that cannot succeed.
func ClassifyStatus(provider string, status int, body string) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &AuthError{Provider: provider, Message: body}
	case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests || status >= 500:
		return &TransientError{Provider: provider, StatusCode: status, Message: body}
	default:
		return fmt.Errorf("%s: request failed (status %d): %s", provider, status, body)
	}
}

// IsTransient reports whether err should be retried. Network timeouts count
// as transient even when they were not produced by ClassifyStatus.
func IsTransient(err error) bool {
	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return false
}

// Do runs fn up to maxAttempts times, sleeping baseDelay, 2*baseDelay,
// 4*baseDelay, ... between attempts. Only transient errors are retried;
// anything else (including AuthError) is returned immediately. On exhaustion
// the last transient error is returned for the caller to escalate.
func Do(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func(ctx context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	delay := baseDelay
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !IsTransient(lastErr) {
			return lastErr
		}
		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return lastErr
}
