package retry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		wantNil   bool
		wantAuth  bool
		wantRetry bool
	}{
		{"ok", http.StatusOK, true, false, false},
		{"created", http.StatusCreated, true, false, false},
		{"unauthorized", http.StatusUnauthorized, false, true, false},
		{"forbidden", http.StatusForbidden, false, true, false},
		{"rate limited", http.StatusTooManyRequests, false, false, true},
		{"timeout", http.StatusRequestTimeout, false, false, true},
		{"server error", http.StatusInternalServerError, false, false, true},
		{"bad gateway", http.StatusBadGateway, false, false, true},
		{"bad request", http.StatusBadRequest, false, false, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := ClassifyStatus("test", c.status, "boom")
			if c.wantNil {
				if err != nil {
					t.Fatalf("ClassifyStatus(%d) = %v; want nil", c.status, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ClassifyStatus(%d) = nil; want error", c.status)
			}
			var ae *AuthError
			if got := errors.As(err, &ae); got != c.wantAuth {
				t.Fatalf("errors.As AuthError = %v; want %v", got, c.wantAuth)
			}
			if got := IsTransient(err); got != c.wantRetry {
				t.Fatalf("IsTransient = %v; want %v", got, c.wantRetry)
			}
		})
	}
}

func TestDoRetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 3, time.Millisecond, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return &TransientError{Provider: "test", StatusCode: 503, Message: "busy"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do returned %v; want nil", err)
	}
	if calls != 3 {
		t.Fatalf("fn called %d times; want 3", calls)
	}
}

func TestDoReturnsLastTransientOnExhaustion(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 3, time.Millisecond, func(ctx context.Context) error {
		calls++
		return &TransientError{Provider: "test", StatusCode: 500, Message: fmt.Sprintf("attempt %d", calls)}
	})
	if calls != 3 {
		t.Fatalf("fn called %d times; want 3", calls)
	}
	var te *TransientError
	if !errors.As(err, &te) {
		t.Fatalf("Do returned %v; want TransientError", err)
	}
	if te.Message != "attempt 3" {
		t.Fatalf("got last error %q; want the final attempt's error", te.Message)
	}
}

func TestDoNeverRetriesAuthErrors(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 5, time.Millisecond, func(ctx context.Context) error {
		calls++
		return &AuthError{Provider: "test", Message: "bad key"}
	})
	if calls != 1 {
		t.Fatalf("fn called %d times; want 1", calls)
	}
	var ae *AuthError
	if !errors.As(err, &ae) {
		t.Fatalf("Do returned %v; want AuthError", err)
	}
}

func TestDoStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, 3, time.Millisecond, func(ctx context.Context) error {
		t.Fatal("fn should not run with cancelled context")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Do returned %v; want context.Canceled", err)
	}
}
