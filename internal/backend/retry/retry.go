// Package retry wraps backend calls in bounded exponential backoff.
package retry

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/api/googleapi"
)

// DefaultMaxElapsed bounds the total time spent retrying one call.
const DefaultMaxElapsed = 30 * time.Second

// Policy configures retries.
type Policy struct {
	MaxElapsed      time.Duration
	InitialInterval time.Duration
}

func (p Policy) backoff() backoff.BackOff {
	// BackOff implementations are stateful; always build a fresh one.
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = p.MaxElapsed
	if bo.MaxElapsedTime <= 0 {
		bo.MaxElapsedTime = DefaultMaxElapsed
	}
	if p.InitialInterval > 0 {
		bo.InitialInterval = p.InitialInterval
	}
	return bo
}

// Do runs op until it succeeds, returns a non-retryable error, ctx ends or
// the policy's elapsed budget is spent.
func (p Policy) Do(ctx context.Context, op func() error) error {
	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(p.backoff(), ctx))
}

// IsRetryable reports whether err looks transient: rate limiting, server
// errors, timeouts and dropped connections.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests || gerr.Code >= 500
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := err.Error()
	for _, s := range []string{"connection reset", "connection refused", "broken pipe", "bad connection", "unexpected EOF"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
