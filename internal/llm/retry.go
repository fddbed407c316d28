package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// retryProvider retries transient failures with exponential backoff and
// jitter. Bad-output errors get a single retry; configuration errors and
// context cancellation never retry.
type retryProvider struct {
	inner Provider
	cfg   RetryConfig
}

// WithRetry wraps a Provider with retry.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &retryProvider{inner: p, cfg: cfg}
}

func (r *retryProvider) Complete(ctx context.Context, p Prompt) (*Result, error) {
	var lastErr error
	badOutputRetried := false

	for attempt := 0; attempt < r.cfg.MaxAttempts; attempt++ {
		res, err := r.inner.Complete(ctx, p)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if !r.retryable(err, &badOutputRetried) {
			return nil, err
		}
		if attempt == r.cfg.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.wait(attempt, err)):
		}
	}
	return nil, lastErr
}

func (r *retryProvider) Model() string { return r.inner.Model() }

func (r *retryProvider) retryable(err error, badOutputRetried *bool) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var truncated *ErrTruncated
	if errors.As(err, &truncated) {
		return false // MaxTokens is a configuration problem
	}

	var bad *ErrBadOutput
	if errors.As(err, &bad) {
		if *badOutputRetried {
			return false
		}
		*badOutputRetried = true
		return true
	}

	return true
}

// wait computes the backoff for an attempt, honoring a server-provided
// retry-after when present.
func (r *retryProvider) wait(attempt int, err error) time.Duration {
	var limited *ErrRateLimited
	if errors.As(err, &limited) && limited.RetryAfter > 0 {
		return limited.RetryAfter
	}

	base := float64(r.cfg.InitialWait) * math.Pow(r.cfg.Multiplier, float64(attempt))
	if max := float64(r.cfg.MaxWait); base > max {
		base = max
	}
	// Full jitter keeps concurrent retries from stampeding.
	return time.Duration(rand.Float64() * base)
}
