// Package resilience provides the retry executor used for all external
// provider calls.
package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// RetryPolicy controls retry behavior with exponential backoff and jitter.
// It is immutable per call and never persisted.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the initial attempt.
	// A value of 0 means the operation runs exactly once. Default: 2.
	MaxRetries int

	// BaseDelay is the backoff before the first retry. Default: 500ms.
	BaseDelay time.Duration

	// MaxDelay caps the exponential backoff before jitter. Default: 5s.
	MaxDelay time.Duration

	// RetryOn decides whether an error is worth retrying. If nil,
	// DefaultRetryOn is used.
	RetryOn func(err error) bool

	// OnRetry is called before each backoff sleep with the retry number
	// (1-based) and the error that caused it.
	OnRetry func(retry int, err error)
}

// DefaultRetryPolicy returns the policy used for engine adapter calls.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 2,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   5 * time.Second,
	}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 500 * time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 5 * time.Second
	}
	if p.RetryOn == nil {
		p.RetryOn = DefaultRetryOn
	}
	return p
}

// ComputeDelay returns the backoff before retry n (0-based): the capped
// exponential min(base * 2^n, max) plus jitter drawn uniformly from
// [0, 25% of the capped value]. The result is therefore bounded above by
// 1.25 * max and below by the capped exponential itself.
func ComputeDelay(retry int, base, max time.Duration) time.Duration {
	delay := float64(base) * math.Pow(2, float64(retry))
	if delay > float64(max) {
		delay = float64(max)
	}
	jitter := rand.Float64() * 0.25 * delay
	return time.Duration(delay + jitter)
}

// Do executes fn, retrying while the policy's predicate accepts the error and
// retries remain. The initial call is not a retry: fn runs at most
// 1 + MaxRetries times. Context cancellation stops waiting immediately.
// When retries are exhausted the last error is returned wrapped in
// ExhaustedError.
func Do(ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) error) error {
	_, err := DoVal(ctx, policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoVal is Do for operations that return a value.
func DoVal[T any](ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	policy = policy.withDefaults()

	var zero T
	var lastErr error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		// Cancellation and non-retryable errors propagate untagged.
		if ctx.Err() != nil {
			return zero, lastErr
		}
		if !policy.RetryOn(lastErr) {
			return zero, lastErr
		}
		if attempt == policy.MaxRetries {
			break
		}

		if policy.OnRetry != nil {
			policy.OnRetry(attempt+1, lastErr)
		}

		timer := time.NewTimer(ComputeDelay(attempt, policy.BaseDelay, policy.MaxDelay))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}

	return zero, &ExhaustedError{Err: lastErr, Retries: policy.MaxRetries}
}

// RetryLogger returns an OnRetry callback that logs each retry attempt.
func RetryLogger(engine, operation string) func(int, error) {
	return func(retry int, err error) {
		zap.L().Warn("retrying operation",
			zap.String("engine", engine),
			zap.String("operation", operation),
			zap.Int("retry", retry),
			zap.Error(err),
		)
	}
}
