// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package backoff retries operations with exponential backoff and jitter.
package backoff

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// Policy says how often and how long to retry.
type Policy struct {
	// MaxAttempts is the total number of calls, including the first.
	MaxAttempts int
	// InitialDelay is the wait before the second attempt.
	InitialDelay time.Duration
	// MaxDelay caps the wait between attempts.
	MaxDelay time.Duration
	// IsRetryable reports whether an error is worth another attempt.
	// A nil IsRetryable retries every error.
	IsRetryable func(error) bool
}

// Retry calls f until it succeeds, returns an error the policy does not
// retry, or the attempts run out. Between attempts it waits with exponential
// backoff and jitter.
func Retry[T any](ctx context.Context, policy Policy, f func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var zero T
	maxAttempts := max(policy.MaxAttempts, 1)
	delay := policy.InitialDelay
	for attempt := range maxAttempts {
		result, err := f(ctx, attempt)
		if err == nil {
			return result, nil
		}
		if policy.IsRetryable != nil && !policy.IsRetryable(err) {
			return zero, err
		}
		if attempt == maxAttempts-1 {
			if maxAttempts == 1 {
				return zero, err
			}
			return zero, fmt.Errorf("failed after %d attempts: %w", maxAttempts, err)
		}
		// Wait a random duration between delay/2 and delay.
		jitteredDelay := delay/2 + time.Duration(rand.Int64N(int64(delay/2+1)))
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(jitteredDelay):
		}
		delay = min(delay*2, policy.MaxDelay)
	}
	return zero, fmt.Errorf("failed after %d attempts", maxAttempts)
}
