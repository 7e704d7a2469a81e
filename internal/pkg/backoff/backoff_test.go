// Copyright 2026 Peter Edge
//
// All rights reserved.

package backoff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func TestRetrySucceeds(t *testing.T) {
	t.Parallel()
	var calls int
	result, err := Retry(
		context.Background(),
		Policy{MaxAttempts: 5, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond},
		func(_ context.Context, attempt int) (int, error) {
			calls++
			if attempt < 2 {
				return 0, errTransient
			}
			return attempt, nil
		},
	)
	require.NoError(t, err)
	require.Equal(t, 2, result)
	require.Equal(t, 3, calls)
}

func TestRetryExhausted(t *testing.T) {
	t.Parallel()
	var calls int
	_, err := Retry(
		context.Background(),
		Policy{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond},
		func(context.Context, int) (struct{}, error) {
			calls++
			return struct{}{}, errTransient
		},
	)
	require.ErrorIs(t, err, errTransient)
	require.Equal(t, 3, calls)
}

func TestRetryNotRetryable(t *testing.T) {
	t.Parallel()
	permanent := errors.New("permanent")
	var calls int
	_, err := Retry(
		context.Background(),
		Policy{
			MaxAttempts:  5,
			InitialDelay: time.Millisecond,
			MaxDelay:     time.Millisecond,
			IsRetryable:  func(err error) bool { return errors.Is(err, errTransient) },
		},
		func(context.Context, int) (string, error) {
			calls++
			return "", permanent
		},
	)
	require.Equal(t, permanent, err)
	require.Equal(t, 1, calls)
}

func TestRetryCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Retry(
		ctx,
		Policy{MaxAttempts: 3, InitialDelay: time.Hour, MaxDelay: time.Hour},
		func(context.Context, int) (int, error) {
			return 0, errTransient
		},
	)
	require.ErrorIs(t, err, context.Canceled)
}
