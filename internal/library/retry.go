// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package library

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"

	"biblioteca/internal/models"
)

// DefaultRetryBase is the first backoff delay used by RetryBusy.
const DefaultRetryBase = 20 * time.Millisecond

// RetryBusy runs fn up to attempts times, backing off exponentially
// between tries. Only models.ErrBusy is retried; any other error, or
// success, returns immediately.
func RetryBusy(ctx context.Context, attempts int, fn func(ctx context.Context) error) error {
	return retryBusy(ctx, attempts, DefaultRetryBase, fn)
}

func retryBusy(ctx context.Context, attempts int, base time.Duration, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	backoff := retry.NewExponential(base)
	backoff = retry.WithJitterPercent(30, backoff)
	backoff = retry.WithMaxRetries(uint64(attempts-1), backoff)

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if errors.Is(err, models.ErrBusy) {
			return retry.RetryableError(err)
		}
		return err
	})
}
