// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Backoff bounds for WaitFor.
const (
	waitBase = 200 * time.Millisecond
	waitCap  = 2 * time.Second
)

// WaitFor calls ping until it succeeds, ctx is done, or timeout elapses.
// A zero timeout means a single attempt.
func WaitFor(ctx context.Context, name string, timeout time.Duration, ping func(context.Context) error) error {
	if timeout <= 0 {
		if err := ping(ctx); err != nil {
			return oops.With("dependency", name).Wrap(err)
		}
		return nil
	}

	backoff := retry.NewExponential(waitBase)
	backoff = retry.WithCappedDuration(waitCap, backoff)
	backoff = retry.WithMaxDuration(timeout, backoff)

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := ping(ctx); err != nil {
			slog.WarnContext(ctx, "dependency not ready",
				"dependency", name,
				"attempt", attempt,
				"error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return oops.With("dependency", name).With("attempts", attempt).Wrap(err)
	}
	return nil
}
