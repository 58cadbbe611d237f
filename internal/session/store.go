// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package session

import (
	"context"
	"time"
)

// Payload is the data kept for a session.
type Payload struct {
	UserID int64 `json:"userId,omitempty"`
}

// Store maps session tokens to payloads.
type Store interface {
	// Get returns the payload for token. A missing or expired entry is
	// reported as found=false with a nil error.
	Get(ctx context.Context, token string) (payload Payload, found bool, err error)

	// Set writes payload under token, expiring after ttl.
	Set(ctx context.Context, token string, payload Payload, ttl time.Duration) error

	// Delete removes token. Deleting a missing token is not an error.
	Delete(ctx context.Context, token string) error
}
