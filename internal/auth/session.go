// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package auth

// Session is the request-scoped view of the caller's session payload.
// Writes are buffered and persisted by the transport after the operation
// returns; an untouched session is never persisted.
type Session interface {
	// UserID returns the logged-in user, if any.
	UserID() (int64, bool)

	// SetUserID marks the session as logged in as id.
	SetUserID(id int64)

	// Clear drops the payload and schedules the session for deletion.
	Clear()
}
