// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

// Package auth provides account registration, login and current-user lookup.
//
// # Results
//
// Register and Login report business-rule failures (short username, taken
// username, wrong password, ...) as a UserResponse carrying a single
// FieldError. Only faults, such as the database being unreachable, are
// returned as errors. Callers must check UserResponse.Errors before trusting
// UserResponse.User.
//
// # Sessions
//
// The service never touches cookies or the session store directly. It reads
// and writes the logged-in user through the Session interface, which the
// HTTP layer implements and persists after the operation returns.
package auth
