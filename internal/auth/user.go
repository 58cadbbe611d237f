// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package auth

import (
	"context"
	"time"
)

// User is a registered account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserRepository persists users.
type UserRepository interface {
	// Create inserts user and fills in ID and timestamps. A duplicate username
	// yields an error matching store.ErrUniqueViolation.
	Create(ctx context.Context, user *User) error

	// GetByID returns store.ErrNotFound when no user has the id.
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByUsername matches exactly and returns store.ErrNotFound when absent.
	GetByUsername(ctx context.Context, username string) (*User, error)
}
