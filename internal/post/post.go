// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

// Package post provides CRUD operations over posts.
//
// Posts have no owner and mutations are not gated on a logged-in session.
package post

import (
	"context"
	"time"
)

// Post is a titled entry.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Repository persists posts. Every method is a single statement.
type Repository interface {
	// List returns all posts ordered by id.
	List(ctx context.Context) ([]*Post, error)

	// Get returns store.ErrNotFound when no post has the id.
	Get(ctx context.Context, id int64) (*Post, error)

	// Create inserts p and fills in ID and timestamps.
	Create(ctx context.Context, p *Post) error

	// Update writes p.Title and refreshes p.UpdatedAt. Returns
	// store.ErrNotFound when the row is gone.
	Update(ctx context.Context, p *Post) error

	// Delete removes the post and returns the number of rows removed.
	Delete(ctx context.Context, id int64) (int64, error)
}
