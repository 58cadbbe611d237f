// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

// Package postgres implements the post repository on PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/postline/postline/internal/post"
	"github.com/postline/postline/internal/store"
)

// PostRepository implements post.Repository using PostgreSQL.
type PostRepository struct {
	pool store.Pool
}

var _ post.Repository = (*PostRepository)(nil)

// NewPostRepository creates a new PostRepository.
func NewPostRepository(pool store.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

// List returns all posts ordered by id.
func (r *PostRepository) List(ctx context.Context) ([]*post.Post, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, title, created_at, updated_at FROM posts ORDER BY id`)
	if err != nil {
		return nil, oops.Code("POST_QUERY_FAILED").With("operation", "list posts").Wrap(err)
	}
	defer rows.Close()

	posts := make([]*post.Post, 0)
	for rows.Next() {
		var p post.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, oops.Code("POST_SCAN_FAILED").Wrap(err)
		}
		posts = append(posts, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("POST_ITERATE_FAILED").Wrap(err)
	}
	return posts, nil
}

// Get retrieves a post by id.
func (r *PostRepository) Get(ctx context.Context, id int64) (*post.Post, error) {
	var p post.Post
	err := r.pool.QueryRow(ctx, `
		SELECT id, title, created_at, updated_at
		FROM posts
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Title, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("POST_NOT_FOUND").With("id", id).Wrap(store.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("POST_GET_FAILED").With("operation", "get post").With("id", id).Wrap(err)
	}
	return &p, nil
}

// Create inserts p and fills in the generated id and timestamps.
func (r *PostRepository) Create(ctx context.Context, p *post.Post) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO posts (title)
		VALUES ($1)
		RETURNING id, created_at, updated_at
	`, p.Title).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return oops.Code("POST_CREATE_FAILED").With("operation", "insert post").Wrap(store.MapWriteError(err))
	}
	return nil
}

// Update writes the title of p and refreshes its updated_at.
func (r *PostRepository) Update(ctx context.Context, p *post.Post) error {
	err := r.pool.QueryRow(ctx, `
		UPDATE posts SET title = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, p.ID, p.Title).Scan(&p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return oops.Code("POST_NOT_FOUND").With("id", p.ID).Wrap(store.ErrNotFound)
	}
	if err != nil {
		return oops.Code("POST_UPDATE_FAILED").With("operation", "update post").With("id", p.ID).Wrap(err)
	}
	return nil
}

// Delete removes post id and returns how many rows were removed.
func (r *PostRepository) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return 0, oops.Code("POST_DELETE_FAILED").With("operation", "delete post").With("id", id).Wrap(err)
	}
	return tag.RowsAffected(), nil
}
