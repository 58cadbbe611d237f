// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package post

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"

	"github.com/postline/postline/internal/store"
)

// Service implements the post operations.
type Service struct {
	posts  Repository
	logger *slog.Logger
}

// NewService creates a Service backed by posts.
func NewService(posts Repository, logger *slog.Logger) (*Service, error) {
	if posts == nil {
		return nil, oops.Code("POST_INVALID_SERVICE").Errorf("posts repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{posts: posts, logger: logger}, nil
}

// List returns every post.
func (s *Service) List(ctx context.Context) ([]*Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, oops.Code("POST_LIST_FAILED").Wrap(err)
	}
	if posts == nil {
		posts = []*Post{}
	}
	return posts, nil
}

// Get returns the post with id, or nil when there is none.
func (s *Service) Get(ctx context.Context, id int64) (*Post, error) {
	p, err := s.posts.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.Code("POST_GET_FAILED").With("id", id).Wrap(err)
	}
	return p, nil
}

// Create stores a new post. Title validation happens at the API boundary.
func (s *Service) Create(ctx context.Context, title string) (*Post, error) {
	p := &Post{Title: title}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, oops.Code("POST_CREATE_FAILED").Wrap(err)
	}
	s.logger.DebugContext(ctx, "post created", "post_id", p.ID)
	return p, nil
}

// Update sets the title of post id. A nil title leaves the post unchanged and
// writes nothing. Returns nil when the post does not exist.
func (s *Service) Update(ctx context.Context, id int64, title *string) (*Post, error) {
	p, err := s.Get(ctx, id)
	if err != nil || p == nil {
		return nil, err
	}
	if title == nil {
		return p, nil
	}

	p.Title = *title
	if err := s.posts.Update(ctx, p); err != nil {
		// Deleted between the read and the write.
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, oops.Code("POST_UPDATE_FAILED").With("id", id).Wrap(err)
	}
	return p, nil
}

// Delete removes post id. It reports true whether or not a row matched.
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	n, err := s.posts.Delete(ctx, id)
	if err != nil {
		return false, oops.Code("POST_DELETE_FAILED").With("id", id).Wrap(err)
	}
	s.logger.DebugContext(ctx, "post deleted", "post_id", id, "rows", n)
	return true, nil
}
