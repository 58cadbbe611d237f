// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package api

import (
	"context"

	"github.com/postline/postline/internal/auth"
	"github.com/postline/postline/internal/post"
)

// AuthService is the account behaviour the operations need.
type AuthService interface {
	Register(ctx context.Context, sess auth.Session, username, password string) (*auth.UserResponse, error)
	Login(ctx context.Context, sess auth.Session, username, password string) (*auth.UserResponse, error)
	Me(ctx context.Context, sess auth.Session) (*auth.User, error)
	Logout(ctx context.Context, sess auth.Session) bool
}

// PostService is the post behaviour the operations need.
type PostService interface {
	List(ctx context.Context) ([]*post.Post, error)
	Get(ctx context.Context, id int64) (*post.Post, error)
	Create(ctx context.Context, title string) (*post.Post, error)
	Update(ctx context.Context, id int64, title *string) (*post.Post, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

var (
	_ AuthService = (*auth.Service)(nil)
	_ PostService = (*post.Service)(nil)
)

// IDArgs selects a post.
type IDArgs struct {
	ID int64 `json:"id" jsonschema:"description=Post id"`
}

// CreatePostArgs are the arguments of createPost.
type CreatePostArgs struct {
	Title string `json:"title" jsonschema:"minLength=1"`
}

// UpdatePostArgs are the arguments of updatePost. A missing or null title
// leaves the post unchanged.
type UpdatePostArgs struct {
	ID    int64   `json:"id"`
	Title *string `json:"title,omitempty" jsonschema:"oneof_type=string;null"`
}

// CredentialsArgs are the arguments of register and login.
type CredentialsArgs struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Operations returns the full operation table.
func Operations(authSvc AuthService, posts PostService) []Operation {
	return []Operation{
		Query("posts", "List all posts",
			func(ctx context.Context, _ *RequestContext, _ NoArgs) ([]*post.Post, error) {
				return posts.List(ctx)
			}),
		Query("post", "Get a post by id, or null",
			func(ctx context.Context, _ *RequestContext, in IDArgs) (*post.Post, error) {
				return posts.Get(ctx, in.ID)
			}),
		Mutation("createPost", "Create a post",
			func(ctx context.Context, _ *RequestContext, in CreatePostArgs) (*post.Post, error) {
				return posts.Create(ctx, in.Title)
			}),
		Mutation("updatePost", "Change a post's title; returns null when the post does not exist",
			func(ctx context.Context, _ *RequestContext, in UpdatePostArgs) (*post.Post, error) {
				return posts.Update(ctx, in.ID, in.Title)
			}),
		Mutation("deletePost", "Delete a post; always true",
			func(ctx context.Context, _ *RequestContext, in IDArgs) (bool, error) {
				return posts.Delete(ctx, in.ID)
			}),
		Mutation("register", "Create an account and log in",
			func(ctx context.Context, rc *RequestContext, in CredentialsArgs) (*auth.UserResponse, error) {
				return authSvc.Register(ctx, rc.Session, in.Username, in.Password)
			}),
		Mutation("login", "Log in",
			func(ctx context.Context, rc *RequestContext, in CredentialsArgs) (*auth.UserResponse, error) {
				return authSvc.Login(ctx, rc.Session, in.Username, in.Password)
			}),
		Query("me", "The logged-in user, or null",
			func(ctx context.Context, rc *RequestContext, _ NoArgs) (*auth.User, error) {
				return authSvc.Me(ctx, rc.Session)
			}),
		Mutation("logout", "End the session; always true",
			func(ctx context.Context, rc *RequestContext, _ NoArgs) (bool, error) {
				return authSvc.Logout(ctx, rc.Session), nil
			}),
	}
}

// NewDefaultRegistry registers the full operation table.
func NewDefaultRegistry(authSvc AuthService, posts PostService) (*Registry, error) {
	reg := NewRegistry()
	for _, op := range Operations(authSvc, posts) {
		if err := reg.Register(op); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
