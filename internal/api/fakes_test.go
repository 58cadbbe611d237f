// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package api_test

import (
	"context"

	"github.com/postline/postline/internal/auth"
	"github.com/postline/postline/internal/post"
)

// fakePosts is an in-memory PostService.
type fakePosts struct {
	posts   map[int64]*post.Post
	nextID  int64
	updates int
	err     error
}

func newFakePosts() *fakePosts {
	return &fakePosts{posts: make(map[int64]*post.Post)}
}

func (f *fakePosts) List(context.Context) ([]*post.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*post.Post, 0, len(f.posts))
	for id := int64(1); id <= f.nextID; id++ {
		if p, ok := f.posts[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePosts) Get(_ context.Context, id int64) (*post.Post, error) {
	return f.posts[id], f.err
}

func (f *fakePosts) Create(_ context.Context, title string) (*post.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	p := &post.Post{ID: f.nextID, Title: title}
	f.posts[p.ID] = p
	return p, nil
}

func (f *fakePosts) Update(_ context.Context, id int64, title *string) (*post.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, nil
	}
	if title != nil {
		p.Title = *title
		f.updates++
	}
	return p, nil
}

func (f *fakePosts) Delete(_ context.Context, id int64) (bool, error) {
	delete(f.posts, id)
	return true, f.err
}

// fakeAuth records the credentials it was called with.
type fakeAuth struct {
	lastUsername string
	lastPassword string
	user         *auth.User
}

func (f *fakeAuth) Register(_ context.Context, sess auth.Session, username, password string) (*auth.UserResponse, error) {
	f.lastUsername, f.lastPassword = username, password
	if len(username) <= 2 {
		return &auth.UserResponse{Errors: []auth.FieldError{{Field: "username", Message: auth.MsgUsernameTooShort}}}, nil
	}
	f.user = &auth.User{ID: 1, Username: username}
	sess.SetUserID(1)
	return &auth.UserResponse{User: f.user}, nil
}

func (f *fakeAuth) Login(ctx context.Context, sess auth.Session, username, password string) (*auth.UserResponse, error) {
	return f.Register(ctx, sess, username, password)
}

func (f *fakeAuth) Me(_ context.Context, sess auth.Session) (*auth.User, error) {
	if _, ok := sess.UserID(); !ok {
		return nil, nil
	}
	return f.user, nil
}

func (f *fakeAuth) Logout(_ context.Context, sess auth.Session) bool {
	sess.Clear()
	return true
}
