// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package mocks

import "github.com/postline/postline/internal/auth"

// FakeSession is an in-memory auth.Session that records what was written.
type FakeSession struct {
	userID  int64
	hasUser bool

	// Written is set by any SetUserID or Clear call.
	Written bool
	// Cleared is set by Clear.
	Cleared bool
}

var _ auth.Session = (*FakeSession)(nil)

// NewFakeSession returns an anonymous session.
func NewFakeSession() *FakeSession {
	return &FakeSession{}
}

// NewLoggedInSession returns a session already logged in as id.
func NewLoggedInSession(id int64) *FakeSession {
	return &FakeSession{userID: id, hasUser: true}
}

// UserID implements auth.Session.
func (s *FakeSession) UserID() (int64, bool) {
	return s.userID, s.hasUser
}

// SetUserID implements auth.Session.
func (s *FakeSession) SetUserID(id int64) {
	s.userID = id
	s.hasUser = true
	s.Written = true
}

// Clear implements auth.Session.
func (s *FakeSession) Clear() {
	s.userID = 0
	s.hasUser = false
	s.Written = true
	s.Cleared = true
}
