// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"unicode/utf8"

	"github.com/samber/oops"

	"github.com/postline/postline/internal/store"
)

// Service implements register, login, me and logout.
type Service struct {
	users  UserRepository
	hasher PasswordHasher
	logger *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger used for auth events. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a Service. All dependencies are required.
func NewService(users UserRepository, hasher PasswordHasher, opts ...ServiceOption) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("users repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("password hasher is required")
	}

	s := &Service{users: users, hasher: hasher, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("logger cannot be nil")
	}
	return s, nil
}

// Register creates an account and logs the session in as it.
// Length rules are checked before anything is hashed or written, username first.
func (s *Service) Register(ctx context.Context, sess Session, username, password string) (*UserResponse, error) {
	if utf8.RuneCountInString(username) <= usernameMinExclusive {
		recordAttempt("register", OutcomeInvalid)
		return fieldError("username", MsgUsernameTooShort), nil
	}
	if utf8.RuneCountInString(password) <= passwordMinExclusive {
		recordAttempt("register", OutcomeInvalid)
		return fieldError("password", MsgPasswordTooShort), nil
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		recordAttempt("register", OutcomeError)
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user := &User{Username: username, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if store.IsUniqueViolation(err) {
			recordAttempt("register", OutcomeTaken)
			return fieldError("username", MsgUsernameTaken), nil
		}
		recordAttempt("register", OutcomeError)
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "create user").
			With("username", username).
			Wrap(err)
	}

	sess.SetUserID(user.ID)
	recordAttempt("register", OutcomeSuccess)
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return &UserResponse{User: user}, nil
}

// Login checks credentials and logs the session in. The username is looked
// up before the password is verified; a failure leaves the session untouched.
func (s *Service) Login(ctx context.Context, sess Session, username, password string) (*UserResponse, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			recordAttempt("login", OutcomeUnknownUser)
			return fieldError("username", MsgUsernameNotFound), nil
		}
		recordAttempt("login", OutcomeError)
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "get user by username").
			Wrap(err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		recordAttempt("login", OutcomeWrongPassword)
		s.logger.DebugContext(ctx, "login rejected", "user_id", user.ID, "reason", "password mismatch")
		return fieldError("password", MsgIncorrectPassword), nil
	}

	sess.SetUserID(user.ID)
	recordAttempt("login", OutcomeSuccess)
	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return &UserResponse{User: user}, nil
}

// Me returns the logged-in user, or nil when the session is anonymous or
// points at a user that no longer exists.
func (s *Service) Me(ctx context.Context, sess Session) (*User, error) {
	id, ok := sess.UserID()
	if !ok {
		return nil, nil
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.DebugContext(ctx, "session references missing user", "user_id", id)
			return nil, nil
		}
		return nil, oops.Code("AUTH_ME_FAILED").
			With("operation", "get user by id").
			With("user_id", id).
			Wrap(err)
	}
	return user, nil
}

// Logout clears the session. It always reports true.
func (s *Service) Logout(ctx context.Context, sess Session) bool {
	if id, ok := sess.UserID(); ok {
		s.logger.InfoContext(ctx, "user logged out", "user_id", id)
	}
	sess.Clear()
	return true
}
