// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrUniqueViolation is returned when a write collides with a unique constraint.
var ErrUniqueViolation = errors.New("unique constraint violation")

// ConstraintError reports which unique constraint a write violated.
// It matches both ErrUniqueViolation and the underlying driver error.
type ConstraintError struct {
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	if e.Constraint == "" {
		return "unique constraint violated"
	}
	return fmt.Sprintf("unique constraint %q violated", e.Constraint)
}

// Unwrap exposes both the sentinel and the driver error to errors.Is/As.
func (e *ConstraintError) Unwrap() []error {
	return []error{ErrUniqueViolation, e.Err}
}

// MapWriteError converts a PostgreSQL unique_violation (23505) into a
// *ConstraintError. Any other error is returned unchanged.
func MapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return &ConstraintError{Constraint: pgErr.ConstraintName, Err: err}
	}
	return err
}

// IsUniqueViolation reports whether err signals a unique constraint violation,
// either already mapped by MapWriteError or still a raw driver error.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUniqueViolation) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
