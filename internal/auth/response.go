// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package auth

// Field error messages returned to clients.
const (
	MsgUsernameTooShort  = " length must be greater than 2"
	MsgPasswordTooShort  = " length must be greater than 3"
	MsgUsernameTaken     = " username already taken"
	MsgUsernameNotFound  = "that username does not exist"
	MsgIncorrectPassword = "incorrect password"
)

// Minimum lengths, counted in runes. Values at or below these are rejected.
const (
	usernameMinExclusive = 2
	passwordMinExclusive = 3
)

// FieldError attributes a validation failure to one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// UserResponse is the result of Register and Login. Exactly one of Errors
// and User is set.
type UserResponse struct {
	Errors []FieldError `json:"errors,omitempty"`
	User   *User        `json:"user,omitempty"`
}

func fieldError(field, message string) *UserResponse {
	return &UserResponse{Errors: []FieldError{{Field: field, Message: message}}}
}

// OK reports whether the response carries a user and no errors.
func (r *UserResponse) OK() bool {
	return r != nil && len(r.Errors) == 0 && r.User != nil
}
