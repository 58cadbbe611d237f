// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package api

import (
	"github.com/samber/oops"

	"github.com/postline/postline/pkg/errutil"
)

// Error codes surfaced to clients.
const (
	CodeUnknownOperation = "UNKNOWN_OPERATION"
	CodeInvalidArgs      = "INVALID_ARGS"
	CodeInternal         = "INTERNAL"
)

// ErrUnknownOperation creates an error for an operation name with no entry.
func ErrUnknownOperation(name string) error {
	return oops.Code(CodeUnknownOperation).
		With("operation", name).
		Errorf("unknown operation: %s", name)
}

// ErrInvalidArgs creates an error for arguments rejected by the schema or decoder.
func ErrInvalidArgs(name string, cause error) error {
	return oops.Code(CodeInvalidArgs).
		With("operation", name).
		With("detail", cause.Error()).
		Errorf("invalid arguments for %s", name)
}

// ErrorBody is the error payload returned to clients.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PublicError maps err to what a client may see. Anything that is not a
// client error becomes a generic INTERNAL error.
func PublicError(err error) ErrorBody {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return InternalError()
	}

	switch errutil.Code(err) {
	case CodeUnknownOperation:
		return ErrorBody{Code: CodeUnknownOperation, Message: oopsErr.Error()}
	case CodeInvalidArgs:
		msg := "invalid arguments"
		if detail, ok := oopsErr.Context()["detail"].(string); ok && detail != "" {
			msg += ": " + detail
		}
		return ErrorBody{Code: CodeInvalidArgs, Message: msg}
	default:
		return InternalError()
	}
}

// InternalError is the body sent for every server-side fault.
func InternalError() ErrorBody {
	return ErrorBody{Code: CodeInternal, Message: "internal server error"}
}
