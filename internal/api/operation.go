// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

// Package api defines the typed operation table served over HTTP.
//
// Each operation has a name, a JSON Schema for its arguments reflected from a
// Go struct, and a handler. Arguments are validated against the schema before
// they are decoded and passed to the handler.
package api

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/invopop/jsonschema"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/postline/postline/internal/auth"
)

// Kind distinguishes read-only operations from mutations.
type Kind string

// Operation kinds.
const (
	KindQuery    Kind = "query"
	KindMutation Kind = "mutation"
)

// RequestContext carries the request-scoped state handed to every operation.
type RequestContext struct {
	Session auth.Session
}

// HandlerFunc executes an operation with arguments that already passed
// schema validation.
type HandlerFunc func(ctx context.Context, rc *RequestContext, args json.RawMessage) (any, error)

// Operation is one entry of the operation table.
type Operation struct {
	Name        string
	Kind        Kind
	Description string
	Input       *jsonschema.Schema
	Handler     HandlerFunc

	validator *jschema.Schema
}

// NoArgs is the argument type of operations that take none.
type NoArgs struct{}

// Query builds a read-only operation whose arguments decode into In.
func Query[In, Out any](name, description string, fn func(context.Context, *RequestContext, In) (Out, error)) Operation {
	return newOperation(KindQuery, name, description, fn)
}

// Mutation builds an operation that may change state.
func Mutation[In, Out any](name, description string, fn func(context.Context, *RequestContext, In) (Out, error)) Operation {
	return newOperation(KindMutation, name, description, fn)
}

func newOperation[In, Out any](kind Kind, name, description string, fn func(context.Context, *RequestContext, In) (Out, error)) Operation {
	return Operation{
		Name:        name,
		Kind:        kind,
		Description: description,
		Input:       reflectSchema(new(In)),
		Handler: func(ctx context.Context, rc *RequestContext, raw json.RawMessage) (any, error) {
			var in In
			dec := json.NewDecoder(bytes.NewReader(normalizeArgs(raw)))
			if err := dec.Decode(&in); err != nil {
				return nil, ErrInvalidArgs(name, err)
			}
			return fn(ctx, rc, in)
		},
	}
}

func normalizeArgs(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return json.RawMessage("{}")
	}
	return trimmed
}
