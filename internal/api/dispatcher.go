// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/postline/postline/pkg/errutil"
)

var tracer = otel.Tracer("postline/api")

// Dispatcher validates arguments and runs operations from a Registry.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the logger. Defaults to slog.Default().
func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDispatcher creates a Dispatcher over registry.
func NewDispatcher(registry *Registry, opts ...DispatcherOption) (*Dispatcher, error) {
	if registry == nil {
		return nil, oops.Code("DISPATCHER_INVALID").Errorf("registry is required")
	}
	d := &Dispatcher{registry: registry, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Registry returns the operation table.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch runs the named operation with raw JSON arguments. An empty body
// is treated as an empty object.
func (d *Dispatcher) Dispatch(ctx context.Context, rc *RequestContext, name string, raw json.RawMessage) (result any, err error) {
	start := time.Now()
	label := name
	status := StatusSuccess

	ctx, span := tracer.Start(ctx, "api.dispatch",
		trace.WithAttributes(attribute.String("operation.name", name)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		recordOperation(label, status, time.Since(start))
	}()

	op, ok := d.registry.Get(name)
	if !ok {
		label, status = unknownOperationLabel, StatusUnknown
		return nil, ErrUnknownOperation(name)
	}
	span.SetAttributes(attribute.String("operation.kind", string(op.Kind)))

	if rc == nil || rc.Session == nil {
		status = StatusError
		return nil, oops.Code("DISPATCH_NO_SESSION").With("operation", name).Errorf("request context has no session")
	}

	if err := op.validate(raw); err != nil {
		status = StatusInvalidArgs
		return nil, err
	}

	result, err = op.Handler(ctx, rc, raw)
	if err != nil {
		if errutil.Code(err) == CodeInvalidArgs {
			status = StatusInvalidArgs
			return nil, err
		}
		status = StatusError
		errutil.LogErrorContext(ctx, d.logger, "operation failed", oops.With("operation", name).Wrap(err))
		return nil, err
	}
	return result, nil
}
