// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package api

import (
	"sort"
	"sync"

	"github.com/samber/oops"
)

// Registry holds the operation table. It is safe for concurrent use.
type Registry struct {
	ops map[string]Operation
	mu  sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]Operation)}
}

// Register adds op and compiles its input schema. Names must be unique.
func (r *Registry) Register(op Operation) error {
	if op.Name == "" {
		return oops.Code("OPERATION_INVALID").Errorf("operation name is required")
	}
	if op.Handler == nil {
		return oops.Code("OPERATION_INVALID").With("operation", op.Name).Errorf("operation handler is required")
	}
	if op.Input != nil {
		validator, err := compileSchema(op.Name, op.Input)
		if err != nil {
			return err
		}
		op.validator = validator
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ops[op.Name]; ok {
		return oops.Code("OPERATION_DUPLICATE").
			With("operation", op.Name).
			Errorf("operation %q already registered", op.Name)
	}
	r.ops[op.Name] = op
	return nil
}

// Get looks up an operation by exact name.
func (r *Registry) Get(name string) (Operation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	op, ok := r.ops[name]
	return op, ok
}

// All returns a copy of the table ordered by name.
func (r *Registry) All() []Operation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ops := make([]Operation, 0, len(r.ops))
	for _, op := range r.ops {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].Name < ops[j].Name })
	return ops
}
